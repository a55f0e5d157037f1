// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-linkbudget/catalog"
	"github.com/openthread/ot-linkbudget/config"
	"github.com/openthread/ot-linkbudget/linkbudget"
	"github.com/openthread/ot-linkbudget/logger"
	"github.com/openthread/ot-linkbudget/plot"
	. "github.com/openthread/ot-linkbudget/types"
)

var setFlags = map[string]bool{}

var args struct {
	ConfigFile string
	Catalog    string
	Tech       string
	Tx         string
	Rx         string
	Distance   float64
	TxHeight   float64
	RxHeight   float64
	Chart      string
	ChartKind  string
	Json       bool
	Full       bool
}

func parseArgs() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -catalog <devices> -tx <name> -rx <name> [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Prints the link budget of one link, and optionally writes its chart.\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&args.ConfigFile, "config", "", "YAML configuration file")
	flag.StringVar(&args.Catalog, "catalog", "", "device catalog: .csv, .yaml or .db (SQLite) file")
	flag.StringVar(&args.Tech, "tech", "ble", "technology: ble, subghz, wifi")
	flag.StringVar(&args.Tx, "tx", "", "transmitter device")
	flag.StringVar(&args.Rx, "rx", "", "receiver device")
	flag.Float64Var(&args.Distance, "distance", linkbudget.DefaultTargetDistanceM, "target distance (m)")
	flag.Float64Var(&args.TxHeight, "tx-height", 0, "base (transmitter) antenna height (m), default from the configuration")
	flag.Float64Var(&args.RxHeight, "rx-height", 0, "mobile (receiver) antenna height (m), default from the configuration")
	flag.StringVar(&args.Chart, "chart", "", "write a PNG chart to this file")
	flag.StringVar(&args.ChartKind, "kind", "pathloss", "chart kind: pathloss, uplink, downlink")
	flag.BoolVar(&args.Json, "json", false, "print JSON instead of YAML")
	flag.BoolVar(&args.Full, "full", false, "print all curves instead of the summary at the target distance")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
}

// request builds the link budget request; antenna heights are only set when given on the
// command line.
func request() linkbudget.Request {
	req := linkbudget.Request{
		Technology:      ParseTechnology(args.Tech),
		TransmitterName: args.Tx,
		ReceiverName:    args.Rx,
		TargetDistanceM: args.Distance,
	}
	if setFlags["tx-height"] {
		req.TxHeightM = &args.TxHeight
	}
	if setFlags["rx-height"] {
		req.RxHeightM = &args.RxHeight
	}
	return req
}

func main() {
	parseArgs()
	logger.SetLevel(logger.WarnLevel)

	if err := run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer) error {
	cfg := config.Default()
	if args.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(args.ConfigFile); err != nil {
			return err
		}
	}
	if args.Catalog != "" {
		cfg.Catalog = args.Catalog
	}
	if cfg.Catalog == "" {
		return errors.Errorf("no device catalog")
	}

	cat, err := catalog.LoadFile(cfg.Catalog)
	if err != nil {
		return err
	}
	engine, err := linkbudget.NewEngine(cat, cfg.EngineConfig())
	if err != nil {
		return err
	}

	resp, err := engine.Calculate(request())
	if err != nil {
		return err
	}
	if resp.Outcome != linkbudget.OutcomeResult {
		return output(w, resp)
	}

	if args.Chart != "" {
		if err = writeChart(resp.Result); err != nil {
			return err
		}
	}
	if args.Full {
		return output(w, resp)
	}
	return output(w, resp.Result.Summary())
}

func output(w io.Writer, v interface{}) error {
	if args.Json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeChart(r *linkbudget.Result) error {
	kind, ok := plot.ParseKind(args.ChartKind)
	if !ok {
		return errors.Errorf("unknown chart kind %q", args.ChartKind)
	}
	renderer, err := plot.NewRenderer(plot.DefaultWidth, plot.DefaultHeight)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = renderer.Render(&buf, plot.ResultChart(r, kind)); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(args.Chart, buf.Bytes(), 0644), "write %s", args.Chart)
}

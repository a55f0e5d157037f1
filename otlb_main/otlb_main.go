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

package otlb_main

import (
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openthread/ot-linkbudget/catalog"
	"github.com/openthread/ot-linkbudget/cli"
	"github.com/openthread/ot-linkbudget/cli/runcli"
	"github.com/openthread/ot-linkbudget/config"
	"github.com/openthread/ot-linkbudget/linkbudget"
	"github.com/openthread/ot-linkbudget/logger"
	"github.com/openthread/ot-linkbudget/metrics"
	"github.com/openthread/ot-linkbudget/progctx"
	"github.com/openthread/ot-linkbudget/web"
	webSite "github.com/openthread/ot-linkbudget/web/site"
)

const dashboardTitle = "OT-LinkBudget"

type MainArgs struct {
	ConfigFile  string
	CatalogFile string
	LogLevel    string
	ListenAddr  string
	OpenWeb     bool
	Cli         bool
	HistoryFile string

	// names of the flags given on the command line
	set map[string]bool
}

func parseArgs(arguments []string, output io.Writer) (*MainArgs, error) {
	args := &MainArgs{set: map[string]bool{}}
	fs := flag.NewFlagSet("otlb", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&args.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&args.CatalogFile, "catalog", "", "device catalog: .csv, .yaml or .db (SQLite) file")
	fs.StringVar(&args.LogLevel, "log", config.DefaultLogLevel, "set logging level: debug, info, warn, error.")
	fs.StringVar(&args.ListenAddr, "listen", config.DefaultListenAddr, "web dashboard listen address, empty to disable the web server")
	fs.BoolVar(&args.OpenWeb, "web", false, "open the web dashboard in a browser")
	fs.BoolVar(&args.Cli, "cli", true, "run the interactive console")
	fs.StringVar(&args.HistoryFile, "history", "", "console history file")

	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) {
		args.set[f.Name] = true
	})
	return args, nil
}

// loadConfig reads the configuration file, if any, and applies the command line flags on top.
func loadConfig(args *MainArgs) (*config.File, error) {
	cfg := config.Default()
	if args.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(args.ConfigFile); err != nil {
			return nil, err
		}
	}

	if args.set["catalog"] {
		cfg.Catalog = args.CatalogFile
	}
	if args.set["log"] {
		cfg.Log = args.LogLevel
	}
	if args.set["listen"] {
		cfg.Web.Listen = args.ListenAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Catalog == "" {
		return nil, errors.Errorf("no device catalog: use -catalog, or the catalog key of the configuration file")
	}
	return cfg, nil
}

func Main(ctx *progctx.ProgCtx, cliOptions *runcli.CliOptions) {
	args, err := parseArgs(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		return
	}
	logger.FatalIfError(err)

	cfg, err := loadConfig(args)
	logger.FatalIfError(err)
	level, err := logger.ParseLevelString(cfg.Log)
	logger.FatalIfError(err)
	logger.SetLevel(level)

	cat, err := catalog.LoadFile(cfg.Catalog)
	logger.FatalIfError(err)
	logger.Infof("loaded %d devices from %s", cat.Len(), cfg.Catalog)

	engine, err := linkbudget.NewEngine(cat, cfg.EngineConfig())
	logger.FatalIfError(err)

	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	logger.FatalIfError(err)

	handleSignals(ctx)

	if cfg.Web.Listen != "" {
		startWeb(ctx, cfg.Web.Listen, engine, cat, collector)
		if args.OpenWeb {
			<-webSite.Started
			if err := web.OpenWeb(cfg.Web.Listen); err != nil {
				logger.Warnf("open web failed: %v", err)
			}
		}
	}

	if args.Cli {
		if cliOptions == nil {
			cliOptions = runcli.DefaultCliOptions()
		}
		if args.HistoryFile != "" {
			cliOptions.HistoryFile = args.HistoryFile
		}
		console := runcli.NewConsole(cliOptions)
		logger.SetStdoutCallback(console)
		rt := cli.NewCmdRunner(ctx, engine, cat, cli.RunnerConfig{
			WebAddr:  cfg.Web.Listen,
			LogLevel: cfg.Log,
			Metrics:  collector,
		})
		ctx.Defer(func() {
			// the console may be the one cancelling: do not wait for it here
			go console.Stop()
		})
		ctx.Go("console", func() {
			err := console.Run(rt)
			ctx.Cancel(errors.Wrapf(err, "console exit"))
		})
	}

	<-ctx.Done()
	logger.Debugf("waiting for otlb to stop gracefully ...")
	ctx.Wait()
}

func startWeb(ctx *progctx.ProgCtx, listenAddr string, engine *linkbudget.Engine, cat *catalog.Catalog,
	collector *metrics.Collector) {
	api, err := web.NewApi(engine, cat, collector)
	logger.FatalIfError(err)
	handler, err := webSite.NewHandler(api.Handler(), dashboardTitle)
	logger.FatalIfError(err)

	ctx.Defer(webSite.StopServe)
	ctx.Go("webserver", func() {
		err := webSite.Serve(listenAddr, handler) // blocks until webSite.StopServe() called
		if err != nil && ctx.Err() == nil {
			logger.Errorf("webserver stopped unexpectedly: %+v, the dashboard won't be available!", err)
		}
	})
	logger.Infof("dashboard: %s", web.DashboardUrl(listenAddr))
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)

	ctx.Go("handleSignals", func() {
		defer signal.Stop(c)
		for {
			select {
			case sig := <-c:
				logger.Infof("signal received: %v", sig)
				ctx.Cancel(nil)
			case <-ctx.Done():
				return
			}
		}
	})
}

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

package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-linkbudget/linkbudget"
	"github.com/openthread/ot-linkbudget/logger"
)

const (
	DefaultListenAddr = "localhost:8997"
	DefaultLogLevel   = "warn"
)

type DistanceConfig struct {
	Margin float64 `yaml:"margin"`
	Step   float64 `yaml:"step"`
}

type AntennaConfig struct {
	TxHeight       float64 `yaml:"tx_height"`
	RxHeight       float64 `yaml:"rx_height"`
	SwapOnDownlink bool    `yaml:"swap_on_downlink"`
}

type WebConfig struct {
	Listen string `yaml:"listen"`
}

// File is the YAML configuration file of otlb. Keys that are absent keep their default value.
type File struct {
	Catalog  string         `yaml:"catalog"`
	Distance DistanceConfig `yaml:"distance"`
	Antenna  AntennaConfig  `yaml:"antenna"`
	Web      WebConfig      `yaml:"web"`
	Parallel bool           `yaml:"parallel"`
	Log      string         `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	ec := linkbudget.DefaultConfig()
	return &File{
		Distance: DistanceConfig{
			Margin: ec.DistanceMarginM,
			Step:   ec.DistanceStepM,
		},
		Antenna: AntennaConfig{
			TxHeight:       ec.TxHeightM,
			RxHeight:       ec.RxHeightM,
			SwapOnDownlink: ec.SwapHeightsOnDownlink,
		},
		Web: WebConfig{
			Listen: DefaultListenAddr,
		},
		Parallel: ec.Parallel,
		Log:      DefaultLogLevel,
	}
}

// Parse parses a YAML configuration on top of Default() and validates it.
func Parse(data []byte) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "parse config")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	logger.Infof("loaded config %s", path)
	return f, nil
}

// Validate checks the configuration values.
func (f *File) Validate() error {
	if err := f.EngineConfig().Validate(); err != nil {
		return err
	}
	if _, err := logger.ParseLevelString(f.Log); err != nil {
		return errors.Errorf("invalid log level: %q", f.Log)
	}
	return nil
}

// EngineConfig returns the link budget engine configuration.
func (f *File) EngineConfig() *linkbudget.Config {
	return &linkbudget.Config{
		DistanceMarginM:       f.Distance.Margin,
		DistanceStepM:         f.Distance.Step,
		TxHeightM:             f.Antenna.TxHeight,
		RxHeightM:             f.Antenna.RxHeight,
		SwapHeightsOnDownlink: f.Antenna.SwapOnDownlink,
		Parallel:              f.Parallel,
	}
}

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

package linkbudget

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/openthread/ot-linkbudget/logger"
	"github.com/openthread/ot-linkbudget/radiomodel"
	. "github.com/openthread/ot-linkbudget/types"
)

const (
	DefaultDistanceMarginM = 100.0 // distance axis extends this far beyond the target distance
	DefaultDistanceStepM   = 1.0
	DefaultTargetDistanceM = 100.0
)

// DeviceCatalog is the read-only device table the engine resolves device names in.
type DeviceCatalog interface {
	Get(name string) (Device, bool)
}

// Config stores the engine configuration.
type Config struct {
	DistanceMarginM       float64 // the distance axis is [0, target + margin)
	DistanceStepM         float64 // spacing of the distance axis
	TxHeightM             float64 // default base (transmitter) antenna height for terrain models
	RxHeightM             float64 // default mobile (receiver) antenna height for terrain models
	SwapHeightsOnDownlink bool    // if true, antenna heights follow the devices on the downlink
	Parallel              bool    // if true, models are evaluated concurrently
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DistanceMarginM:       DefaultDistanceMarginM,
		DistanceStepM:         DefaultDistanceStepM,
		TxHeightM:             radiomodel.DefaultTxHeightM,
		RxHeightM:             radiomodel.DefaultRxHeightM,
		SwapHeightsOnDownlink: true,
		Parallel:              false,
	}
}

// Validate checks the configuration values.
func (cfg *Config) Validate() error {
	if math.IsNaN(cfg.DistanceMarginM) || math.IsInf(cfg.DistanceMarginM, 0) || cfg.DistanceMarginM < 0 {
		return NewInvalidParameterError("distance_margin", "%v must be >= 0", cfg.DistanceMarginM)
	}
	if math.IsNaN(cfg.DistanceStepM) || math.IsInf(cfg.DistanceStepM, 0) || cfg.DistanceStepM <= 0 {
		return NewInvalidParameterError("distance_step", "%v must be > 0", cfg.DistanceStepM)
	}
	if !(cfg.TxHeightM > 0) || math.IsInf(cfg.TxHeightM, 0) {
		return NewInvalidParameterError("tx_height", "%v must be > 0", cfg.TxHeightM)
	}
	if !(cfg.RxHeightM > 0) || math.IsInf(cfg.RxHeightM, 0) {
		return NewInvalidParameterError("rx_height", "%v must be > 0", cfg.RxHeightM)
	}
	return nil
}

// Request is the complete input of one link budget calculation.
type Request struct {
	Technology      Technology
	TransmitterName string
	ReceiverName    string
	TargetDistanceM float64
	TxHeightM       *float64 // optional override of the configured default
	RxHeightM       *float64 // optional override of the configured default
}

// Engine computes link budgets. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog  DeviceCatalog
	registry *Registry
	cfg      Config
}

// NewEngine creates an engine that resolves devices in catalog. A nil cfg selects DefaultConfig().
func NewEngine(catalog DeviceCatalog, cfg *Config) (*Engine, error) {
	if catalog == nil {
		return nil, errors.Errorf("device catalog not set")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "engine config")
	}
	return &Engine{
		catalog:  catalog,
		registry: NewRegistry(),
		cfg:      *cfg,
	}, nil
}

// Registry returns the technology registry used by the engine.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) heights(req *Request) (float64, float64, error) {
	txH, rxH := e.cfg.TxHeightM, e.cfg.RxHeightM
	if req.TxHeightM != nil {
		txH = *req.TxHeightM
	}
	if req.RxHeightM != nil {
		rxH = *req.RxHeightM
	}
	if !(txH > 0) || math.IsInf(txH, 0) {
		return 0, 0, NewInvalidParameterError("tx_height", "%v must be > 0", txH)
	}
	if !(rxH > 0) || math.IsInf(rxH, 0) {
		return 0, 0, NewInvalidParameterError("rx_height", "%v must be > 0", rxH)
	}
	return txH, rxH, nil
}

func (e *Engine) device(name string) (Device, error) {
	dev, ok := e.catalog.Get(name)
	if !ok {
		return Device{}, &UnknownDeviceError{Name: name}
	}
	return dev, nil
}

// Calculate computes the link budget for req.
//
// An unsupported technology gives an OutcomeUnsupported response, whatever the device selection.
// A missing transmitter or receiver name gives OutcomeIncomplete. Both are not errors. Errors are
// an UnknownDeviceError for a device not in the catalog, and an InvalidParameterError for an
// unrecognized technology or an out-of-range parameter. All checks are done before any model
// runs, so an error never comes with partial curves.
func (e *Engine) Calculate(req Request) (*Response, error) {
	profile, ok := e.registry.Lookup(req.Technology)
	if ok && !profile.Supported {
		return &Response{
			Outcome: OutcomeUnsupported,
			Message: profile.Label + ": technology is not supported",
		}, nil
	}

	txName, rxName := strings.TrimSpace(req.TransmitterName), strings.TrimSpace(req.ReceiverName)
	if txName == "" || rxName == "" {
		return &Response{
			Outcome: OutcomeIncomplete,
			Message: "select both a transmitter and a receiver device",
		}, nil
	}

	if !ok {
		return nil, NewInvalidParameterError("technology", "unknown technology %q", req.Technology.String())
	}

	transmitter, err := e.device(txName)
	if err != nil {
		return nil, err
	}
	receiver, err := e.device(rxName)
	if err != nil {
		return nil, err
	}

	target := req.TargetDistanceM
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return nil, NewInvalidParameterError("distance", "target distance %v must be > 0", target)
	}

	txH, rxH := 0.0, 0.0
	if profile.NeedsHeights {
		if txH, rxH, err = e.heights(&req); err != nil {
			return nil, err
		}
	}

	distances, err := NewDistanceSeries(target+e.cfg.DistanceMarginM, e.cfg.DistanceStepM)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Technology:      profile.Technology,
		FrequencyMHz:    profile.FrequencyMHz,
		Transmitter:     transmitter,
		Receiver:        receiver,
		TargetDistanceM: target,
		TxHeightM:       txH,
		RxHeightM:       rxH,
		Distances:       distances,
	}

	for _, dir := range AllDirections {
		if err = e.computeDirection(result, &profile, dir); err != nil {
			return nil, err
		}
	}

	logger.Debugf("link budget %s %q -> %q at %v m: %d samples, %d curves", profile.Technology,
		txName, rxName, target, len(distances), len(result.PathLoss)+len(result.Rssi))
	return &Response{Outcome: OutcomeResult, Result: result}, nil
}

func (e *Engine) computeDirection(result *Result, profile *TechnologyProfile, dir Direction) error {
	txH, rxH := result.TxHeightM, result.RxHeightM
	if dir == Downlink && e.cfg.SwapHeightsOnDownlink {
		txH, rxH = rxH, txH
	}

	in := profile.ModelInput(txH, rxH)
	curves, err := radiomodel.ComputeCurves(result.Distances, profile.Models, in, e.cfg.Parallel)
	if err != nil {
		return err
	}

	for i := range curves {
		curves[i].Direction = dir
		rssi, err := ComputeLinkRssi(result.Distances, result.Transmitter, result.Receiver, dir, &curves[i])
		if err != nil {
			return err
		}
		result.PathLoss = append(result.PathLoss, curves[i])
		result.Rssi = append(result.Rssi, rssi)
	}
	return nil
}

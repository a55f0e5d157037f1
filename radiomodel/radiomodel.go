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

package radiomodel

import (
	"math"
	"sync"

	. "github.com/openthread/ot-linkbudget/types"
)

// ShortRangeModelSet is the set of models evaluated for the 2.4 GHz short-range technology.
var ShortRangeModelSet = []ModelId{ModelFreeSpace, ModelItuIndoor}

// SubGhzModelSet is the set of models evaluated for the sub-GHz technology.
var SubGhzModelSet = []ModelId{ModelFreeSpace, ModelItuIndoor, ModelOkumuraHata}

// PathLossCurve is the path loss (dB) of one model, aligned index-for-index with a distance series.
type PathLossCurve struct {
	Model     ModelId   `json:"model" yaml:"model"`
	Direction Direction `json:"direction" yaml:"direction"`
	Samples   []Sample  `json:"values" yaml:"values,flow"`
}

// Len returns the number of samples.
func (c *PathLossCurve) Len() int {
	return len(c.Samples)
}

// ModelInput holds the inputs, other than distance, that the propagation models depend on.
type ModelInput struct {
	FrequencyMHz float64
	TxHeightM    float64 // only used by terrain models
	RxHeightM    float64 // only used by terrain models
	Params       *ModelParams
}

// ValidateDistances checks that distances is a non-empty, strictly increasing series of
// finite values >= 0.
func ValidateDistances(distances []float64) error {
	if len(distances) == 0 {
		return NewInvalidParameterError("distances", "empty series")
	}
	for i, d := range distances {
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return NewInvalidParameterError("distances", "sample %d is %v, must be finite and >= 0", i, d)
		}
		if i > 0 && d <= distances[i-1] {
			return NewInvalidParameterError("distances", "not strictly increasing at sample %d (%v after %v)", i, d, distances[i-1])
		}
	}
	return nil
}

func validatePositive(param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return NewInvalidParameterError(param, "%v must be > 0", v)
	}
	return nil
}

func needsAntennaHeights(models []ModelId) bool {
	for _, m := range models {
		if m == ModelOkumuraHata {
			return true
		}
	}
	return false
}

// Validate checks the model input for the given model set.
func (in *ModelInput) Validate(models []ModelId) error {
	if err := validatePositive("frequency", in.FrequencyMHz); err != nil {
		return err
	}
	if in.Params == nil {
		return NewInvalidParameterError("params", "model parameters not set")
	}
	if needsAntennaHeights(models) {
		if err := validatePositive("tx_height", in.TxHeightM); err != nil {
			return err
		}
		if err := validatePositive("rx_height", in.RxHeightM); err != nil {
			return err
		}
	}
	return nil
}

func (in *ModelInput) lossFunc(model ModelId) func(distM float64) Sample {
	switch model {
	case ModelFreeSpace:
		return func(distM float64) Sample {
			return computeFreeSpacePathLoss(distM, in.FrequencyMHz, in.Params)
		}
	case ModelItuIndoor:
		return func(distM float64) Sample {
			return computeIndoorPathLossItu(distM, in.FrequencyMHz, in.Params)
		}
	case ModelOkumuraHata:
		return func(distM float64) Sample {
			return computeOkumuraHataPathLoss(distM, in.FrequencyMHz, in.TxHeightM, in.RxHeightM)
		}
	default:
		return nil
	}
}

func computeCurve(distances []float64, model ModelId, loss func(float64) Sample) PathLossCurve {
	curve := PathLossCurve{
		Model:   model,
		Samples: make([]Sample, len(distances)),
	}
	for i, d := range distances {
		curve.Samples[i] = loss(d)
	}
	return curve
}

// ComputeCurves computes one path loss curve per model in models, each aligned to distances.
// All parameters are validated before any model runs. If parallel is set, models are evaluated
// concurrently; the results are identical to a sequential run.
func ComputeCurves(distances []float64, models []ModelId, in ModelInput, parallel bool) ([]PathLossCurve, error) {
	if err := ValidateDistances(distances); err != nil {
		return nil, err
	}
	if err := in.Validate(models); err != nil {
		return nil, err
	}

	lossFuncs := make([]func(float64) Sample, len(models))
	for i, m := range models {
		if lossFuncs[i] = in.lossFunc(m); lossFuncs[i] == nil {
			return nil, NewInvalidParameterError("model", "unknown model %d", int(m))
		}
	}

	curves := make([]PathLossCurve, len(models))
	if !parallel {
		for i, m := range models {
			curves[i] = computeCurve(distances, m, lossFuncs[i])
		}
		return curves, nil
	}

	var wg sync.WaitGroup
	wg.Add(len(models))
	for i, m := range models {
		go func(i int, m ModelId) {
			defer wg.Done()
			curves[i] = computeCurve(distances, m, lossFuncs[i])
		}(i, m)
	}
	wg.Wait()
	return curves, nil
}

// ShortRangeModels computes the free-space and ITU indoor path loss curves for the 2.4 GHz
// short-range technology.
func ShortRangeModels(distances []float64, freqMHz float64) ([]PathLossCurve, error) {
	in := ModelInput{
		FrequencyMHz: freqMHz,
		Params:       ShortRangeModelParams(),
	}
	return ComputeCurves(distances, ShortRangeModelSet, in, false)
}

// SubGhzModels computes the free-space, ITU indoor and Okumura-Hata path loss curves for the
// sub-GHz technology.
func SubGhzModels(distances []float64, freqMHz float64, txHeightM float64, rxHeightM float64) ([]PathLossCurve, error) {
	in := ModelInput{
		FrequencyMHz: freqMHz,
		TxHeightM:    txHeightM,
		RxHeightM:    rxHeightM,
		Params:       SubGhzModelParams(),
	}
	return ComputeCurves(distances, SubGhzModelSet, in, false)
}

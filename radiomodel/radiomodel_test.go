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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/openthread/ot-linkbudget/types"
)

func makeDistances(n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = float64(i)
	}
	return d
}

func curveValue(t *testing.T, curves []PathLossCurve, model ModelId, idx int) DbValue {
	for _, c := range curves {
		if c.Model == model {
			v, ok := c.Samples[idx].Get()
			require.True(t, ok, "sample %d of %v is undefined", idx, model)
			return v
		}
	}
	t.Fatalf("model %v not in curves", model)
	return 0
}

func TestFreeSpacePathLoss(t *testing.T) {
	loss, ok := FreeSpacePathLoss(100, ShortRangeFrequencyMHz)
	assert.True(t, ok)
	assert.InDelta(t, 80.20, loss, 0.01)

	loss, ok = FreeSpacePathLoss(100, SubGhzFrequencyMHz)
	assert.True(t, ok)
	assert.InDelta(t, 71.68, loss, 0.01)

	// 1 m, so only the frequency terms remain
	loss, ok = FreeSpacePathLoss(1, ShortRangeFrequencyMHz)
	assert.True(t, ok)
	assert.InDelta(t, 40.20, loss, 0.01)

	_, ok = FreeSpacePathLoss(0, ShortRangeFrequencyMHz)
	assert.False(t, ok)
}

func TestItuIndoorPathLoss(t *testing.T) {
	loss, ok := ItuIndoorPathLoss(100, ShortRangeFrequencyMHz, ShortRangeModelParams())
	assert.True(t, ok)
	assert.InDelta(t, 114.75, loss, 0.01)

	loss, ok = ItuIndoorPathLoss(100, SubGhzFrequencyMHz, SubGhzModelParams())
	assert.True(t, ok)
	assert.InDelta(t, 106.23, loss, 0.01)

	_, ok = ItuIndoorPathLoss(0, SubGhzFrequencyMHz, SubGhzModelParams())
	assert.False(t, ok)
}

func TestOkumuraHataPathLoss(t *testing.T) {
	assert.InDelta(t, 3.5971, okumuraHataMobileCorrection(SubGhzFrequencyMHz, DefaultRxHeightM), 0.001)

	loss, ok := OkumuraHataPathLoss(100, SubGhzFrequencyMHz, DefaultTxHeightM, DefaultRxHeightM)
	assert.True(t, ok)
	assert.InDelta(t, 98.52, loss, 0.05)

	// heights swapped, as used for the downlink direction
	loss, ok = OkumuraHataPathLoss(100, SubGhzFrequencyMHz, DefaultRxHeightM, DefaultTxHeightM)
	assert.True(t, ok)
	assert.InDelta(t, 100.02, loss, 0.05)

	// at 1 km the distance term vanishes
	loss1km, ok := OkumuraHataPathLoss(1000, SubGhzFrequencyMHz, DefaultTxHeightM, DefaultRxHeightM)
	assert.True(t, ok)
	assert.InDelta(t, 98.52+44.9, loss1km, 0.05)

	_, ok = OkumuraHataPathLoss(0, SubGhzFrequencyMHz, DefaultTxHeightM, DefaultRxHeightM)
	assert.False(t, ok)
}

func TestShortRangeModels(t *testing.T) {
	distances := makeDistances(200)
	curves, err := ShortRangeModels(distances, ShortRangeFrequencyMHz)
	require.Nil(t, err)
	require.Equal(t, 2, len(curves))
	assert.Equal(t, ModelFreeSpace, curves[0].Model)
	assert.Equal(t, ModelItuIndoor, curves[1].Model)

	for _, c := range curves {
		assert.Equal(t, len(distances), c.Len())
		assert.False(t, c.Samples[0].Defined, "distance 0 must be undefined for %v", c.Model)
		assert.Equal(t, UndefinedSample(), c.Samples[0])
	}
	assert.InDelta(t, 80.20, curveValue(t, curves, ModelFreeSpace, 100), 0.01)
	assert.InDelta(t, 114.75, curveValue(t, curves, ModelItuIndoor, 100), 0.01)
}

func TestSubGhzModels(t *testing.T) {
	distances := makeDistances(200)
	curves, err := SubGhzModels(distances, SubGhzFrequencyMHz, DefaultTxHeightM, DefaultRxHeightM)
	require.Nil(t, err)
	require.Equal(t, 3, len(curves))
	assert.Equal(t, ModelOkumuraHata, curves[2].Model)

	for _, c := range curves {
		assert.Equal(t, len(distances), c.Len())
		assert.False(t, c.Samples[0].Defined)
	}
	assert.InDelta(t, 71.68, curveValue(t, curves, ModelFreeSpace, 100), 0.01)
	assert.InDelta(t, 106.23, curveValue(t, curves, ModelItuIndoor, 100), 0.01)
	assert.InDelta(t, 98.52, curveValue(t, curves, ModelOkumuraHata, 100), 0.05)
}

func TestPathLossMonotonic(t *testing.T) {
	distances := makeDistances(500)
	curves, err := SubGhzModels(distances, SubGhzFrequencyMHz, DefaultTxHeightM, DefaultRxHeightM)
	require.Nil(t, err)
	short, err := ShortRangeModels(distances, ShortRangeFrequencyMHz)
	require.Nil(t, err)
	curves = append(curves, short...)

	for _, c := range curves {
		for i := 2; i < len(distances); i++ {
			assert.Greater(t, c.Samples[i].Value, c.Samples[i-1].Value, "%v not increasing at %v m", c.Model, distances[i])
		}
	}
}

func TestComputeCurvesParallel(t *testing.T) {
	distances := makeDistances(300)
	in := ModelInput{
		FrequencyMHz: SubGhzFrequencyMHz,
		TxHeightM:    DefaultTxHeightM,
		RxHeightM:    DefaultRxHeightM,
		Params:       SubGhzModelParams(),
	}
	seq, err := ComputeCurves(distances, SubGhzModelSet, in, false)
	require.Nil(t, err)
	par, err := ComputeCurves(distances, SubGhzModelSet, in, true)
	require.Nil(t, err)
	assert.Equal(t, seq, par)
}

func TestValidateDistances(t *testing.T) {
	assert.Nil(t, ValidateDistances([]float64{0, 1, 2.5}))
	assert.Nil(t, ValidateDistances([]float64{5}))

	for _, bad := range [][]float64{nil, {}, {1, 1}, {2, 1}, {-1, 0}} {
		err := ValidateDistances(bad)
		var ipe *InvalidParameterError
		require.True(t, errors.As(err, &ipe), "expected InvalidParameterError for %v", bad)
		assert.Equal(t, "distances", ipe.Param)
	}
}

func TestInvalidModelInput(t *testing.T) {
	distances := makeDistances(10)

	_, err := ShortRangeModels(distances, 0)
	var ipe *InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "frequency", ipe.Param)

	_, err = SubGhzModels(distances, SubGhzFrequencyMHz, 0, DefaultRxHeightM)
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "tx_height", ipe.Param)

	_, err = SubGhzModels(distances, SubGhzFrequencyMHz, DefaultTxHeightM, -2)
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "rx_height", ipe.Param)

	// heights are not needed by the short range models
	in := ModelInput{FrequencyMHz: ShortRangeFrequencyMHz, Params: ShortRangeModelParams()}
	_, err = ComputeCurves(distances, ShortRangeModelSet, in, false)
	assert.Nil(t, err)
}

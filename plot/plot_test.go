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

package plot

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"github.com/openthread/ot-linkbudget/linkbudget"
	. "github.com/openthread/ot-linkbudget/types"
)

type testCatalog map[string]Device

func (c testCatalog) Get(name string) (Device, bool) {
	d, ok := c[name]
	return d, ok
}

func testResult(t *testing.T, tech Technology) *linkbudget.Result {
	e, err := linkbudget.NewEngine(testCatalog{
		"A": {Name: "A", TxPowerDbm: 10, AntennaEfficiencyDb: 2, RxSensitivityDbm: -95},
		"B": {Name: "B", TxPowerDbm: 4, AntennaEfficiencyDb: 1, RxSensitivityDbm: -100},
	}, nil)
	require.NoError(t, err)
	resp, err := e.Calculate(linkbudget.Request{Technology: tech, TransmitterName: "A", ReceiverName: "B", TargetDistanceM: 100})
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	return resp.Result
}

func newTestRenderer(t *testing.T) *Renderer {
	r, err := NewRenderer(DefaultWidth, DefaultHeight)
	require.NoError(t, err)
	return r
}

func TestParseKind(t *testing.T) {
	for s, k := range map[string]Kind{"": KindPathLoss, "pathloss": KindPathLoss, "UP": KindUplink, "downlink": KindDownlink} {
		kind, ok := ParseKind(s)
		assert.True(t, ok, s)
		assert.Equal(t, k, kind, s)
	}
	_, ok := ParseKind("sideways")
	assert.False(t, ok)
}

func TestResultChart(t *testing.T) {
	r := testResult(t, TechSubGhz)

	c := ResultChart(r, KindPathLoss)
	assert.Len(t, c.Series, 6)
	assert.Nil(t, c.Sensitivity)
	require.NotNil(t, c.TargetX)
	assert.Equal(t, 100.0, *c.TargetX)
	assert.Contains(t, c.Title, "915 MHz")

	c = ResultChart(r, KindDownlink)
	assert.Len(t, c.Series, 3)
	require.NotNil(t, c.Sensitivity)
	// A receives on the downlink
	assert.Equal(t, -95.0, *c.Sensitivity)
	assert.Equal(t, "A sensitivity", c.SensitivityLabel)
}

func TestRender(t *testing.T) {
	renderer := newTestRenderer(t)
	r := testResult(t, TechShortRange)

	for _, kind := range []Kind{KindPathLoss, KindUplink, KindDownlink} {
		var buf bytes.Buffer
		require.NoError(t, renderer.Render(&buf, ResultChart(r, kind)), kind.String())

		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, DefaultWidth, img.Bounds().Dx())
		assert.Equal(t, DefaultHeight, img.Bounds().Dy())
	}
}

func TestSplitRuns(t *testing.T) {
	s := Series{
		Name: "s",
		X:    []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		Y: []Sample{UndefinedSample(), DefinedSample(1), DefinedSample(2), UndefinedSample(), DefinedSample(4),
			UndefinedSample(), DefinedSample(6), DefinedSample(7), DefinedSample(math.NaN()), DefinedSample(9)},
	}
	runs := splitRuns(&s)
	assert.Equal(t, []plotter.XYs{
		{{X: 1, Y: 1}, {X: 2, Y: 2}},
		{{X: 4, Y: 4}},
		{{X: 6, Y: 6}, {X: 7, Y: 7}},
		{{X: 9, Y: 9}},
	}, runs)

	assert.Empty(t, splitRuns(&Series{X: []float64{0}, Y: []Sample{UndefinedSample()}}))
}

func TestChartPlotters(t *testing.T) {
	target := 5.0
	sensitivity := -3.0
	chart := &Chart{
		Title: "gaps",
		Series: []Series{{
			Name: "s",
			X:    []float64{0, 1, 2, 3, 4, 5, 6},
			Y: []Sample{UndefinedSample(), DefinedSample(1), DefinedSample(2), UndefinedSample(),
				DefinedSample(4), DefinedSample(5), DefinedSample(6)},
		}},
		TargetX:          &target,
		Sensitivity:      &sensitivity,
		SensitivityLabel: "sensitivity",
	}
	xr, yr, err := chartRanges(chart)
	require.NoError(t, err)
	assert.Equal(t, 0.0, xr.min)
	assert.Equal(t, 6.0, xr.max)
	// the padded y axis holds the sensitivity line and all samples
	assert.Less(t, yr.min, -3.0)
	assert.Greater(t, yr.max, 6.0)

	plotters, legend, err := chartPlotters(chart, xr, yr)
	require.NoError(t, err)
	// two runs of the series, the sensitivity line and the target marker
	require.Len(t, plotters, 4)
	marker, ok := plotters[3].(*plotter.Line)
	require.True(t, ok)
	assert.Equal(t, plotter.XYs{{X: 5, Y: yr.min}, {X: 5, Y: yr.max}}, marker.XYs)
	assert.NotEmpty(t, marker.LineStyle.Dashes)

	// one legend entry per series, not per run
	require.Len(t, legend, 3)
	assert.Equal(t, "s", legend[0].name)
	assert.Equal(t, "sensitivity", legend[1].name)
	assert.Equal(t, "target 5 m", legend[2].name)

	require.NoError(t, registerFont())
	p, err := newPlot(chart)
	require.NoError(t, err)
	assert.Equal(t, "gaps", p.Title.Text)
	assert.Equal(t, xr.max, p.X.Max)
}

func TestDistanceTicks(t *testing.T) {
	labels := 0
	for _, tk := range distanceTicks(0, 1500) {
		if tk.Label != "" {
			assert.True(t, strings.HasSuffix(tk.Label, "m"), tk.Label)
			labels++
		}
	}
	assert.Greater(t, labels, 1)
}

func TestDrawErrors(t *testing.T) {
	renderer := newTestRenderer(t)

	_, err := renderer.Draw(&Chart{})
	assert.Equal(t, ErrNoData, err)
	_, err = renderer.Draw(&Chart{Series: []Series{{X: []float64{0, 1}, Y: []Sample{UndefinedSample()}}}})
	assert.Error(t, err)
	_, err = renderer.Draw(&Chart{Series: []Series{{X: []float64{0}, Y: []Sample{UndefinedSample()}}}})
	assert.Equal(t, ErrNoData, err)

	_, err = NewRenderer(10, 10)
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "100 m", formatDistance(100))
	assert.Equal(t, "1.5 km", formatDistance(1500))
	assert.Equal(t, "2.44 GHz", formatFrequency(2440))
}

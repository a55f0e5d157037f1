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
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	. "github.com/openthread/ot-linkbudget/types"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 540

	minWidth  = 200
	minHeight = 150

	fontTypeface font.Typeface = "Go"
)

// ErrNoData is returned when a chart has no defined sample to draw.
var ErrNoData = errors.New("chart has no data")

var (
	markerColor    = color.RGBA{0x60, 0x60, 0x60, 0xff}
	sensitivityCol = color.RGBA{0xd6, 0x27, 0x28, 0xff}

	seriesColors = []color.RGBA{
		{0x1f, 0x77, 0xb4, 0xff},
		{0xff, 0x7f, 0x0e, 0xff},
		{0x2c, 0xa0, 0x2c, 0xff},
		{0x94, 0x67, 0xbd, 0xff},
		{0x8c, 0x56, 0x4b, 0xff},
		{0xe3, 0x77, 0xc2, 0xff},
	}

	fontOnce sync.Once
	fontErr  error
)

// Series is one named curve. X and Y are aligned; undefined samples leave a gap in the line.
type Series struct {
	Name string
	X    []float64
	Y    []Sample
}

// Chart describes what to draw.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series

	TargetX          *float64 // dashed vertical marker
	Sensitivity      *float64 // horizontal line
	SensitivityLabel string
}

// Renderer draws charts as PNG images. It is safe for concurrent use.
type Renderer struct {
	Width  int
	Height int
}

// registerFont makes the Go regular font the default font of all plots.
func registerFont() error {
	fontOnce.Do(func() {
		face, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = errors.Wrapf(err, "parsing font")
			return
		}
		fnt := font.Font{Typeface: fontTypeface}
		font.DefaultCache.Add(font.Collection{{Font: fnt, Face: face}})
		plot.DefaultFont = fnt
	})
	return fontErr
}

// NewRenderer creates a renderer for images of the given size.
func NewRenderer(width, height int) (*Renderer, error) {
	if width < minWidth || height < minHeight {
		return nil, errors.Errorf("image size %dx%d too small", width, height)
	}
	if err := registerFont(); err != nil {
		return nil, err
	}
	return &Renderer{
		Width:  width,
		Height: height,
	}, nil
}

// Render draws chart and writes it to w as PNG.
func (r *Renderer) Render(w io.Writer, chart *Chart) error {
	canvas, err := r.draw(chart)
	if err != nil {
		return err
	}
	_, err = vgimg.PngCanvas{Canvas: canvas}.WriteTo(w)
	return errors.Wrapf(err, "encoding png")
}

// Draw draws chart into a new image.
func (r *Renderer) Draw(chart *Chart) (image.Image, error) {
	canvas, err := r.draw(chart)
	if err != nil {
		return nil, err
	}
	return canvas.Image(), nil
}

func (r *Renderer) draw(chart *Chart) (*vgimg.Canvas, error) {
	p, err := newPlot(chart)
	if err != nil {
		return nil, err
	}
	canvas := vgimg.New(vg.Points(float64(r.Width)), vg.Points(float64(r.Height)))
	p.Draw(draw.New(canvas))
	return canvas, nil
}

type axisRange struct {
	min, max float64
}

func (ar *axisRange) include(v float64) {
	ar.min = math.Min(ar.min, v)
	ar.max = math.Max(ar.max, v)
}

func (ar *axisRange) span() float64 {
	return ar.max - ar.min
}

func chartRanges(chart *Chart) (axisRange, axisRange, error) {
	xr := axisRange{math.Inf(1), math.Inf(-1)}
	yr := axisRange{math.Inf(1), math.Inf(-1)}
	points := 0
	for _, s := range chart.Series {
		if len(s.X) != len(s.Y) {
			return xr, yr, &MisalignedSeriesError{Expected: len(s.X), Got: len(s.Y)}
		}
		for i, y := range s.Y {
			if !drawable(y) {
				continue
			}
			xr.include(s.X[i])
			yr.include(y.Value)
			points++
		}
	}
	if points == 0 {
		return xr, yr, ErrNoData
	}

	xr.min = math.Min(xr.min, 0)
	if chart.TargetX != nil {
		xr.include(*chart.TargetX)
	}
	if chart.Sensitivity != nil {
		yr.include(*chart.Sensitivity)
	}

	pad := yr.span() * 0.05
	if pad == 0 {
		pad = 1
	}
	yr.min -= pad
	yr.max += pad
	if xr.span() == 0 {
		xr.max = xr.min + 1
	}
	return xr, yr, nil
}

func drawable(s Sample) bool {
	return s.Defined && !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
}

// splitRuns splits a series at its undefined samples into runs of consecutive defined points.
func splitRuns(s *Series) []plotter.XYs {
	var runs []plotter.XYs
	var run plotter.XYs
	for i, y := range s.Y {
		if !drawable(y) {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		run = append(run, plotter.XY{X: s.X[i], Y: y.Value})
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

type legendEntry struct {
	name  string
	thumb plot.Thumbnailer
}

// chartPlotters builds the plotters of chart within the axis ranges xr and yr, in drawing order.
func chartPlotters(chart *Chart, xr, yr axisRange) ([]plot.Plotter, []legendEntry, error) {
	var plotters []plot.Plotter
	var legend []legendEntry

	for i, s := range chart.Series {
		clr := seriesColors[i%len(seriesColors)]
		var thumb plot.Thumbnailer
		for _, run := range splitRuns(&chart.Series[i]) {
			if len(run) == 1 {
				// a lone point between gaps
				scatter, err := plotter.NewScatter(run)
				if err != nil {
					return nil, nil, errors.Wrapf(err, "series %q", s.Name)
				}
				scatter.GlyphStyle.Color = clr
				scatter.GlyphStyle.Radius = vg.Points(1.5)
				plotters = append(plotters, scatter)
				continue
			}
			line, err := plotter.NewLine(run)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "series %q", s.Name)
			}
			line.LineStyle.Color = clr
			line.LineStyle.Width = vg.Points(1.5)
			plotters = append(plotters, line)
			if thumb == nil {
				thumb = line
			}
		}
		if thumb != nil {
			legend = append(legend, legendEntry{s.Name, thumb})
		}
	}

	if chart.Sensitivity != nil {
		line, err := plotter.NewLine(plotter.XYs{{X: xr.min, Y: *chart.Sensitivity}, {X: xr.max, Y: *chart.Sensitivity}})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "sensitivity")
		}
		line.LineStyle.Color = sensitivityCol
		plotters = append(plotters, line)
		if chart.SensitivityLabel != "" {
			legend = append(legend, legendEntry{chart.SensitivityLabel, line})
		}
	}
	if chart.TargetX != nil {
		line, err := plotter.NewLine(plotter.XYs{{X: *chart.TargetX, Y: yr.min}, {X: *chart.TargetX, Y: yr.max}})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "target")
		}
		line.LineStyle.Color = markerColor
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		plotters = append(plotters, line)
		legend = append(legend, legendEntry{"target " + formatDistance(*chart.TargetX), line})
	}
	return plotters, legend, nil
}

func newPlot(chart *Chart) (*plot.Plot, error) {
	xr, yr, err := chartRanges(chart)
	if err != nil {
		return nil, err
	}
	plotters, legend, err := chartPlotters(chart, xr, yr)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel
	p.X.Tick.Marker = plot.TickerFunc(distanceTicks)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	p.Add(plotters...)
	for _, e := range legend {
		p.Legend.Add(e.name, e.thumb)
	}

	p.X.Min, p.X.Max = xr.min, xr.max
	p.Y.Min, p.Y.Max = yr.min, yr.max
	return p, nil
}

// distanceTicks labels the default ticks with SI distances.
func distanceTicks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatDistance(ticks[i].Value)
		}
	}
	return ticks
}

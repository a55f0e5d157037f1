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
	"fmt"

	"github.com/openthread/ot-linkbudget/radiomodel"
	. "github.com/openthread/ot-linkbudget/types"
)

// Outcome is the kind of response of a link budget calculation.
type Outcome int

const (
	// OutcomeResult: curves were computed.
	OutcomeResult Outcome = iota
	// OutcomeUnsupported: the technology is recognized but not implemented. Not an error.
	OutcomeUnsupported
	// OutcomeIncomplete: transmitter or receiver not selected yet. Not an error.
	OutcomeIncomplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResult:
		return "result"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Response is the answer to one Request: either a Result, or an Unsupported/Incomplete marker.
type Response struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
	Result  *Result `json:"result,omitempty" yaml:"result,omitempty"`
}

// Result aggregates all path loss and RSSI curves for one technology, transmitter, receiver and
// target distance. All curves are aligned to Distances.
type Result struct {
	Technology      Technology                 `json:"technology" yaml:"technology"`
	FrequencyMHz    float64                    `json:"frequency_mhz" yaml:"frequency_mhz"`
	Transmitter     Device                     `json:"transmitter" yaml:"transmitter"`
	Receiver        Device                     `json:"receiver" yaml:"receiver"`
	TargetDistanceM float64                    `json:"target_distance_m" yaml:"target_distance_m"`
	TxHeightM       float64                    `json:"tx_height_m,omitempty" yaml:"tx_height_m,omitempty"`
	RxHeightM       float64                    `json:"rx_height_m,omitempty" yaml:"rx_height_m,omitempty"`
	Distances       DistanceSeries             `json:"distances" yaml:"distances,flow"`
	PathLoss        []radiomodel.PathLossCurve `json:"path_loss" yaml:"path_loss"`
	Rssi            []RssiCurve                `json:"rssi" yaml:"rssi"`
}

// CurveKey names a curve by model and direction, e.g. "fspl_uplink".
func CurveKey(model ModelId, dir Direction) string {
	return fmt.Sprintf("%s_%s", model, dir)
}

// PathLossCurve returns the path loss curve of the given model and direction.
func (r *Result) PathLossCurve(model ModelId, dir Direction) (*radiomodel.PathLossCurve, bool) {
	for i := range r.PathLoss {
		if r.PathLoss[i].Model == model && r.PathLoss[i].Direction == dir {
			return &r.PathLoss[i], true
		}
	}
	return nil, false
}

// RssiCurve returns the RSSI curve of the given model and direction.
func (r *Result) RssiCurve(model ModelId, dir Direction) (*RssiCurve, bool) {
	for i := range r.Rssi {
		if r.Rssi[i].Model == model && r.Rssi[i].Direction == dir {
			return &r.Rssi[i], true
		}
	}
	return nil, false
}

// Devices returns the transmitter and receiver records, for tabular display.
func (r *Result) Devices() []Device {
	return []Device{r.Transmitter, r.Receiver}
}

// Row is the record of all curves at one distance.
type Row struct {
	Distance float64           `json:"distance" yaml:"distance"`
	PathLoss map[string]Sample `json:"path_loss" yaml:"path_loss,flow"`
	Rssi     map[string]Sample `json:"rssi" yaml:"rssi,flow"`
}

// Rows returns one record per distance sample, with curves keyed by CurveKey.
func (r *Result) Rows() []Row {
	rows := make([]Row, len(r.Distances))
	for i, d := range r.Distances {
		row := Row{
			Distance: d,
			PathLoss: make(map[string]Sample, len(r.PathLoss)),
			Rssi:     make(map[string]Sample, len(r.Rssi)),
		}
		for _, c := range r.PathLoss {
			row.PathLoss[CurveKey(c.Model, c.Direction)] = c.Samples[i]
		}
		for _, c := range r.Rssi {
			row.Rssi[CurveKey(c.Model, c.Direction)] = c.Samples[i]
		}
		rows[i] = row
	}
	return rows
}

// Point is one (distance, value) pair of a Series.
type Point struct {
	Distance float64 `json:"x" yaml:"x"`
	Value    DbValue `json:"y" yaml:"y"`
}

// Series is a named curve as (distance, value) pairs, for charting. Undefined samples are skipped.
type Series struct {
	Name      string    `json:"name" yaml:"name"`
	Model     ModelId   `json:"model" yaml:"model"`
	Direction Direction `json:"direction" yaml:"direction"`
	Points    []Point   `json:"points" yaml:"points"`
}

func newSeries(distances DistanceSeries, model ModelId, dir Direction, samples []Sample) Series {
	s := Series{
		Name:      CurveKey(model, dir),
		Model:     model,
		Direction: dir,
		Points:    make([]Point, 0, len(samples)),
	}
	for i, smp := range samples {
		if smp.Defined {
			s.Points = append(s.Points, Point{Distance: distances[i], Value: smp.Value})
		}
	}
	return s
}

// PathLossSeries returns the path loss curves of both directions as series.
func (r *Result) PathLossSeries() []Series {
	series := make([]Series, 0, len(r.PathLoss))
	for _, c := range r.PathLoss {
		series = append(series, newSeries(r.Distances, c.Model, c.Direction, c.Samples))
	}
	return series
}

// RssiSeries returns the RSSI curves of direction dir as series.
func (r *Result) RssiSeries(dir Direction) []Series {
	series := make([]Series, 0, len(r.Rssi))
	for _, c := range r.Rssi {
		if c.Direction == dir {
			series = append(series, newSeries(r.Distances, c.Model, c.Direction, c.Samples))
		}
	}
	return series
}

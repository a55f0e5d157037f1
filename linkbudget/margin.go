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
	"github.com/wiless/vlib"

	. "github.com/openthread/ot-linkbudget/types"
)

// GoodMarginDb is the fade margin above which a link is considered good.
const GoodMarginDb = 10.0

// LinkQuality classifies the fade margin of a link at the target distance.
type LinkQuality int

const (
	QualityUnknown LinkQuality = iota
	QualityBad                 // RSSI below receiver sensitivity
	QualityFair                // margin in [0, GoodMarginDb)
	QualityGood
)

func (q LinkQuality) String() string {
	switch q {
	case QualityBad:
		return "bad"
	case QualityFair:
		return "fair"
	case QualityGood:
		return "good"
	default:
		return "unknown"
	}
}

func (q LinkQuality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func classifyMargin(margin Sample) LinkQuality {
	switch {
	case !margin.Defined:
		return QualityUnknown
	case margin.Value >= GoodMarginDb:
		return QualityGood
	case margin.Value >= 0:
		return QualityFair
	default:
		return QualityBad
	}
}

// Margin returns rssi minus the receiver sensitivity at every sample.
func Margin(rssi *RssiCurve, sensitivityDbm DbValue) []Sample {
	margin := make([]Sample, len(rssi.Samples))
	for i, s := range rssi.Samples {
		if s.Defined {
			margin[i] = DefinedSample(s.Value - sensitivityDbm)
		}
	}
	return margin
}

// LinkSummary is the link budget of one curve at the target distance.
type LinkSummary struct {
	Model          ModelId     `json:"model" yaml:"model"`
	Direction      Direction   `json:"direction" yaml:"direction"`
	DistanceM      float64     `json:"distance_m" yaml:"distance_m"`
	PathLossDb     Sample      `json:"path_loss_db" yaml:"path_loss_db"`
	RssiDbm        Sample      `json:"rssi_dbm" yaml:"rssi_dbm"`
	SensitivityDbm DbValue     `json:"sensitivity_dbm" yaml:"sensitivity_dbm"`
	MarginDb       Sample      `json:"margin_db" yaml:"margin_db"`
	MarginRatio    Sample      `json:"margin_ratio" yaml:"margin_ratio"`
	Quality        LinkQuality `json:"quality" yaml:"quality"`
	MaxRangeM      *float64    `json:"max_range_m" yaml:"max_range_m"` // nil if never in range
}

// sensitivity returns the sensitivity of the device receiving in direction dir.
func (r *Result) sensitivity(dir Direction) DbValue {
	_, rx := linkRoles(r.Transmitter, r.Receiver, dir)
	return rx.RxSensitivityDbm
}

// maxRange returns the largest distance at which the margin is >= 0.
func maxRange(distances DistanceSeries, margin []Sample) *float64 {
	for i := len(margin) - 1; i >= 0; i-- {
		if margin[i].Defined && margin[i].Value >= 0 {
			d := distances[i]
			return &d
		}
	}
	return nil
}

// Summary evaluates every RSSI curve at the target distance, in the order of r.Rssi.
func (r *Result) Summary() []LinkSummary {
	idx := r.Distances.IndexAt(r.TargetDistanceM)
	summaries := make([]LinkSummary, 0, len(r.Rssi))
	for i := range r.Rssi {
		rssi := &r.Rssi[i]
		sens := r.sensitivity(rssi.Direction)
		margin := Margin(rssi, sens)

		s := LinkSummary{
			Model:          rssi.Model,
			Direction:      rssi.Direction,
			SensitivityDbm: sens,
			MaxRangeM:      maxRange(r.Distances, margin),
		}
		if idx >= 0 {
			s.DistanceM = r.Distances[idx]
			s.RssiDbm = rssi.Samples[idx]
			s.MarginDb = margin[idx]
			if pl, ok := r.PathLossCurve(rssi.Model, rssi.Direction); ok {
				s.PathLossDb = pl.Samples[idx]
			}
		}
		if s.MarginDb.Defined {
			s.MarginRatio = DefinedSample(vlib.InvDb(s.MarginDb.Value))
		}
		s.Quality = classifyMargin(s.MarginDb)
		summaries = append(summaries, s)
	}
	return summaries
}

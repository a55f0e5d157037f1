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
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/openthread/ot-linkbudget/linkbudget"
	. "github.com/openthread/ot-linkbudget/types"
)

// Kind selects which curves of a result are charted.
type Kind int

const (
	KindPathLoss Kind = iota
	KindUplink
	KindDownlink
)

func (k Kind) String() string {
	switch k {
	case KindUplink:
		return "uplink"
	case KindDownlink:
		return "downlink"
	default:
		return "pathloss"
	}
}

// ParseKind parses "pathloss", "uplink" or "downlink". The empty string selects KindPathLoss.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "", "pathloss", "path_loss", "loss":
		return KindPathLoss, true
	case "uplink", "up":
		return KindUplink, true
	case "downlink", "down":
		return KindDownlink, true
	}
	return KindPathLoss, false
}

func formatDistance(m float64) string {
	return humanize.SIWithDigits(m, 1, "m")
}

func formatFrequency(mhz float64) string {
	return humanize.SIWithDigits(mhz*1e6, 2, "Hz")
}

func seriesName(model ModelId, dir Direction) string {
	return fmt.Sprintf("%s (%s)", model.Title(), dir)
}

// ResultChart builds the chart of the path loss or RSSI curves of r.
func ResultChart(r *linkbudget.Result, kind Kind) *Chart {
	target := r.TargetDistanceM
	chart := &Chart{
		XLabel:  "Distance (m)",
		TargetX: &target,
	}

	switch kind {
	case KindPathLoss:
		chart.Title = fmt.Sprintf("Path loss, %s at %s", r.Technology, formatFrequency(r.FrequencyMHz))
		chart.YLabel = "Path loss (dB)"
		for _, c := range r.PathLoss {
			chart.Series = append(chart.Series, Series{Name: seriesName(c.Model, c.Direction), X: r.Distances, Y: c.Samples})
		}
	default:
		dir := Uplink
		tx, rx := r.Transmitter, r.Receiver
		if kind == KindDownlink {
			dir = Downlink
			tx, rx = rx, tx
		}
		chart.Title = fmt.Sprintf("RSSI %s, %s to %s at %s", dir, tx.Name, rx.Name, formatFrequency(r.FrequencyMHz))
		chart.YLabel = "RSSI (dBm)"
		for _, c := range r.Rssi {
			if c.Direction == dir {
				chart.Series = append(chart.Series, Series{Name: seriesName(c.Model, c.Direction), X: r.Distances, Y: c.Samples})
			}
		}
		sensitivity := rx.RxSensitivityDbm
		chart.Sensitivity = &sensitivity
		chart.SensitivityLabel = fmt.Sprintf("%s sensitivity", rx.Name)
	}
	return chart
}

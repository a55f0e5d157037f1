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
	"github.com/openthread/ot-linkbudget/radiomodel"
	. "github.com/openthread/ot-linkbudget/types"
)

// RssiCurve is the received signal strength (dBm) derived from one path loss curve, aligned
// index-for-index with the distance series of that curve.
type RssiCurve struct {
	Model     ModelId   `json:"model" yaml:"model"`
	Direction Direction `json:"direction" yaml:"direction"`
	Samples   []Sample  `json:"values" yaml:"values,flow"`
}

// Len returns the number of samples.
func (c *RssiCurve) Len() int {
	return len(c.Samples)
}

// ComputeRssi converts a path loss curve into an RSSI curve for one link direction:
//
//	rssi(d) = txPowerDbm + txAntennaEffDb + rxAntennaEffDb - pathLoss(d)
//
// The caller decides the direction by choosing which device supplies the tx parameters.
// Undefined path loss samples give undefined RSSI samples.
func ComputeRssi(distances []float64, txPowerDbm DbValue, txAntennaEffDb DbValue, rxAntennaEffDb DbValue,
	pathLoss *radiomodel.PathLossCurve) (RssiCurve, error) {
	if len(pathLoss.Samples) != len(distances) {
		return RssiCurve{}, &MisalignedSeriesError{Expected: len(distances), Got: len(pathLoss.Samples)}
	}

	gain := txPowerDbm + txAntennaEffDb + rxAntennaEffDb
	curve := RssiCurve{
		Model:     pathLoss.Model,
		Direction: pathLoss.Direction,
		Samples:   make([]Sample, len(pathLoss.Samples)),
	}
	for i, pl := range pathLoss.Samples {
		if pl.Defined {
			curve.Samples[i] = DefinedSample(gain - pl.Value)
		} else {
			curve.Samples[i] = UndefinedSample()
		}
	}
	return curve, nil
}

// linkRoles returns the (transmitting, receiving) devices for the given direction.
func linkRoles(transmitter Device, receiver Device, dir Direction) (Device, Device) {
	if dir == Downlink {
		return receiver, transmitter
	}
	return transmitter, receiver
}

// ComputeLinkRssi computes the RSSI curve of pathLoss for the given direction between the selected
// transmitter and receiver devices.
func ComputeLinkRssi(distances []float64, transmitter Device, receiver Device, dir Direction,
	pathLoss *radiomodel.PathLossCurve) (RssiCurve, error) {
	tx, rx := linkRoles(transmitter, receiver, dir)
	curve, err := ComputeRssi(distances, tx.TxPowerDbm, tx.AntennaEfficiencyDb, rx.AntennaEfficiencyDb, pathLoss)
	curve.Direction = dir
	return curve, err
}

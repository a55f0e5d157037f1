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

	. "github.com/openthread/ot-linkbudget/types"
)

// default carrier frequencies and antenna heights
const (
	ShortRangeFrequencyMHz float64 = 2440.0 // BLE, center of the 2.4 GHz band
	SubGhzFrequencyMHz     float64 = 915.0  // US ISM sub-GHz band
	DefaultTxHeightM       float64 = 1.0    // base (transmitter) antenna height for terrain models
	DefaultRxHeightM       float64 = 2.9    // mobile (receiver) antenna height for terrain models
)

// ModelParams stores the technology-specific parameters of the propagation models.
type ModelParams struct {
	Name                string
	ItuPowerLossCoeffDb DbValue // N, the distance power loss coefficient of the ITU indoor model
	ItuFloorLossDb      DbValue // Lf(n) for n = 0 floors, the floor penetration term of the ITU indoor model
	ItuFixedLossDb      DbValue // constant term of the ITU indoor model
	FsplConstantDb      DbValue // constant term of free-space path loss, for d in m and f in MHz
}

// newModelParams gets a new set of parameters with the common values, as a basis to configure further.
func newModelParams(name string) *ModelParams {
	return &ModelParams{
		Name:                name,
		ItuPowerLossCoeffDb: math.NaN(),
		ItuFloorLossDb:      math.NaN(),
		ItuFixedLossDb:      -28.0,
		FsplConstantDb:      -27.55,
	}
}

// ITU-R P.1238 parameters for the 2.4 GHz band, no floors crossed.
func setShortRangeModelParams(params *ModelParams) {
	params.ItuPowerLossCoeffDb = 30.0
	params.ItuFloorLossDb = 15.0
}

// ITU-R P.1238 parameters for the 900 MHz band, no floors crossed.
func setSubGhzModelParams(params *ModelParams) {
	params.ItuPowerLossCoeffDb = 33.0
	params.ItuFloorLossDb = 9.0
}

// ShortRangeModelParams returns the model parameters for the 2.4 GHz short-range technology.
func ShortRangeModelParams() *ModelParams {
	p := newModelParams("ble")
	setShortRangeModelParams(p)
	return p
}

// SubGhzModelParams returns the model parameters for the sub-GHz technology.
func SubGhzModelParams() *ModelParams {
	p := newModelParams("subghz")
	setSubGhzModelParams(p)
	return p
}

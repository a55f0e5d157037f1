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

// computeFreeSpacePathLoss computes the free-space path loss at distance distM (m) for a carrier
// of freqMHz. See https://en.wikipedia.org/wiki/Free-space_path_loss
func computeFreeSpacePathLoss(distM float64, freqMHz float64, modelParams *ModelParams) Sample {
	if distM <= 0 {
		return UndefinedSample()
	}
	return DefinedSample(20.0*math.Log10(distM) + 20.0*math.Log10(freqMHz) + modelParams.FsplConstantDb)
}

// computeIndoorPathLossItu computes the path loss at distance distM (m) using the ITU model for indoor
// attenuation. See https://en.wikipedia.org/wiki/ITU_model_for_indoor_attenuation
func computeIndoorPathLossItu(distM float64, freqMHz float64, modelParams *ModelParams) Sample {
	if distM <= 0 {
		return UndefinedSample()
	}
	pathloss := 20.0*math.Log10(freqMHz) + modelParams.ItuPowerLossCoeffDb*math.Log10(distM) +
		modelParams.ItuFloorLossDb + modelParams.ItuFixedLossDb
	return DefinedSample(pathloss)
}

// okumuraHataMobileCorrection computes a(hm), the mobile antenna height correction for a small or
// medium sized city.
func okumuraHataMobileCorrection(freqMHz float64, rxHeightM float64) DbValue {
	logF := math.Log10(freqMHz)
	return 1.1*logF*rxHeightM - 0.7*rxHeightM - 1.56*logF + 0.8
}

// computeOkumuraHataPathLoss computes the Okumura-Hata path loss at distance distM (m), for a base
// antenna of txHeightM and a mobile antenna of rxHeightM. The model takes distances in km.
// See https://en.wikipedia.org/wiki/Hata_model
func computeOkumuraHataPathLoss(distM float64, freqMHz float64, txHeightM float64, rxHeightM float64) Sample {
	if distM <= 0 {
		return UndefinedSample()
	}
	logF := math.Log10(freqMHz)
	logHb := math.Log10(txHeightM)
	distKm := distM / 1000.0
	ahm := okumuraHataMobileCorrection(freqMHz, rxHeightM)
	pathloss := 69.55 + 26.16*logF - 13.82*logHb - ahm + (44.9-6.55*logHb)*math.Log10(distKm)
	return DefinedSample(pathloss)
}

// FreeSpacePathLoss returns the free-space path loss (dB) at distance distM for a carrier of freqMHz.
// The loss is undefined (ok == false) for distM <= 0.
func FreeSpacePathLoss(distM float64, freqMHz float64) (loss DbValue, ok bool) {
	return computeFreeSpacePathLoss(distM, freqMHz, newModelParams("fspl")).Get()
}

// ItuIndoorPathLoss returns the ITU indoor path loss (dB) at distance distM, using the
// technology-specific modelParams. The loss is undefined (ok == false) for distM <= 0.
func ItuIndoorPathLoss(distM float64, freqMHz float64, modelParams *ModelParams) (loss DbValue, ok bool) {
	return computeIndoorPathLossItu(distM, freqMHz, modelParams).Get()
}

// OkumuraHataPathLoss returns the Okumura-Hata path loss (dB) at distance distM. The loss is
// undefined (ok == false) for distM <= 0.
func OkumuraHataPathLoss(distM float64, freqMHz float64, txHeightM float64, rxHeightM float64) (loss DbValue, ok bool) {
	return computeOkumuraHataPathLoss(distM, freqMHz, txHeightM, rxHeightM).Get()
}

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
	"math"

	"github.com/openthread/ot-linkbudget/radiomodel"
	. "github.com/openthread/ot-linkbudget/types"
)

// MaxDistanceSamples limits the size of a distance series.
const MaxDistanceSamples = 100000

// DistanceSeries is the shared distance axis (m) of all curves in one result.
type DistanceSeries []float64

// NewDistanceSeries creates the series 0, step, 2*step, ... up to but excluding end.
func NewDistanceSeries(end float64, step float64) (DistanceSeries, error) {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return nil, NewInvalidParameterError("distance_step", "%v must be > 0", step)
	}
	if math.IsNaN(end) || math.IsInf(end, 0) || end <= 0 {
		return nil, NewInvalidParameterError("distance", "series end %v must be > 0", end)
	}

	n := math.Ceil(end / step)
	if n > MaxDistanceSamples {
		return nil, NewInvalidParameterError("distance", "series of %v samples exceeds %d", n, MaxDistanceSamples)
	}
	count := int(n)
	// rounding in end/step must not add a sample at (or past) the end
	for count > 1 && float64(count-1)*step >= end {
		count--
	}

	ds := make(DistanceSeries, count)
	for i := range ds {
		ds[i] = float64(i) * step
	}
	return ds, nil
}

// Validate checks that the series is non-empty, >= 0 and strictly increasing.
func (ds DistanceSeries) Validate() error {
	return radiomodel.ValidateDistances(ds)
}

// IndexAt returns the index of the largest distance <= d, or -1 if there is none.
func (ds DistanceSeries) IndexAt(d float64) int {
	lo, hi := 0, len(ds)
	for lo < hi {
		mid := (lo + hi) / 2
		if ds[mid] <= d {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

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

package types

import (
	"strconv"
)

// Sample is one value of a curve. Samples that a model cannot compute, such as the logarithmic
// singularity at distance 0, are marked undefined instead of carrying a placeholder number.
type Sample struct {
	Value   DbValue
	Defined bool
}

// DefinedSample returns a defined sample with value v.
func DefinedSample(v DbValue) Sample {
	return Sample{Value: v, Defined: true}
}

// UndefinedSample returns a sample that was not computed.
func UndefinedSample() Sample {
	return Sample{}
}

// Get returns the sample value and whether it is defined.
func (s Sample) Get() (DbValue, bool) {
	return s.Value, s.Defined
}

func (s Sample) String() string {
	if !s.Defined {
		return "-"
	}
	return strconv.FormatFloat(s.Value, 'f', 2, 64)
}

// MarshalJSON encodes an undefined sample as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.Defined {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, s.Value, 'f', -1, 64), nil
}

// MarshalYAML encodes an undefined sample as null.
func (s Sample) MarshalYAML() (interface{}, error) {
	if !s.Defined {
		return nil, nil
	}
	return s.Value, nil
}

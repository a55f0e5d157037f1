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

// TechnologyProfile describes what a technology selection implies: the carrier frequency, whether
// antenna heights are required, and the set of propagation models to run.
type TechnologyProfile struct {
	Technology   Technology `json:"technology" yaml:"technology"`
	Label        string     `json:"label" yaml:"label"`
	Supported    bool       `json:"supported" yaml:"supported"`
	FrequencyMHz float64    `json:"frequency_mhz,omitempty" yaml:"frequency_mhz,omitempty"`
	NeedsHeights bool       `json:"needs_heights" yaml:"needs_heights"`
	Models       []ModelId  `json:"models" yaml:"models,flow"`

	modelParams func() *radiomodel.ModelParams
}

// ModelInput returns the propagation model input for this technology and the given antenna heights.
// Heights are ignored by technologies that do not need them.
func (p *TechnologyProfile) ModelInput(txHeightM float64, rxHeightM float64) radiomodel.ModelInput {
	in := radiomodel.ModelInput{
		FrequencyMHz: p.FrequencyMHz,
	}
	if p.modelParams != nil {
		in.Params = p.modelParams()
	}
	if p.NeedsHeights {
		in.TxHeightM, in.RxHeightM = txHeightM, rxHeightM
	}
	return in
}

// Registry maps a technology selector to its profile. A Registry is immutable after creation.
type Registry struct {
	profiles map[Technology]TechnologyProfile
}

// NewRegistry creates the registry of known technologies.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: map[Technology]TechnologyProfile{},
	}
	r.profiles[TechShortRange] = TechnologyProfile{
		Technology:   TechShortRange,
		Label:        "Bluetooth LE (2440MHz)",
		Supported:    true,
		FrequencyMHz: radiomodel.ShortRangeFrequencyMHz,
		NeedsHeights: false,
		Models:       radiomodel.ShortRangeModelSet,
		modelParams:  radiomodel.ShortRangeModelParams,
	}
	r.profiles[TechSubGhz] = TechnologyProfile{
		Technology:   TechSubGhz,
		Label:        "Sub GHz (915MHz)",
		Supported:    true,
		FrequencyMHz: radiomodel.SubGhzFrequencyMHz,
		NeedsHeights: true,
		Models:       radiomodel.SubGhzModelSet,
		modelParams:  radiomodel.SubGhzModelParams,
	}
	r.profiles[TechWifi] = TechnologyProfile{
		Technology: TechWifi,
		Label:      "WiFi (not supported)",
		Supported:  false,
	}
	return r
}

// Lookup resolves a technology. The second return value is false for unrecognized technologies.
// An unsupported technology is found, with Supported == false.
func (r *Registry) Lookup(tech Technology) (TechnologyProfile, bool) {
	p, ok := r.profiles[tech]
	return p, ok
}

// Profiles returns all profiles in display order.
func (r *Registry) Profiles() []TechnologyProfile {
	profiles := make([]TechnologyProfile, 0, len(r.profiles))
	for _, tech := range AllTechnologies {
		if p, ok := r.profiles[tech]; ok {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

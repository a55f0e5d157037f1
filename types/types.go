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
	"strings"
)

// DbValue is a value in dB or dBm.
type DbValue = float64

// Technology selects the wireless technology of a link. Each technology fixes the carrier
// frequency and the set of propagation models that apply to it.
type Technology int

const (
	TechUnknown    Technology = iota
	TechShortRange            // 2.4 GHz short-range radio (BLE)
	TechSubGhz                // 915 MHz sub-GHz radio
	TechWifi                  // listed, but not supported
)

var technologyNames = map[Technology]string{
	TechUnknown:    "unknown",
	TechShortRange: "ble",
	TechSubGhz:     "subghz",
	TechWifi:       "wifi",
}

var technologyAliases = map[string]Technology{
	"ble":         TechShortRange,
	"bluetooth":   TechShortRange,
	"shortrange":  TechShortRange,
	"short-range": TechShortRange,
	"subghz":      TechSubGhz,
	"sub ghz":     TechSubGhz,
	"sub-ghz":     TechSubGhz,
	"wifi":        TechWifi,
	"wi-fi":       TechWifi,
}

// AllTechnologies lists the selectable technologies, in display order.
var AllTechnologies = []Technology{TechShortRange, TechSubGhz, TechWifi}

func (t Technology) String() string {
	if s, ok := technologyNames[t]; ok {
		return s
	}
	return technologyNames[TechUnknown]
}

// ParseTechnology parses a technology name. Names are case-insensitive; the dashboard labels
// "BLE", "Sub GHz" and "wifi" are accepted as well. Unrecognized names give TechUnknown.
func ParseTechnology(s string) Technology {
	if t, ok := technologyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return TechUnknown
}

// MarshalText implements encoding.TextMarshaler so that technologies appear by name in JSON/YAML.
func (t Technology) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Technology) UnmarshalText(text []byte) error {
	*t = ParseTechnology(string(text))
	return nil
}

// Direction of a link between the selected transmitter and receiver devices.
type Direction int

const (
	// Uplink: the selected transmitter device transmits.
	Uplink Direction = iota
	// Downlink: roles swapped, the selected receiver device transmits back.
	Downlink
)

// AllDirections lists both directions, uplink first.
var AllDirections = []Direction{Uplink, Downlink}

func (d Direction) String() string {
	if d == Downlink {
		return "downlink"
	}
	return "uplink"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseDirection parses "up", "uplink", "down" or "downlink".
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "up", "uplink", "ul":
		return Uplink, true
	case "down", "downlink", "dl":
		return Downlink, true
	}
	return Uplink, false
}

// ModelId identifies a propagation model.
type ModelId int

const (
	ModelFreeSpace ModelId = iota
	ModelItuIndoor
	ModelOkumuraHata
)

var modelNames = []string{"fspl", "itu_indoor", "okumura_hata"}
var modelTitles = []string{"Free Space", "ITU Indoor", "Okumura-Hata"}

func (m ModelId) String() string {
	if int(m) >= 0 && int(m) < len(modelNames) {
		return modelNames[m]
	}
	return "unknown"
}

// Title returns the human-readable model name.
func (m ModelId) Title() string {
	if int(m) >= 0 && int(m) < len(modelTitles) {
		return modelTitles[m]
	}
	return "Unknown"
}

func (m ModelId) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Device holds the RF parameters of a single device, as listed in the device catalog.
type Device struct {
	Name                string  `json:"name" yaml:"name"`
	TxPowerDbm          DbValue `json:"tx_power_dbm" yaml:"tx_power_dbm"`
	AntennaEfficiencyDb DbValue `json:"antenna_efficiency_db" yaml:"antenna_efficiency_db"`
	RxSensitivityDbm    DbValue `json:"rx_sensitivity_dbm" yaml:"rx_sensitivity_dbm"`
}

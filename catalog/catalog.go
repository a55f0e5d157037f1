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

package catalog

import (
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	. "github.com/openthread/ot-linkbudget/types"
)

// Catalog is an immutable table of devices keyed by name. It is safe for concurrent use.
type Catalog struct {
	devices map[string]Device
	names   []string
}

func checkFinite(dev *Device) error {
	for _, v := range []struct {
		column string
		value  DbValue
	}{
		{"tx_power_dbm", dev.TxPowerDbm},
		{"antenna_efficiency_db", dev.AntennaEfficiencyDb},
		{"rx_sensitivity_dbm", dev.RxSensitivityDbm},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return errors.Errorf("device %q: %s is %v, must be a finite number", dev.Name, v.column, v.value)
		}
	}
	return nil
}

// New creates a catalog of devices. Device names must be non-empty and unique, and all RF
// parameters finite.
func New(devices []Device) (*Catalog, error) {
	c := &Catalog{
		devices: make(map[string]Device, len(devices)),
		names:   make([]string, 0, len(devices)),
	}
	for i, dev := range devices {
		dev.Name = strings.TrimSpace(dev.Name)
		if dev.Name == "" {
			return nil, errors.Errorf("device %d: empty name", i)
		}
		if _, ok := c.devices[dev.Name]; ok {
			return nil, errors.Errorf("device %d: duplicate name %q", i, dev.Name)
		}
		if err := checkFinite(&dev); err != nil {
			return nil, err
		}
		c.devices[dev.Name] = dev
		c.names = append(c.names, dev.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Get returns the device with the given name.
func (c *Catalog) Get(name string) (Device, bool) {
	dev, ok := c.devices[name]
	return dev, ok
}

// Names returns the sorted device names.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Len returns the number of devices.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Devices returns all devices sorted by name.
func (c *Catalog) Devices() []Device {
	devices := make([]Device, len(c.names))
	for i, name := range c.names {
		devices[i] = c.devices[name]
	}
	return devices
}

// LoadFile loads a catalog, selecting the format by file extension.
func LoadFile(path string) (*Catalog, error) {
	var (
		c   *Catalog
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		c, err = loadFile(path, LoadCsv)
	case ".yaml", ".yml":
		c, err = loadFile(path, LoadYaml)
	case ".db", ".sqlite", ".sqlite3":
		c, err = LoadSqlite(path)
	default:
		return nil, errors.Errorf("unknown catalog format: %s", path)
	}
	return c, errors.Wrapf(err, "load catalog %s", path)
}

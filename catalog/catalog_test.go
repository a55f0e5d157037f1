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
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/openthread/ot-linkbudget/types"
)

const testCsv = `Device,Transmit Power (dBm),Antenna Efficiency (dB),Receive Sensitivity (dBm),Notes
nRF52840, 8, -1.5, -95, dev kit
EFR32MG24,10,-2,-97.5,
`

func TestNew(t *testing.T) {
	c, err := New([]Device{
		{Name: "b", TxPowerDbm: 1},
		{Name: " a ", TxPowerDbm: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Names())

	dev, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2.0, dev.TxPowerDbm)
	_, ok = c.Get("c")
	assert.False(t, ok)

	devices := c.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "a", devices[0].Name)
	devices[0].TxPowerDbm = 100
	dev, _ = c.Get("a")
	assert.Equal(t, 2.0, dev.TxPowerDbm)

	_, err = New([]Device{{Name: ""}})
	assert.Error(t, err)
	_, err = New([]Device{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)

	c, err = New(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoadCsv(t *testing.T) {
	c, err := LoadCsv(strings.NewReader(testCsv))
	require.NoError(t, err)
	assert.Equal(t, []string{"EFR32MG24", "nRF52840"}, c.Names())

	dev, ok := c.Get("nRF52840")
	require.True(t, ok)
	assert.Equal(t, Device{Name: "nRF52840", TxPowerDbm: 8, AntennaEfficiencyDb: -1.5, RxSensitivityDbm: -95}, dev)

	// column order does not matter
	c, err = LoadCsv(strings.NewReader("Receive Sensitivity (dBm),Device,Antenna Efficiency (dB),Transmit Power (dBm)\n-90,x,0,4\n"))
	require.NoError(t, err)
	dev, _ = c.Get("x")
	assert.Equal(t, -90.0, dev.RxSensitivityDbm)
	assert.Equal(t, 4.0, dev.TxPowerDbm)

	_, err = LoadCsv(strings.NewReader(""))
	assert.Error(t, err)
	_, err = LoadCsv(strings.NewReader("Device,Transmit Power (dBm)\nx,1\n"))
	assert.Error(t, err)
	_, err = LoadCsv(strings.NewReader("Device,Transmit Power (dBm),Antenna Efficiency (dB),Receive Sensitivity (dBm)\nx,high,0,0\n"))
	assert.Error(t, err)
	_, err = LoadCsv(strings.NewReader("Device,Transmit Power (dBm),Antenna Efficiency (dB),Receive Sensitivity (dBm)\nx,1,0,0\nx,2,0,0\n"))
	assert.Error(t, err)
}

func TestLoadYaml(t *testing.T) {
	doc := `
devices:
  - name: A
    tx_power_dbm: 10
    antenna_efficiency_db: 2
    rx_sensitivity_dbm: -95
  - name: B
    tx_power_dbm: 4
    antenna_efficiency_db: 1
    rx_sensitivity_dbm: -100
`
	c, err := LoadYaml(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	dev, _ := c.Get("B")
	assert.Equal(t, Device{Name: "B", TxPowerDbm: 4, AntennaEfficiencyDb: 1, RxSensitivityDbm: -100}, dev)

	_, err = LoadYaml(strings.NewReader("devices:\n  - name: A\n    power: 1\n"))
	assert.Error(t, err)
}

func TestLoadNonFinite(t *testing.T) {
	_, err := LoadCsv(strings.NewReader("Device,Transmit Power (dBm),Antenna Efficiency (dB),Receive Sensitivity (dBm)\nA,NaN,2,-95\nB,4,1,-100\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `device "A"`)
	assert.Contains(t, err.Error(), "tx_power_dbm")

	_, err = LoadCsv(strings.NewReader("Device,Transmit Power (dBm),Antenna Efficiency (dB),Receive Sensitivity (dBm)\nA,1,2,-95\nB,4,1,Inf\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `device "B"`)
	assert.Contains(t, err.Error(), "rx_sensitivity_dbm")

	_, err = LoadYaml(strings.NewReader("devices:\n  - name: A\n    tx_power_dbm: 1\n    antenna_efficiency_db: -.inf\n    rx_sensitivity_dbm: -95\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "antenna_efficiency_db")

	_, err = New([]Device{{Name: "A", RxSensitivityDbm: math.NaN()}})
	assert.Error(t, err)
}

func TestLoadSqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE devices (
		name TEXT PRIMARY KEY,
		tx_power_dbm REAL NOT NULL,
		antenna_efficiency_db REAL NOT NULL,
		rx_sensitivity_dbm REAL NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO devices VALUES ('A', 10, 2, -95), ('B', 4, 1, -100)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c, err := LoadSqlite(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, c.Names())
	dev, _ := c.Get("A")
	assert.Equal(t, Device{Name: "A", TxPowerDbm: 10, AntennaEfficiencyDb: 2, RxSensitivityDbm: -95}, dev)

	_, err = LoadSqlite(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "devices.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testCsv), 0644))
	c, err := LoadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	ymlPath := filepath.Join(dir, "devices.yml")
	require.NoError(t, os.WriteFile(ymlPath, []byte("devices:\n  - name: A\n"), 0644))
	c, err = LoadFile(ymlPath)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = LoadFile(filepath.Join(dir, "devices.txt"))
	assert.Error(t, err)
	_, err = LoadFile(filepath.Join(dir, "absent.csv"))
	assert.Error(t, err)
}

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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-linkbudget/logger"
	. "github.com/openthread/ot-linkbudget/types"
)

const (
	ColumnDevice            = "Device"
	ColumnTxPower           = "Transmit Power (dBm)"
	ColumnAntennaEfficiency = "Antenna Efficiency (dB)"
	ColumnRxSensitivity     = "Receive Sensitivity (dBm)"
)

var csvColumns = []string{ColumnDevice, ColumnTxPower, ColumnAntennaEfficiency, ColumnRxSensitivity}

const selectDevicesSQL = `SELECT name, tx_power_dbm, antenna_efficiency_db, rx_sensitivity_dbm FROM devices ORDER BY name`

func loadFile(path string, load func(r io.Reader) (*Catalog, error)) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load(f)
}

// LoadCsv loads a catalog from CSV with a header row. The columns are matched by name, in any
// order; extra columns are ignored.
func LoadCsv(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Errorf("csv: missing header")
	} else if err != nil {
		return nil, errors.Wrapf(err, "csv header")
	}

	index := map[string]int{}
	for i, col := range header {
		index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	cols := make([]int, len(csvColumns))
	for i, name := range csvColumns {
		idx, ok := index[name]
		if !ok {
			return nil, errors.Errorf("csv: missing column %q", name)
		}
		cols[i] = idx
	}

	var devices []Device
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "csv")
		}
		line, _ := cr.FieldPos(0)

		var values [3]float64
		for i := range values {
			field := strings.TrimSpace(record[cols[i+1]])
			if values[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, errors.Errorf("csv line %d: column %q: invalid number %q", line, csvColumns[i+1], field)
			}
		}
		devices = append(devices, Device{
			Name:                record[cols[0]],
			TxPowerDbm:          values[0],
			AntennaEfficiencyDb: values[1],
			RxSensitivityDbm:    values[2],
		})
	}
	return New(devices)
}

type yamlCatalog struct {
	Devices []Device `yaml:"devices"`
}

// LoadYaml loads a catalog from a YAML document with a top level "devices" list.
func LoadYaml(r io.Reader) (*Catalog, error) {
	var doc yamlCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "yaml")
	}
	return New(doc.Devices)
}

// LoadSqlite loads a catalog from the devices table of a SQLite database, opened read-only.
func LoadSqlite(path string) (c *Catalog, err error) {
	if _, err = os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", path, "mode=ro"))
	if err != nil {
		return nil, errors.Wrapf(err, "opening read connection")
	}
	defer closeWithError(db, &err)

	rows, err := db.Query(selectDevicesSQL)
	if err != nil {
		return nil, errors.Wrapf(err, "querying devices")
	}
	defer closeWithError(rows, &err)

	var devices []Device
	for rows.Next() {
		var dev Device
		if err = rows.Scan(&dev.Name, &dev.TxPowerDbm, &dev.AntennaEfficiencyDb, &dev.RxSensitivityDbm); err != nil {
			return nil, errors.Wrapf(err, "scanning device")
		}
		devices = append(devices, dev)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading devices")
	}

	logger.Debugf("loaded %d devices from %s", len(devices), path)
	return New(devices)
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

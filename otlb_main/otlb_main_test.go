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

package otlb_main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-linkbudget/config"
)

func TestParseArgs(t *testing.T) {
	var out bytes.Buffer
	args, err := parseArgs([]string{"-catalog", "devices.csv", "-cli=false", "-listen", ""}, &out)
	require.NoError(t, err)
	assert.Equal(t, "devices.csv", args.CatalogFile)
	assert.False(t, args.Cli)
	assert.Equal(t, "", args.ListenAddr)
	assert.Equal(t, config.DefaultLogLevel, args.LogLevel)
	assert.True(t, args.set["catalog"])
	assert.True(t, args.set["listen"])
	assert.False(t, args.set["log"])

	_, err = parseArgs([]string{"-h"}, &out)
	assert.Equal(t, flag.ErrHelp, err)
	assert.Contains(t, out.String(), "-catalog")

	_, err = parseArgs([]string{"-nosuchflag"}, &out)
	assert.Error(t, err)
	_, err = parseArgs([]string{"extra"}, &out)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	var out bytes.Buffer

	args, err := parseArgs(nil, &out)
	require.NoError(t, err)
	_, err = loadConfig(args)
	assert.Error(t, err, "no catalog")

	args, err = parseArgs([]string{"-catalog", "devices.csv", "-log", "debug"}, &out)
	require.NoError(t, err)
	cfg, err := loadConfig(args)
	require.NoError(t, err)
	assert.Equal(t, "devices.csv", cfg.Catalog)
	assert.Equal(t, "debug", cfg.Log)
	assert.Equal(t, config.DefaultListenAddr, cfg.Web.Listen)

	args, err = parseArgs([]string{"-log", "loud", "-catalog", "x.csv"}, &out)
	require.NoError(t, err)
	_, err = loadConfig(args)
	assert.Error(t, err)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "otlb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: file.csv\nlog: info\nweb:\n  listen: localhost:9000\n"), 0644))

	args, err := parseArgs([]string{"-config", path}, &out)
	require.NoError(t, err)
	cfg, err := loadConfig(args)
	require.NoError(t, err)
	assert.Equal(t, "file.csv", cfg.Catalog)
	assert.Equal(t, "info", cfg.Log)
	assert.Equal(t, "localhost:9000", cfg.Web.Listen)

	// flags given on the command line win, defaults of absent flags do not
	args, err = parseArgs([]string{"-config", path, "-catalog", "flag.csv", "-listen", ""}, &out)
	require.NoError(t, err)
	cfg, err = loadConfig(args)
	require.NoError(t, err)
	assert.Equal(t, "flag.csv", cfg.Catalog)
	assert.Equal(t, "info", cfg.Log)
	assert.Equal(t, "", cfg.Web.Listen)

	args, err = parseArgs([]string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}, &out)
	require.NoError(t, err)
	_, err = loadConfig(args)
	assert.Error(t, err)
}

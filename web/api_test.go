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

package web

import (
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-linkbudget/catalog"
	"github.com/openthread/ot-linkbudget/linkbudget"
	"github.com/openthread/ot-linkbudget/metrics"
	. "github.com/openthread/ot-linkbudget/types"
)

func newTestApi(t *testing.T) (*Api, *metrics.Collector) {
	cat, err := catalog.New([]Device{
		{Name: "Node A", TxPowerDbm: 10, AntennaEfficiencyDb: 2, RxSensitivityDbm: -95},
		{Name: "B", TxPowerDbm: 4, AntennaEfficiencyDb: 1, RxSensitivityDbm: -100},
	})
	require.NoError(t, err)
	engine, err := linkbudget.NewEngine(cat, nil)
	require.NoError(t, err)
	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	api, err := NewApi(engine, cat, collector)
	require.NoError(t, err)
	return api, collector
}

func get(t *testing.T, h http.Handler, path string, params map[string]string) *httptest.ResponseRecorder {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestDecodeQuery(t *testing.T) {
	var q linkBudgetQuery
	require.NoError(t, decodeQuery(url.Values{"tech": {"Sub GHz"}, "tx": {"A"}, "tx_height": {"1.5"}, "other": {"x"}}, &q))
	assert.Equal(t, "Sub GHz", q.Tech)
	assert.Equal(t, "A", q.Tx)
	assert.Equal(t, linkbudget.DefaultTargetDistanceM, q.Distance)
	require.NotNil(t, q.TxHeight)
	assert.Equal(t, 1.5, *q.TxHeight)
	assert.Nil(t, q.RxHeight)

	req := q.request()
	assert.Equal(t, TechSubGhz, req.Technology)
	assert.Equal(t, 1.5, *req.TxHeightM)

	q = linkBudgetQuery{}
	require.NoError(t, decodeQuery(url.Values{"distance": {"250"}}, &q))
	assert.Equal(t, 250.0, q.Distance)

	err := decodeQuery(url.Values{"distance": {"far"}}, &q)
	assert.IsType(t, &InvalidParameterError{}, err)
}

func TestDevicesAndTechnologies(t *testing.T) {
	api, collector := newTestApi(t)
	h := api.Handler()

	rec := get(t, h, "/api/devices", nil)
	assert.Equal(t, 200, rec.Code)
	var devices []Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	require.Len(t, devices, 2)
	assert.Equal(t, "B", devices[0].Name)
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.CatalogDevices))

	rec = get(t, h, "/api/technologies", nil)
	assert.Equal(t, 200, rec.Code)
	var techs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &techs))
	require.Len(t, techs, 3)
	assert.Equal(t, "ble", techs[0]["technology"])
	assert.Equal(t, false, techs[2]["supported"])
}

func TestLinkBudget(t *testing.T) {
	api, collector := newTestApi(t)
	h := api.Handler()

	rec := get(t, h, "/api/linkbudget", map[string]string{"tech": "ble", "tx": "Node A", "rx": "B", "distance": "100"})
	require.Equal(t, 200, rec.Code)
	var resp struct {
		Outcome string `json:"outcome"`
		Result  struct {
			TargetDistanceM float64   `json:"target_distance_m"`
			Distances       []float64 `json:"distances"`
			Rssi            []struct {
				Model     string     `json:"model"`
				Direction string     `json:"direction"`
				Values    []*float64 `json:"values"`
			} `json:"rssi"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "result", resp.Outcome)
	assert.Equal(t, 100.0, resp.Result.TargetDistanceM)
	assert.Len(t, resp.Result.Distances, 200)
	require.NotEmpty(t, resp.Result.Rssi)
	assert.Equal(t, "fspl", resp.Result.Rssi[0].Model)
	assert.Nil(t, resp.Result.Rssi[0].Values[0])
	assert.InDelta(t, -67.1978, *resp.Result.Rssi[0].Values[100], 1e-3)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Computations.WithLabelValues("ble", "result")))
}

func TestLinkBudgetOutcomes(t *testing.T) {
	api, collector := newTestApi(t)
	h := api.Handler()

	rec := get(t, h, "/api/linkbudget", map[string]string{"tech": "wifi", "tx": "Node A", "rx": "B"})
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"outcome":"unsupported"`))
	assert.False(t, strings.Contains(rec.Body.String(), `"result"`))

	rec = get(t, h, "/api/linkbudget", map[string]string{"tech": "ble", "tx": "Node A"})
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"outcome":"incomplete"`))

	rec = get(t, h, "/api/linkbudget", map[string]string{"tech": "ble", "tx": "Node A", "rx": "C"})
	assert.Equal(t, 404, rec.Code)

	rec = get(t, h, "/api/linkbudget", map[string]string{"tech": "ble", "tx": "Node A", "rx": "B", "distance": "-1"})
	assert.Equal(t, 400, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"param":"distance"`))

	rec = get(t, h, "/api/linkbudget", map[string]string{"tech": "lora", "tx": "Node A", "rx": "B"})
	assert.Equal(t, 400, rec.Code)

	rec = get(t, h, "/api/linkbudget", map[string]string{"tech": "subghz", "tx": "Node A", "rx": "B", "rx_height": "abc"})
	assert.Equal(t, 400, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Computations.WithLabelValues("wifi", "unsupported")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Computations.WithLabelValues("ble", metrics.OutcomeUnknownDevice)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Computations.WithLabelValues("unknown", metrics.OutcomeInvalidParameter)))
}

func TestSummary(t *testing.T) {
	api, _ := newTestApi(t)
	rec := get(t, api.Handler(), "/api/summary", map[string]string{"tech": "subghz", "tx": "Node A", "rx": "B"})
	require.Equal(t, 200, rec.Code)

	var summaries []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	assert.Len(t, summaries, 6)
	assert.Equal(t, "fspl", summaries[0]["model"])
	assert.Equal(t, "good", summaries[0]["quality"])
}

func TestChart(t *testing.T) {
	api, _ := newTestApi(t)
	h := api.Handler()

	rec := get(t, h, "/api/chart.png", map[string]string{"tech": "ble", "tx": "Node A", "rx": "B", "kind": "uplink"})
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)

	rec = get(t, h, "/api/chart.png", map[string]string{"tech": "wifi", "tx": "Node A", "rx": "B"})
	assert.Equal(t, 204, rec.Code)

	rec = get(t, h, "/api/chart.png", map[string]string{"tech": "ble", "tx": "Node A", "rx": "B", "kind": "sideways"})
	assert.Equal(t, 400, rec.Code)
}

func TestChartWithoutData(t *testing.T) {
	cat, err := catalog.New([]Device{{Name: "A"}, {Name: "B"}})
	require.NoError(t, err)
	cfg := linkbudget.DefaultConfig()
	cfg.DistanceMarginM = 0
	engine, err := linkbudget.NewEngine(cat, cfg)
	require.NoError(t, err)
	api, err := NewApi(engine, cat, nil)
	require.NoError(t, err)

	// the only distance is 0, where no model is defined
	rec := get(t, api.Handler(), "/api/chart.png", map[string]string{"tech": "ble", "tx": "A", "rx": "B", "distance": "1"})
	assert.Equal(t, 204, rec.Code)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestWriteJson(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJson(rec, http.StatusOK, map[string]float64{"v": math.NaN()})
	assert.Equal(t, 500, rec.Code)
	assert.NotEqual(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	writeJson(rec, http.StatusNotFound, errorResponse{Error: "gone"})
	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"gone"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	api, _ := newTestApi(t)
	h := api.Handler()
	get(t, h, "/api/linkbudget", map[string]string{"tech": "ble", "tx": "Node A", "rx": "B"})

	rec := get(t, h, "/metrics", nil)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `linkbudget_computations_total{outcome="result",technology="ble"} 1`))
}

func TestDashboardUrl(t *testing.T) {
	assert.Equal(t, "http://localhost:8997/", DashboardUrl(":8997"))
	assert.Equal(t, "http://127.0.0.1:80/", DashboardUrl("127.0.0.1:80"))
	assert.Equal(t, "http://[::1]:80/", DashboardUrl("[::1]:80"))
}

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
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/openthread/ot-linkbudget/catalog"
	"github.com/openthread/ot-linkbudget/linkbudget"
	"github.com/openthread/ot-linkbudget/logger"
	"github.com/openthread/ot-linkbudget/metrics"
	"github.com/openthread/ot-linkbudget/plot"
	. "github.com/openthread/ot-linkbudget/types"
)

// linkBudgetQuery holds the query parameters of the link budget endpoints.
type linkBudgetQuery struct {
	Tech     string   `mapstructure:"tech"`
	Tx       string   `mapstructure:"tx"`
	Rx       string   `mapstructure:"rx"`
	Distance float64  `mapstructure:"distance"`
	TxHeight *float64 `mapstructure:"tx_height"`
	RxHeight *float64 `mapstructure:"rx_height"`
	Kind     string   `mapstructure:"kind"`
}

func (q *linkBudgetQuery) request() linkbudget.Request {
	return linkbudget.Request{
		Technology:      ParseTechnology(q.Tech),
		TransmitterName: q.Tx,
		ReceiverName:    q.Rx,
		TargetDistanceM: q.Distance,
		TxHeightM:       q.TxHeight,
		RxHeightM:       q.RxHeight,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Param string `json:"param,omitempty"`
}

// Api serves the link budget engine over HTTP/JSON.
type Api struct {
	engine  *linkbudget.Engine
	catalog *catalog.Catalog
	metrics *metrics.Collector

	renderer *plot.Renderer
}

// NewApi creates the API. collector may be nil.
func NewApi(engine *linkbudget.Engine, cat *catalog.Catalog, collector *metrics.Collector) (*Api, error) {
	renderer, err := plot.NewRenderer(plot.DefaultWidth, plot.DefaultHeight)
	if err != nil {
		return nil, err
	}
	collector.SetCatalogSize(cat.Len())
	return &Api{
		engine:   engine,
		catalog:  cat,
		metrics:  collector,
		renderer: renderer,
	}, nil
}

// Handler returns the handler of the /api/ endpoints, and of /metrics if a collector is set.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/devices", a.handleDevices)
	mux.HandleFunc("/api/technologies", a.handleTechnologies)
	mux.HandleFunc("/api/linkbudget", a.handleLinkBudget)
	mux.HandleFunc("/api/summary", a.handleSummary)
	mux.HandleFunc("/api/chart.png", a.handleChart)
	if a.metrics != nil {
		mux.Handle("/metrics", a.metrics.Handler())
	}
	return mux
}

func (a *Api) handleDevices(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, a.catalog.Devices())
}

func (a *Api) handleTechnologies(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, a.engine.Registry().Profiles())
}

func (a *Api) handleLinkBudget(w http.ResponseWriter, r *http.Request) {
	resp, ok := a.calculate(w, r, nil)
	if ok {
		writeJson(w, http.StatusOK, resp)
	}
}

func (a *Api) handleSummary(w http.ResponseWriter, r *http.Request) {
	resp, ok := a.calculate(w, r, nil)
	if !ok {
		return
	}
	if resp.Outcome != linkbudget.OutcomeResult {
		writeJson(w, http.StatusOK, resp)
		return
	}
	writeJson(w, http.StatusOK, resp.Result.Summary())
}

func (a *Api) handleChart(w http.ResponseWriter, r *http.Request) {
	var query linkBudgetQuery
	resp, ok := a.calculate(w, r, &query)
	if !ok {
		return
	}
	kind, ok := plot.ParseKind(query.Kind)
	if !ok {
		writeError(w, NewInvalidParameterError("kind", "unknown chart kind %q", query.Kind))
		return
	}
	if resp.Outcome != linkbudget.OutcomeResult {
		// nothing to draw
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	err := a.renderer.Render(&buf, plot.ResultChart(resp.Result, kind))
	if errors.Cause(err) == plot.ErrNoData {
		w.WriteHeader(http.StatusNoContent)
		return
	} else if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// calculate decodes the query of r into query (if not nil) and runs the engine. On failure, the
// error response is written and false is returned.
func (a *Api) calculate(w http.ResponseWriter, r *http.Request, query *linkBudgetQuery) (*linkbudget.Response, bool) {
	if query == nil {
		query = &linkBudgetQuery{}
	}
	if err := decodeQuery(r.URL.Query(), query); err != nil {
		writeError(w, err)
		return nil, false
	}

	req := query.request()
	start := time.Now()
	resp, err := a.engine.Calculate(req)
	a.metrics.Observe(req.Technology, resp, err, time.Since(start))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return resp, true
}

// decodeQuery decodes the first value of every query parameter into query. Absent parameters
// keep their default.
func decodeQuery(values url.Values, query *linkBudgetQuery) error {
	query.Distance = linkbudget.DefaultTargetDistanceM

	params := make(map[string]interface{}, len(values))
	for k, v := range values {
		if len(v) > 0 && v[0] != "" {
			params[k] = v[0]
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           query,
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(params); err != nil {
		return NewInvalidParameterError("query", "%v", err)
	}
	return nil
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Errorf("encode response failed: %v", err)
		http.Error(w, "encode response failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warnf("write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var perr *InvalidParameterError
	var derr *UnknownDeviceError
	switch {
	case errors.As(err, &perr):
		writeJson(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Param: perr.Param})
	case errors.As(err, &derr):
		writeJson(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		logger.Errorf("request failed: %v", err)
		writeJson(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

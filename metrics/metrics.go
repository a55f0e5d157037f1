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

package metrics

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openthread/ot-linkbudget/linkbudget"
	. "github.com/openthread/ot-linkbudget/types"
)

// Outcome labels of failed computations. Successful computations are labeled with
// the linkbudget.Outcome name.
const (
	OutcomeInvalidParameter = "invalid_parameter"
	OutcomeUnknownDevice    = "unknown_device"
	OutcomeError            = "error"
)

// Collector bundles the Prometheus metrics of link budget computations.
type Collector struct {
	gatherer prometheus.Gatherer

	Computations   *prometheus.CounterVec
	Durations      *prometheus.HistogramVec
	CatalogDevices prometheus.Gauge
}

// NewCollector registers the metrics against reg, defaulting to the global Prometheus
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	computations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkbudget_computations_total",
		Help: "Total number of link budget computations, labeled by technology and outcome.",
	}, []string{"technology", "outcome"})
	if err := register(reg, computations, "linkbudget_computations_total"); err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkbudget_computation_duration_seconds",
		Help:    "Link budget computation latency in seconds.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"technology"})
	if err := register(reg, durations, "linkbudget_computation_duration_seconds"); err != nil {
		return nil, err
	}

	devices := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "linkbudget_catalog_devices",
		Help: "Number of devices in the loaded device catalog.",
	})
	if err := register(reg, devices, "linkbudget_catalog_devices"); err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Computations:   computations,
		Durations:      durations,
		CatalogDevices: devices,
	}, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector, name string) error {
	if err := reg.Register(c); err != nil {
		return errors.Wrapf(err, "register %s", name)
	}
	return nil
}

// OutcomeLabel returns the outcome label of a computation.
func OutcomeLabel(resp *linkbudget.Response, err error) string {
	if err != nil {
		var perr *InvalidParameterError
		var derr *UnknownDeviceError
		switch {
		case errors.As(err, &perr):
			return OutcomeInvalidParameter
		case errors.As(err, &derr):
			return OutcomeUnknownDevice
		default:
			return OutcomeError
		}
	}
	if resp == nil {
		return OutcomeError
	}
	return resp.Outcome.String()
}

// Observe records one computation.
func (c *Collector) Observe(tech Technology, resp *linkbudget.Response, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Computations.WithLabelValues(tech.String(), OutcomeLabel(resp, err)).Inc()
	c.Durations.WithLabelValues(tech.String()).Observe(elapsed.Seconds())
}

// SetCatalogSize records the number of catalog devices.
func (c *Collector) SetCatalogSize(n int) {
	if c == nil {
		return
	}
	c.CatalogDevices.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package registry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/holonick/pkg/errutil"
)

// Operation names used as metric labels.
const (
	OpClaim  = "claim_nickname"
	OpAssign = "assign_nickname"
	OpColor  = "change_color"
	OpReset  = "reset_nickname"
	OpLookup = "lookup_real_name"
)

// StatusSuccess labels successful operations; failures use their error code.
const StatusSuccess = "success"

// Metrics holds the registry's Prometheus collectors.
type Metrics struct {
	Operations   *prometheus.CounterVec
	SaveFailures *prometheus.CounterVec
	Nicknames    prometheus.Gauge
}

// NewMetrics creates the registry collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holonick_registry_operations_total",
				Help: "Total number of registry operations by outcome",
			},
			[]string{"operation", "status"},
		),
		SaveFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holonick_registry_save_failures_total",
				Help: "Total number of persisted file writes that failed after retries",
			},
			[]string{"file"},
		),
		Nicknames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "holonick_registry_nicknames",
			Help: "Current number of bound nicknames",
		}),
	}

	reg.MustRegister(m.Operations, m.SaveFailures, m.Nicknames)
	return m
}

func (m *Metrics) recordOperation(op string, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = errutil.Code(err)
		if status == "" {
			status = "error"
		}
	}
	m.Operations.WithLabelValues(op, status).Inc()
}

func (m *Metrics) recordSaveFailure(file string) {
	if m == nil {
		return
	}
	m.SaveFailures.WithLabelValues(file).Inc()
}

func (m *Metrics) setNicknames(n int) {
	if m == nil {
		return
	}
	m.Nicknames.Set(float64(n))
}

// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package metrics

import (
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersWithoutPanic(t *testing.T) {
	m := New()
	m.GasUsed.Add(21000)
	m.BlocksProcessed.Inc()
	m.PeerBytesReceived.WithLabelValues("peer-1").Add(1024)
	m.HealCacheChecks.Inc()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	var gasUsed *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "lumen_core_gas_used_total" {
			gasUsed = f
		}
	}
	require.NotNil(t, gasUsed, "gas used family missing from scrape")
	require.Len(t, gasUsed.Metric, 1)
	require.Equal(t, float64(21000), gasUsed.Metric[0].GetCounter().GetValue())
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.GasUsed.Add(1)
	require.NotNil(t, m.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(rec.Body)
	require.NoError(t, err)
	require.Contains(t, families, "lumen_core_gas_used_total")
}

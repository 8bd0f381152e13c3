// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveEvaluation(true)
	m.ObserveMove("add")
	m.ObserveSearch(time.Second)
	m.SetLinks(3)
	m.ObserveLinkTest()
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveEvaluation(false)
	m.ObserveEvaluation(true)
	m.ObserveMove("add")
	m.ObserveMove("add")
	m.ObserveMove("remove")
	m.SetLinks(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SingularModelsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MovesTotal.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovesTotal.WithLabelValues("remove")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.LinksSelected))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveEvaluation(false)

	path := filepath.Join(t.TempDir(), "selvar.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "selvar_evaluations_total 1"))
}

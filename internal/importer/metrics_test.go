package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observeRun("completed", time.Now(), 1, 1) })
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.observeRun("failed", time.Now(), 0, 3)

	path := filepath.Join(t.TempDir(), "pickaname.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pickaname_import_runs_total{status="failed"} 1`)
	assert.Contains(t, string(data), "pickaname_import_failed_lines_total 3")
}

package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("parse", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome("success")
	r.ObserveCloneDuration("repo", time.Second, true)
	r.IncSearchRequest()
}

func TestPrometheusRecorderRegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("parse", 120*time.Millisecond)
	pr.ObserveBuildDuration(time.Second)
	pr.IncBuildOutcome("success")
	pr.ObserveCloneDuration("api-defs", 800*time.Millisecond, false)
	pr.IncSearchRequest()
	pr.IncSearchRequest()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
		if mf.GetName() == "protodoc_search_requests_total" {
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, float64(2), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, names["protodoc_stage_duration_seconds"])
	assert.True(t, names["protodoc_build_duration_seconds"])
	assert.True(t, names["protodoc_build_outcomes_total"])
	assert.True(t, names["protodoc_clone_repo_duration_seconds"])
}

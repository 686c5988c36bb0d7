package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protodoc/protodoc/internal/config"
	"github.com/protodoc/protodoc/internal/history"
)

type capturingRecorder struct {
	stageDurations map[string]int
	buildDurations int
	buildOutcomes  map[string]int
	cloneResults   map[bool]int
	searchRequests int
}

func newCapturingRecorder() *capturingRecorder {
	return &capturingRecorder{
		stageDurations: map[string]int{},
		buildOutcomes:  map[string]int{},
		cloneResults:   map[bool]int{},
	}
}

func (c *capturingRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	c.stageDurations[stage]++
}
func (c *capturingRecorder) ObserveBuildDuration(_ time.Duration) { c.buildDurations++ }
func (c *capturingRecorder) IncBuildOutcome(outcome string)       { c.buildOutcomes[outcome]++ }
func (c *capturingRecorder) ObserveCloneDuration(_ string, _ time.Duration, success bool) {
	c.cloneResults[success]++
}
func (c *capturingRecorder) IncSearchRequest() { c.searchRequests++ }

func TestGeneratePageRecordsStageDurations(t *testing.T) {
	dir := t.TempDir()
	src := `
syntax = "proto3";
package demo.v1;
service DemoService {
  rpc Ping(PingRequest) returns (PingResponse);
}
message PingRequest {}
message PingResponse {}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.proto"), []byte(src), 0o644))

	recorder := newCapturingRecorder()
	cfg := &config.Config{Docs: config.DocsConfig{Title: "Demo", APIBaseURL: "https://api.example.com"}}
	page, set, err := generatePage(cfg, []string{dir}, recorder)
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Contains(t, string(page), "DemoService")

	assert.Equal(t, 1, recorder.stageDurations["parse"])
	assert.Equal(t, 1, recorder.stageDurations["render"])
}

func TestObserveBuild(t *testing.T) {
	recorder := newCapturingRecorder()

	observeBuild(recorder, time.Now(), nil)
	observeBuild(recorder, time.Now(), os.ErrNotExist)

	assert.Equal(t, 2, recorder.buildDurations)
	assert.Equal(t, 1, recorder.buildOutcomes[history.OutcomeSuccess])
	assert.Equal(t, 1, recorder.buildOutcomes[history.OutcomeFailure])
}

func TestSyncRepositoryRecordsCloneFailure(t *testing.T) {
	recorder := newCapturingRecorder()
	cfg := &config.Config{
		Repository: config.Repository{URL: "bogus://example.invalid/defs.git", Name: "defs"},
	}

	_, err := syncRepository(cfg, t.TempDir(), false, recorder)
	require.Error(t, err)
	assert.Equal(t, 1, recorder.cloneResults[false])
	assert.Zero(t, recorder.cloneResults[true])
}

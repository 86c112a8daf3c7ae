// Package metrics declares the instrumentation hooks used by the pipeline.
package metrics

import (
	"context"
	"time"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	// RecordChunks counts chunks written by the chunker.
	RecordChunks(batch string, count int)
	// RecordChunkStatus counts chunk state transitions.
	RecordChunkStatus(status string)
	// RecordIssue counts issues by severity and object tag.
	RecordIssue(severity, objectType string)
	// ObserveImport records one importer run.
	ObserveImport(status string, messages int, elapsed time.Duration)
	// ObserveCommit records the duration and outcome of a commit.
	ObserveCommit(outcome string, elapsed time.Duration)
	// RecordBatchStatus counts batch terminal states.
	RecordBatchStatus(status string)
}

// Tracer starts spans around pipeline stages.
type Tracer interface {
	// Start opens a span; the returned function ends it, recording err when non-nil.
	Start(ctx context.Context, name string, attrs map[string]string) (context.Context, func(err error))
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RecordChunks(string, int) {}
func (NoopRecorder) RecordChunkStatus(string) {}
func (NoopRecorder) RecordIssue(string, string) {}
func (NoopRecorder) ObserveImport(string, int, time.Duration) {}
func (NoopRecorder) ObserveCommit(string, time.Duration) {}
func (NoopRecorder) RecordBatchStatus(string) {}

// NoopTracer starts no spans.
type NoopTracer struct{}

// Start returns ctx unchanged.
func (NoopTracer) Start(ctx context.Context, _ string, _ map[string]string) (context.Context, func(error)) {
	return ctx, func(error) {}
}

var (
	_ Recorder = NoopRecorder{}
	_ Tracer   = NoopTracer{}
)

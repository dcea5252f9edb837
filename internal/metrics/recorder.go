// Package metrics records fetch, render, and export observations.
//
// Components take a Recorder and default to NoopRecorder. The server
// wires in a PrometheusRecorder when metrics are enabled.
package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

// Fetch outcomes.
const (
	ResultSuccess   ResultLabel = "success"
	ResultStatus    ResultLabel = "status"
	ResultTransport ResultLabel = "transport"
	ResultDecode    ResultLabel = "decode"
)

// Export outcomes.
const (
	ResultWritten   ResultLabel = "written"
	ResultUnchanged ResultLabel = "unchanged"
	ResultFailed    ResultLabel = "failed"
)

// Recorder defines observability hooks for the content client, the page
// pipeline, and the exporter.
type Recorder interface {
	IncFetch(resource string, result ResultLabel)
	ObserveFetchDuration(resource string, d time.Duration)
	ObserveRenderDuration(page string, d time.Duration)
	IncExportedPage(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncFetch(string, ResultLabel)                {}
func (NoopRecorder) ObserveFetchDuration(string, time.Duration)  {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) IncExportedPage(ResultLabel)                 {}

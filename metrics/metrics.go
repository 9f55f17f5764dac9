package metrics

import "time"

// Outcome labels for generation observations.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeProvider   = "provider"
	OutcomeUnknown    = "unknown"
	OutcomeBusy       = "busy"
)

// Recorder defines the metric hooks used by the web server.
type Recorder interface {
	ObserveGeneration(outcome string, duration time.Duration)
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// NoopRecorder drops every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObserveGeneration(string, time.Duration)           {}
func (NoopRecorder) ObserveRequest(string, string, int, time.Duration) {}

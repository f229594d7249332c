package metrics

import "time"

// Recorder receives ingestion and report generation measurements.
// Implementations include the Prometheus-backed collector and Nop.
type Recorder interface {
	TraceBegun()
	EventsRecorded(n int)
	TraceCompleted()
	TraceAborted(code int)
	OrphanEvent()
	ReportGenerated(attempts, representatives int, elapsed time.Duration)
}

// Nop is the package-level no-op recorder.
var Nop Recorder = nopRecorder{}

type nopRecorder struct{}

func (nopRecorder) TraceBegun()                             {}
func (nopRecorder) EventsRecorded(int)                      {}
func (nopRecorder) TraceCompleted()                         {}
func (nopRecorder) TraceAborted(int)                        {}
func (nopRecorder) OrphanEvent()                            {}
func (nopRecorder) ReportGenerated(int, int, time.Duration) {}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_TraceLifecycle(t *testing.T) {
	collector := NewCollector()

	collector.TraceBegun()
	collector.TraceBegun()
	collector.TraceCompleted()
	collector.TraceAborted(5)
	collector.EventsRecorded(3)
	collector.EventsRecorded(4)

	if got := testutil.ToFloat64(collector.tracesTotal.WithLabelValues("begun")); got != 2 {
		t.Errorf("expected 2 begun traces, got %f", got)
	}
	if got := testutil.ToFloat64(collector.tracesTotal.WithLabelValues("completed")); got != 1 {
		t.Errorf("expected 1 completed trace, got %f", got)
	}
	if got := testutil.ToFloat64(collector.abortsByCode.WithLabelValues("5")); got != 1 {
		t.Errorf("expected 1 abort with code 5, got %f", got)
	}
	if got := testutil.ToFloat64(collector.eventsTotal); got != 7 {
		t.Errorf("expected 7 events, got %f", got)
	}
}

func TestCollector_ReportGenerated(t *testing.T) {
	collector := NewCollector()
	collector.ReportGenerated(10, 4, 20*time.Millisecond)

	if got := testutil.ToFloat64(collector.attempts); got != 10 {
		t.Errorf("expected 10 attempts, got %f", got)
	}
	if got := testutil.ToFloat64(collector.representatives); got != 4 {
		t.Errorf("expected 4 representatives, got %f", got)
	}
	if got := testutil.CollectAndCount(collector.reportDuration); got != 1 {
		t.Errorf("expected 1 histogram series, got %d", got)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector()
	collector.OrphanEvent()

	path := filepath.Join(t.TempDir(), "report.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "tracereport_orphan_notifications_total 1") {
		t.Errorf("textfile missing orphan counter:\n%s", data)
	}
}

func TestNopRecorder(t *testing.T) {
	// Must not panic.
	Nop.TraceBegun()
	Nop.EventsRecorded(1)
	Nop.TraceCompleted()
	Nop.TraceAborted(1)
	Nop.OrphanEvent()
	Nop.ReportGenerated(1, 1, time.Second)
}

package metrics_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/metrics"
)

func TestSinkRecord(t *testing.T) {
	t.Chdir(t.TempDir())

	connected := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	disconnected := connected.Add(1500 * time.Millisecond)

	snk := metrics.NewSink("sessions.csv")
	if err := snk.Record(metrics.Session{
		ID:             "sess-1",
		RemoteAddr:     "127.0.0.1:54321",
		Connected:      connected,
		Disconnected:   disconnected,
		BytesIn:        10,
		BytesOut:       20,
		BreakpointHits: 2,
		ExceptionHits:  1,
		Evaluations:    3,
		Reason:         "local close",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile("sessions.csv")
	if err != nil {
		t.Fatal(err)
	}

	want := fmt.Sprintf("%s,sess-1,127.0.0.1:54321,1500,10,20,2,1,3,local close\n",
		disconnected.Format(time.RFC3339))
	if string(got) != want {
		t.Errorf("file content = %q, want %q", string(got), want)
	}
}

func TestSinkRecordDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	snk := metrics.NewSink("")
	now := time.Now().UTC()
	if err := snk.Record(metrics.Session{ID: "sess-2", Connected: now, Disconnected: now}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(metrics.DefaultFile); err != nil {
		t.Fatalf("expected %s to exist: %v", metrics.DefaultFile, err)
	}
}

func TestNilSinkRecordIsNoop(t *testing.T) {
	var snk *metrics.Sink
	if err := snk.Record(metrics.Session{ID: "sess-3"}); err != nil {
		t.Errorf("Record() on nil sink = %v, want nil", err)
	}
}

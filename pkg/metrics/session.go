// Package metrics appends one CSV row per debugger session to a local
// file on disconnect. It is a thin, allocation-light sink — grounded on
// the teacher's pkg/metrics/pkg/otel CSV-file helpers (same
// open-append-flush shape, same xdg-sourced file permissions) but
// reshaped around one session-lifetime record instead of the teacher's
// per-webhook-event and per-API-call counters, since a debugger session
// has no analogous per-request volume to count.
package metrics

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/tzrikka/xdg"
)

// DefaultFile is used when a Sink has no explicit path (NewSink("") or
// the zero value). pkg/debugger never creates such a Sink: an empty
// MetricsCSVPath (e.g. no --metrics-csv flag) disables recording instead.
const DefaultFile = "jerrydbg_sessions.csv"

const fileFlags = os.O_APPEND | os.O_CREATE | os.O_WRONLY

// Session is one completed debugger session, as recorded at teardown.
type Session struct {
	ID             string
	RemoteAddr     string
	Connected      time.Time
	Disconnected   time.Time
	BytesIn        uint64
	BytesOut       uint64
	BreakpointHits int
	ExceptionHits  int
	Evaluations    int
	Reason         string
}

// Sink appends Session records to a single CSV file. The zero value
// writes to DefaultFile; construct with NewSink to pick another path.
// A nil *Sink is valid and silently drops every Record call, so a
// debugger session can carry one unconditionally.
type Sink struct {
	mu   sync.Mutex
	path string
}

// NewSink returns a Sink that appends to path, or DefaultFile if path is
// empty.
func NewSink(path string) *Sink {
	if path == "" {
		path = DefaultFile
	}
	return &Sink{path: path}
}

// Record appends one CSV row for s. Write failures are not fatal to the
// debugger session — metrics are observability, not protocol state — so
// Record returns the error for the caller to log rather than panicking
// or retrying.
func (snk *Sink) Record(s Session) error {
	if snk == nil {
		return nil
	}
	snk.mu.Lock()
	defer snk.mu.Unlock()

	path := snk.path
	if path == "" {
		path = DefaultFile
	}
	f, err := os.OpenFile(path, fileFlags, xdg.NewFilePermissions) //gosec:disable G304 // Operator-configured path.
	if err != nil {
		return err
	}
	defer f.Close()

	record := []string{
		s.Disconnected.Format(time.RFC3339),
		s.ID,
		s.RemoteAddr,
		strconv.FormatInt(s.Disconnected.Sub(s.Connected).Milliseconds(), 10),
		strconv.FormatUint(s.BytesIn, 10),
		strconv.FormatUint(s.BytesOut, 10),
		strconv.Itoa(s.BreakpointHits),
		strconv.Itoa(s.ExceptionHits),
		strconv.Itoa(s.Evaluations),
		s.Reason,
	}

	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

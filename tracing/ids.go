package tracing

import "github.com/rs/xid"

// NewCorrelationID mints a globally-unique, sortable identifier for
// correlating a multi-step operation — handover preparation, S1AP
// signaling exchanges — across logs, spans, and the event recorder.
// Grounded on the teacher's use of rs/xid in its SQLite trace writer to
// name each run's database file.
func NewCorrelationID() string {
	return xid.New().String()
}

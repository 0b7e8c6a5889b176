package tracing

import (
	"database/sql"
	"fmt"

	// Registers the sqlite3 driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/tebeka/atexit"
)

// Event is one durable control-plane event: an RRC transition, a handover
// decision, a HARQ exhaustion — anything worth replaying after the fact.
// Grounded on the teacher's Task record, narrowed from a generic
// simulation-trace schema to this stack's own event shape.
type Event struct {
	ID      string
	RNTI    uint16
	Kind    string
	Detail  string
	TTI     uint32
}

// Recorder durably records Events to a SQLite database, batching writes and
// flushing on process exit. Grounded on the teacher's SQLiteTraceWriter
// (tracing/sqlite.go): same batch-then-flush shape, same atexit.Register
// pattern, narrowed to this stack's single Event table.
type Recorder struct {
	db        *sql.DB
	stmt      *sql.Stmt
	pending   []Event
	batchSize int
}

// NewRecorder opens (creating if necessary) a SQLite database at path and
// registers a flush-on-exit hook.
func NewRecorder(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("tracing: opening recorder database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY, rnti INTEGER, kind TEXT, detail TEXT, tti INTEGER
	)`); err != nil {
		return nil, fmt.Errorf("tracing: creating events table: %w", err)
	}
	stmt, err := db.Prepare(`INSERT INTO events (id, rnti, kind, detail, tti) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("tracing: preparing insert statement: %w", err)
	}

	r := &Recorder{db: db, stmt: stmt, batchSize: 500}
	atexit.Register(func() { r.Flush() })
	return r, nil
}

// Record enqueues an event, flushing immediately once the batch fills.
func (r *Recorder) Record(e Event) {
	r.pending = append(r.pending, e)
	if len(r.pending) >= r.batchSize {
		r.Flush()
	}
}

// Flush writes every pending event to the database in one transaction.
func (r *Recorder) Flush() {
	if len(r.pending) == 0 {
		return
	}
	tx, err := r.db.Begin()
	if err != nil {
		return
	}
	stmt := tx.Stmt(r.stmt)
	for _, e := range r.pending {
		_, _ = stmt.Exec(e.ID, e.RNTI, e.Kind, e.Detail, e.TTI)
	}
	_ = tx.Commit()
	r.pending = r.pending[:0]
}

// Close flushes pending events and closes the underlying database.
func (r *Recorder) Close() error {
	r.Flush()
	return r.db.Close()
}

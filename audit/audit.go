// Package audit defines the best-effort audit sink the core reports
// to. Sinks never block and cannot fail the primary operation.
package audit

import (
	"log"
	"sync"
	"time"
)

// Record is one audit entry.
type Record struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	WorkspaceID  string
	Success      bool
	Metadata     map[string]string
	At           time.Time
}

// Sink receives audit records. Implementations must return quickly
// and swallow their own failures.
type Sink interface {
	Record(r Record)
}

// Emit sends a record to sink, tolerating a nil sink.
func Emit(sink Sink, r Record) {
	if sink == nil {
		return
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	sink.Record(r)
}

// LogSink writes records to the standard logger.
type LogSink struct{}

func (LogSink) Record(r Record) {
	log.Printf("audit: user=%s action=%s resource=%s/%s workspace=%s success=%t",
		r.UserID, r.Action, r.ResourceType, r.ResourceID, r.WorkspaceID, r.Success)
}

// MemorySink collects records in memory, for tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

func (s *MemorySink) Record(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

// Records returns a copy of everything recorded so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

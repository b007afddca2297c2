package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/events"
)

// ErrDecode is returned by Load when the stored log cannot be parsed
var ErrDecode = errors.New("record log decode failed")

const storeTimeout = 5 * time.Second

// Log is the ordered list of records, newest first. Every change rewrites the
// whole list to the backend. Reads may come from any goroutine.
type Log struct {
	backend Backend
	logger  *log.Logger

	mu      sync.RWMutex
	records []Record

	changed *events.CallbackEvent[[]Record]
}

// NewLog creates an empty log on top of backend. Call Load to read stored records.
func NewLog(backend Backend, logger *log.Logger) *Log {
	if backend == nil {
		panic("Log: backend cannot be nil")
	}
	if logger == nil {
		panic("Log: logger cannot be nil")
	}
	return &Log{
		backend: backend,
		logger:  logger,
		changed: events.NewCallbackEvent[[]Record](false),
	}
}

// Load replaces the in-memory list with the stored one. A read or decode
// failure leaves the log empty; the error is returned for reporting only.
func (l *Log) Load() error {
	err := l.load()
	l.changed.Notify(l.Snapshot())
	return err
}

func (l *Log) load() error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil

	raw, err := l.backend.Get(ctx, StorageKey)
	if err != nil {
		l.logger.Printf("RecordLog: load failed: %v", err)
		return fmt.Errorf("load records: %w", err)
	}
	if raw == nil {
		l.logger.Printf("RecordLog: load (no stored records)")
		return nil
	}

	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		l.logger.Printf("RecordLog: load failed to parse, starting empty: %v", err)
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	l.records = recs
	l.logger.Printf("RecordLog: loaded %d records", len(recs))
	return nil
}

// Append inserts r at the head and persists the log. The record stays in
// memory even if persisting fails.
func (l *Log) Append(r Record) error {
	l.mu.Lock()
	l.records = append([]Record{r}, l.records...)
	l.logger.Printf("RecordLog: append %s (%s)", r.ID, r.FormattedDuration())
	err := l.saveLocked()
	l.mu.Unlock()

	l.changed.Notify(l.Snapshot())
	return err
}

// Clear removes every record and persists the empty log
func (l *Log) Clear() error {
	l.mu.Lock()
	l.records = nil
	l.logger.Printf("RecordLog: clear")
	err := l.saveLocked()
	l.mu.Unlock()

	l.changed.Notify(l.Snapshot())
	return err
}

// Listen calls fn with the records, newest first, after every Load, Append
// and Clear. fn runs on the caller's goroutine and must not modify the log.
// Returns a deregistration function that can be called to remove the listener
func (l *Log) Listen(fn func([]Record)) func() {
	return l.changed.Listen(fn)
}

func (l *Log) saveLocked() error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	recs := l.records
	if recs == nil {
		recs = []Record{}
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		l.logger.Printf("RecordLog: save marshal failed: %v", err)
		return fmt.Errorf("encode records: %w", err)
	}
	if err := l.backend.Put(ctx, StorageKey, raw); err != nil {
		l.logger.Printf("RecordLog: save failed: %v", err)
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the records, newest first
func (l *Log) Snapshot() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Record(nil), l.records...)
}

// Len returns the number of records
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

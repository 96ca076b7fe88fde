// Package flagging implements the community flag log and the
// coordinated-flagging analyzer. Flags are append-only evidence; the
// analyzer separates organic reports from brigades and converts the
// residual credible signal into a bounded reputation penalty.
package flagging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// Log is the in-memory append-only flag store. It satisfies
// domain.FlagSource; the sqlite store provides the durable variant.
type Log struct {
	mu       sync.RWMutex
	records  []domain.FlagRecord
	byTarget map[string][]int

	now func() time.Time
}

// NewLog returns an empty flag log.
func NewLog() *Log {
	return &Log{
		byTarget: make(map[string][]int),
		now:      time.Now,
	}
}

// Append validates and stores a flag. Missing IDs get a UUID, missing
// timestamps get now, missing status becomes open. The stored record is
// returned.
func (l *Log) Append(_ context.Context, rec domain.FlagRecord) (domain.FlagRecord, error) {
	if rec.Reporter == "" || rec.Target == "" {
		return domain.FlagRecord{}, domain.ErrInvalidFlag
	}
	if rec.Confidence < 0 || rec.Confidence > 1 {
		return domain.FlagRecord{}, domain.ErrBadConfidence
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = domain.FlagOpen
	}

	l.mu.Lock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now()
	}
	l.byTarget[rec.Target] = append(l.byTarget[rec.Target], len(l.records))
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec, nil
}

// FlagsFor returns all flags filed against a target, oldest first.
func (l *Log) FlagsFor(_ context.Context, target string) ([]domain.FlagRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.byTarget[target]
	out := make([]domain.FlagRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, l.records[i])
	}
	return out, nil
}

// Recent returns flags filed within the window ending at the log clock.
func (l *Log) Recent(window time.Duration) []domain.FlagRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cutoff := l.now().Add(-window)
	out := make([]domain.FlagRecord, 0, len(l.records))
	for _, r := range l.records {
		if !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// SetStatus marks a flag resolved or rejected. Records are never removed.
func (l *Log) SetStatus(id string, status domain.FlagStatus) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		if l.records[i].ID == id {
			l.records[i].Status = status
			return true
		}
	}
	return false
}

// Len returns the total number of flags ever filed.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

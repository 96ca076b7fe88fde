package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// timeFormat matches SQLite's datetime('now') text layout.
const timeFormat = "2006-01-02 15:04:05.999999999Z07:00"

// AppendFlag stores one flag record, assigning id, timestamp, and status
// defaults like the in-memory log. Satisfies the same validation rules.
func (db *DB) AppendFlag(ctx context.Context, rec domain.FlagRecord) (domain.FlagRecord, error) {
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
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	_, err := db.db.ExecContext(ctx, `
		INSERT INTO flag_records
			(id, reporter, target, flag_type, confidence, reporter_reputation, description, status, filed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Reporter, rec.Target, rec.FlagType, rec.Confidence,
		rec.ReporterReputation, rec.Description, string(rec.Status),
		rec.Timestamp.UTC().Format(timeFormat))
	if err != nil {
		return domain.FlagRecord{}, err
	}
	return rec, nil
}

// FlagsFor returns all flags against a target, oldest first. Implements
// domain.FlagSource.
func (db *DB) FlagsFor(ctx context.Context, target string) ([]domain.FlagRecord, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, reporter, target, flag_type, confidence, reporter_reputation, description, status, filed_at
		FROM flag_records WHERE target = ? ORDER BY filed_at
	`, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlags(rows)
}

// FlagsSince returns all flags filed at or after the cutoff.
func (db *DB) FlagsSince(ctx context.Context, cutoff time.Time) ([]domain.FlagRecord, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, reporter, target, flag_type, confidence, reporter_reputation, description, status, filed_at
		FROM flag_records WHERE filed_at >= ? ORDER BY filed_at
	`, cutoff.UTC().Format(timeFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlags(rows)
}

// SetFlagStatus marks a flag resolved or rejected.
func (db *DB) SetFlagStatus(ctx context.Context, id string, status domain.FlagStatus) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE flag_records SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanFlags(rows *sql.Rows) ([]domain.FlagRecord, error) {
	var out []domain.FlagRecord
	for rows.Next() {
		var rec domain.FlagRecord
		var status, filedAt string
		if err := rows.Scan(&rec.ID, &rec.Reporter, &rec.Target, &rec.FlagType,
			&rec.Confidence, &rec.ReporterReputation, &rec.Description, &status, &filedAt); err != nil {
			return nil, err
		}
		rec.Status = domain.FlagStatus(status)
		if ts, err := time.Parse(timeFormat, filedAt); err == nil {
			rec.Timestamp = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

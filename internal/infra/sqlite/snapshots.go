package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// SaveSnapshot persists one computed result. The full result is stored as
// JSON alongside the hot columns used for querying. Implements
// domain.ResultConsumer so the engine can be wired to persist every
// computation.
func (db *DB) SaveSnapshot(ctx context.Context, r domain.ReputationResult) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = db.db.ExecContext(ctx, `
		INSERT INTO reputation_snapshots
			(actor, final_reputation, overall_risk, risk_level, sybil_penalty, confidence, result_json, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Actor, r.FinalReputation, r.Risk.OverallRisk, string(r.Risk.Level),
		r.SybilPenalty, r.Confidence, string(blob),
		r.ComputedAt.UTC().Format(timeFormat))
	return err
}

// Consume implements domain.ResultConsumer.
func (db *DB) Consume(ctx context.Context, r domain.ReputationResult) error {
	return db.SaveSnapshot(ctx, r)
}

// LatestSnapshot returns the most recent snapshot for an actor, or
// sql.ErrNoRows when none exists.
func (db *DB) LatestSnapshot(ctx context.Context, actor string) (domain.ReputationResult, error) {
	var blob string
	err := db.db.QueryRowContext(ctx, `
		SELECT result_json FROM reputation_snapshots
		WHERE actor = ? ORDER BY computed_at DESC, id DESC LIMIT 1
	`, actor).Scan(&blob)
	if err != nil {
		return domain.ReputationResult{}, err
	}
	var r domain.ReputationResult
	if err := json.Unmarshal([]byte(blob), &r); err != nil {
		return domain.ReputationResult{}, err
	}
	return r, nil
}

// SnapshotHistory returns an actor's snapshots newest first, capped at limit.
func (db *DB) SnapshotHistory(ctx context.Context, actor string, limit int) ([]domain.ReputationResult, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.db.QueryContext(ctx, `
		SELECT result_json FROM reputation_snapshots
		WHERE actor = ? ORDER BY computed_at DESC, id DESC LIMIT ?
	`, actor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReputationResult
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var r domain.ReputationResult
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneSnapshots deletes snapshots older than the cutoff and returns the
// number removed.
func (db *DB) PruneSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.db.ExecContext(ctx,
		`DELETE FROM reputation_snapshots WHERE computed_at < ?`,
		cutoff.UTC().Format(timeFormat))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

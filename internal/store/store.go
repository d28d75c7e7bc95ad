// Package store persists extraction runs and their per-conversation
// feature/target values to Postgres.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siftlabs/sift/internal/extract"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS extraction_runs (
    id             UUID PRIMARY KEY,
    batch_id       TEXT NOT NULL DEFAULT '',
    source         TEXT NOT NULL DEFAULT '',
    conversations  INT  NOT NULL DEFAULT 0,
    features       INT  NOT NULL DEFAULT 0,
    targets        INT  NOT NULL DEFAULT 0,
    failures       INT  NOT NULL DEFAULT 0,
    started_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    completed_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS conversation_features (
    run_id          UUID NOT NULL REFERENCES extraction_runs(id),
    conversation_id TEXT NOT NULL,
    name            TEXT NOT NULL,
    value           JSONB NOT NULL,
    PRIMARY KEY (run_id, conversation_id, name)
);

CREATE TABLE IF NOT EXISTS conversation_targets (
    run_id          UUID NOT NULL REFERENCES extraction_runs(id),
    conversation_id TEXT NOT NULL,
    name            TEXT NOT NULL,
    metric          TEXT NOT NULL,
    value           JSONB NOT NULL,
    PRIMARY KEY (run_id, conversation_id, name)
);
`

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Run is one extraction run's metadata row.
type Run struct {
	ID            uuid.UUID
	BatchID       string
	Source        string
	Conversations int
	Features      int
	Targets       int
	Failures      int
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// CreateRun records the start of a run.
func (s *Store) CreateRun(ctx context.Context, id uuid.UUID, batchID, source string, conversations int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO extraction_runs (id, batch_id, source, conversations) VALUES ($1, $2, $3, $4)`,
		id, batchID, source, conversations,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// CompleteRun records a run's final counts.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, features, targets, failures int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE extraction_runs SET features = $2, targets = $3, failures = $4, completed_at = now() WHERE id = $1`,
		id, features, targets, failures,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// GetRun fetches one run's metadata.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var r Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, batch_id, source, conversations, features, targets, failures, started_at, completed_at
		 FROM extraction_runs WHERE id = $1`, id,
	).Scan(&r.ID, &r.BatchID, &r.Source, &r.Conversations, &r.Features, &r.Targets, &r.Failures, &r.StartedAt, &r.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &r, nil
}

// WriteResult persists every feature and target value of a run in one
// transaction.
func (s *Store) WriteResult(ctx context.Context, runID uuid.UUID, result *extract.Result) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for convID, features := range result.Features {
		for name, value := range features {
			encoded, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("marshal feature %s/%s: %w", convID, name, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO conversation_features (run_id, conversation_id, name, value) VALUES ($1, $2, $3, $4)`,
				runID, convID, name, encoded,
			); err != nil {
				return fmt.Errorf("write feature %s/%s: %w", convID, name, err)
			}
		}
	}

	for convID, targets := range result.Targets {
		for name, tv := range targets {
			encoded, err := json.Marshal(tv.Value)
			if err != nil {
				return fmt.Errorf("marshal target %s/%s: %w", convID, name, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO conversation_targets (run_id, conversation_id, name, metric, value) VALUES ($1, $2, $3, $4, $5)`,
				runID, convID, name, tv.Metric, encoded,
			); err != nil {
				return fmt.Errorf("write target %s/%s: %w", convID, name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRunResult reassembles the features/targets document for a run.
func (s *Store) GetRunResult(ctx context.Context, runID uuid.UUID) (*extract.Result, error) {
	result := extract.NewResult()

	rows, err := s.pool.Query(ctx,
		`SELECT conversation_id, name, value FROM conversation_features WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	if err := scanFeatures(rows, result); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT conversation_id, name, metric, value FROM conversation_targets WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	if err := scanTargets(rows, result); err != nil {
		return nil, err
	}

	return result, nil
}

func scanFeatures(rows pgx.Rows, result *extract.Result) error {
	defer rows.Close()
	for rows.Next() {
		var convID, name string
		var raw []byte
		if err := rows.Scan(&convID, &name, &raw); err != nil {
			return fmt.Errorf("scan feature row: %w", err)
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("decode feature %s/%s: %w", convID, name, err)
		}
		if result.Features[convID] == nil {
			result.Features[convID] = make(map[string]any)
		}
		result.Features[convID][name] = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate feature rows: %w", err)
	}
	return nil
}

func scanTargets(rows pgx.Rows, result *extract.Result) error {
	defer rows.Close()
	for rows.Next() {
		var convID, name, metric string
		var raw []byte
		if err := rows.Scan(&convID, &name, &metric, &raw); err != nil {
			return fmt.Errorf("scan target row: %w", err)
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("decode target %s/%s: %w", convID, name, err)
		}
		if result.Targets[convID] == nil {
			result.Targets[convID] = make(map[string]extract.TargetValue)
		}
		result.Targets[convID][name] = extract.TargetValue{Metric: metric, Value: value}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate target rows: %w", err)
	}
	return nil
}

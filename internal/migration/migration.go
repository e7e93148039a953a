// Package migration implements the Migration Engine: idempotent, ordered
// application of versioned SQL steps to the main schema (once per
// cluster) and to every tenant schema (once per gym). Steps are
// identified by a 3-digit version and a snake-case name; each one is
// isolated with a savepoint so a single broken step can't roll back the
// steps already applied in the same run.
package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/tenant"
)

// Step is one versioned, idempotent DDL/seed mutation. SQL must be safe
// to re-run: CREATE TABLE IF NOT EXISTS, information-schema-gated ADD
// COLUMN, CREATE INDEX IF NOT EXISTS, pg_constraint-gated constraint
// adds, or an existence-checked seed INSERT.
type Step struct {
	Version int
	Name    string
	SQL     string
}

func (s Step) contentHash() string {
	sum := sha256.Sum256([]byte(s.SQL))
	return hex.EncodeToString(sum[:])
}

func (s Step) label() string {
	return fmt.Sprintf("%03d_%s", s.Version, s.Name)
}

// Engine applies the main and tenant step sets.
type Engine struct {
	db          *database.DB
	mainSteps   []Step
	tenantSteps []Step
	logger      *logger.Logger
}

// NewEngine creates a migration engine for the given step sets, in the
// caller-supplied order (the engine does not sort them — it trusts the
// version numbers are already monotonic).
func NewEngine(db *database.DB, mainSteps, tenantSteps []Step, log *logger.Logger) *Engine {
	return &Engine{db: db, mainSteps: mainSteps, tenantSteps: tenantSteps, logger: log}
}

// ApplyMain brings the main (public) schema up to date.
func (e *Engine) ApplyMain(ctx context.Context) error {
	return e.db.WithMain(ctx, func(ctx context.Context) error {
		return e.apply(ctx, "public", e.mainSteps)
	})
}

// ApplyTenant brings a single tenant schema up to date.
func (e *Engine) ApplyTenant(ctx context.Context, gymID string) error {
	return e.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return e.apply(ctx, tenant.SchemaName(gymID), e.tenantSteps)
	})
}

func (e *Engine) apply(ctx context.Context, schema string, steps []Step) error {
	if err := e.ensureLogTable(ctx); err != nil {
		return err
	}

	applied, err := e.loadLog(ctx)
	if err != nil {
		return err
	}

	for _, step := range steps {
		log, ok := applied[step.Version]
		if ok {
			if log.ContentHash != step.contentHash() {
				e.logger.Warn().
					Int("version", step.Version).
					Str("name", step.Name).
					Str("schema", schema).
					Msg("migration content hash drift detected; not auto-remediated")
			}
			continue
		}

		if err := e.runStepInSavepoint(ctx, step); err != nil {
			e.logger.Error().
				Err(err).
				Int("version", step.Version).
				Str("name", step.Name).
				Str("schema", schema).
				Msg("migration step failed; continuing with remaining steps")
			continue
		}

		if err := e.recordLog(ctx, step); err != nil {
			return fmt.Errorf("recording migration log for %s: %w", step.label(), err)
		}
	}

	return nil
}

// runStepInSavepoint wraps a single step in its own SAVEPOINT so a
// failure rolls back only that step, not steps already applied earlier
// in the same run.
func (e *Engine) runStepInSavepoint(ctx context.Context, step Step) error {
	savepoint := fmt.Sprintf("step_%03d", step.Version)

	if _, err := e.db.ExecContext(ctx, fmt.Sprintf("SAVEPOINT %s", savepoint)); err != nil {
		return fmt.Errorf("opening savepoint: %w", err)
	}

	if _, err := e.db.ExecContext(ctx, step.SQL); err != nil {
		if _, rbErr := e.db.ExecContext(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", savepoint)); rbErr != nil {
			return fmt.Errorf("step failed (%w) and rollback to savepoint also failed: %v", err, rbErr)
		}
		return err
	}

	if _, err := e.db.ExecContext(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", savepoint)); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}

	return nil
}

func (e *Engine) ensureLogTable(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migration_log (
			version      INTEGER PRIMARY KEY,
			name         TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			applied_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

type logRow struct {
	Version     int    `db:"version"`
	Name        string `db:"name"`
	ContentHash string `db:"content_hash"`
}

func (e *Engine) loadLog(ctx context.Context) (map[int]logRow, error) {
	var rows []logRow
	if err := e.db.SelectContext(ctx, &rows, `SELECT version, name, content_hash FROM migration_log`); err != nil {
		return nil, err
	}
	out := make(map[int]logRow, len(rows))
	for _, r := range rows {
		out[r.Version] = r
	}
	return out, nil
}

func (e *Engine) recordLog(ctx context.Context, step Step) error {
	_, err := e.db.ExecContext(ctx, `
		INSERT INTO migration_log (version, name, content_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (version) DO UPDATE SET content_hash = EXCLUDED.content_hash, applied_at = now()
	`, step.Version, step.Name, step.contentHash())
	return err
}

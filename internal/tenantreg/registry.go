// Package tenantreg implements the Tenant Registry: it maps gymId to
// schema name, creates/migrates/drops per-tenant schemas, and tracks
// which tenants are active for the Scheduler's iteration.
package tenantreg

import (
	"context"
	"fmt"

	"github.com/gymflow/gymflow-backend/internal/migration"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/tenant"
)

// Registry owns schema lifecycle for every gym.
type Registry struct {
	db     *database.DB
	engine *migration.Engine
	logger *logger.Logger
}

// NewRegistry creates a Tenant Registry backed by the given migration
// engine (shared with main-schema migrations).
func NewRegistry(db *database.DB, engine *migration.Engine, log *logger.Logger) *Registry {
	return &Registry{db: db, engine: engine, logger: log}
}

// SchemaName is a pure function: no database round-trip.
func (r *Registry) SchemaName(gymID string) string {
	return tenant.SchemaName(gymID)
}

// Exists checks information_schema.schemata for the tenant's schema.
func (r *Registry) Exists(ctx context.Context, gymID string) (bool, error) {
	var exists bool
	err := r.db.WithMain(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &exists, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.schemata WHERE schema_name = $1
			)
		`, r.SchemaName(gymID))
	})
	return exists, err
}

// Create issues CREATE SCHEMA IF NOT EXISTS, hands off to the Migration
// Engine to bring the schema to the current version, then seeds
// defaults. Create is idempotent — safe to call on every reconciliation
// pass and every tenant-signup request.
func (r *Registry) Create(ctx context.Context, gymID string) error {
	schema := r.SchemaName(gymID)

	if err := r.db.WithMain(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, schema))
		return err
	}); err != nil {
		return fmt.Errorf("creating schema %s: %w", schema, err)
	}

	if err := r.engine.ApplyTenant(ctx, gymID); err != nil {
		return fmt.Errorf("migrating schema %s: %w", schema, err)
	}

	if err := r.seedDefaults(ctx, gymID); err != nil {
		return fmt.Errorf("seeding defaults for %s: %w", schema, err)
	}

	return nil
}

// seedDefaults inserts the lookup rows every fresh tenant schema needs:
// cancellation reasons, lead sources, product categories and one active
// loyalty config row. Plans, currencies, loyalty tiers, achievements and
// campaign templates are not seeded. Existence-checked so it's safe on an
// already-seeded schema.
func (r *Registry) seedDefaults(ctx context.Context, gymID string) error {
	return r.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		seeds := []struct {
			table string
			label string
		}{
			{"cancellation_reasons", "Moved away"},
			{"cancellation_reasons", "Too expensive"},
			{"cancellation_reasons", "Not using it enough"},
			{"lead_sources", "Walk-in"},
			{"lead_sources", "Referral"},
			{"lead_sources", "Social media"},
			{"product_categories", "Supplements"},
			{"product_categories", "Apparel"},
		}
		for _, seed := range seeds {
			query := fmt.Sprintf(`
				INSERT INTO %s (id, label)
				SELECT gen_random_uuid(), $1
				WHERE NOT EXISTS (SELECT 1 FROM %s WHERE label = $1)
			`, seed.table, seed.table)
			if _, err := r.db.ExecContext(ctx, query, seed.label); err != nil {
				return err
			}
		}

		_, err := r.db.ExecContext(ctx, `
			INSERT INTO loyalty_configs (id, points_per_currency, is_active)
			SELECT gen_random_uuid(), 1, true
			WHERE NOT EXISTS (SELECT 1 FROM loyalty_configs)
		`)
		return err
	})
}

// Drop cascades: every table in the tenant's schema is destroyed. Used
// only for tenant offboarding, never by the Scheduler.
func (r *Registry) Drop(ctx context.Context, gymID string) error {
	schema := r.SchemaName(gymID)
	return r.db.WithMain(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DROP SCHEMA IF EXISTS %q CASCADE`, schema))
		return err
	})
}

// ListActive returns every active gym id whose subscription is active —
// the Scheduler's iteration source. It does not check that the schema
// exists.
func (r *Registry) ListActive(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithMain(ctx, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &ids, `
			SELECT t.id
			FROM tenants t
			JOIN tenant_subscriptions ts ON ts.tenant_id = t.id
			WHERE t.is_active = true AND ts.is_active = true
		`)
	})
	return ids, err
}

// Reconcile runs at process startup: every main-schema tenant with no
// schema gets Create'd; every tenant with an existing schema gets its
// migrations re-applied (picking up anything added since it last ran).
func (r *Registry) Reconcile(ctx context.Context) error {
	var gymIDs []string
	if err := r.db.WithMain(ctx, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &gymIDs, `SELECT id FROM tenants WHERE is_active = true`)
	}); err != nil {
		return fmt.Errorf("listing tenants for reconciliation: %w", err)
	}

	for _, gymID := range gymIDs {
		exists, err := r.Exists(ctx, gymID)
		if err != nil {
			r.logger.Error().Err(err).Str("gym_id", gymID).Msg("failed to check tenant schema existence")
			continue
		}

		if !exists {
			if err := r.Create(ctx, gymID); err != nil {
				r.logger.Error().Err(err).Str("gym_id", gymID).Msg("failed to create tenant schema during reconciliation")
			}
			continue
		}

		if err := r.engine.ApplyTenant(ctx, gymID); err != nil {
			r.logger.Error().Err(err).Str("gym_id", gymID).Msg("failed to apply tenant migrations during reconciliation")
		}
	}

	return nil
}

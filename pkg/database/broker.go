package database

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/gymflow/gymflow-backend/pkg/errors"
)

type txKey struct{}

// gymIDPattern matches the gym IDs the Tenant Registry hands out (UUIDs).
// search_path can't be set with a bind parameter, so every value
// interpolated into "SET LOCAL search_path" is checked against this first.
var gymIDPattern = regexp.MustCompile(`^[0-9a-fA-F-]{1,64}$`)

// WithTenant is the Tenant Connection Broker's per-gym entry point: it
// opens a transaction, pins search_path to the gym's schema for the
// duration of fn, and guarantees the path is released on commit or
// rollback (SET LOCAL is transaction-scoped).
//
// Usage in repositories:
//
//	gymID, err := tenant.GymID(ctx)
//	if err != nil { return err }
//	err = r.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
//	    return r.db.GetContext(ctx, &m, "SELECT * FROM memberships WHERE id = $1", id)
//	})
func (db *DB) WithTenant(ctx context.Context, gymID string, fn func(context.Context) error) error {
	if !gymIDPattern.MatchString(gymID) {
		return errors.BadRequest("invalid gym identifier")
	}
	schema := fmt.Sprintf("tenant_%s", gymID)

	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`SET LOCAL search_path TO "%s", public`, schema)); err != nil {
			return errors.Transient(fmt.Sprintf("failed to pin search_path to %s", schema))
		}

		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// WithMain is the broker's entry point for main-schema work (Tenant,
// PlatformUser, SubscriptionPlan, …): it opens a transaction pinned to
// "public" so main-schema repositories share the same transactional
// contract as tenant repositories.
func (db *DB) WithMain(ctx context.Context, fn func(context.Context) error) error {
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SET LOCAL search_path TO public`); err != nil {
			return errors.Transient("failed to pin search_path to public")
		}

		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// getTx extracts transaction from context if present
func (db *DB) getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

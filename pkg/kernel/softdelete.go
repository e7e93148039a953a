package kernel

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gymflow/gymflow-backend/pkg/errors"
)

// Execer is the subset of *database.DB a soft-delete needs; both the main
// pool and a tenant-broker-scoped context satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SoftDelete marks a row deleted_at = now() and returns NotFound if no
// matching, not-already-deleted row existed. Every repository's
// SoftDelete/Cancel/Archive method follows this shape.
func SoftDelete(ctx context.Context, db Execer, table, resource, id string) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", table)
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound(resource)
	}
	return nil
}

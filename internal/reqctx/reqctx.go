// Package reqctx implements the Request Context Middleware: it allocates
// database clients for the lifetime of one request — a main-schema
// connection unconditionally, and a tenant-schema connection whenever the
// authenticated principal carries a gymId — and releases them, in LIFO
// order, when the request completes.
package reqctx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/tenant"
)

type contextKey string

const (
	mainConnKey   contextKey = "reqctx_main_conn"
	tenantConnKey contextKey = "reqctx_tenant_conn"
)

// Bundle is the typed accessor surface handlers use instead of reaching
// into context directly.
type Bundle struct {
	Main   *sqlx.Conn
	Tenant *sqlx.Conn // nil when the request has no gym context
}

// Middleware acquires a main connection for every request, and an
// additional tenant connection pinned to the principal's gym schema when
// one is present. Both are attached to the request context for the
// handler chain and released when it returns.
//
// Must run after authn.Authenticate so the principal (if any) is already
// in context.
func Middleware(mainDB, tenantDB *database.DB, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			mainConn, err := mainDB.Connx(ctx)
			if err != nil {
				httputil.Error(w, errors.Transient("failed to acquire main database connection"))
				return
			}
			defer func() {
				if _, err := mainConn.ExecContext(context.Background(), `SET search_path TO public`); err != nil {
					log.Error().Err(err).Msg("failed to reset main connection search_path on release")
				}
				mainConn.Close()
			}()

			if _, err := mainConn.ExecContext(ctx, `SET search_path TO public`); err != nil {
				httputil.Error(w, errors.Transient("failed to pin main connection search_path"))
				return
			}
			ctx = context.WithValue(ctx, mainConnKey, mainConn)

			principal := actor.FromContext(ctx)
			if principal != nil && principal.GymID != "" {
				tenantConn, err := tenantDB.Connx(ctx)
				if err != nil {
					httputil.Error(w, errors.Transient("failed to acquire tenant database connection"))
					return
				}
				defer func() {
					if _, err := tenantConn.ExecContext(context.Background(), `SET search_path TO public`); err != nil {
						log.Error().Err(err).Msg("failed to reset tenant connection search_path on release")
					}
					tenantConn.Close()
				}()

				schema := tenant.SchemaName(principal.GymID)
				if _, err := tenantConn.ExecContext(ctx, fmt.Sprintf(`SET search_path TO %q, public`, schema)); err != nil {
					httputil.Error(w, errors.Transient(fmt.Sprintf("failed to pin tenant connection search_path to %s", schema)))
					return
				}
				ctx = context.WithValue(ctx, tenantConnKey, tenantConn)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MainDb returns the request's main-schema connection.
func MainDb(ctx context.Context) (*sqlx.Conn, error) {
	conn, ok := ctx.Value(mainConnKey).(*sqlx.Conn)
	if !ok {
		return nil, errors.BadRequest("no main database client in request context")
	}
	return conn, nil
}

// TenantDb returns the request's tenant-schema connection, BadRequest if
// the request carried no gym context.
func TenantDb(ctx context.Context) (*sqlx.Conn, error) {
	conn, ok := ctx.Value(tenantConnKey).(*sqlx.Conn)
	if !ok {
		return nil, errors.BadRequest("no tenant database client in request context")
	}
	return conn, nil
}

// OptionalTenantDb returns the request's tenant connection and whether
// one was allocated, without erroring when it wasn't.
func OptionalTenantDb(ctx context.Context) (*sqlx.Conn, bool) {
	conn, ok := ctx.Value(tenantConnKey).(*sqlx.Conn)
	return conn, ok
}

// Db returns the full bundle of clients allocated to this request.
func Db(ctx context.Context) *Bundle {
	bundle := &Bundle{}
	if conn, ok := ctx.Value(mainConnKey).(*sqlx.Conn); ok {
		bundle.Main = conn
	}
	if conn, ok := ctx.Value(tenantConnKey).(*sqlx.Conn); ok {
		bundle.Tenant = conn
	}
	return bundle
}

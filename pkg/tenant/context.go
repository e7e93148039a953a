// Package tenant carries the active gym's identity and schema name through
// a request's context, the way every repository call ultimately learns
// which tenant_<gymId> schema to operate against.
package tenant

import (
	"context"
	"errors"
	"fmt"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey string

const (
	gymIDKey    contextKey = "gym_id"
	schemaKey   contextKey = "gym_schema"
	branchIDKey contextKey = "branch_id"
)

var (
	// ErrNoTenantInContext is returned when gym context is missing
	ErrNoTenantInContext = errors.New("no gym in context")
)

// SchemaName computes the tenant schema name for a gym ID, matching the
// naming the Tenant Registry uses when it provisions a gym's schema.
func SchemaName(gymID string) string {
	return fmt.Sprintf("tenant_%s", gymID)
}

// WithGym adds the active gym ID and its schema to the context. This is
// called once per request, after the gym ID has been resolved from the
// authenticated principal.
func WithGym(ctx context.Context, gymID string) context.Context {
	ctx = context.WithValue(ctx, gymIDKey, gymID)
	ctx = context.WithValue(ctx, schemaKey, SchemaName(gymID))
	return ctx
}

// WithBranch adds the active branch ID to the context, when the caller
// has scoped a request to a specific branch.
func WithBranch(ctx context.Context, branchID string) context.Context {
	return context.WithValue(ctx, branchIDKey, branchID)
}

// GymID extracts the active gym ID from context.
func GymID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(gymIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoTenantInContext
	}
	return id, nil
}

// Schema extracts the active gym's tenant schema name from context. This
// is what repositories use to pin the connection's search_path.
func Schema(ctx context.Context) (string, error) {
	schema, ok := ctx.Value(schemaKey).(string)
	if !ok || schema == "" {
		return "", ErrNoTenantInContext
	}
	return schema, nil
}

// BranchID extracts the active branch ID from context, if one was set.
func BranchID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(branchIDKey).(string)
	return id, ok && id != ""
}

// MustGymID extracts the gym ID from context and panics if not found.
// Use only where a missing gym is a programming error (inside a broker
// callback that is only ever invoked after WithGym).
func MustGymID(ctx context.Context) string {
	id, err := GymID(ctx)
	if err != nil {
		panic("gym ID not found in context")
	}
	return id
}

// MustSchema extracts the tenant schema from context and panics if not
// found.
func MustSchema(ctx context.Context) string {
	schema, err := Schema(ctx)
	if err != nil {
		panic("gym schema not found in context")
	}
	return schema
}

// Package actor provides the Principal pattern for identifying the caller
// performing an action, threaded through context for audit logging and
// authorization decisions.
package actor

import (
	"context"
	"fmt"
)

// Actor represents the authenticated principal performing an action.
type Actor struct {
	// ID is the unique identifier of the actor (user ID)
	ID string `json:"id"`

	// FirstName is the actor's first name
	FirstName string `json:"first_name"`

	// LastName is the actor's last name
	LastName string `json:"last_name"`

	// Email is the actor's email address
	Email string `json:"email"`

	// GymID is the gym (tenant) the actor belongs to. Empty for a
	// super-admin operating at the platform level.
	GymID string `json:"gym_id,omitempty"`

	// BranchID scopes the actor to a single branch within the gym, when set.
	BranchID string `json:"branch_id,omitempty"`

	// RoleName is the actor's role (optional, for display purposes)
	RoleName string `json:"role_name,omitempty"`

	// IsSuperAdmin marks a platform operator who bypasses gym-level role
	// checks (but never the feature-flag or scope guards).
	IsSuperAdmin bool `json:"is_super_admin,omitempty"`
}

// FullName returns the actor's full name (first + last)
func (a *Actor) FullName() string {
	if a == nil {
		return ""
	}
	return a.FirstName + " " + a.LastName
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.FullName(), a.Email)
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present (e.g., system operations).
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	actor, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return actor
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// MustFromContext retrieves the Actor from the context.
// Panics if no actor is present. Use only when actor is guaranteed to exist.
func MustFromContext(ctx context.Context) *Actor {
	actor := FromContext(ctx)
	if actor == nil {
		panic("actor not found in context")
	}
	return actor
}

// SystemActor returns an Actor representing the system itself.
// Use this for background jobs, scheduled tasks, and system-initiated operations.
func SystemActor() *Actor {
	return &Actor{
		ID:           "00000000-0000-0000-0000-000000000000",
		FirstName:    "System",
		Email:        "system@gymflow.local",
		IsSuperAdmin: true,
	}
}

// IsSystem returns true if the actor represents the system.
func (a *Actor) IsSystem() bool {
	if a == nil {
		return true
	}
	return a.ID == "00000000-0000-0000-0000-000000000000"
}

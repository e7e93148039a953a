package authn

import (
	"context"
	"net/http"
	"strings"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/capability"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/permissions"
)

// FeatureLookup resolves a gym's enabled feature codes from its active
// subscription plan. Implemented by internal/platform.
type FeatureLookup interface {
	FeaturesForGym(ctx context.Context, gymID string) ([]string, error)
}

// Authenticate is the first guard: it parses the bearer token and attaches
// the resulting Principal to the request context. Guards further down the
// chain (Role/Feature/Scope) assume a Principal is already present.
func Authenticate(manager *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				httputil.Error(w, errors.Unauthorized("missing bearer token"))
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims, err := manager.ValidateAccessToken(tokenString)
			if err != nil {
				httputil.Error(w, err)
				return
			}

			principal := &actor.Actor{
				ID:           claims.UserID,
				Email:        claims.Email,
				RoleName:     claims.Role,
				GymID:        claims.GymID,
				BranchID:     claims.BranchID,
				IsSuperAdmin: claims.IsSuperAdmin,
			}

			ctx := actor.WithActor(r.Context(), principal)
			ctx = withPermissions(ctx, claims.Permissions)
			ctx = withFeatures(ctx, claims.Features)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole is the second guard: the handler declares an allowed role
// set; a super-admin always bypasses it.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := actor.FromContext(r.Context())
			if principal == nil {
				httputil.Error(w, errors.Unauthorized("no authenticated principal"))
				return
			}
			if principal.IsSuperAdmin || allowed[principal.RoleName] {
				next.ServeHTTP(w, r)
				return
			}
			httputil.Error(w, errors.Forbidden("role not permitted"))
		})
	}
}

// RequirePermission checks the token's wildcard-expandable permission set
// (distinct from the coarser role check).
func RequirePermission(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := actor.FromContext(r.Context())
			if principal != nil && principal.IsSuperAdmin {
				next.ServeHTTP(w, r)
				return
			}
			perms := Permissions(r.Context())
			if !permissions.HasPermission(perms, required) {
				httputil.Error(w, errors.Forbidden("missing permission: "+required))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireFeature is the third guard: the handler declares required
// feature codes looked up against the gym's active subscription plan. A
// super-admin bypasses it; a gym with no active subscription is Forbidden.
func RequireFeature(lookup FeatureLookup, codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := actor.FromContext(r.Context())
			if principal == nil {
				httputil.Error(w, errors.Unauthorized("no authenticated principal"))
				return
			}
			if principal.IsSuperAdmin {
				next.ServeHTTP(w, r)
				return
			}
			if principal.GymID == "" {
				httputil.Error(w, errors.Forbidden("gym context required"))
				return
			}

			features, err := lookup.FeaturesForGym(r.Context(), principal.GymID)
			if err != nil {
				httputil.Error(w, errors.Forbidden("no active subscription"))
				return
			}

			if !capability.HasAll(features, codes...) {
				httputil.Error(w, errors.Forbidden("feature not enabled for this gym"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireGym is the scope-extraction guard: it requires the principal to
// carry a gymId (a super-admin with no gym selected is Forbidden for
// gym-scoped operations).
func RequireGym(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := actor.FromContext(r.Context())
		if principal == nil || principal.GymID == "" {
			httputil.Error(w, errors.Forbidden("gym context required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const (
	permissionsKey contextKey = "token_permissions"
	featuresKey    contextKey = "token_features"
)

func withPermissions(ctx context.Context, perms []string) context.Context {
	return context.WithValue(ctx, permissionsKey, perms)
}

// Permissions returns the bearer token's permission grants.
func Permissions(ctx context.Context) []string {
	p, _ := ctx.Value(permissionsKey).([]string)
	return p
}

func withFeatures(ctx context.Context, features []string) context.Context {
	return context.WithValue(ctx, featuresKey, features)
}

// TokenFeatures returns feature codes baked directly into the token, if
// any (used for short-lived impersonation tokens that skip the plan
// lookup).
func TokenFeatures(ctx context.Context) []string {
	f, _ := ctx.Value(featuresKey).([]string)
	return f
}

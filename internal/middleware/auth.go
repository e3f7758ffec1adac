package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/auth"
)

type contextKeyStaffID struct{}
type contextKeyStaffRole struct{}

// StaffID returns the authenticated staff member's ID, or nil when the
// request is unauthenticated (public endpoints, system jobs).
func StaffID(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(contextKeyStaffID{}).(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// StaffRole returns the authenticated role, or "" when unauthenticated.
func StaffRole(ctx context.Context) auth.Role {
	role, _ := ctx.Value(contextKeyStaffRole{}).(auth.Role)
	return role
}

// RequireStaff returns a middleware that rejects requests without a valid
// staff bearer token. Admin tokens pass too; use RequireAdmin to narrow.
func RequireStaff(tokens *auth.TokenService, log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(tokens, log, auth.RoleStaff, auth.RoleAdmin)
}

// RequireAdmin returns a middleware that only admits admin tokens.
func RequireAdmin(tokens *auth.TokenService, log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(tokens, log, auth.RoleAdmin)
}

func requireRole(tokens *auth.TokenService, log *slog.Logger, allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				log.WarnContext(r.Context(), "rejected token", "error", err)
				unauthorized(w)
				return
			}

			staffID, err := uuid.Parse(claims.Subject)
			if err != nil {
				log.WarnContext(r.Context(), "rejected token", "error", "non-uuid subject")
				unauthorized(w)
				return
			}

			var roleOK bool
			for _, role := range allowed {
				if claims.Role == role {
					roleOK = true
					break
				}
			}
			if !roleOK {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden"}`))
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyStaffID{}, staffID)
			ctx = context.WithValue(ctx, contextKeyStaffRole{}, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}

package middleware

import (
	"anamnese/internal/model"
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
)

type contextKey string

const (
	staffClaimsKey   contextKey = "staffClaims"
	patientClaimsKey contextKey = "patientClaims"
)

// TokenValidator checks staff and patient tokens
type TokenValidator interface {
	ValidateStaffToken(token string) (*model.StaffClaims, error)
	ValidatePatientToken(token string) (*model.PatientClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	auth TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireStaff validates a staff JWT from the Authorization header
func (m *AuthMiddleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := m.auth.ValidateStaffToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), staffClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects staff whose role is not listed. It must run after
// RequireStaff
func (m *AuthMiddleware) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetStaff(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePatient validates a session-scoped patient JWT
func (m *AuthMiddleware) RequirePatient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization")
			return
		}

		claims, err := m.auth.ValidatePatientToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), patientClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStaff extracts staff claims from context
func GetStaff(ctx context.Context) *model.StaffClaims {
	claims, _ := ctx.Value(staffClaimsKey).(*model.StaffClaims)
	return claims
}

// GetPatient extracts patient claims from context
func GetPatient(ctx context.Context) *model.PatientClaims {
	claims, _ := ctx.Value(patientClaimsKey).(*model.PatientClaims)
	return claims
}

// principal identifies the caller for idempotency scoping
func principal(ctx context.Context) string {
	if c := GetStaff(ctx); c != nil {
		return "staff:" + c.TenantID + ":" + c.UserID
	}
	if c := GetPatient(ctx); c != nil {
		return "patient:" + c.TenantID + ":" + c.SessionID
	}
	return "anonymous"
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards back-office routes. The key is read from X-Admin-Key
// or an Authorization bearer token. With no key configured the routes stay
// closed.
func RequireAdminKey(key string) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(want) == 0 {
				denyAdmin(w, http.StatusForbidden, "ADMIN_DISABLED", "Admin access is not configured.")
				return
			}
			got, ok := adminKeyFrom(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				denyAdmin(w, http.StatusUnauthorized, "UNAUTHORIZED", "A valid admin key is required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminKeyFrom(r *http.Request) (string, bool) {
	if k := strings.TrimSpace(r.Header.Get(AdminKeyHeader)); k != "" {
		return k, true
	}
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	k := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return k, k != ""
}

func denyAdmin(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   code,
		"message": message,
	})
}

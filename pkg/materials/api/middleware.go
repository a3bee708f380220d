package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// Credentials is the static admin credential pair guarding the mutating
// endpoints. A request must carry "login:password" in the Authorization
// header. This is deliberately not a security-grade scheme; it mirrors
// what the single-admin frontend sends.
type Credentials struct {
	Login    string
	Password string
}

// RequireAuth rejects requests whose Authorization header does not match
// the configured credentials, before the handler runs.
func RequireAuth(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				renderError(w, r, http.StatusForbidden, "no access")
				return
			}

			login, password, _ := strings.Cut(header, ":")
			if login != creds.Login || password != creds.Password {
				renderError(w, r, http.StatusForbidden, "invalid login or password")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORS is the permissive policy the admin frontend relies on.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}

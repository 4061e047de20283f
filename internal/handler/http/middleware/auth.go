package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/practice-payroll/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// PracticeRequired rejects requests whose verified token does not carry a
// practice_id claim. Every payroll query is scoped by that claim.
func PracticeRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "Missing token")
			return
		}

		practiceID, ok := claims["practice_id"].(string)
		if !ok || practiceID == "" {
			response.Unauthorized(w, "practice_id claim is required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

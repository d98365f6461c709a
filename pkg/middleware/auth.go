package middleware

import (
	"context"
	"net/http"
	"strings"

	"reservio/pkg/logger"
)

const UserIDKey contextKey = "user_id"

// TokenResolver turns a bearer token into a user id. The accounts
// service implements it; an error means the token is missing, expired,
// or revoked.
type TokenResolver func(ctx context.Context, token string) (string, error)

// publicRoute reports whether a request may proceed without a session.
// Registration and sign-in are the only ways to obtain one.
func publicRoute(r *http.Request) bool {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/accounts":
		return true
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/sessions":
		return true
	}
	return false
}

// SessionAuth resolves the caller once per request and stores the user
// id in the context. Handlers read it with UserIDFrom and pass it into
// services explicitly; nothing below the boundary touches the session.
func SessionAuth(resolve TokenResolver, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicRoute(r) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				rejectUnauthenticated(w, log, r, "missing bearer token")
				return
			}

			userID, err := resolve(r.Context(), token)
			if err != nil {
				rejectUnauthenticated(w, log, r, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the authenticated user id placed by SessionAuth.
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func rejectUnauthenticated(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Unauthenticated request rejected",
		"request_id", requestIDFrom(r.Context()),
		"path", r.URL.Path,
		"method", r.Method,
		"reason", reason,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
}

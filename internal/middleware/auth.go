package middleware

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cloudly/miniapp/internal/ctxkeys"
	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/web"
)

// AuthMiddleware resolves the session token and adds the user to the context if valid.
// The token is read from an "Authorization: Bearer" header, falling back to the auth cookie.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				slog.Debug("ignoring invalid session token", "error", err, "path", r.URL.Path)
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) (token string, fromCookie bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value), false
		}
	}

	cookie, err := r.Cookie(service.AuthCookieName)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// RequireAuth rejects requests without an authenticated user.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			web.RespondJSONError(w, r, fmt.Errorf("authentication %w", web.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin protects admin endpoints with HTTP basic auth against a
// bcrypt password hash. Admin routes 404 when no hash is configured.
func RequireAdmin(username, passwordHash string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				http.NotFound(w, r)
				return
			}

			user, password, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
				bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
				slog.Warn("admin authentication failed", "ip", getClientIP(r), "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
				web.RespondJSONError(w, r, fmt.Errorf("admin %w", web.ErrUnauthorized))
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

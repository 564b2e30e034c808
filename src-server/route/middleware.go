package route

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"banquet/src-server/jwt"
	"banquet/src-server/model"
	"banquet/src-server/utils"
)

type GuestCtxKeyType string

type SessionCtxKeyType string

const (
	GuestCtxKey             GuestCtxKeyType   = "guest-payload"
	SessionCtxKey           SessionCtxKeyType = "session"
	SessionSecretCookieName string            = "session-secret"
)

// GuestAuthMiddleware validates the bearer token issued at login and
// injects its payload. The authenticated guest can only ever reach
// their own record; routes read the guest id from the payload, never
// from the URL.
func GuestAuthMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Authorization header not found"))
			return
		}

		payload, err := jwt.Decode(token, as.Config.GetJWTSecret())
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid token"))
			return
		}
		if time.Unix(payload.IssuedAt, 0).UTC().
			Add(as.Config.GetJWTExpire()).Before(time.Now()) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Token expired"))
			return
		}

		ctx := context.WithValue(r.Context(), GuestCtxKey, payload)
		next(w, r.WithContext(ctx))
	}
}

// AdminAuthMiddleware resolves the organizer session cookie and injects
// the session so handlers can thread the actor name into audit rows.
func AdminAuthMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionSecret := func() string {
			sessionCookie, err := r.Cookie(SessionSecretCookieName)
			if err == nil {
				return strings.TrimSpace(sessionCookie.Value)
			}
			return ""
		}()
		if sessionSecret == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Session secret cookie not found"))
			return
		}

		startTimer := time.Now()
		sessionModel := new(model.Session)
		if err := as.BunDB.
			NewSelect().
			Model(sessionModel).
			Where("secret = ?", sessionSecret).
			Scan(r.Context()); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Session secret not found"))
			return
		}
		select {
		case as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		if time.Unix(sessionModel.CreatedAtUnixUTC, 0).UTC().
			Add(time.Hour * 24 * 7).Before(time.Now()) {
			if _, err := as.BunDB.
				NewDelete().
				Model((*model.Session)(nil)).
				Where("secret = ?", sessionSecret).
				Exec(r.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't delete session model in DB"))
				slog.Error("can't delete session model in DB", "error", err)
				return
			}

			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Session expired"))
			return
		}

		ctx := context.WithValue(r.Context(), SessionCtxKey, sessionModel)
		next(w, r.WithContext(ctx))
	}
}

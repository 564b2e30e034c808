package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"banquet/src-server/jwt"
	"banquet/src-server/model"
	"banquet/src-server/store"
	"banquet/src-server/utils"

	"github.com/google/uuid"
)

func Auth(muxer *http.ServeMux, as *utils.AppState, guestStore *store.GuestStore) {
	type LoginReqBody struct {
		GuestCode string `json:"guestCode"`
	}
	type LoginRespBody struct {
		Token string `json:"token"`
	}

	// exchange an invitation code for a guest token
	muxer.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var reqBody LoginReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}

		startTimer := time.Now()
		guest, err := guestStore.LoadFullByCode(r.Context(), reqBody.GuestCode)
		switch {
		case errors.Is(err, store.ErrGuestNotFound):
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid guest code"))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't load guest"))
			slog.Error("can't load guest for login", "error", err)
			return
		}
		select {
		case as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		token, err := jwt.Encode(jwt.Payload{
			GuestID:   guest.ID,
			GuestCode: guest.GuestCode,
			IssuedAt:  time.Now().UTC().Unix(),
		}, as.Config.GetJWTSecret())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't create token"))
			slog.Error("can't create guest token", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(LoginRespBody{Token: token}); err != nil {
			slog.Error("can't encode login response", "error", err)
		}
	})

	type AdminLoginReqBody struct {
		ActorName string `json:"actorName"`
	}

	// exchange the admin key for a session cookie; the actor name ends
	// up in every audit row this session writes
	muxer.HandleFunc("POST /api/auth/admin/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Key") != as.Config.GetAdminKey() {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid admin key"))
			return
		}

		var reqBody AdminLoginReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		actorName := strings.TrimSpace(reqBody.ActorName)
		if actorName == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Actor name is required"))
			return
		}

		sessionModel := model.Session{
			Secret:           uuid.NewString(),
			ActorName:        actorName,
			CreatedAtUnixUTC: time.Now().UTC().Unix(),
			IpAddress:        r.RemoteAddr,
			UserAgent:        r.UserAgent(),
		}
		startTimer := time.Now()
		if _, err := as.BunDB.NewInsert().
			Model(&sessionModel).
			Exec(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't insert session model to DB"))
			slog.Error("can't insert session model to DB", "error", err)
			return
		}
		select {
		case as.MetricChans.DatabaseWrite <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		w.Header().Set("Set-Cookie",
			SessionSecretCookieName+"="+sessionModel.Secret+"; Path=/; HttpOnly; SameSite=Lax")
		w.WriteHeader(http.StatusOK)
	})

	// logout
	muxer.HandleFunc("DELETE /api/auth/admin", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		sessionModel, ok := r.Context().Value(SessionCtxKey).(*model.Session)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get session from middleware"))
			return
		}
		if _, err := as.BunDB.NewDelete().
			Model((*model.Session)(nil)).
			Where("secret = ?", sessionModel.Secret).
			Exec(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete session model in DB"))
			slog.Error("can't delete session model in DB", "error", err)
			return
		}
		w.Header().Set("Set-Cookie", SessionSecretCookieName+"=; Path=/; HttpOnly; SameSite=Lax")
		w.WriteHeader(http.StatusOK)
	}))
}

package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"banquet/src-server/channel"
	"banquet/src-server/jwt"
	"banquet/src-server/store"
	"banquet/src-server/utils"
)

// Guest wires the self-service channel: token-authenticated "me" routes
// plus the public code-based routes the invitation link uses.
func Guest(muxer *http.ServeMux, as *utils.AppState, guestStore *store.GuestStore, selfService *channel.SelfService) {
	type RsvpRespBody struct {
		Guest             GuestRespBody `json:"guest"`
		Adults            int           `json:"adults"`
		Minors            int           `json:"minors"`
		AttendanceChanged bool          `json:"attendanceChanged"`
	}

	writeOutcome := func(w http.ResponseWriter, outcome channel.Outcome) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(RsvpRespBody{
			Guest:             toGuestRespBody(outcome.Guest),
			Adults:            outcome.Adults,
			Minors:            outcome.Minors,
			AttendanceChanged: outcome.AttendanceChanged,
		}); err != nil {
			slog.Error("can't encode rsvp response", "error", err)
		}
	}

	// the authenticated guest's own profile, companions included
	muxer.HandleFunc("GET /api/guest/me", GuestAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		payload, ok := r.Context().Value(GuestCtxKey).(*jwt.Payload)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get token payload from middleware"))
			return
		}

		startTimer := time.Now()
		guest, err := guestStore.LoadFull(r.Context(), payload.GuestID)
		switch {
		case errors.Is(err, store.ErrGuestNotFound):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Guest not found"))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't load guest"))
			slog.Error("can't load guest", "error", err)
			return
		}
		select {
		case as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toGuestRespBody(guest)); err != nil {
			slog.Error("can't encode guest response", "error", err)
		}
	}))

	// submit or update the guest's own RSVP
	muxer.HandleFunc("POST /api/guest/me/rsvp", GuestAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		payload, ok := r.Context().Value(GuestCtxKey).(*jwt.Payload)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get token payload from middleware"))
			return
		}
		if !deadlineOpen(as, w) {
			return
		}

		var reqBody RsvpReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.Attending == nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Field 'attending' is required"))
			return
		}

		startTimer := time.Now()
		outcome, err := selfService.Submit(r.Context(), payload.GuestID, reqBody.ToProposal())
		if err != nil {
			writeSubmitError(w, err)
			return
		}
		select {
		case as.MetricChans.DatabaseWrite <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		slog.Info("self-service rsvp recorded",
			"guest_id", payload.GuestID,
			"attendance", outcome.Guest.Attendance,
			"email", maskEmail(outcome.Guest.Contact.Email),
		)
		writeOutcome(w, outcome)
	}))

	// public read by invitation code, used to pre-fill the form
	muxer.HandleFunc("GET /api/guest/code/{guestCode}", func(w http.ResponseWriter, r *http.Request) {
		guest, err := guestStore.LoadFullByCode(r.Context(), r.PathValue("guestCode"))
		switch {
		case errors.Is(err, store.ErrGuestNotFound):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Invalid guest code"))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't load guest"))
			slog.Error("can't load guest by code", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toGuestRespBody(guest)); err != nil {
			slog.Error("can't encode guest response", "error", err)
		}
	})

	// public submit by invitation code
	muxer.HandleFunc("POST /api/guest/code/{guestCode}/rsvp", func(w http.ResponseWriter, r *http.Request) {
		if !deadlineOpen(as, w) {
			return
		}

		var reqBody RsvpReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.Attending == nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Field 'attending' is required"))
			return
		}

		outcome, err := selfService.SubmitByCode(r.Context(), r.PathValue("guestCode"), reqBody.ToProposal())
		if err != nil {
			if errors.Is(err, store.ErrGuestNotFound) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("Invalid guest code"))
				return
			}
			writeSubmitError(w, err)
			return
		}

		slog.Info("public rsvp recorded",
			"guest_id", outcome.Guest.ID,
			"attendance", outcome.Guest.Attendance,
			"email", maskEmail(outcome.Guest.Contact.Email),
		)
		writeOutcome(w, outcome)
	})
}

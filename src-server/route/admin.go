package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"banquet/src-server/channel"
	"banquet/src-server/model"
	"banquet/src-server/rsvp"
	"banquet/src-server/store"
	"banquet/src-server/utils"
)

// Admin wires the organizer surface: guest list and dashboard, full CRUD
// on invitations, the assisted submission path, and follow-up reminders.
// Every route sits behind the session-cookie middleware.
func Admin(muxer *http.ServeMux, as *utils.AppState, guestStore *store.GuestStore, assisted *channel.Assisted) {
	sessionFromCtx := func(w http.ResponseWriter, r *http.Request) (*model.Session, bool) {
		session, ok := r.Context().Value(SessionCtxKey).(*model.Session)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get session from middleware"))
			return nil, false
		}
		return session, true
	}

	// guest list as summaries, optionally filtered by attendance. The
	// summaries have no companion data and are not editable state; the
	// edit form fetches the full record separately.
	muxer.HandleFunc("GET /api/admin/guests", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		attendance := rsvp.AttendanceType(r.URL.Query().Get("attendance"))
		switch attendance {
		case "", rsvp.ATTENDANCE_UNDECIDED, rsvp.ATTENDANCE_ATTENDING, rsvp.ATTENDANCE_DECLINED:
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid attendance filter"))
			return
		}

		startTimer := time.Now()
		summaries, err := guestStore.ListSummaries(r.Context(), attendance)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't list guests"))
			slog.Error("can't list guests", "error", err)
			return
		}
		select {
		case as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summaries); err != nil {
			slog.Error("can't encode guest summaries", "error", err)
		}
	}))

	// attendance dashboard numbers
	muxer.HandleFunc("GET /api/admin/totals", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		totals, err := guestStore.Totals(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't compute totals"))
			slog.Error("can't compute totals", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(totals); err != nil {
			slog.Error("can't encode totals", "error", err)
		}
	}))

	// full record for the edit form, companions included
	muxer.HandleFunc("GET /api/admin/guests/{guestID}", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		guest, err := assisted.OpenForEdit(r.Context(), r.PathValue("guestID"))
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

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toGuestRespBody(guest)); err != nil {
			slog.Error("can't encode guest response", "error", err)
		}
	}))

	// create an invitation
	muxer.HandleFunc("POST /api/admin/guests", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			FullName      string `json:"fullName"`
			Email         string `json:"email"`
			Phone         string `json:"phone"`
			Language      string `json:"language"`
			MaxCompanions int    `json:"maxCompanions"`
			GuestCode     string `json:"guestCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if strings.TrimSpace(reqBody.FullName) == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Field 'fullName' is required"))
			return
		}
		if reqBody.MaxCompanions < 0 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Field 'maxCompanions' can't be negative"))
			return
		}

		startTimer := time.Now()
		guest, err := guestStore.CreateGuest(r.Context(), store.CreateGuestParams{
			FullName:      utils.CleanupName(reqBody.FullName),
			Email:         reqBody.Email,
			Phone:         reqBody.Phone,
			Language:      reqBody.Language,
			MaxCompanions: reqBody.MaxCompanions,
			GuestCode:     reqBody.GuestCode,
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't create guest"))
			slog.Error("can't create guest", "error", err)
			return
		}
		select {
		case as.MetricChans.DatabaseWrite <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(toGuestRespBody(guest)); err != nil {
			slog.Error("can't encode guest response", "error", err)
		}
	}))

	// update invitation policy and identity fields; attendance and
	// companions only ever change through the rsvp route below
	muxer.HandleFunc("PATCH /api/admin/guests/{guestID}", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			FullName      *string `json:"fullName,omitempty"`
			Email         *string `json:"email,omitempty"`
			Phone         *string `json:"phone,omitempty"`
			Language      *string `json:"language,omitempty"`
			MaxCompanions *int    `json:"maxCompanions,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.FullName != nil && strings.TrimSpace(*reqBody.FullName) == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Field 'fullName' can't be blank"))
			return
		}
		if reqBody.MaxCompanions != nil && *reqBody.MaxCompanions < 0 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Field 'maxCompanions' can't be negative"))
			return
		}

		guest, err := guestStore.UpdateProfile(r.Context(), r.PathValue("guestID"), store.ProfileUpdate{
			FullName:      reqBody.FullName,
			Email:         reqBody.Email,
			Phone:         reqBody.Phone,
			Language:      reqBody.Language,
			MaxCompanions: reqBody.MaxCompanions,
		})
		switch {
		case errors.Is(err, store.ErrGuestNotFound):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Guest not found"))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't update guest"))
			slog.Error("can't update guest", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toGuestRespBody(guest)); err != nil {
			slog.Error("can't encode guest response", "error", err)
		}
	}))

	muxer.HandleFunc("DELETE /api/admin/guests/{guestID}", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromCtx(w, r)
		if !ok {
			return
		}

		guestID := r.PathValue("guestID")
		if err := guestStore.DeleteGuest(r.Context(), guestID); err != nil {
			if errors.Is(err, store.ErrGuestNotFound) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("Guest not found"))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete guest"))
			slog.Error("can't delete guest", "error", err)
			return
		}

		slog.Info("guest deleted", "guest_id", guestID, "actor", session.ActorName)
		w.WriteHeader(http.StatusNoContent)
	}))

	// record an RSVP on the guest's behalf, typically mid-phone-call.
	// force bypasses the deadline.
	muxer.HandleFunc("POST /api/admin/guests/{guestID}/rsvp", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromCtx(w, r)
		if !ok {
			return
		}

		var reqBody struct {
			RsvpReqBody
			RecordedVia   string `json:"recordedVia,omitempty"`
			ContactWaived bool   `json:"contactWaived,omitempty"`
			Force         bool   `json:"force,omitempty"`
		}
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
		if !reqBody.Force && !deadlineOpen(as, w) {
			return
		}

		startTimer := time.Now()
		outcome, err := assisted.Submit(r.Context(), r.PathValue("guestID"), reqBody.ToProposal(), channel.ChannelMetadata{
			Actor:         session.ActorName,
			RecordedVia:   reqBody.RecordedVia,
			ContactWaived: reqBody.ContactWaived,
		})
		if err != nil {
			if errors.Is(err, store.ErrGuestNotFound) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("Guest not found"))
				return
			}
			writeSubmitError(w, err)
			return
		}
		select {
		case as.MetricChans.DatabaseWrite <- float64(time.Since(startTimer).Microseconds()):
		default:
		}

		slog.Info("assisted rsvp recorded",
			"guest_id", outcome.Guest.ID,
			"attendance", outcome.Guest.Attendance,
			"actor", session.ActorName,
			"recorded_via", reqBody.RecordedVia,
		)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(struct {
			Guest             GuestRespBody `json:"guest"`
			Adults            int           `json:"adults"`
			Minors            int           `json:"minors"`
			AttendanceChanged bool          `json:"attendanceChanged"`
		}{
			Guest:             toGuestRespBody(outcome.Guest),
			Adults:            outcome.Adults,
			Minors:            outcome.Minors,
			AttendanceChanged: outcome.AttendanceChanged,
		}); err != nil {
			slog.Error("can't encode rsvp response", "error", err)
		}
	}))

	// schedule a follow-up reminder; dueAt takes natural language like
	// "tomorrow at 10am" as well as RFC 3339
	muxer.HandleFunc("POST /api/admin/guests/{guestID}/followup", AdminAuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			Note  string `json:"note"`
			DueAt string `json:"dueAt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if strings.TrimSpace(reqBody.Note) == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Field 'note' is required"))
			return
		}

		dueAt, err := time.Parse(time.RFC3339, reqBody.DueAt)
		if err != nil {
			result, err := as.When.Parse(reqBody.DueAt, time.Now())
			if err != nil || result == nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Can't understand the due time"))
				return
			}
			dueAt = result.Time
		}
		if dueAt.Before(time.Now()) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Due time is in the past"))
			return
		}

		followUp, err := guestStore.AddFollowUp(r.Context(), r.PathValue("guestID"), strings.TrimSpace(reqBody.Note), dueAt)
		switch {
		case errors.Is(err, store.ErrGuestNotFound):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Guest not found"))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't create follow-up"))
			slog.Error("can't create follow-up", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(struct {
			ID    string `json:"id"`
			DueAt string `json:"dueAt"`
		}{
			ID:    followUp.ID,
			DueAt: time.Unix(followUp.DueAtUnixUTC, 0).UTC().Format(time.RFC3339),
		}); err != nil {
			slog.Error("can't encode follow-up response", "error", err)
		}
	}))
}

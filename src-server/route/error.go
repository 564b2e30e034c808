package route

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"banquet/src-server/rsvp"
	"banquet/src-server/store"
)

// writeSubmitError keeps rejection kinds distinct on the wire: each one
// implies a different corrective action for the client. Storage faults
// pass through as 5xx, never dressed up as business rejections.
func writeSubmitError(w http.ResponseWriter, err error) {
	var rejected *rsvp.RejectedChange
	switch {
	case errors.As(err, &rejected):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"rejected":%q,"detail":%q}`, rejected.Kind, rejected.Detail)
	case errors.Is(err, store.ErrGuestNotFound):
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Guest not found"))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't process submission"))
		slog.Error("can't process rsvp submission", "error", err)
	}
}

// maskEmail keeps addresses out of logs: "ana@example.com" ->
// "an***@example.com".
func maskEmail(addr string) string {
	if addr == "" {
		return "<no-email>"
	}
	at := strings.Index(addr, "@")
	if at < 0 || len(addr) < 3 {
		return addr[:min(2, len(addr))] + "***"
	}
	name, domain := addr[:at], addr[at+1:]
	return name[:min(2, len(name))] + "***@" + domain
}

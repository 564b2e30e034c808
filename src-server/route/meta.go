package route

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"banquet/src-server/utils"
)

// allergenVocabulary is the chip list the RSVP form renders. Guests can
// still type codes outside it; storage keeps whatever they send.
var allergenVocabulary = []string{
	"gluten", "dairy", "nuts", "seafood", "eggs",
	"soy", "vegan", "vegetarian", "pork", "other",
}

// Meta wires the unauthenticated metadata routes the RSVP form needs
// before anyone logs in: the allergen vocabulary, the deadline, and a
// calendar file for the event itself.
func Meta(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /api/meta/options", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(struct {
			AllergyTags  []string `json:"allergyTags"`
			RsvpDeadline string   `json:"rsvpDeadline"`
		}{
			AllergyTags:  allergenVocabulary,
			RsvpDeadline: as.Config.GetRsvpDeadline().UTC().Format(time.RFC3339),
		}); err != nil {
			slog.Error("can't encode meta options", "error", err)
		}
	})

	muxer.HandleFunc("GET /api/meta/event.ics", func(w http.ResponseWriter, r *http.Request) {
		start := as.Config.GetEventStart()
		if start.IsZero() {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Event date is not configured"))
			return
		}
		end := start.Add(time.Hour * 5)

		var sb strings.Builder
		sb.WriteString("BEGIN:VCALENDAR\r\n")
		sb.WriteString("VERSION:2.0\r\n")
		sb.WriteString("PRODID:-//banquet//banquet//EN\r\n")
		sb.WriteString("BEGIN:VEVENT\r\n")
		sb.WriteString("UID:banquet-event@banquet\r\n")
		sb.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", time.Now().UTC().Format("20060102T150405Z")))
		sb.WriteString(fmt.Sprintf("DTSTART:%s\r\n", start.UTC().Format("20060102T150405Z")))
		sb.WriteString(fmt.Sprintf("DTEND:%s\r\n", end.UTC().Format("20060102T150405Z")))
		sb.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeIcalText(as.Config.GetEventName())))
		if location := as.Config.GetEventLocation(); location != "" {
			sb.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeIcalText(location)))
		}
		sb.WriteString("END:VEVENT\r\n")
		sb.WriteString("END:VCALENDAR\r\n")

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=\"event.ics\"")
		if _, err := w.Write([]byte(sb.String())); err != nil {
			slog.Error("can't write calendar response", "error", err)
		}
	})
}

func escapeIcalText(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(text)
}

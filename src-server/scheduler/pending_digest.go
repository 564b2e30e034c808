package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"banquet/src-server/notify"
	"banquet/src-server/rsvp"
	"banquet/src-server/store"
	"banquet/src-server/utils"

	"github.com/xyedo/rrule"
)

// PendingDigest reminds organizers about guests who still haven't
// answered, on the cadence of REMINDER_RRULE (default FREQ=WEEKLY),
// until the RSVP deadline passes.
func PendingDigest(as *utils.AppState, guestStore *store.GuestStore, notifier *notify.Discord) {
	rruleSet, err := rrule.StrToRRuleSet(as.Config.GetReminderRRule())
	if err != nil {
		slog.Error("PendingDigest: invalid reminder rrule, digests disabled", "error", err)
		return
	}
	rruleSet.DTStart(time.Now().In(as.Config.GetLocation()))

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	for {
		next := rruleSet.After(time.Now(), false)
		if next.IsZero() || next.After(as.Config.GetRsvpDeadline()) {
			slog.Info("PendingDigest: no further digests scheduled")
			return
		}

		select {
		case <-gracefulShutdownCh:
			return
		case <-time.After(time.Until(next)):
		}

		summaries, err := guestStore.ListSummaries(context.Background(), rsvp.ATTENDANCE_UNDECIDED)
		if err != nil {
			slog.Error("PendingDigest: can't list undecided guests", "error", err)
			continue
		}
		if len(summaries) == 0 {
			slog.Info("PendingDigest: everyone has answered")
			continue
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "📋 **%d** guests still undecided (deadline %s):\n",
			len(summaries), as.Config.GetRsvpDeadline().Format("Jan 2"))
		for i, summary := range summaries {
			if i == 20 {
				fmt.Fprintf(&sb, "… and %d more\n", len(summaries)-i)
				break
			}
			fmt.Fprintf(&sb, "- %s (`%s`)\n", summary.FullName, summary.GuestCode)
		}
		if err := notifier.SendReminder(sb.String()); err != nil {
			slog.Error("PendingDigest: can't send digest", "error", err)
		}
	}
}

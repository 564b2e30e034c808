package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"banquet/src-server/notify"
	"banquet/src-server/store"
	"banquet/src-server/utils"
)

// FollowUpNotify polls for due organizer follow-ups ("call back tomorrow
// after 6pm") and pings the notify channel. Runs until graceful
// shutdown.
func FollowUpNotify(as *utils.AppState, guestStore *store.GuestStore, notifier *notify.Discord) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(time.Second * 30)
	defer ticker.Stop()

	for {
		select {
		case <-gracefulShutdownCh:
			return
		case <-ticker.C:
		}

		followUpModels, err := guestStore.DueFollowUps(context.Background(), time.Now())
		if err != nil {
			slog.Error("FollowUpNotify: can't get due follow-ups", "error", err)
			continue
		}

		for _, followUp := range followUpModels {
			guestName := followUp.GuestID
			contact := ""
			if followUp.Guest != nil {
				guestName = followUp.Guest.FullName
				if followUp.Guest.Phone != "" {
					contact = fmt.Sprintf(" (%s)", followUp.Guest.Phone)
				}
			}
			content := fmt.Sprintf("⏰ Follow up with **%s**%s", guestName, contact)
			if followUp.Note != "" {
				content += fmt.Sprintf(": %s", followUp.Note)
			}

			if err := notifier.SendReminder(content); err != nil {
				slog.Error("FollowUpNotify: can't send reminder", "followup", followUp.ID, "error", err)
				continue
			}
			if err := guestStore.MarkFollowUpSent(context.Background(), followUp.ID); err != nil {
				slog.Error("FollowUpNotify: can't mark follow-up sent", "followup", followUp.ID, "error", err)
			}
		}
	}
}

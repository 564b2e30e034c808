// Package notify delivers organizer-facing notifications. Delivery is
// best-effort by contract: the guest record is already persisted when a
// hook fires, and a failed send only logs.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"banquet/src-server/channel"
	"banquet/src-server/rsvp"
	"banquet/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

type Discord struct {
	// nil session or blank channel means log-only mode
	Session   *discordgo.Session
	ChannelID string
	Metrics   *utils.MetricChans
}

var _ channel.Notifier = (*Discord)(nil)

func (d *Discord) AttendanceChanged(ctx context.Context, change channel.AttendanceChange) {
	slog.Info("attendance changed",
		"guest_id", change.GuestID,
		"channel", change.Channel,
		"previous", change.Previous,
		"new", change.New,
	)
	if d.Session == nil || d.ChannelID == "" {
		return
	}

	startTimer := time.Now()
	if _, err := d.Session.ChannelMessageSendEmbed(d.ChannelID, attendanceEmbed(change)); err != nil {
		slog.Error("can't send attendance notification", "guest_id", change.GuestID, "error", err)
		return
	}
	if d.Metrics != nil {
		select {
		case d.Metrics.DiscordSendMessage <- float64(time.Since(startTimer).Microseconds()):
		default:
		}
	}
}

// SendReminder posts a plain organizer reminder (follow-ups, pending
// digests) to the notify channel.
func (d *Discord) SendReminder(content string) error {
	slog.Info("organizer reminder", "content", content)
	if d.Session == nil || d.ChannelID == "" {
		return nil
	}

	startTimer := time.Now()
	if _, err := d.Session.ChannelMessageSend(d.ChannelID, content); err != nil {
		return fmt.Errorf("Discord.SendReminder: %w", err)
	}
	if d.Metrics != nil {
		select {
		case d.Metrics.DiscordSendMessage <- float64(time.Since(startTimer).Microseconds()):
		default:
		}
	}
	return nil
}

func attendanceEmbed(change channel.AttendanceChange) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s: %s", change.GuestName, verdict(change.New)),
		Description: fmt.Sprintf("was %s, recorded via %s", change.Previous, change.Channel),
		Footer: &discordgo.MessageEmbedFooter{
			Text: change.GuestID,
		},
	}
	if change.New == rsvp.ATTENDANCE_ATTENDING {
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:   "Adults",
				Value:  fmt.Sprintf("%d", change.Adults),
				Inline: true,
			},
			{
				Name:   "Minors",
				Value:  fmt.Sprintf("%d", change.Minors),
				Inline: true,
			},
		}
	}
	return embed
}

func verdict(attendance rsvp.AttendanceType) string {
	switch attendance {
	case rsvp.ATTENDANCE_ATTENDING:
		return "attending 🎉"
	case rsvp.ATTENDANCE_DECLINED:
		return "declined"
	default:
		return "undecided"
	}
}

// Package channel holds the two submission paths around the
// reconciliation engine: the guest's own self-service path and the
// organizer-mediated assisted path. Both bracket rsvp.Reconcile with a
// fresh full-detail load and an atomic save; neither ever persists a
// rejected change.
package channel

import (
	"context"
	"encoding/json"

	"banquet/src-server/rsvp"
	"banquet/src-server/store"
	"banquet/src-server/utils"
)

// AttendanceChange is handed to the notification hook when a submission
// flips a guest's attendance. Delivery is best-effort: the record is
// already persisted by the time the hook fires.
type AttendanceChange struct {
	GuestID   string
	GuestName string
	Channel   string
	Previous  rsvp.AttendanceType
	New       rsvp.AttendanceType
	Adults    int
	Minors    int
}

type Notifier interface {
	AttendanceChanged(ctx context.Context, change AttendanceChange)
}

// Outcome is the success summary returned to the caller for
// confirmation display.
type Outcome struct {
	Guest             store.FullGuest
	Adults            int
	Minors            int
	AttendanceChanged bool
}

func submit(
	ctx context.Context,
	guestStore *store.GuestStore,
	notifier Notifier,
	metrics *utils.MetricChans,
	current store.FullGuest,
	proposal rsvp.Proposal,
	opts rsvp.Options,
	audit store.AuditEntry,
) (Outcome, error) {
	channelName := audit.Channel

	next, err := rsvp.Reconcile(current.GuestRecord, proposal, opts)
	if err != nil {
		countSubmission(metrics, channelName, "rejected")
		return Outcome{}, err
	}

	if audit.PayloadJSON == "" {
		if snapshot, jsonErr := json.Marshal(proposalSnapshot(proposal)); jsonErr == nil {
			audit.PayloadJSON = string(snapshot)
		}
	}
	if err := guestStore.SaveReconciled(ctx, next, audit); err != nil {
		countSubmission(metrics, channelName, "error")
		return Outcome{}, err
	}

	adults, minors := next.Headcount()
	changed := next.Attendance != current.Attendance
	if changed && notifier != nil {
		notifier.AttendanceChanged(ctx, AttendanceChange{
			GuestID:   current.ID,
			GuestName: current.FullName,
			Channel:   channelName,
			Previous:  current.Attendance,
			New:       next.Attendance,
			Adults:    adults,
			Minors:    minors,
		})
	}
	countSubmission(metrics, channelName, "accepted")

	updated := current
	updated.GuestRecord = next
	return Outcome{
		Guest:             updated,
		Adults:            adults,
		Minors:            minors,
		AttendanceChanged: changed,
	}, nil
}

func countSubmission(metrics *utils.MetricChans, channelName string, outcome string) {
	if metrics == nil {
		return
	}
	select {
	case metrics.RsvpSubmission <- utils.SubmissionEvent{Channel: channelName, Outcome: outcome}:
	default:
	}
}

// proposalSnapshot flattens the pointer fields for the audit log so a
// reviewer can tell "omitted" apart from "cleared".
func proposalSnapshot(p rsvp.Proposal) map[string]interface{} {
	snapshot := map[string]interface{}{
		"attending": p.Attending,
	}
	if p.Email != nil {
		snapshot["email"] = *p.Email
	}
	if p.Phone != nil {
		snapshot["phone"] = *p.Phone
	}
	if p.Notes != nil {
		snapshot["notes"] = *p.Notes
	}
	if p.AllergyTags != nil {
		snapshot["allergyTags"] = *p.AllergyTags
	}
	if p.Companions != nil {
		companions := make([]map[string]interface{}, 0, len(*p.Companions))
		for _, c := range *p.Companions {
			companions = append(companions, map[string]interface{}{
				"name":        c.Name,
				"isMinor":     c.IsMinor,
				"allergyTags": c.AllergyTags,
			})
		}
		snapshot["companions"] = companions
	}
	return snapshot
}

package channel

import (
	"context"
	"fmt"

	"banquet/src-server/rsvp"
	"banquet/src-server/store"
	"banquet/src-server/utils"
)

const ASSISTED_CHANNEL = "assisted"

// ChannelMetadata records how an assisted submission was taken down.
// The actor is threaded explicitly instead of read from ambient session
// state, and lands in the audit log next to the proposal snapshot.
type ChannelMetadata struct {
	Actor       string
	RecordedVia string // phone / in-person / messaging / web
	// the organizer explicitly confirmed the guest declined without
	// leaving contact info
	ContactWaived bool
}

// Assisted is the organizer-mediated path, typically used mid-phone-call.
// Its one structural invariant: editable state must originate from
// OpenForEdit, never from a list summary. OpenForEdit is the only way to
// get a FullGuest for someone else's record, and rsvp.Reconcile only
// accepts the record embedded in a FullGuest, so "I only changed the
// note" can never silently submit an empty companion list.
type Assisted struct {
	Store    *store.GuestStore
	Notifier Notifier
	Metrics  *utils.MetricChans
}

// OpenForEdit returns the complete current record, companions included,
// as the baseline for an editable form. Always a fresh fetch.
func (a *Assisted) OpenForEdit(ctx context.Context, guestID string) (store.FullGuest, error) {
	return a.Store.LoadFull(ctx, guestID)
}

func (a *Assisted) Submit(ctx context.Context, guestID string, proposal rsvp.Proposal, meta ChannelMetadata) (Outcome, error) {
	if meta.Actor == "" {
		return Outcome{}, fmt.Errorf("Assisted.Submit: actor is blank")
	}

	current, err := a.Store.LoadFull(ctx, guestID)
	if err != nil {
		return Outcome{}, err
	}
	return submit(ctx, a.Store, a.Notifier, a.Metrics, current, proposal,
		rsvp.Options{RequireContact: !meta.ContactWaived},
		store.AuditEntry{
			UpdatedBy: meta.Actor,
			Channel:   ASSISTED_CHANNEL,
			Action:    fmt.Sprintf("update_rsvp (%s)", recordedVia(meta)),
		})
}

func recordedVia(meta ChannelMetadata) string {
	if meta.RecordedVia == "" {
		return "web"
	}
	return meta.RecordedVia
}

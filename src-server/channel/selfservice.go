package channel

import (
	"context"

	"banquet/src-server/rsvp"
	"banquet/src-server/store"
	"banquet/src-server/utils"
)

const SELF_SERVICE_CHANNEL = "self-service"

// SelfService is the guest's own direct submission path. The
// authenticated guest can only touch their own record, and contact info
// is always mandated.
type SelfService struct {
	Store    *store.GuestStore
	Notifier Notifier
	Metrics  *utils.MetricChans
}

func (c *SelfService) Submit(ctx context.Context, guestID string, proposal rsvp.Proposal) (Outcome, error) {
	current, err := c.Store.LoadFull(ctx, guestID)
	if err != nil {
		return Outcome{}, err
	}
	return submit(ctx, c.Store, c.Notifier, c.Metrics, current, proposal,
		rsvp.Options{RequireContact: true},
		store.AuditEntry{
			UpdatedBy: "guest",
			Channel:   SELF_SERVICE_CHANNEL,
			Action:    "update_rsvp",
		})
}

// SubmitByCode is the public code-authenticated variant used by the
// invitation link before the guest has exchanged the code for a token.
func (c *SelfService) SubmitByCode(ctx context.Context, guestCode string, proposal rsvp.Proposal) (Outcome, error) {
	current, err := c.Store.LoadFullByCode(ctx, guestCode)
	if err != nil {
		return Outcome{}, err
	}
	return submit(ctx, c.Store, c.Notifier, c.Metrics, current, proposal,
		rsvp.Options{RequireContact: true},
		store.AuditEntry{
			UpdatedBy: "guest (public)",
			Channel:   SELF_SERVICE_CHANNEL,
			Action:    "update_rsvp",
		})
}

package model

import (
	"github.com/uptrace/bun"
)

// FollowUp is an organizer-side callback reminder recorded through the
// assisted channel ("call back tomorrow after 6pm"). The scheduler polls
// for due rows and pings the organizer channel.
type FollowUp struct {
	bun.BaseModel `bun:"table:followups"`

	ID      string `bun:"id,pk,notnull"`    // required
	GuestID string `bun:"guest_id,notnull"` // required
	Note    string `bun:"note"`

	DueAtUnixUTC     int64 `bun:"due_at,notnull"` // required
	CreatedAtUnixUTC int64 `bun:"created_at,notnull"`
	NotificationSent bool  `bun:"notification_sent"`

	Guest *Guest `bun:"rel:belongs-to,join:guest_id=id"`
}

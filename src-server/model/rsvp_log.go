package model

import (
	"github.com/uptrace/bun"
)

// RsvpLog is one audit row per submission: who recorded it, through
// which channel, and a JSON snapshot of the proposal. Never updated,
// never read on the hot path.
type RsvpLog struct {
	bun.BaseModel `bun:"table:rsvp_logs"`

	ID        int64  `bun:"id,pk,autoincrement"`
	GuestID   string `bun:"guest_id,notnull"`   // required
	UpdatedBy string `bun:"updated_by,notnull"` // required
	Channel   string `bun:"channel,notnull"`    // required
	Action    string `bun:"action,notnull"`     // required

	PayloadJSON string `bun:"payload_json"`

	CreatedAtUnixUTC int64 `bun:"created_at,notnull"`

	Guest *Guest `bun:"rel:belongs-to,join:guest_id=id"`
}

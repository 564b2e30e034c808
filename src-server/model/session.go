package model

import (
	"github.com/uptrace/bun"
)

// Session is one organizer login. The secret rides in a cookie; the
// actor name is threaded into every audit row written on the guest's
// behalf instead of living in ambient state.
type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	Secret    string `bun:"secret,pk,notnull,unique"` // required
	ActorName string `bun:"actor_name,notnull"`       // required

	CreatedAtUnixUTC int64  `bun:"created_at,notnull"` // required
	IpAddress        string `bun:"ip_address,notnull"` // required
	UserAgent        string `bun:"user_agent"`
}

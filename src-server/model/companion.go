package model

import (
	"github.com/uptrace/bun"
)

type Companion struct {
	bun.BaseModel `bun:"table:companions"`

	ID      int64  `bun:"id,pk,autoincrement"`
	GuestID string `bun:"guest_id,notnull"` // required
	Name    string `bun:"name,notnull"`     // required
	IsMinor bool   `bun:"is_minor"`

	// comma-joined codes, independent of the titular guest's set
	AllergyTags string `bun:"allergy_tags"`

	Guest *Guest `bun:"rel:belongs-to,join:guest_id=id"`
}

package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"banquet/src-server/rsvp"

	"github.com/uptrace/bun"
)

type GuestIDCtxKeyType string

const GuestIDCtxKey GuestIDCtxKeyType = "guest-id"

type Guest struct {
	bun.BaseModel `bun:"table:guests"`

	ID        string `bun:"id,pk,notnull"`              // required
	GuestCode string `bun:"guest_code,notnull,unique"`  // required
	FullName  string `bun:"full_name,notnull"`          // required

	Email    string `bun:"email"`
	Phone    string `bun:"phone"`
	Language string `bun:"language"`

	Attendance    rsvp.AttendanceType `bun:"attendance,notnull,type:varchar"` // required
	MaxCompanions int                 `bun:"max_companions,notnull"`

	// comma-joined codes; schema-less on purpose so custom codes survive
	AllergyTags string `bun:"allergy_tags"`
	Notes       string `bun:"notes"`

	NumAdults int `bun:"num_adults"`
	NumMinors int `bun:"num_minors"`

	ConfirmedAtUnixUTC int64 `bun:"confirmed_at"`
	CreatedAtUnixUTC   int64 `bun:"created_at,notnull"`
	UpdatedAtUnixUTC   int64 `bun:"updated_at"`

	Companions []*Companion `bun:"rel:has-many,join:id=guest_id"`
}

func (g *Guest) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case g.ID == "":
		return fmt.Errorf("(*Guest).Upsert: guest id is blank")
	case g.GuestCode == "":
		return fmt.Errorf("(*Guest).Upsert: guest code is blank")
	case g.FullName == "":
		return fmt.Errorf("(*Guest).Upsert: full name is blank")
	case g.MaxCompanions < 0:
		return fmt.Errorf("(*Guest).Upsert: max companions is negative")
	}
	if g.Attendance == "" {
		g.Attendance = rsvp.ATTENDANCE_UNDECIDED
	}
	if g.CreatedAtUnixUTC == 0 {
		g.CreatedAtUnixUTC = time.Now().UTC().Unix()
	}

	exists, err := db.NewSelect().
		Model((*Guest)(nil)).
		Where("id = ?", g.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*Guest).Upsert: %w", err)
	}

	switch exists {
	case true:
		g.UpdatedAtUnixUTC = time.Now().UTC().Unix()
		if _, err := db.NewUpdate().
			Model(g).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Guest).Upsert: %w", err)
		}
	case false:
		if _, err := db.NewInsert().
			Model(g).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Guest).Upsert: %w", err)
		}
	}

	return nil
}

var _ bun.AfterDeleteHook = (*Guest)(nil)

// Cleanup companions, audit rows, and follow-ups
func (g *Guest) AfterDelete(ctx context.Context, query *bun.DeleteQuery) error {
	if query.DB() == nil {
		return fmt.Errorf("(*Guest).AfterDelete: db is nil")
	}

	guestID, ok := ctx.Value(GuestIDCtxKey).(string)
	if !ok {
		slog.Warn("(*Guest).AfterDelete: no guest id in context, skipping cleanup")
		return nil
	}
	if guestID == "" {
		return fmt.Errorf("(*Guest).AfterDelete: guest id is blank")
	}

	if _, err := query.DB().NewDelete().
		Model((*Companion)(nil)).
		Where("guest_id = ?", guestID).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Guest).AfterDelete: can't delete companions: %w", err)
	}
	if _, err := query.DB().NewDelete().
		Model((*RsvpLog)(nil)).
		Where("guest_id = ?", guestID).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Guest).AfterDelete: can't delete rsvp logs: %w", err)
	}
	if _, err := query.DB().NewDelete().
		Model((*FollowUp)(nil)).
		Where("guest_id = ?", guestID).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Guest).AfterDelete: can't delete follow-ups: %w", err)
	}

	return nil
}

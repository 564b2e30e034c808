package model_test

import (
	"context"
	"database/sql"
	"testing"

	"banquet/src-server/model"
	"banquet/src-server/rsvp"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestGuest(t *testing.T) {
	// init db
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Error(err)
	}
	bundb := bun.NewDB(db, sqlitedialect.New())

	// init tables
	if err := model.CreateSchema(bundb); err != nil {
		t.Error(err)
	}

	// create models
	guestModel := model.Guest{
		ID:            uuid.NewString(),
		GuestCode:     "ANAGARC-8H2K",
		FullName:      "Ana García",
		Email:         "ana@example.com",
		Attendance:    rsvp.ATTENDANCE_ATTENDING,
		MaxCompanions: 2,
		AllergyTags:   "gluten",
	}
	companionModel := model.Companion{
		GuestID:     guestModel.ID,
		Name:        "Luis García",
		IsMinor:     true,
		AllergyTags: "nuts,dairy",
	}

	// insert models
	if err := guestModel.Upsert(context.Background(), bundb); err != nil {
		t.Error(err)
	}
	if _, err := bundb.NewInsert().
		Model(&companionModel).
		Exec(context.Background()); err != nil {
		t.Error(err)
	}

	// case: companion reachable through the relation
	func() {
		guestModelTest := new(model.Guest)
		if err := bundb.NewSelect().
			Model(guestModelTest).
			Where("guest.id = ?", guestModel.ID).
			Relation("Companions").
			Scan(context.Background()); err != nil {
			t.Error(err)
		}
		if len(guestModelTest.Companions) != 1 ||
			guestModelTest.Companions[0].Name != companionModel.Name {
			t.Error("companion not found through relation")
		}
	}()

	// case: upsert updates in place instead of duplicating
	func() {
		guestModel.Notes = "prefers a corner table"
		if err := guestModel.Upsert(context.Background(), bundb); err != nil {
			t.Error(err)
		}
		count, err := bundb.NewSelect().
			Model((*model.Guest)(nil)).
			Where("guest_code = ?", guestModel.GuestCode).
			Count(context.Background())
		if err != nil {
			t.Error(err)
		}
		if count != 1 {
			t.Error("expected exactly one guest row, got", count)
		}
	}()

	// case: delete guest and companion rows are gone too
	func() {
		ctx := context.WithValue(context.Background(), model.GuestIDCtxKey, guestModel.ID)
		if _, err := bundb.NewDelete().
			Model((*model.Guest)(nil)).
			Where("id = ?", guestModel.ID).
			Exec(ctx); err != nil {
			t.Error(err)
		}
		exists, err := bundb.NewSelect().
			Model((*model.Companion)(nil)).
			Where("guest_id = ?", guestModel.ID).
			Exists(context.Background())
		if err != nil {
			t.Error(err)
		}
		if exists {
			t.Error("companion rows should be deleted with the guest")
		}
	}()
}

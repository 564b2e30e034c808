package store_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"banquet/src-server/model"
	"banquet/src-server/rsvp"
	"banquet/src-server/store"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestStore(t *testing.T) *store.GuestStore {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	bundb := bun.NewDB(db, sqlitedialect.New())
	if err := model.CreateSchema(bundb); err != nil {
		t.Fatal(err)
	}
	return &store.GuestStore{DB: bundb}
}

func TestGuestStore(t *testing.T) {
	guestStore := newTestStore(t)
	ctx := context.Background()

	guest, err := guestStore.CreateGuest(ctx, store.CreateGuestParams{
		FullName:      "Ana García",
		Email:         "Ana@Example.com",
		Phone:         "+34 600-111-222",
		MaxCompanions: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	// case: generated code is name-prefixed, diacritics stripped
	func() {
		if !strings.HasPrefix(guest.GuestCode, "ANAGARC-") {
			t.Error("unexpected guest code", guest.GuestCode)
		}
		if guest.Contact.Email != "ana@example.com" {
			t.Error("email not normalized:", guest.Contact.Email)
		}
		if guest.Contact.Phone != "34600111222" {
			t.Error("phone not normalized:", guest.Contact.Phone)
		}
		if guest.Attendance != rsvp.ATTENDANCE_UNDECIDED {
			t.Error("new guest should be undecided")
		}
	}()

	// case: load by code matches load by id
	func() {
		byCode, err := guestStore.LoadFullByCode(ctx, " "+guest.GuestCode+" ")
		if err != nil {
			t.Fatal(err)
		}
		byID, err := guestStore.LoadFull(ctx, guest.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(byCode, byID) {
			t.Error("code and id lookups disagree")
		}
	}()

	// case: unknown lookups return the sentinel
	func() {
		if _, err := guestStore.LoadFull(ctx, "nope"); !errors.Is(err, store.ErrGuestNotFound) {
			t.Error("expected ErrGuestNotFound, got", err)
		}
		if _, err := guestStore.LoadFullByCode(ctx, "NOPE-0000"); !errors.Is(err, store.ErrGuestNotFound) {
			t.Error("expected ErrGuestNotFound, got", err)
		}
	}()

	// case: SaveReconciled persists companions, tags, and the audit row
	func() {
		record := guest.GuestRecord
		record.Attendance = rsvp.ATTENDANCE_ATTENDING
		record.AllergyTags = []string{"gluten"}
		record.Companions = []rsvp.Companion{
			{Name: "Luis García", IsMinor: true, AllergyTags: []string{"nuts", "dairy"}},
		}
		if err := guestStore.SaveReconciled(ctx, record, store.AuditEntry{
			UpdatedBy: "guest",
			Channel:   "self-service",
			Action:    "update_rsvp",
		}); err != nil {
			t.Fatal(err)
		}

		loaded, err := guestStore.LoadFull(ctx, guest.ID)
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Attendance != rsvp.ATTENDANCE_ATTENDING {
			t.Error("attendance not persisted")
		}
		if len(loaded.Companions) != 1 || loaded.Companions[0].Name != "Luis García" {
			t.Error("companions not persisted:", loaded.Companions)
		}
		if !reflect.DeepEqual(loaded.Companions[0].AllergyTags, []string{"nuts", "dairy"}) {
			t.Error("companion tags not persisted:", loaded.Companions[0].AllergyTags)
		}
		adults, minors := loaded.Headcount()
		if adults != 1 || minors != 1 {
			t.Error("headcount wrong:", adults, minors)
		}

		logCount, err := guestStore.DB.NewSelect().
			Model((*model.RsvpLog)(nil)).
			Where("guest_id = ?", guest.ID).
			Count(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if logCount != 1 {
			t.Error("expected one audit row, got", logCount)
		}
	}()

	// case: SaveReconciled replaces the companion list wholesale
	func() {
		record, err := guestStore.LoadFull(ctx, guest.ID)
		if err != nil {
			t.Fatal(err)
		}
		record.Companions = []rsvp.Companion{{Name: "Marta García"}}
		if err := guestStore.SaveReconciled(ctx, record.GuestRecord, store.AuditEntry{
			UpdatedBy: "guest", Channel: "self-service", Action: "update_rsvp",
		}); err != nil {
			t.Fatal(err)
		}
		loaded, err := guestStore.LoadFull(ctx, guest.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(loaded.Companions) != 1 || loaded.Companions[0].Name != "Marta García" {
			t.Error("companion list not replaced:", loaded.Companions)
		}
	}()

	// case: saving against a deleted guest fails atomically, no orphan rows
	func() {
		record := guest.GuestRecord
		record.ID = "deleted-guest"
		record.Companions = []rsvp.Companion{{Name: "Ghost"}}
		err := guestStore.SaveReconciled(ctx, record, store.AuditEntry{
			UpdatedBy: "guest", Channel: "self-service", Action: "update_rsvp",
		})
		if !errors.Is(err, store.ErrGuestNotFound) {
			t.Error("expected ErrGuestNotFound, got", err)
		}
		exists, err := guestStore.DB.NewSelect().
			Model((*model.Companion)(nil)).
			Where("guest_id = ?", "deleted-guest").
			Exists(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if exists {
			t.Error("rejected save left companion rows behind")
		}
	}()

	// case: profile update never touches attendance or companions
	func() {
		updated, err := guestStore.UpdateProfile(ctx, guest.ID, store.ProfileUpdate{
			FullName:      ptr("Ana María García"),
			MaxCompanions: ptrInt(4),
		})
		if err != nil {
			t.Fatal(err)
		}
		if updated.FullName != "Ana María García" || updated.MaxCompanions != 4 {
			t.Error("profile fields not updated")
		}
		if updated.Attendance != rsvp.ATTENDANCE_ATTENDING {
			t.Error("profile update changed attendance")
		}
		if len(updated.Companions) != 1 {
			t.Error("profile update changed companions")
		}
	}()

	// case: summaries carry counts but no companion details
	func() {
		summaries, err := guestStore.ListSummaries(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(summaries) != 1 {
			t.Fatal("expected one summary, got", len(summaries))
		}
		if summaries[0].CompanionCount != 1 {
			t.Error("companion count wrong:", summaries[0].CompanionCount)
		}
		summary, err := guestStore.LoadSummary(ctx, guest.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(summary, summaries[0]) {
			t.Error("single summary disagrees with the list projection")
		}
		filtered, err := guestStore.ListSummaries(ctx, rsvp.ATTENDANCE_DECLINED)
		if err != nil {
			t.Fatal(err)
		}
		if len(filtered) != 0 {
			t.Error("declined filter should match nobody")
		}
	}()

	// case: totals only count attending heads
	func() {
		totals, err := guestStore.Totals(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if totals.Attending != 1 || totals.Undecided != 0 || totals.Declined != 0 {
			t.Error("attendance totals wrong:", totals)
		}
		if totals.Adults != 2 || totals.Minors != 0 {
			t.Error("headcount totals wrong:", totals)
		}
	}()

	// case: delete cascades
	func() {
		if err := guestStore.DeleteGuest(ctx, guest.ID); err != nil {
			t.Fatal(err)
		}
		if err := guestStore.DeleteGuest(ctx, guest.ID); !errors.Is(err, store.ErrGuestNotFound) {
			t.Error("expected ErrGuestNotFound, got", err)
		}
		exists, err := guestStore.DB.NewSelect().
			Model((*model.Companion)(nil)).
			Where("guest_id = ?", guest.ID).
			Exists(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if exists {
			t.Error("delete left companion rows behind")
		}
	}()
}

func TestFollowUps(t *testing.T) {
	guestStore := newTestStore(t)
	ctx := context.Background()

	guest, err := guestStore.CreateGuest(ctx, store.CreateGuestParams{FullName: "Bart Peeters"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := guestStore.AddFollowUp(ctx, "nope", "call back", time.Now().Add(-time.Minute)); !errors.Is(err, store.ErrGuestNotFound) {
		t.Error("expected ErrGuestNotFound, got", err)
	}

	followUp, err := guestStore.AddFollowUp(ctx, guest.ID, "call back after 6pm", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}

	due, err := guestStore.DueFollowUps(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != followUp.ID {
		t.Fatal("expected the follow-up to be due")
	}
	if due[0].Guest == nil || due[0].Guest.FullName != "Bart Peeters" {
		t.Error("guest relation not loaded on due follow-up")
	}

	if err := guestStore.MarkFollowUpSent(ctx, followUp.ID); err != nil {
		t.Fatal(err)
	}
	due, err = guestStore.DueFollowUps(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Error("sent follow-up still reported as due")
	}
}

func ptr(s string) *string { return &s }
func ptrInt(i int) *int    { return &i }

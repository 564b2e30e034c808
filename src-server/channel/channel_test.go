package channel_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"banquet/src-server/channel"
	"banquet/src-server/model"
	"banquet/src-server/rsvp"
	"banquet/src-server/store"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type recordingNotifier struct {
	changes []channel.AttendanceChange
}

func (n *recordingNotifier) AttendanceChanged(_ context.Context, change channel.AttendanceChange) {
	n.changes = append(n.changes, change)
}

func newTestChannels(t *testing.T) (*store.GuestStore, *channel.SelfService, *channel.Assisted, *recordingNotifier) {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	bundb := bun.NewDB(db, sqlitedialect.New())
	if err := model.CreateSchema(bundb); err != nil {
		t.Fatal(err)
	}
	guestStore := &store.GuestStore{DB: bundb}
	notifier := &recordingNotifier{}
	selfService := &channel.SelfService{Store: guestStore, Notifier: notifier}
	assisted := &channel.Assisted{Store: guestStore, Notifier: notifier}
	return guestStore, selfService, assisted, notifier
}

func seedAttendingGuest(t *testing.T, guestStore *store.GuestStore, selfService *channel.SelfService) store.FullGuest {
	t.Helper()
	ctx := context.Background()
	guest, err := guestStore.CreateGuest(ctx, store.CreateGuestParams{
		FullName:      "Ana García",
		Email:         "ana@example.com",
		MaxCompanions: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	companions := []rsvp.CompanionInput{
		{Name: "Luis García", IsMinor: true, AllergyTags: []string{"nuts"}},
	}
	tags := []string{"gluten"}
	if _, err := selfService.Submit(ctx, guest.ID, rsvp.Proposal{
		Attending:   true,
		AllergyTags: &tags,
		Companions:  &companions,
	}); err != nil {
		t.Fatal(err)
	}
	seeded, err := guestStore.LoadFull(ctx, guest.ID)
	if err != nil {
		t.Fatal(err)
	}
	return seeded
}

// The original bug: an organizer opens a guest, fixes a typo in the
// note, saves, and the companion list silently vanishes. A notes-only
// proposal must leave companions and allergy tags exactly as loaded.
func TestAssistedNotesOnlyEditKeepsCompanions(t *testing.T) {
	guestStore, selfService, assisted, _ := newTestChannels(t)
	ctx := context.Background()
	guest := seedAttendingGuest(t, guestStore, selfService)

	if _, err := assisted.OpenForEdit(ctx, guest.ID); err != nil {
		t.Fatal(err)
	}

	note := "vegetarian menu for the kid"
	outcome, err := assisted.Submit(ctx, guest.ID, rsvp.Proposal{
		Attending: true,
		Notes:     &note,
	}, channel.ChannelMetadata{Actor: "maría", RecordedVia: "phone"})
	if err != nil {
		t.Fatal(err)
	}

	if outcome.Guest.Notes != note {
		t.Error("note not updated")
	}
	if len(outcome.Guest.Companions) != 1 || outcome.Guest.Companions[0].Name != "Luis García" {
		t.Error("notes-only edit dropped the companions:", outcome.Guest.Companions)
	}
	if len(outcome.Guest.AllergyTags) != 1 || outcome.Guest.AllergyTags[0] != "gluten" {
		t.Error("notes-only edit dropped the allergy tags:", outcome.Guest.AllergyTags)
	}

	// and the database agrees, not just the returned outcome
	loaded, err := guestStore.LoadFull(ctx, guest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Companions) != 1 {
		t.Error("companions gone after persist:", loaded.Companions)
	}
}

func TestDeclinePurges(t *testing.T) {
	guestStore, selfService, _, notifier := newTestChannels(t)
	ctx := context.Background()
	guest := seedAttendingGuest(t, guestStore, selfService)

	outcome, err := selfService.Submit(ctx, guest.ID, rsvp.Proposal{Attending: false})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.AttendanceChanged {
		t.Error("attending to declined should report a change")
	}
	if outcome.Adults != 0 || outcome.Minors != 0 {
		t.Error("declined guest should count zero heads")
	}

	loaded, err := guestStore.LoadFull(ctx, guest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Attendance != rsvp.ATTENDANCE_DECLINED {
		t.Error("attendance not declined")
	}
	if len(loaded.Companions) != 0 || len(loaded.AllergyTags) != 0 {
		t.Error("decline did not purge companions and tags")
	}
	if loaded.Contact.Email != "ana@example.com" {
		t.Error("decline should keep contact info")
	}

	// undecided -> attending, then attending -> declined
	if len(notifier.changes) != 2 {
		t.Fatal("expected two attendance notifications, got", len(notifier.changes))
	}
	last := notifier.changes[len(notifier.changes)-1]
	if last.Previous != rsvp.ATTENDANCE_ATTENDING || last.New != rsvp.ATTENDANCE_DECLINED {
		t.Error("wrong transition in notification:", last)
	}
}

func TestRejectionPersistsNothing(t *testing.T) {
	guestStore, selfService, _, notifier := newTestChannels(t)
	ctx := context.Background()
	guest := seedAttendingGuest(t, guestStore, selfService)
	notifications := len(notifier.changes)

	tooMany := []rsvp.CompanionInput{
		{Name: "A"}, {Name: "B"}, {Name: "C"},
	}
	_, err := selfService.Submit(ctx, guest.ID, rsvp.Proposal{
		Attending:  true,
		Companions: &tooMany,
	})
	var rejected *rsvp.RejectedChange
	if !errors.As(err, &rejected) || rejected.Kind != rsvp.REJECT_COMPANION_LIMIT_EXCEEDED {
		t.Fatal("expected companion limit rejection, got", err)
	}

	loaded, err := guestStore.LoadFull(ctx, guest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Companions) != 1 {
		t.Error("rejected submission changed the stored record")
	}
	if len(notifier.changes) != notifications {
		t.Error("rejected submission fired a notification")
	}
}

func TestAssistedContactWaiver(t *testing.T) {
	guestStore, _, assisted, _ := newTestChannels(t)
	ctx := context.Background()

	guest, err := guestStore.CreateGuest(ctx, store.CreateGuestParams{FullName: "Bart Peeters"})
	if err != nil {
		t.Fatal(err)
	}

	// no contact on record: the assisted path still demands it...
	_, err = assisted.Submit(ctx, guest.ID, rsvp.Proposal{Attending: false},
		channel.ChannelMetadata{Actor: "maría"})
	var rejected *rsvp.RejectedChange
	if !errors.As(err, &rejected) || rejected.Kind != rsvp.REJECT_CONTACT_REQUIRED {
		t.Fatal("expected contact rejection, got", err)
	}

	// ...unless the organizer explicitly waives it
	if _, err := assisted.Submit(ctx, guest.ID, rsvp.Proposal{Attending: false},
		channel.ChannelMetadata{Actor: "maría", ContactWaived: true}); err != nil {
		t.Fatal(err)
	}

	// a blank actor is a programming error, not a guest-facing rejection
	if _, err := assisted.Submit(ctx, guest.ID, rsvp.Proposal{Attending: false},
		channel.ChannelMetadata{ContactWaived: true}); err == nil {
		t.Error("blank actor should be refused")
	}
}

func TestAuditTrail(t *testing.T) {
	guestStore, selfService, assisted, _ := newTestChannels(t)
	ctx := context.Background()
	guest := seedAttendingGuest(t, guestStore, selfService)

	note := "table near the door"
	if _, err := assisted.Submit(ctx, guest.ID, rsvp.Proposal{Attending: true, Notes: &note},
		channel.ChannelMetadata{Actor: "maría", RecordedVia: "phone"}); err != nil {
		t.Fatal(err)
	}

	logModels := make([]model.RsvpLog, 0)
	if err := guestStore.DB.NewSelect().
		Model(&logModels).
		Where("guest_id = ?", guest.ID).
		Order("id ASC").
		Scan(ctx); err != nil {
		t.Fatal(err)
	}
	if len(logModels) != 2 {
		t.Fatal("expected two audit rows, got", len(logModels))
	}
	if logModels[0].Channel != channel.SELF_SERVICE_CHANNEL {
		t.Error("first audit row should be self-service:", logModels[0].Channel)
	}
	if logModels[1].Channel != channel.ASSISTED_CHANNEL ||
		logModels[1].UpdatedBy != "maría" ||
		logModels[1].Action != "update_rsvp (phone)" {
		t.Error("assisted audit row wrong:", logModels[1])
	}
	if logModels[1].PayloadJSON == "" {
		t.Error("audit row missing the proposal snapshot")
	}
}

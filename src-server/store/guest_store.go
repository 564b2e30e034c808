package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"banquet/src-server/model"
	"banquet/src-server/rsvp"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FullGuest is the authoritative, companion-complete state of one guest.
// Only LoadFull/LoadFullByCode produce it, so anything holding a
// FullGuest is guaranteed to have been freshly fetched in full.
type FullGuest struct {
	rsvp.GuestRecord

	GuestCode          string
	FullName           string
	Language           string
	ConfirmedAtUnixUTC int64
}

// GuestSummary is the list-view projection. It deliberately has no
// companion list and no conversion to rsvp.GuestRecord: an editor
// pre-populated from a summary once wiped real companions on save, and
// the type split is what keeps that from coming back.
type GuestSummary struct {
	ID             string              `json:"id"`
	GuestCode      string              `json:"guestCode"`
	FullName       string              `json:"fullName"`
	Attendance     rsvp.AttendanceType `json:"attendance"`
	MaxCompanions  int                 `json:"maxCompanions"`
	CompanionCount int                 `json:"companionCount"`
	NumAdults      int                 `json:"numAdults"`
	NumMinors      int                 `json:"numMinors"`
}

type AuditEntry struct {
	UpdatedBy   string
	Channel     string
	Action      string
	PayloadJSON string
}

var ErrGuestNotFound = fmt.Errorf("guest not found")

type GuestStore struct {
	DB *bun.DB
}

func (s *GuestStore) LoadFull(ctx context.Context, guestID string) (FullGuest, error) {
	return s.loadFull(ctx, "guest.id = ?", guestID)
}

func (s *GuestStore) LoadFullByCode(ctx context.Context, guestCode string) (FullGuest, error) {
	return s.loadFull(ctx, "guest.guest_code = ?", strings.TrimSpace(guestCode))
}

func (s *GuestStore) loadFull(ctx context.Context, where string, arg string) (FullGuest, error) {
	guestModel := new(model.Guest)
	if err := s.DB.NewSelect().
		Model(guestModel).
		Where(where, arg).
		Relation("Companions").
		Scan(ctx); err != nil {
		if err == sql.ErrNoRows {
			return FullGuest{}, ErrGuestNotFound
		}
		return FullGuest{}, fmt.Errorf("GuestStore.loadFull: %w", err)
	}
	return fromModel(guestModel), nil
}

func (s *GuestStore) LoadSummary(ctx context.Context, guestID string) (GuestSummary, error) {
	guestModel := new(model.Guest)
	if err := s.DB.NewSelect().
		Model(guestModel).
		Where("guest.id = ?", guestID).
		Relation("Companions").
		Scan(ctx); err != nil {
		if err == sql.ErrNoRows {
			return GuestSummary{}, ErrGuestNotFound
		}
		return GuestSummary{}, fmt.Errorf("GuestStore.LoadSummary: %w", err)
	}
	return GuestSummary{
		ID:             guestModel.ID,
		GuestCode:      guestModel.GuestCode,
		FullName:       guestModel.FullName,
		Attendance:     guestModel.Attendance,
		MaxCompanions:  guestModel.MaxCompanions,
		CompanionCount: len(guestModel.Companions),
		NumAdults:      guestModel.NumAdults,
		NumMinors:      guestModel.NumMinors,
	}, nil
}

func (s *GuestStore) ListSummaries(ctx context.Context, attendance rsvp.AttendanceType) ([]GuestSummary, error) {
	guestModels := make([]model.Guest, 0)
	query := s.DB.NewSelect().
		Model(&guestModels).
		Relation("Companions").
		Order("full_name ASC")
	if attendance != "" {
		query = query.Where("attendance = ?", attendance)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("GuestStore.ListSummaries: %w", err)
	}

	summaries := make([]GuestSummary, 0, len(guestModels))
	for _, g := range guestModels {
		summaries = append(summaries, GuestSummary{
			ID:             g.ID,
			GuestCode:      g.GuestCode,
			FullName:       g.FullName,
			Attendance:     g.Attendance,
			MaxCompanions:  g.MaxCompanions,
			CompanionCount: len(g.Companions),
			NumAdults:      g.NumAdults,
			NumMinors:      g.NumMinors,
		})
	}
	return summaries, nil
}

// SaveReconciled persists an engine result in one transaction: guest row
// update, wholesale companion replacement, and the audit row. Either the
// full new record lands or nothing does.
func (s *GuestStore) SaveReconciled(ctx context.Context, record rsvp.GuestRecord, audit AuditEntry) error {
	now := time.Now().UTC().Unix()
	adults, minors := record.Headcount()

	if err := s.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*model.Guest)(nil)).
			Set("attendance = ?", record.Attendance).
			Set("email = ?", record.Contact.Email).
			Set("phone = ?", record.Contact.Phone).
			Set("notes = ?", record.Notes).
			Set("allergy_tags = ?", rsvp.JoinTags(record.AllergyTags)).
			Set("num_adults = ?", adults).
			Set("num_minors = ?", minors).
			Set("confirmed_at = ?", now).
			Set("updated_at = ?", now).
			Where("id = ?", record.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrGuestNotFound
		}

		if _, err := tx.NewDelete().
			Model((*model.Companion)(nil)).
			Where("guest_id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}
		if len(record.Companions) > 0 {
			companionModels := make([]model.Companion, 0, len(record.Companions))
			for _, c := range record.Companions {
				companionModels = append(companionModels, model.Companion{
					GuestID:     record.ID,
					Name:        c.Name,
					IsMinor:     c.IsMinor,
					AllergyTags: rsvp.JoinTags(c.AllergyTags),
				})
			}
			if _, err := tx.NewInsert().
				Model(&companionModels).
				Exec(ctx); err != nil {
				return err
			}
		}

		logModel := model.RsvpLog{
			GuestID:          record.ID,
			UpdatedBy:        audit.UpdatedBy,
			Channel:          audit.Channel,
			Action:           audit.Action,
			PayloadJSON:      audit.PayloadJSON,
			CreatedAtUnixUTC: now,
		}
		if _, err := tx.NewInsert().
			Model(&logModel).
			Exec(ctx); err != nil {
			return err
		}
		return nil
	}); err != nil {
		if errors.Is(err, ErrGuestNotFound) {
			return ErrGuestNotFound
		}
		return fmt.Errorf("GuestStore.SaveReconciled: %w", err)
	}

	return nil
}

type CreateGuestParams struct {
	FullName      string
	Email         string
	Phone         string
	Language      string
	MaxCompanions int
	GuestCode     string // generated from the name when blank
}

func (s *GuestStore) CreateGuest(ctx context.Context, params CreateGuestParams) (FullGuest, error) {
	if strings.TrimSpace(params.FullName) == "" {
		return FullGuest{}, fmt.Errorf("GuestStore.CreateGuest: full name is blank")
	}

	code := strings.TrimSpace(params.GuestCode)
	if code == "" {
		var err error
		code, err = s.generateGuestCode(ctx, params.FullName)
		if err != nil {
			return FullGuest{}, fmt.Errorf("GuestStore.CreateGuest: %w", err)
		}
	}

	guestModel := model.Guest{
		ID:            uuid.NewString(),
		GuestCode:     code,
		FullName:      strings.TrimSpace(params.FullName),
		Email:         rsvp.NormalizeEmail(params.Email),
		Phone:         rsvp.NormalizePhone(params.Phone),
		Language:      params.Language,
		Attendance:    rsvp.ATTENDANCE_UNDECIDED,
		MaxCompanions: params.MaxCompanions,
	}
	if err := guestModel.Upsert(ctx, s.DB); err != nil {
		return FullGuest{}, fmt.Errorf("GuestStore.CreateGuest: %w", err)
	}
	return fromModel(&guestModel), nil
}

type ProfileUpdate struct {
	FullName      *string
	Email         *string
	Phone         *string
	Language      *string
	MaxCompanions *int
}

// UpdateProfile touches invitation-policy and identity fields only; it
// never changes attendance, companions, or allergy tags. Those go
// through the reconciliation path.
func (s *GuestStore) UpdateProfile(ctx context.Context, guestID string, update ProfileUpdate) (FullGuest, error) {
	guestModel := new(model.Guest)
	if err := s.DB.NewSelect().
		Model(guestModel).
		Where("guest.id = ?", guestID).
		Relation("Companions").
		Scan(ctx); err != nil {
		if err == sql.ErrNoRows {
			return FullGuest{}, ErrGuestNotFound
		}
		return FullGuest{}, fmt.Errorf("GuestStore.UpdateProfile: %w", err)
	}

	if update.FullName != nil {
		guestModel.FullName = strings.TrimSpace(*update.FullName)
	}
	if update.Email != nil {
		guestModel.Email = rsvp.NormalizeEmail(*update.Email)
	}
	if update.Phone != nil {
		guestModel.Phone = rsvp.NormalizePhone(*update.Phone)
	}
	if update.Language != nil {
		guestModel.Language = *update.Language
	}
	if update.MaxCompanions != nil {
		guestModel.MaxCompanions = *update.MaxCompanions
	}

	if err := guestModel.Upsert(ctx, s.DB); err != nil {
		return FullGuest{}, fmt.Errorf("GuestStore.UpdateProfile: %w", err)
	}
	return fromModel(guestModel), nil
}

func (s *GuestStore) DeleteGuest(ctx context.Context, guestID string) error {
	ctx = context.WithValue(ctx, model.GuestIDCtxKey, guestID)
	result, err := s.DB.NewDelete().
		Model((*model.Guest)(nil)).
		Where("id = ?", guestID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("GuestStore.DeleteGuest: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("GuestStore.DeleteGuest: %w", err)
	}
	if affected == 0 {
		return ErrGuestNotFound
	}
	return nil
}

type AttendanceTotals struct {
	Undecided int `json:"undecided"`
	Attending int `json:"attending"`
	Declined  int `json:"declined"`
	Adults    int `json:"adults"`
	Minors    int `json:"minors"`
}

func (s *GuestStore) Totals(ctx context.Context) (AttendanceTotals, error) {
	var totals AttendanceTotals
	for _, row := range []struct {
		attendance rsvp.AttendanceType
		dst        *int
	}{
		{rsvp.ATTENDANCE_UNDECIDED, &totals.Undecided},
		{rsvp.ATTENDANCE_ATTENDING, &totals.Attending},
		{rsvp.ATTENDANCE_DECLINED, &totals.Declined},
	} {
		count, err := s.DB.NewSelect().
			Model((*model.Guest)(nil)).
			Where("attendance = ?", row.attendance).
			Count(ctx)
		if err != nil {
			return AttendanceTotals{}, fmt.Errorf("GuestStore.Totals: %w", err)
		}
		*row.dst = count
	}

	if err := s.DB.NewSelect().
		Model((*model.Guest)(nil)).
		ColumnExpr("COALESCE(SUM(num_adults), 0)").
		Where("attendance = ?", rsvp.ATTENDANCE_ATTENDING).
		Scan(ctx, &totals.Adults); err != nil {
		return AttendanceTotals{}, fmt.Errorf("GuestStore.Totals: %w", err)
	}
	if err := s.DB.NewSelect().
		Model((*model.Guest)(nil)).
		ColumnExpr("COALESCE(SUM(num_minors), 0)").
		Where("attendance = ?", rsvp.ATTENDANCE_ATTENDING).
		Scan(ctx, &totals.Minors); err != nil {
		return AttendanceTotals{}, fmt.Errorf("GuestStore.Totals: %w", err)
	}
	return totals, nil
}

func fromModel(g *model.Guest) FullGuest {
	companions := make([]rsvp.Companion, 0, len(g.Companions))
	for _, c := range g.Companions {
		companions = append(companions, rsvp.Companion{
			Name:        c.Name,
			IsMinor:     c.IsMinor,
			AllergyTags: rsvp.ParseTags(c.AllergyTags),
		})
	}
	return FullGuest{
		GuestRecord: rsvp.GuestRecord{
			ID:            g.ID,
			Contact:       rsvp.Contact{Email: g.Email, Phone: g.Phone},
			Attendance:    g.Attendance,
			MaxCompanions: g.MaxCompanions,
			Companions:    companions,
			AllergyTags:   rsvp.ParseTags(g.AllergyTags),
			Notes:         g.Notes,
		},
		GuestCode:          g.GuestCode,
		FullName:           g.FullName,
		Language:           g.Language,
		ConfirmedAtUnixUTC: g.ConfirmedAtUnixUTC,
	}
}

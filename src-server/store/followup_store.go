package store

import (
	"context"
	"fmt"
	"time"

	"banquet/src-server/model"

	"github.com/google/uuid"
)

func (s *GuestStore) AddFollowUp(ctx context.Context, guestID string, note string, dueAt time.Time) (model.FollowUp, error) {
	exists, err := s.DB.NewSelect().
		Model((*model.Guest)(nil)).
		Where("id = ?", guestID).
		Exists(ctx)
	if err != nil {
		return model.FollowUp{}, fmt.Errorf("GuestStore.AddFollowUp: %w", err)
	}
	if !exists {
		return model.FollowUp{}, ErrGuestNotFound
	}

	followUpModel := model.FollowUp{
		ID:               uuid.NewString(),
		GuestID:          guestID,
		Note:             note,
		DueAtUnixUTC:     dueAt.UTC().Unix(),
		CreatedAtUnixUTC: time.Now().UTC().Unix(),
	}
	if _, err := s.DB.NewInsert().
		Model(&followUpModel).
		Exec(ctx); err != nil {
		return model.FollowUp{}, fmt.Errorf("GuestStore.AddFollowUp: %w", err)
	}
	return followUpModel, nil
}

// DueFollowUps returns unsent follow-ups whose due time has passed,
// guest relation included so the reminder can name who to call.
func (s *GuestStore) DueFollowUps(ctx context.Context, now time.Time) ([]model.FollowUp, error) {
	followUpModels := make([]model.FollowUp, 0)
	if err := s.DB.NewSelect().
		Model(&followUpModels).
		Relation("Guest").
		Where("due_at <= ?", now.UTC().Unix()).
		Where("notification_sent = ?", false).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GuestStore.DueFollowUps: %w", err)
	}
	return followUpModels, nil
}

func (s *GuestStore) MarkFollowUpSent(ctx context.Context, followUpID string) error {
	if _, err := s.DB.NewUpdate().
		Model((*model.FollowUp)(nil)).
		Set("notification_sent = ?", true).
		Where("id = ?", followUpID).
		Exec(ctx); err != nil {
		return fmt.Errorf("GuestStore.MarkFollowUpSent: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"log"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/model"
	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/pkg/apperror"
	"anoa.com/wikigradebook/pkg/fieldval"
	"github.com/google/uuid"
)

type AdjustmentService interface {
	Save(ctx context.Context, actorID uuid.UUID, params dto.AdjustmentParams, confirmDelete bool) (*dto.WriteResult, error)
	EditForm(ctx context.Context, id uint, isNew bool, userID uuid.UUID) (*dto.AdjustmentForm, error)
}

type adjustmentService struct {
	adjustmentRepo repository.AdjustmentRepository
	userRepo       repository.UserRepository
	notifications  NotificationService
	cache          *ScoreCache
}

func NewAdjustmentService(
	adjustmentRepo repository.AdjustmentRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	cache *ScoreCache,
) AdjustmentService {
	return &adjustmentService{
		adjustmentRepo: adjustmentRepo,
		userRepo:       userRepo,
		notifications:  notifications,
		cache:          cache,
	}
}

func (s *adjustmentService) Save(ctx context.Context, actorID uuid.UUID, params dto.AdjustmentParams, confirmDelete bool) (*dto.WriteResult, error) {
	var existing *model.Adjustment
	if id, ok := parseRecordID(params.ID); ok {
		found, err := s.adjustmentRepo.FindByID(ctx, id)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		existing = found
	}

	if existing != nil && params.Delete {
		if !confirmDelete {
			return &dto.WriteResult{
				Kind:    KindAdjustment,
				Outcome: dto.OutcomeNeedsConfirmation,
				ID:      existing.ID,
				Confirmation: &dto.DeleteConfirmation{
					Kind:  KindAdjustment,
					ID:    existing.ID,
					Title: existing.Title,
					Echo:  params,
				},
			}, nil
		}

		rows, err := s.adjustmentRepo.Delete(ctx, existing.ID)
		if err != nil {
			return nil, err
		}

		s.notify(ctx, existing.UserID, actorID, existing.ID, "score_removed",
			fmt.Sprintf("Adjustment %q was removed", existing.Title))
		s.cache.InvalidateUser(ctx, existing.UserID)

		return &dto.WriteResult{
			Kind:         KindAdjustment,
			Outcome:      dto.OutcomeApplied,
			ID:           existing.ID,
			RowsAffected: rows,
		}, nil
	}

	userID, err := uuid.Parse(params.UserID)
	if err != nil {
		return nil, apperror.NewValidationError("user_id", "must be a valid user id")
	}
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NewReferenceError("user", userID.String())
	}

	title, err := fieldval.Title(params.Title)
	if err != nil {
		return nil, apperror.NewValidationError("title", "must not be empty")
	}
	value, err := fieldval.Float(params.Value)
	if err != nil {
		return nil, apperror.NewValidationError("value", "must be a number")
	}
	score, err := fieldval.Float(params.Score)
	if err != nil {
		return nil, apperror.NewValidationError("score", "must be a number")
	}
	enabled, err := fieldval.Bool(params.Enabled)
	if err != nil {
		return nil, apperror.NewValidationError("enabled", "must be a boolean")
	}
	date, err := fieldval.Date(params.Date)
	if err != nil {
		return nil, apperror.NewValidationError("date", "must be YYYY-MM-DD")
	}
	comment := fieldval.Comment(params.Comment)

	if existing != nil {
		fields := map[string]any{
			"user_id": userID,
			"title":   title,
			"value":   value,
			"score":   score,
			"enabled": enabled,
			"date":    date,
			"comment": comment,
		}
		rows, err := s.adjustmentRepo.Update(ctx, existing.ID, fields)
		if err != nil {
			return nil, err
		}

		if rows > 0 {
			s.notify(ctx, userID, actorID, existing.ID, "score_updated",
				fmt.Sprintf("Adjustment %q was updated: %g of %g", title, score, value))
			s.cache.InvalidateUser(ctx, userID)
			// The adjustment may have been moved to a different student.
			if existing.UserID != userID {
				s.cache.InvalidateUser(ctx, existing.UserID)
			}
		}

		outcome := dto.OutcomeApplied
		if rows == 0 {
			outcome = dto.OutcomeUnchanged
		}
		return &dto.WriteResult{
			Kind:         KindAdjustment,
			Outcome:      outcome,
			ID:           existing.ID,
			RowsAffected: rows,
		}, nil
	}

	adjustment := &model.Adjustment{
		UserID:  userID,
		Title:   title,
		Value:   value,
		Score:   score,
		Enabled: enabled,
		Date:    date,
		Comment: comment,
	}
	if err := s.adjustmentRepo.Create(ctx, adjustment); err != nil {
		return nil, err
	}

	s.notify(ctx, userID, actorID, adjustment.ID, "score_recorded",
		fmt.Sprintf("Adjustment %q was recorded: %g of %g", title, score, value))
	s.cache.InvalidateUser(ctx, userID)

	return &dto.WriteResult{
		Kind:         KindAdjustment,
		Outcome:      dto.OutcomeApplied,
		ID:           adjustment.ID,
		RowsAffected: 1,
	}, nil
}

func (s *adjustmentService) notify(ctx context.Context, studentID, actorID uuid.UUID, adjustmentID uint, changeType, message string) {
	if s.notifications == nil {
		return
	}
	entityID := fmt.Sprintf("%d", adjustmentID)
	if err := s.notifications.NotifyScoreChange(ctx, studentID, actorID, KindAdjustment, entityID, changeType, message); err != nil {
		log.Printf("failed to create adjustment notification: %v", err)
	}
}

func (s *adjustmentService) EditForm(ctx context.Context, id uint, isNew bool, userID uuid.UUID) (*dto.AdjustmentForm, error) {
	form := &dto.AdjustmentForm{}

	if !isNew {
		adjustment, err := s.adjustmentRepo.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, apperror.ErrNotFound
			}
			return nil, err
		}
		form.Adjustment = adjustment
		userID = adjustment.UserID
	}

	if userID != uuid.Nil {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			if isNotFound(err) {
				return nil, apperror.ErrNotFound
			}
			return nil, err
		}
		form.User = user
	}

	return form, nil
}

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

type EvaluationService interface {
	Save(ctx context.Context, actorID uuid.UUID, params dto.EvaluationParams, confirmDelete bool) (*dto.WriteResult, error)
	EditForm(ctx context.Context, userID uuid.UUID, assignmentID uint) (*dto.EvaluationForm, error)
	UserScoresEditForm(ctx context.Context, userID uuid.UUID) (*dto.UserScoresEditForm, error)
	AssignmentScoresEditForm(ctx context.Context, assignmentID uint) (*dto.AssignmentScoresEditForm, error)
}

type evaluationService struct {
	evaluationRepo repository.EvaluationRepository
	assignmentRepo repository.AssignmentRepository
	adjustmentRepo repository.AdjustmentRepository
	userRepo       repository.UserRepository
	notifications  NotificationService
	cache          *ScoreCache
}

func NewEvaluationService(
	evaluationRepo repository.EvaluationRepository,
	assignmentRepo repository.AssignmentRepository,
	adjustmentRepo repository.AdjustmentRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	cache *ScoreCache,
) EvaluationService {
	return &evaluationService{
		evaluationRepo: evaluationRepo,
		assignmentRepo: assignmentRepo,
		adjustmentRepo: adjustmentRepo,
		userRepo:       userRepo,
		notifications:  notifications,
		cache:          cache,
	}
}

func (s *evaluationService) Save(ctx context.Context, actorID uuid.UUID, params dto.EvaluationParams, confirmDelete bool) (*dto.WriteResult, error) {
	userID, err := uuid.Parse(params.UserID)
	if err != nil {
		return nil, apperror.NewValidationError("user_id", "must be a valid user id")
	}
	assignmentID, ok := parseRecordID(params.AssignmentID)
	if !ok {
		return nil, apperror.NewValidationError("assignment_id", "must be a positive integer")
	}

	// Both referenced records must exist at write time.
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NewReferenceError("user", userID.String())
	}
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NewReferenceError("assignment", params.AssignmentID)
		}
		return nil, err
	}

	existing, err := s.evaluationRepo.Find(ctx, userID, assignmentID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	if existing != nil && params.Delete {
		if !confirmDelete {
			return &dto.WriteResult{
				Kind:    KindEvaluation,
				Outcome: dto.OutcomeNeedsConfirmation,
				ID:      assignmentID,
				Confirmation: &dto.DeleteConfirmation{
					Kind:  KindEvaluation,
					ID:    assignmentID,
					Title: assignment.Title,
					Echo:  params,
				},
			}, nil
		}

		rows, err := s.evaluationRepo.Delete(ctx, userID, assignmentID)
		if err != nil {
			return nil, err
		}

		s.notifyChange(ctx, userID, actorID, assignment, "score_removed",
			fmt.Sprintf("Your score for %q was removed", assignment.Title))
		s.cache.InvalidateUser(ctx, userID)

		return &dto.WriteResult{
			Kind:         KindEvaluation,
			Outcome:      dto.OutcomeApplied,
			ID:           assignmentID,
			RowsAffected: rows,
		}, nil
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
			"score":   score,
			"enabled": enabled,
			"date":    date,
			"comment": comment,
		}
		rows, err := s.evaluationRepo.Update(ctx, userID, assignmentID, fields)
		if err != nil {
			return nil, err
		}

		if rows > 0 {
			s.notifyChange(ctx, userID, actorID, assignment, "score_updated",
				fmt.Sprintf("Your score for %q was updated to %g", assignment.Title, score))
			s.cache.InvalidateUser(ctx, userID)
		}

		outcome := dto.OutcomeApplied
		if rows == 0 {
			outcome = dto.OutcomeUnchanged
		}
		return &dto.WriteResult{
			Kind:         KindEvaluation,
			Outcome:      outcome,
			ID:           assignmentID,
			RowsAffected: rows,
		}, nil
	}

	evaluation := &model.Evaluation{
		UserID:       userID,
		AssignmentID: assignmentID,
		Score:        score,
		Enabled:      enabled,
		Date:         date,
		Comment:      comment,
	}
	if err := s.evaluationRepo.Create(ctx, evaluation); err != nil {
		return nil, err
	}

	s.notifyChange(ctx, userID, actorID, assignment, "score_recorded",
		fmt.Sprintf("Your score for %q was recorded: %g of %g", assignment.Title, score, assignment.Value))
	s.cache.InvalidateUser(ctx, userID)

	return &dto.WriteResult{
		Kind:         KindEvaluation,
		Outcome:      dto.OutcomeApplied,
		ID:           assignmentID,
		RowsAffected: 1,
	}, nil
}

func (s *evaluationService) notifyChange(ctx context.Context, studentID, actorID uuid.UUID, assignment *model.Assignment, changeType, message string) {
	if s.notifications == nil {
		return
	}
	entityID := fmt.Sprintf("%d", assignment.ID)
	if err := s.notifications.NotifyScoreChange(ctx, studentID, actorID, KindEvaluation, entityID, changeType, message); err != nil {
		log.Printf("failed to create score notification: %v", err)
	}
}

func (s *evaluationService) EditForm(ctx context.Context, userID uuid.UUID, assignmentID uint) (*dto.EvaluationForm, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	form := &dto.EvaluationForm{User: user, Assignment: assignment}

	evaluation, err := s.evaluationRepo.Find(ctx, userID, assignmentID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	form.Evaluation = evaluation

	return form, nil
}

func (s *evaluationService) UserScoresEditForm(ctx context.Context, userID uuid.UUID) (*dto.UserScoresEditForm, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	assignments, err := s.assignmentRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	evaluations, err := s.evaluationRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.adjustmentRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byAssignment := make(map[uint]model.Evaluation, len(evaluations))
	for _, e := range evaluations {
		byAssignment[e.AssignmentID] = e
	}

	rows := make([]dto.EvaluationRow, 0, len(assignments))
	for _, a := range assignments {
		row := dto.EvaluationRow{Assignment: a}
		if e, ok := byAssignment[a.ID]; ok {
			evaluation := e
			row.Evaluation = &evaluation
		}
		rows = append(rows, row)
	}

	return &dto.UserScoresEditForm{
		User:        user,
		Rows:        rows,
		Adjustments: adjustments,
	}, nil
}

func (s *evaluationService) AssignmentScoresEditForm(ctx context.Context, assignmentID uint) (*dto.AssignmentScoresEditForm, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	students, err := s.userRepo.FindByRole(ctx, "student")
	if err != nil {
		return nil, err
	}
	evaluations, err := s.evaluationRepo.FindByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]model.Evaluation, len(evaluations))
	for _, e := range evaluations {
		byUser[e.UserID] = e
	}

	rows := make([]dto.StudentEvaluationRow, 0, len(students))
	for _, u := range students {
		row := dto.StudentEvaluationRow{User: *u}
		if e, ok := byUser[u.ID]; ok {
			evaluation := e
			evaluation.User = nil // row already carries the user
			row.Evaluation = &evaluation
		}
		rows = append(rows, row)
	}

	return &dto.AssignmentScoresEditForm{
		Assignment: assignment,
		Rows:       rows,
	}, nil
}

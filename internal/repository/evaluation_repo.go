package repository

import (
	"context"

	"anoa.com/wikigradebook/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *model.Evaluation) error
	Find(ctx context.Context, userID uuid.UUID, assignmentID uint) (*model.Evaluation, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Evaluation, error)
	// FindByAssignment preloads the owning users; the delete-confirmation
	// view lists them before a cascade.
	FindByAssignment(ctx context.Context, assignmentID uint) ([]model.Evaluation, error)
	Update(ctx context.Context, userID uuid.UUID, assignmentID uint, fields map[string]any) (int64, error)
	Delete(ctx context.Context, userID uuid.UUID, assignmentID uint) (int64, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *model.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) Find(ctx context.Context, userID uuid.UUID, assignmentID uint) (*model.Evaluation, error) {
	var evaluation model.Evaluation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		First(&evaluation).Error; err != nil {
		return nil, err
	}
	return &evaluation, nil
}

func (r *evaluationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *evaluationRepository) FindByAssignment(ctx context.Context, assignmentID uint) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("assignment_id = ?", assignmentID).
		Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *evaluationRepository) Update(ctx context.Context, userID uuid.UUID, assignmentID uint, fields map[string]any) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Evaluation{}).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *evaluationRepository) Delete(ctx context.Context, userID uuid.UUID, assignmentID uint) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		Delete(&model.Evaluation{})
	return tx.RowsAffected, tx.Error
}

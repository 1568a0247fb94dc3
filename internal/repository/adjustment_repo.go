package repository

import (
	"context"

	"anoa.com/wikigradebook/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *model.Adjustment) error
	FindByID(ctx context.Context, id uint) (*model.Adjustment, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Adjustment, error)
	Update(ctx context.Context, id uint, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type adjustmentRepository struct {
	db *gorm.DB
}

func NewAdjustmentRepository(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(ctx context.Context, adjustment *model.Adjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *adjustmentRepository) FindByID(ctx context.Context, id uint) (*model.Adjustment, error) {
	var adjustment model.Adjustment
	if err := r.db.WithContext(ctx).First(&adjustment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adjustment, nil
}

func (r *adjustmentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Adjustment, error) {
	var adjustments []model.Adjustment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (r *adjustmentRepository) Update(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Adjustment{}).
		Where("id = ?", id).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *adjustmentRepository) Delete(ctx context.Context, id uint) (int64, error) {
	tx := r.db.WithContext(ctx).Delete(&model.Adjustment{}, "id = ?", id)
	return tx.RowsAffected, tx.Error
}

package repository

import (
	"context"
	"time"

	"anoa.com/wikigradebook/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	// LinkToAssignment claims uploaded files for an assignment. Only rows
	// owned by the uploader and not already claimed by another assignment
	// are updated.
	LinkToAssignment(ctx context.Context, attachmentIDs []uint, assignmentID uint, userID uuid.UUID) error
	FindByAssignment(ctx context.Context, assignmentID uint) ([]model.Attachment, error)
	FindOrphans(ctx context.Context, cutoffTime time.Time) ([]model.Attachment, error)
	Delete(ctx context.Context, id uint) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) LinkToAssignment(ctx context.Context, attachmentIDs []uint, assignmentID uint, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Attachment{}).
		Where("id IN ? AND user_id = ?", attachmentIDs, userID).
		Where("assignment_id IS NULL OR assignment_id = ?", assignmentID).
		Update("assignment_id", assignmentID).Error
}

func (r *attachmentRepository) FindByAssignment(ctx context.Context, assignmentID uint) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) FindOrphans(ctx context.Context, cutoffTime time.Time) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.db.WithContext(ctx).
		Where("assignment_id IS NULL AND created_at < ?", cutoffTime).
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Attachment{}, id).Error
}

package repository

import (
	"context"

	"anoa.com/wikigradebook/internal/model"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	FindByID(ctx context.Context, id uint) (*model.Assignment, error)
	FindAll(ctx context.Context) ([]model.Assignment, error)
	// Update applies the given column values and reports how many rows
	// changed; zero means the record was already in that state.
	Update(ctx context.Context, id uint, fields map[string]any) (int64, error)
	// DeleteCascade removes the assignment together with its evaluations,
	// membership rows and attachment rows. Each delete is its own
	// statement; there is no wrapping transaction (see design notes).
	DeleteCascade(ctx context.Context, id uint) (int64, error)

	ListGroupIDs(ctx context.Context, assignmentID uint) ([]uint, error)
	InsertMembership(ctx context.Context, groupID, assignmentID uint) error
	DeleteMembership(ctx context.Context, groupID, assignmentID uint) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uint) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Groups").
		Preload("Attachments").
		First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindAll(ctx context.Context) ([]model.Assignment, error) {
	var assignments []model.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Groups").
		Order("date NULLS LAST, title").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) Update(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("id = ?", id).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *assignmentRepository) DeleteCascade(ctx context.Context, id uint) (int64, error) {
	var total int64

	tx := r.db.WithContext(ctx).Where("assignment_id = ?", id).Delete(&model.Evaluation{})
	if tx.Error != nil {
		return total, tx.Error
	}
	total += tx.RowsAffected

	tx = r.db.WithContext(ctx).Where("assignment_id = ?", id).Delete(&model.GroupAssignment{})
	if tx.Error != nil {
		return total, tx.Error
	}
	total += tx.RowsAffected

	tx = r.db.WithContext(ctx).Where("assignment_id = ?", id).Delete(&model.Attachment{})
	if tx.Error != nil {
		return total, tx.Error
	}
	total += tx.RowsAffected

	tx = r.db.WithContext(ctx).Delete(&model.Assignment{}, "id = ?", id)
	if tx.Error != nil {
		return total, tx.Error
	}
	total += tx.RowsAffected

	return total, nil
}

func (r *assignmentRepository) ListGroupIDs(ctx context.Context, assignmentID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.GroupAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Pluck("group_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *assignmentRepository) InsertMembership(ctx context.Context, groupID, assignmentID uint) error {
	edge := model.GroupAssignment{GroupID: groupID, AssignmentID: assignmentID}
	return r.db.WithContext(ctx).Create(&edge).Error
}

func (r *assignmentRepository) DeleteMembership(ctx context.Context, groupID, assignmentID uint) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("group_id = ? AND assignment_id = ?", groupID, assignmentID).
		Delete(&model.GroupAssignment{})
	return tx.RowsAffected, tx.Error
}

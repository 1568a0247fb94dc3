package repository

import (
	"context"

	"anoa.com/wikigradebook/internal/model"
	"gorm.io/gorm"
)

type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	FindByID(ctx context.Context, id uint) (*model.Group, error)
	FindAll(ctx context.Context) ([]model.Group, error)
	Update(ctx context.Context, id uint, fields map[string]any) (int64, error)
	// Delete removes the group and its membership edges. Like the
	// assignment cascade, the two deletes are separate statements.
	Delete(ctx context.Context, id uint) (int64, error)
	CountMembers(ctx context.Context, id uint) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Update(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Group{}).
		Where("id = ?", id).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *groupRepository) Delete(ctx context.Context, id uint) (int64, error) {
	var total int64

	tx := r.db.WithContext(ctx).Where("group_id = ?", id).Delete(&model.GroupAssignment{})
	if tx.Error != nil {
		return total, tx.Error
	}
	total += tx.RowsAffected

	tx = r.db.WithContext(ctx).Delete(&model.Group{}, "id = ?", id)
	if tx.Error != nil {
		return total, tx.Error
	}
	total += tx.RowsAffected

	return total, nil
}

func (r *groupRepository) CountMembers(ctx context.Context, id uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.GroupAssignment{}).
		Where("group_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

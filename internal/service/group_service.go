package service

import (
	"context"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/model"
	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/pkg/apperror"
	"anoa.com/wikigradebook/pkg/fieldval"
	"github.com/google/uuid"
)

type GroupService interface {
	Save(ctx context.Context, actorID uuid.UUID, params dto.GroupParams, confirmDelete bool) (*dto.WriteResult, error)
	List(ctx context.Context) ([]model.Group, error)
	EditForm(ctx context.Context, id uint, isNew bool) (*dto.GroupForm, error)
}

type groupService struct {
	groupRepo repository.GroupRepository
	cache     *ScoreCache
}

func NewGroupService(groupRepo repository.GroupRepository, cache *ScoreCache) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		cache:     cache,
	}
}

func (s *groupService) Save(ctx context.Context, actorID uuid.UUID, params dto.GroupParams, confirmDelete bool) (*dto.WriteResult, error) {
	var existing *model.Group
	if id, ok := parseRecordID(params.ID); ok {
		found, err := s.groupRepo.FindByID(ctx, id)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		existing = found
	}

	if existing != nil && params.Delete {
		if !confirmDelete {
			members, err := s.groupRepo.CountMembers(ctx, existing.ID)
			if err != nil {
				return nil, err
			}
			return &dto.WriteResult{
				Kind:    KindGroup,
				Outcome: dto.OutcomeNeedsConfirmation,
				ID:      existing.ID,
				Confirmation: &dto.DeleteConfirmation{
					Kind:        KindGroup,
					ID:          existing.ID,
					Title:       existing.Title,
					MemberCount: members,
					Echo:        params,
				},
			}, nil
		}

		rows, err := s.groupRepo.Delete(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		s.cache.BumpVersion(ctx)

		return &dto.WriteResult{
			Kind:         KindGroup,
			Outcome:      dto.OutcomeApplied,
			ID:           existing.ID,
			RowsAffected: rows,
		}, nil
	}

	title, err := fieldval.Title(params.Title)
	if err != nil {
		return nil, apperror.NewValidationError("title", "must not be empty")
	}
	enabled, err := fieldval.Bool(params.Enabled)
	if err != nil {
		return nil, apperror.NewValidationError("enabled", "must be a boolean")
	}

	if existing != nil {
		fields := map[string]any{
			"title":   title,
			"enabled": enabled,
		}
		rows, err := s.groupRepo.Update(ctx, existing.ID, fields)
		if err != nil {
			return nil, err
		}
		s.cache.BumpVersion(ctx)

		outcome := dto.OutcomeApplied
		if rows == 0 {
			outcome = dto.OutcomeUnchanged
		}
		return &dto.WriteResult{
			Kind:         KindGroup,
			Outcome:      outcome,
			ID:           existing.ID,
			RowsAffected: rows,
		}, nil
	}

	group := &model.Group{
		Title:   title,
		Enabled: enabled,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	return &dto.WriteResult{
		Kind:         KindGroup,
		Outcome:      dto.OutcomeApplied,
		ID:           group.ID,
		RowsAffected: 1,
	}, nil
}

func (s *groupService) List(ctx context.Context) ([]model.Group, error) {
	return s.groupRepo.FindAll(ctx)
}

func (s *groupService) EditForm(ctx context.Context, id uint, isNew bool) (*dto.GroupForm, error) {
	form := &dto.GroupForm{}

	if !isNew {
		group, err := s.groupRepo.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, apperror.ErrNotFound
			}
			return nil, err
		}
		form.Group = group
	}

	return form, nil
}

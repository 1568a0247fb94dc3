package service

import (
	"context"
	"log"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/model"
	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/pkg/apperror"
	"anoa.com/wikigradebook/pkg/fieldval"
	"anoa.com/wikigradebook/pkg/storage"
	"github.com/google/uuid"
)

type AssignmentService interface {
	// Save creates, updates or deletes one assignment from raw form
	// params. Deletes are two-phase: without confirmDelete the result is a
	// confirmation request listing the evaluations a cascade would remove.
	Save(ctx context.Context, actorID uuid.UUID, params dto.AssignmentParams, confirmDelete bool) (*dto.WriteResult, error)
	List(ctx context.Context) ([]model.Assignment, error)
	EditForm(ctx context.Context, id uint, isNew bool) (*dto.AssignmentForm, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	evaluationRepo repository.EvaluationRepository
	groupRepo      repository.GroupRepository
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
	search         MeiliSearchService
	cache          *ScoreCache
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	evaluationRepo repository.EvaluationRepository,
	groupRepo repository.GroupRepository,
	attachmentRepo repository.AttachmentRepository,
	fileStorage storage.FileStorage,
	search MeiliSearchService,
	cache *ScoreCache,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		evaluationRepo: evaluationRepo,
		groupRepo:      groupRepo,
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
		search:         search,
		cache:          cache,
	}
}

func (s *assignmentService) Save(ctx context.Context, actorID uuid.UUID, params dto.AssignmentParams, confirmDelete bool) (*dto.WriteResult, error) {
	var existing *model.Assignment
	if id, ok := parseRecordID(params.ID); ok {
		found, err := s.assignmentRepo.FindByID(ctx, id)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		existing = found
	}

	if existing != nil && params.Delete {
		return s.deleteAssignment(ctx, existing, params, confirmDelete)
	}

	title, err := fieldval.Title(params.Title)
	if err != nil {
		return nil, apperror.NewValidationError("title", "must not be empty")
	}
	value, err := fieldval.Float(params.Value)
	if err != nil {
		return nil, apperror.NewValidationError("value", "must be a number")
	}
	enabled, err := fieldval.Bool(params.Enabled)
	if err != nil {
		return nil, apperror.NewValidationError("enabled", "must be a boolean")
	}
	date, err := fieldval.Date(params.Date)
	if err != nil {
		return nil, apperror.NewValidationError("date", "must be YYYY-MM-DD")
	}
	groupIDs := make([]uint, 0, len(params.GroupIDs))
	for _, raw := range params.GroupIDs {
		gid, ok := parseRecordID(raw)
		if !ok {
			return nil, apperror.NewValidationError("group_ids", "must be positive integers")
		}
		groupIDs = append(groupIDs, gid)
	}

	if existing != nil {
		fields := map[string]any{
			"title":   title,
			"value":   value,
			"enabled": enabled,
			"date":    date,
		}
		rows, err := s.assignmentRepo.Update(ctx, existing.ID, fields)
		if err != nil {
			return nil, err
		}

		// The update above and the membership diff below are independent
		// statements; a crash in between leaves membership stale until the
		// next save.
		memberRows, err := s.diffMembership(ctx, existing.ID, groupIDs)
		if err != nil {
			return nil, err
		}
		rows += memberRows

		if len(params.AttachmentIDs) > 0 {
			if err := s.attachmentRepo.LinkToAssignment(ctx, params.AttachmentIDs, existing.ID, actorID); err != nil {
				return nil, err
			}
		}

		s.reindex(ctx, existing.ID)
		s.cache.BumpVersion(ctx)

		outcome := dto.OutcomeApplied
		if rows == 0 {
			outcome = dto.OutcomeUnchanged
		}
		return &dto.WriteResult{
			Kind:         KindAssignment,
			Outcome:      outcome,
			ID:           existing.ID,
			RowsAffected: rows,
		}, nil
	}

	assignment := &model.Assignment{
		Title:   title,
		Value:   value,
		Enabled: enabled,
		Date:    date,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	rows := int64(1)
	for _, gid := range groupIDs {
		if err := s.assignmentRepo.InsertMembership(ctx, gid, assignment.ID); err != nil {
			return nil, err
		}
		rows++
	}

	if len(params.AttachmentIDs) > 0 {
		if err := s.attachmentRepo.LinkToAssignment(ctx, params.AttachmentIDs, assignment.ID, actorID); err != nil {
			return nil, err
		}
	}

	s.reindex(ctx, assignment.ID)
	s.cache.BumpVersion(ctx)

	return &dto.WriteResult{
		Kind:         KindAssignment,
		Outcome:      dto.OutcomeApplied,
		ID:           assignment.ID,
		RowsAffected: rows,
	}, nil
}

func (s *assignmentService) deleteAssignment(ctx context.Context, existing *model.Assignment, params dto.AssignmentParams, confirmDelete bool) (*dto.WriteResult, error) {
	if !confirmDelete {
		evaluations, err := s.evaluationRepo.FindByAssignment(ctx, existing.ID)
		if err != nil {
			return nil, err
		}

		refs := make([]dto.EvaluationRef, 0, len(evaluations))
		for _, e := range evaluations {
			ref := dto.EvaluationRef{UserID: e.UserID, Score: e.Score}
			if e.User != nil {
				ref.Username = e.User.Username
			}
			refs = append(refs, ref)
		}

		return &dto.WriteResult{
			Kind:    KindAssignment,
			Outcome: dto.OutcomeNeedsConfirmation,
			ID:      existing.ID,
			Confirmation: &dto.DeleteConfirmation{
				Kind:        KindAssignment,
				ID:          existing.ID,
				Title:       existing.Title,
				Evaluations: refs,
				Echo:        params,
			},
		}, nil
	}

	// Remove stored handout files before the rows disappear; a failed
	// storage delete only leaks a file, never blocks the cascade.
	if s.fileStorage != nil {
		attachments, err := s.attachmentRepo.FindByAssignment(ctx, existing.ID)
		if err == nil {
			for _, a := range attachments {
				if err := s.fileStorage.DeleteFile(ctx, a.FileURL); err != nil {
					log.Printf("failed to delete attachment file %s: %v", a.FileURL, err)
				}
			}
		}
	}

	rows, err := s.assignmentRepo.DeleteCascade(ctx, existing.ID)
	if err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.DeleteAssignment(existing.ID); err != nil {
			log.Printf("failed to remove assignment %d from search index: %v", existing.ID, err)
		}
	}
	s.cache.BumpVersion(ctx)

	return &dto.WriteResult{
		Kind:         KindAssignment,
		Outcome:      dto.OutcomeApplied,
		ID:           existing.ID,
		RowsAffected: rows,
	}, nil
}

// diffMembership reconciles the desired group set against the stored
// GroupAssignment rows: edges present but not desired are deleted, edges
// desired but not present are inserted.
func (s *assignmentService) diffMembership(ctx context.Context, assignmentID uint, desired []uint) (int64, error) {
	current, err := s.assignmentRepo.ListGroupIDs(ctx, assignmentID)
	if err != nil {
		return 0, err
	}

	currentSet := make(map[uint]bool, len(current))
	for _, gid := range current {
		currentSet[gid] = true
	}
	desiredSet := make(map[uint]bool, len(desired))
	for _, gid := range desired {
		desiredSet[gid] = true
	}

	var rows int64
	for _, gid := range current {
		if !desiredSet[gid] {
			n, err := s.assignmentRepo.DeleteMembership(ctx, gid, assignmentID)
			if err != nil {
				return rows, err
			}
			rows += n
		}
	}
	for _, gid := range desired {
		if !currentSet[gid] {
			if err := s.assignmentRepo.InsertMembership(ctx, gid, assignmentID); err != nil {
				return rows, err
			}
			rows++
		}
	}

	return rows, nil
}

func (s *assignmentService) reindex(ctx context.Context, assignmentID uint) {
	if s.search == nil {
		return
	}
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return
	}
	if err := s.search.IndexAssignment(assignment); err != nil {
		log.Printf("failed to index assignment %d: %v", assignmentID, err)
	}
}

func (s *assignmentService) List(ctx context.Context) ([]model.Assignment, error) {
	return s.assignmentRepo.FindAll(ctx)
}

func (s *assignmentService) EditForm(ctx context.Context, id uint, isNew bool) (*dto.AssignmentForm, error) {
	groups, err := s.groupRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	form := &dto.AssignmentForm{}

	memberSet := make(map[uint]bool)
	if !isNew {
		assignment, err := s.assignmentRepo.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, apperror.ErrNotFound
			}
			return nil, err
		}
		form.Assignment = assignment
		for _, g := range assignment.Groups {
			memberSet[g.ID] = true
		}
	}

	form.Groups = make([]dto.GroupMembership, 0, len(groups))
	for _, g := range groups {
		form.Groups = append(form.Groups, dto.GroupMembership{
			Group:  g,
			Member: memberSet[g.ID],
		})
	}

	return form, nil
}

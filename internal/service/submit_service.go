package service

import (
	"context"

	"anoa.com/wikigradebook/internal/dto"
	"github.com/google/uuid"
)

type SubmitService interface {
	// Submit applies one batch of write entries. When any entry is a
	// delete, only the first delete is processed and every other entry in
	// the batch is dropped; deletes are destructive enough that they never
	// share a submit with other writes. Delete precedence follows entity
	// kind (assignment, evaluation, adjustment, group), then entry index.
	Submit(ctx context.Context, actorID uuid.UUID, req dto.SubmitRequest) (*dto.SubmitResult, error)
}

type submitService struct {
	assignments AssignmentService
	evaluations EvaluationService
	adjustments AdjustmentService
	groups      GroupService
}

func NewSubmitService(
	assignments AssignmentService,
	evaluations EvaluationService,
	adjustments AdjustmentService,
	groups GroupService,
) SubmitService {
	return &submitService{
		assignments: assignments,
		evaluations: evaluations,
		adjustments: adjustments,
		groups:      groups,
	}
}

func (s *submitService) Submit(ctx context.Context, actorID uuid.UUID, req dto.SubmitRequest) (*dto.SubmitResult, error) {
	if item, ok := s.firstDelete(ctx, actorID, req); ok {
		return &dto.SubmitResult{Results: []dto.ItemResult{item}}, nil
	}

	results := make([]dto.ItemResult, 0,
		len(req.Assignments)+len(req.Evaluations)+len(req.Adjustments)+len(req.Groups))

	for _, p := range req.Assignments {
		result, err := s.assignments.Save(ctx, actorID, p, req.ConfirmDelete)
		results = append(results, itemResult(KindAssignment, p.Index, result, err))
	}
	for _, p := range req.Evaluations {
		result, err := s.evaluations.Save(ctx, actorID, p, req.ConfirmDelete)
		results = append(results, itemResult(KindEvaluation, p.Index, result, err))
	}
	for _, p := range req.Adjustments {
		result, err := s.adjustments.Save(ctx, actorID, p, req.ConfirmDelete)
		results = append(results, itemResult(KindAdjustment, p.Index, result, err))
	}
	for _, p := range req.Groups {
		result, err := s.groups.Save(ctx, actorID, p, req.ConfirmDelete)
		results = append(results, itemResult(KindGroup, p.Index, result, err))
	}

	return &dto.SubmitResult{Results: results}, nil
}

// firstDelete scans the batch in kind precedence order and runs only the
// first delete entry it finds.
func (s *submitService) firstDelete(ctx context.Context, actorID uuid.UUID, req dto.SubmitRequest) (dto.ItemResult, bool) {
	for _, p := range req.Assignments {
		if p.Delete {
			result, err := s.assignments.Save(ctx, actorID, p, req.ConfirmDelete)
			return itemResult(KindAssignment, p.Index, result, err), true
		}
	}
	for _, p := range req.Evaluations {
		if p.Delete {
			result, err := s.evaluations.Save(ctx, actorID, p, req.ConfirmDelete)
			return itemResult(KindEvaluation, p.Index, result, err), true
		}
	}
	for _, p := range req.Adjustments {
		if p.Delete {
			result, err := s.adjustments.Save(ctx, actorID, p, req.ConfirmDelete)
			return itemResult(KindAdjustment, p.Index, result, err), true
		}
	}
	for _, p := range req.Groups {
		if p.Delete {
			result, err := s.groups.Save(ctx, actorID, p, req.ConfirmDelete)
			return itemResult(KindGroup, p.Index, result, err), true
		}
	}
	return dto.ItemResult{}, false
}

func itemResult(kind string, index int, result *dto.WriteResult, err error) dto.ItemResult {
	item := dto.ItemResult{Kind: kind, Index: index, Result: result}
	if err != nil {
		item.Error = err.Error()
	}
	return item
}

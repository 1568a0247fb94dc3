package service

import (
	"context"
	"sort"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/model"
	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/pkg/apperror"
	"github.com/google/uuid"
)

type ScoreService interface {
	// ComputeStudentScores builds the full grade view for one student:
	// every assignment and adjustment as a display item plus the running
	// totals over the enabled ones.
	ComputeStudentScores(ctx context.Context, userID uuid.UUID) (*dto.ScoreReport, error)
	InstructorSummary(ctx context.Context) (*dto.InstructorSummary, error)
}

type scoreService struct {
	assignmentRepo repository.AssignmentRepository
	evaluationRepo repository.EvaluationRepository
	adjustmentRepo repository.AdjustmentRepository
	userRepo       repository.UserRepository
	cache          *ScoreCache
}

func NewScoreService(
	assignmentRepo repository.AssignmentRepository,
	evaluationRepo repository.EvaluationRepository,
	adjustmentRepo repository.AdjustmentRepository,
	userRepo repository.UserRepository,
	cache *ScoreCache,
) ScoreService {
	return &scoreService{
		assignmentRepo: assignmentRepo,
		evaluationRepo: evaluationRepo,
		adjustmentRepo: adjustmentRepo,
		userRepo:       userRepo,
		cache:          cache,
	}
}

func (s *scoreService) ComputeStudentScores(ctx context.Context, userID uuid.UUID) (*dto.ScoreReport, error) {
	if report, ok := s.cache.Get(ctx, userID); ok {
		return report, nil
	}

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

	report := &dto.ScoreReport{
		UserID:   userID,
		Username: user.Username,
		Items:    make([]dto.ScoreItem, 0, len(assignments)+len(adjustments)),
	}

	for _, a := range assignments {
		item := dto.ScoreItem{
			Kind:  KindAssignment,
			ID:    a.ID,
			Title: a.Title,
			Date:  a.Date,
			Value: a.Value,
		}

		evaluation, evaluated := byAssignment[a.ID]
		if evaluated {
			score := evaluation.Score
			item.Score = &score
			item.Comment = evaluation.Comment
			if evaluation.Date != nil {
				item.Date = evaluation.Date
			}
		}

		switch {
		case !a.Enabled:
			item.Status = dto.ItemDisabled
		case evaluated && !evaluation.Enabled:
			// The evaluation is suspended, not the assignment: the work is
			// still outstanding, so its value stays in the possible total.
			item.Status = dto.ItemDisabled
			report.PointsAllPossible += a.Value
		case evaluated:
			item.Status = dto.ItemScored
			report.PointsEarned += evaluation.Score
			report.PointsIdeal += a.Value
			report.PointsAllPossible += a.Value
		default:
			item.Status = dto.ItemUnevaluated
			report.PointsAllPossible += a.Value
		}

		report.Items = append(report.Items, item)
	}

	for _, adj := range adjustments {
		score := adj.Score
		item := dto.ScoreItem{
			Kind:    KindAdjustment,
			ID:      adj.ID,
			Title:   adj.Title,
			Date:    adj.Date,
			Value:   adj.Value,
			Score:   &score,
			Comment: adj.Comment,
			Status:  dto.ItemScored,
		}

		if adj.Enabled {
			report.PointsEarned += adj.Score
			report.PointsIdeal += adj.Value
			report.PointsAllPossible += adj.Value
		} else {
			item.Status = dto.ItemDisabled
		}

		report.Items = append(report.Items, item)
	}

	sortScoreItems(report.Items)

	if report.PointsIdeal != 0 {
		pct := report.PointsEarned / report.PointsIdeal * 100
		report.Percentage = &pct
	}

	s.cache.Set(ctx, userID, report)
	return report, nil
}

// sortScoreItems orders items by date ascending with undated items last;
// ties break on title.
func sortScoreItems(items []dto.ScoreItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Date == nil && b.Date == nil:
			return a.Title < b.Title
		case a.Date == nil:
			return false
		case b.Date == nil:
			return true
		case *a.Date != *b.Date:
			return *a.Date < *b.Date
		default:
			return a.Title < b.Title
		}
	})
}

func (s *scoreService) InstructorSummary(ctx context.Context) (*dto.InstructorSummary, error) {
	students, err := s.userRepo.FindByRole(ctx, "student")
	if err != nil {
		return nil, err
	}

	summary := &dto.InstructorSummary{
		Students: make([]dto.StudentSummary, 0, len(students)),
	}
	for _, student := range students {
		report, err := s.ComputeStudentScores(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		summary.Students = append(summary.Students, dto.StudentSummary{
			UserID:       report.UserID,
			Username:     report.Username,
			PointsEarned: report.PointsEarned,
			PointsIdeal:  report.PointsIdeal,
			Percentage:   report.Percentage,
		})
	}

	return summary, nil
}

package service

import (
	"context"
	"strconv"
	"testing"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/model"
	"github.com/google/uuid"
)

type submitFixture struct {
	users       *fakeUserRepo
	assignments *fakeAssignmentRepo
	evaluations *fakeEvaluationRepo
	adjustments *fakeAdjustmentRepo
	groups      *fakeGroupRepo
	svc         SubmitService
	actorID     uuid.UUID
}

func newSubmitFixture() *submitFixture {
	users := newFakeUserRepo()
	evaluations := newFakeEvaluationRepo(users)
	attachments := newFakeAttachmentRepo()
	assignments := newFakeAssignmentRepo(evaluations, attachments)
	adjustments := newFakeAdjustmentRepo()
	groups := newFakeGroupRepo(assignments)
	cache := NewScoreCache(nil)

	assignmentSvc := NewAssignmentService(assignments, evaluations, groups, attachments, nil, nil, cache)
	evaluationSvc := NewEvaluationService(evaluations, assignments, adjustments, users, nil, cache)
	adjustmentSvc := NewAdjustmentService(adjustments, users, nil, cache)
	groupSvc := NewGroupService(groups, cache)

	return &submitFixture{
		users:       users,
		assignments: assignments,
		evaluations: evaluations,
		adjustments: adjustments,
		groups:      groups,
		svc:         NewSubmitService(assignmentSvc, evaluationSvc, adjustmentSvc, groupSvc),
		actorID:     users.add("teacher", "instructor"),
	}
}

func TestSubmitProcessesAllEntriesWithoutDeletes(t *testing.T) {
	ctx := context.Background()
	f := newSubmitFixture()
	studentID := f.users.add("alice", "student")

	a := &model.Assignment{Title: "Essay", Value: 10, Enabled: true}
	f.assignments.Create(ctx, a)

	req := dto.SubmitRequest{
		Assignments: []dto.AssignmentParams{
			{Index: 0, Title: "Quiz", Value: "5", Enabled: "on"},
		},
		Evaluations: []dto.EvaluationParams{
			{Index: 1, UserID: studentID.String(), AssignmentID: strconv.FormatUint(uint64(a.ID), 10), Score: "8", Enabled: "on"},
		},
		Groups: []dto.GroupParams{
			{Index: 2, Title: "Homework", Enabled: "on"},
		},
	}

	result, err := f.svc.Submit(ctx, f.actorID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(result.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(result.Results))
	}
	for _, item := range result.Results {
		if item.Error != "" {
			t.Errorf("entry %s/%d failed: %s", item.Kind, item.Index, item.Error)
		}
	}
	if len(f.assignments.assignments) != 2 {
		t.Errorf("len(assignments) = %d, want 2", len(f.assignments.assignments))
	}
	if len(f.evaluations.evaluations) != 1 {
		t.Errorf("len(evaluations) = %d, want 1", len(f.evaluations.evaluations))
	}
	if len(f.groups.groups) != 1 {
		t.Errorf("len(groups) = %d, want 1", len(f.groups.groups))
	}
}

func TestSubmitFirstDeleteWins(t *testing.T) {
	ctx := context.Background()
	f := newSubmitFixture()
	studentID := f.users.add("alice", "student")

	a := &model.Assignment{Title: "Essay", Value: 10, Enabled: true}
	f.assignments.Create(ctx, a)
	f.evaluations.Create(ctx, &model.Evaluation{UserID: studentID, AssignmentID: a.ID, Score: 8, Enabled: true})

	// An evaluation delete rides along with an assignment edit. Only the
	// delete runs; the edit is dropped.
	req := dto.SubmitRequest{
		ConfirmDelete: true,
		Assignments: []dto.AssignmentParams{
			{Index: 0, ID: "1", Title: "Renamed", Value: "10", Enabled: "on"},
		},
		Evaluations: []dto.EvaluationParams{
			{Index: 1, UserID: studentID.String(), AssignmentID: "1", Delete: true},
		},
	}

	result, err := f.svc.Submit(ctx, f.actorID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(result.Results) != 1 {
		t.Fatalf("len(Results) = %d, want only the delete", len(result.Results))
	}
	if result.Results[0].Kind != KindEvaluation {
		t.Errorf("Kind = %q, want %q", result.Results[0].Kind, KindEvaluation)
	}
	if len(f.evaluations.evaluations) != 0 {
		t.Error("evaluation delete was not applied")
	}
	if f.assignments.assignments[a.ID].Title != "Essay" {
		t.Error("assignment edit must be dropped when a delete is present")
	}
}

func TestSubmitDeletePrecedenceByKind(t *testing.T) {
	ctx := context.Background()
	f := newSubmitFixture()

	a := &model.Assignment{Title: "Essay", Value: 10, Enabled: true}
	f.assignments.Create(ctx, a)
	g := &model.Group{Title: "Homework", Enabled: true}
	f.groups.Create(ctx, g)

	// Assignment deletes outrank group deletes regardless of entry order.
	req := dto.SubmitRequest{
		ConfirmDelete: true,
		Assignments: []dto.AssignmentParams{
			{Index: 5, ID: "1", Delete: true},
		},
		Groups: []dto.GroupParams{
			{Index: 0, ID: "1", Delete: true},
		},
	}

	result, err := f.svc.Submit(ctx, f.actorID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(result.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(result.Results))
	}
	if result.Results[0].Kind != KindAssignment {
		t.Errorf("Kind = %q, want %q", result.Results[0].Kind, KindAssignment)
	}
	if len(f.groups.groups) != 1 {
		t.Error("group delete must be dropped in favor of the assignment delete")
	}
}

func TestSubmitIndependentEntryErrors(t *testing.T) {
	ctx := context.Background()
	f := newSubmitFixture()

	req := dto.SubmitRequest{
		Assignments: []dto.AssignmentParams{
			{Index: 0, Title: "", Value: "5", Enabled: "on"},       // invalid title
			{Index: 1, Title: "Valid", Value: "5", Enabled: "on"}, // fine
		},
	}

	result, err := f.svc.Submit(ctx, f.actorID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(result.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(result.Results))
	}
	if result.Results[0].Error == "" {
		t.Error("invalid entry must report its error")
	}
	if result.Results[1].Error != "" {
		t.Errorf("valid entry failed: %s", result.Results[1].Error)
	}
	if len(f.assignments.assignments) != 1 {
		t.Errorf("len(assignments) = %d, want the valid entry applied", len(f.assignments.assignments))
	}
}

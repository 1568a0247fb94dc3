package service

import (
	"context"
	"testing"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/model"
)

func newScoreFixture() (*fakeUserRepo, *fakeAssignmentRepo, *fakeEvaluationRepo, *fakeAdjustmentRepo, ScoreService) {
	users := newFakeUserRepo()
	evaluations := newFakeEvaluationRepo(users)
	attachments := newFakeAttachmentRepo()
	assignments := newFakeAssignmentRepo(evaluations, attachments)
	adjustments := newFakeAdjustmentRepo()

	svc := NewScoreService(assignments, evaluations, adjustments, users, NewScoreCache(nil))
	return users, assignments, evaluations, adjustments, svc
}

func TestComputeStudentScoresTotals(t *testing.T) {
	ctx := context.Background()
	users, assignments, evaluations, adjustments, svc := newScoreFixture()

	studentID := users.add("alice", "student")

	a := &model.Assignment{Title: "Homework 1", Value: 10, Enabled: true, Date: strp("2021-01-01")}
	if err := assignments.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	// Extra credit: contributes earned points but no ideal points.
	b := &model.Assignment{Title: "Bonus quiz", Value: 0, Enabled: true, Date: strp("2021-01-02")}
	if err := assignments.Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	evaluations.Create(ctx, &model.Evaluation{UserID: studentID, AssignmentID: a.ID, Score: 8, Enabled: true})
	evaluations.Create(ctx, &model.Evaluation{UserID: studentID, AssignmentID: b.ID, Score: 2, Enabled: true})
	adjustments.Create(ctx, &model.Adjustment{UserID: studentID, Title: "Participation", Value: 5, Score: 5, Enabled: true})

	report, err := svc.ComputeStudentScores(ctx, studentID)
	if err != nil {
		t.Fatalf("ComputeStudentScores: %v", err)
	}

	if report.PointsEarned != 15 {
		t.Errorf("PointsEarned = %g, want 15", report.PointsEarned)
	}
	if report.PointsIdeal != 15 {
		t.Errorf("PointsIdeal = %g, want 15", report.PointsIdeal)
	}
	if report.PointsAllPossible != 15 {
		t.Errorf("PointsAllPossible = %g, want 15", report.PointsAllPossible)
	}
	if report.Percentage == nil || *report.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100", report.Percentage)
	}
	if len(report.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(report.Items))
	}
}

func TestComputeStudentScoresUnevaluatedAndDisabled(t *testing.T) {
	ctx := context.Background()
	users, assignments, evaluations, _, svc := newScoreFixture()

	studentID := users.add("bob", "student")

	scored := &model.Assignment{Title: "Scored", Value: 10, Enabled: true}
	unevaluated := &model.Assignment{Title: "Unevaluated", Value: 20, Enabled: true}
	disabled := &model.Assignment{Title: "Disabled", Value: 40, Enabled: false}
	for _, a := range []*model.Assignment{scored, unevaluated, disabled} {
		if err := assignments.Create(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	evaluations.Create(ctx, &model.Evaluation{UserID: studentID, AssignmentID: scored.ID, Score: 7, Enabled: true})
	// A disabled assignment stays visible even when it has a score.
	evaluations.Create(ctx, &model.Evaluation{UserID: studentID, AssignmentID: disabled.ID, Score: 30, Enabled: true})

	report, err := svc.ComputeStudentScores(ctx, studentID)
	if err != nil {
		t.Fatalf("ComputeStudentScores: %v", err)
	}

	if report.PointsEarned != 7 {
		t.Errorf("PointsEarned = %g, want 7", report.PointsEarned)
	}
	if report.PointsIdeal != 10 {
		t.Errorf("PointsIdeal = %g, want 10", report.PointsIdeal)
	}
	// Unevaluated work still counts toward the possible total.
	if report.PointsAllPossible != 30 {
		t.Errorf("PointsAllPossible = %g, want 30", report.PointsAllPossible)
	}

	statuses := make(map[string]string)
	for _, item := range report.Items {
		statuses[item.Title] = item.Status
	}
	if statuses["Scored"] != dto.ItemScored {
		t.Errorf("Scored status = %q, want %q", statuses["Scored"], dto.ItemScored)
	}
	if statuses["Unevaluated"] != dto.ItemUnevaluated {
		t.Errorf("Unevaluated status = %q, want %q", statuses["Unevaluated"], dto.ItemUnevaluated)
	}
	if statuses["Disabled"] != dto.ItemDisabled {
		t.Errorf("Disabled status = %q, want %q", statuses["Disabled"], dto.ItemDisabled)
	}
}

func TestComputeStudentScoresDisabledEvaluationKeepsPossible(t *testing.T) {
	ctx := context.Background()
	users, assignments, evaluations, _, svc := newScoreFixture()

	studentID := users.add("dana", "student")

	a := &model.Assignment{Title: "Homework", Value: 10, Enabled: true}
	if err := assignments.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	// Suspending the evaluation hides the score, not the assignment.
	evaluations.Create(ctx, &model.Evaluation{UserID: studentID, AssignmentID: a.ID, Score: 8, Enabled: false})

	report, err := svc.ComputeStudentScores(ctx, studentID)
	if err != nil {
		t.Fatalf("ComputeStudentScores: %v", err)
	}

	if report.PointsEarned != 0 || report.PointsIdeal != 0 {
		t.Errorf("earned/ideal = %g/%g, want 0/0", report.PointsEarned, report.PointsIdeal)
	}
	if report.PointsAllPossible != 10 {
		t.Errorf("PointsAllPossible = %g, want 10", report.PointsAllPossible)
	}
	if len(report.Items) != 1 || report.Items[0].Status != dto.ItemDisabled {
		t.Errorf("Items = %+v, want one disabled item", report.Items)
	}
}

func TestComputeStudentScoresPercentageNilWhenNoIdeal(t *testing.T) {
	ctx := context.Background()
	users, assignments, _, _, svc := newScoreFixture()

	studentID := users.add("carol", "student")
	assignments.Create(ctx, &model.Assignment{Title: "Future work", Value: 10, Enabled: true})

	report, err := svc.ComputeStudentScores(ctx, studentID)
	if err != nil {
		t.Fatalf("ComputeStudentScores: %v", err)
	}

	if report.Percentage != nil {
		t.Errorf("Percentage = %v, want nil when nothing is evaluated", *report.Percentage)
	}
}

func TestScoreItemSortOrder(t *testing.T) {
	items := []dto.ScoreItem{
		{Title: "Zeta", Date: nil},
		{Title: "Beta", Date: strp("2021-01-01")},
		{Title: "Gamma", Date: strp("2021-02-01")},
		{Title: "Alpha", Date: strp("2021-01-01")},
	}

	sortScoreItems(items)

	want := []string{"Alpha", "Beta", "Gamma", "Zeta"}
	for i, title := range want {
		if items[i].Title != title {
			t.Errorf("items[%d].Title = %q, want %q", i, items[i].Title, title)
		}
	}
}

func TestInstructorSummary(t *testing.T) {
	ctx := context.Background()
	users, assignments, evaluations, _, svc := newScoreFixture()

	aliceID := users.add("alice", "student")
	users.add("teacher", "instructor")

	a := &model.Assignment{Title: "Homework", Value: 10, Enabled: true}
	assignments.Create(ctx, a)
	evaluations.Create(ctx, &model.Evaluation{UserID: aliceID, AssignmentID: a.ID, Score: 9, Enabled: true})

	summary, err := svc.InstructorSummary(ctx)
	if err != nil {
		t.Fatalf("InstructorSummary: %v", err)
	}

	// Instructors are not graded.
	if len(summary.Students) != 1 {
		t.Fatalf("len(Students) = %d, want 1", len(summary.Students))
	}
	if summary.Students[0].UserID != aliceID {
		t.Errorf("Students[0].UserID = %s, want %s", summary.Students[0].UserID, aliceID)
	}
	if summary.Students[0].PointsEarned != 9 {
		t.Errorf("PointsEarned = %g, want 9", summary.Students[0].PointsEarned)
	}
}

package dto

import (
	"anoa.com/wikigradebook/internal/model"
	"github.com/google/uuid"
)

// Write outcomes. Validation and reference failures travel as errors
// (pkg/apperror); these variants cover the successful protocol states,
// including the first phase of a delete.
const (
	OutcomeApplied           = "applied"
	OutcomeUnchanged         = "unchanged"
	OutcomeNeedsConfirmation = "needs_confirmation"
)

type WriteResult struct {
	Kind         string              `json:"kind"` // assignment, evaluation, adjustment, group
	Outcome      string              `json:"outcome"`
	ID           uint                `json:"id,omitempty"` // record id; the new id for creates
	RowsAffected int64               `json:"rows_affected"`
	Confirmation *DeleteConfirmation `json:"confirmation,omitempty"`
}

// DeleteConfirmation is returned when a delete arrives without the confirm
// flag. It echoes the submitted params so the confirmed resubmission is
// idempotent with the original intent, and for assignments it lists the
// evaluations that a confirmed delete would cascade away.
type DeleteConfirmation struct {
	Kind        string          `json:"kind"`
	ID          uint            `json:"id,omitempty"`
	Title       string          `json:"title,omitempty"`
	Evaluations []EvaluationRef `json:"evaluations,omitempty"`
	MemberCount int64           `json:"member_count,omitempty"` // group deletes: assignments losing the tag
	Echo        any             `json:"echo"`
}

type EvaluationRef struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Score    float64   `json:"score"`
}

// Edit-form payloads. These populate the single-record edit views; a nil
// record means the form starts from defaults.

type GroupMembership struct {
	Group  model.Group `json:"group"`
	Member bool        `json:"member"`
}

type AssignmentForm struct {
	Assignment *model.Assignment `json:"assignment,omitempty"`
	Groups     []GroupMembership `json:"groups"`
}

type GroupForm struct {
	Group *model.Group `json:"group,omitempty"`
}

type EvaluationForm struct {
	User       *model.User       `json:"user"`
	Assignment *model.Assignment `json:"assignment"`
	Evaluation *model.Evaluation `json:"evaluation,omitempty"`
}

type AdjustmentForm struct {
	User       *model.User       `json:"user"`
	Adjustment *model.Adjustment `json:"adjustment,omitempty"`
}

// Bulk editing rows: every assignment for one student, or every student for
// one assignment, with the evaluation filled in where one exists.

type EvaluationRow struct {
	Assignment model.Assignment  `json:"assignment"`
	Evaluation *model.Evaluation `json:"evaluation,omitempty"`
}

type UserScoresEditForm struct {
	User        *model.User        `json:"user"`
	Rows        []EvaluationRow    `json:"rows"`
	Adjustments []model.Adjustment `json:"adjustments"`
}

type StudentEvaluationRow struct {
	User       model.User        `json:"user"`
	Evaluation *model.Evaluation `json:"evaluation,omitempty"`
}

type AssignmentScoresEditForm struct {
	Assignment *model.Assignment      `json:"assignment"`
	Rows       []StudentEvaluationRow `json:"rows"`
}

type UploadAttachmentResponse struct {
	ID       uint   `json:"id"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
}

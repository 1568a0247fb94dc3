package dto

import "github.com/google/uuid"

// Score item display statuses. Disabled items stay visible but contribute
// nothing to the totals.
const (
	ItemScored      = "scored"
	ItemUnevaluated = "unevaluated"
	ItemDisabled    = "disabled"
)

type ScoreItem struct {
	Kind    string   `json:"kind"` // "assignment" or "adjustment"
	ID      uint     `json:"id"`
	Title   string   `json:"title"`
	Date    *string  `json:"date,omitempty"`
	Value   float64  `json:"value"`
	Score   *float64 `json:"score,omitempty"` // nil when unevaluated
	Comment string   `json:"comment,omitempty"`
	Status  string   `json:"status"`
}

// ScoreReport is the computed grade view for one student. Percentage is nil
// when PointsIdeal is zero; there is no grade to show yet and callers must
// not divide.
type ScoreReport struct {
	UserID            uuid.UUID   `json:"user_id"`
	Username          string      `json:"username"`
	Items             []ScoreItem `json:"items"`
	PointsEarned      float64     `json:"points_earned"`
	PointsIdeal       float64     `json:"points_ideal"`
	PointsAllPossible float64     `json:"points_all_possible"`
	Percentage        *float64    `json:"percentage,omitempty"`
}

type StudentSummary struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	PointsEarned float64   `json:"points_earned"`
	PointsIdeal  float64   `json:"points_ideal"`
	Percentage   *float64  `json:"percentage,omitempty"`
}

type InstructorSummary struct {
	Students []StudentSummary `json:"students"`
}

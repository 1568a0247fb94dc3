package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a gradable unit. Value may be 0 for extra-credit work.
// Date is the canonical YYYY-MM-DD string, nil when the assignment has no
// date (such items sort last in score views).
type Assignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Value     float64   `gorm:"not null" json:"value"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	Date      *string   `gorm:"size:10" json:"date,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Groups      []Group      `gorm:"many2many:group_assignments" json:"groups,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:AssignmentID" json:"attachments,omitempty"`
}

// Evaluation records one student's score for one assignment. The composite
// key (UserID, AssignmentID) guarantees at most one evaluation per pair.
type Evaluation struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	AssignmentID uint      `gorm:"primaryKey" json:"assignment_id"`
	Score        float64   `gorm:"not null" json:"score"`
	Enabled      bool      `gorm:"default:true" json:"enabled"`
	Date         *string   `gorm:"size:10" json:"date,omitempty"`
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Assignment *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
}

// Adjustment is an ad-hoc scored item for one student, not tied to any
// assignment. Value is the possible points it contributes, Score the points
// awarded.
type Adjustment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Value     float64   `gorm:"not null" json:"value"`
	Score     float64   `gorm:"not null" json:"score"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	Date      *string   `gorm:"size:10" json:"date,omitempty"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Group is a named tag applied to a subset of assignments ("homework",
// "exams").
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GroupAssignment is the membership edge between groups and assignments.
// It has no identity beyond the pair; assignment saves diff desired
// membership against these rows.
type GroupAssignment struct {
	GroupID      uint `gorm:"primaryKey" json:"group_id"`
	AssignmentID uint `gorm:"primaryKey" json:"assignment_id"`
}

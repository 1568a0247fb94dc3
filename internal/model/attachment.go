package model

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a handout or rubric file uploaded by an instructor. Rows
// start orphaned and are linked to an assignment when the assignment is
// saved; a cleanup job removes rows that never get linked.
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid" json:"user_id"`
	AssignmentID *uint     `json:"assignment_id,omitempty"`
	FileURL      string    `gorm:"type:text;not null" json:"file_url"`
	FileType     string    `gorm:"size:50" json:"file_type"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

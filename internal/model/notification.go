package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`  // student who receives the notification
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"` // instructor who triggered it
	EntityID   string    `gorm:"size:64;not null" json:"entity_id"`  // id of the evaluation's assignment or the adjustment
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"` // 'evaluation' or 'adjustment'
	Type       string    `gorm:"type:varchar(50);not null" json:"type"`        // 'score_recorded', 'score_updated', 'score_removed'
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations - pointers to avoid recursion if User grows back-references
	User  *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

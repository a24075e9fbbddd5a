package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a workspace that owns a board of tasks.
// Members are stored in project_members; Owner and Members are filled by the
// service layer and never written through this struct.
type Project struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Key         string    `gorm:"uniqueIndex;size:10;not null" json:"key"` // uppercase, 3-10 chars
	Description *string   `gorm:"type:text" json:"description"`
	OwnerID     string    `gorm:"size:36;index;not null" json:"owner_id"`
	TaskCounter int       `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner   *User  `gorm:"-" json:"owner,omitempty"`
	Members []User `gorm:"-" json:"members,omitempty"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

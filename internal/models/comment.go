package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to a task and can only be changed by its author.
type Comment struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	TaskID    string     `gorm:"size:36;not null;index" json:"task_id"`
	AuthorID  string     `gorm:"size:36;not null" json:"author_id"`
	IsEdited  bool       `gorm:"not null;default:false" json:"is_edited"`
	EditedAt  *time.Time `json:"edited_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Task   *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

package models

import "time"

// ProjectMember records that a user belongs to a project. The owner always has a row.
type ProjectMember struct {
	ProjectID string    `gorm:"primaryKey;size:36" json:"project_id"`
	UserID    string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectMember) TableName() string { return "project_members" }

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses, one board column each.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is a card on a project board. Position orders it inside its
// (project, status) column; TaskNumber is minted from the project's counter.
type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:500;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:20;not null;default:TODO;index:idx_task_column,priority:2" json:"status"`
	Priority    string    `gorm:"size:20;not null;default:MEDIUM" json:"priority"`
	ProjectID   string    `gorm:"size:36;not null;index:idx_task_column,priority:1" json:"project_id"`
	AssigneeID  *string   `gorm:"size:36;index" json:"assignee_id"`
	ReporterID  string    `gorm:"size:36;not null" json:"reporter_id"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	TaskNumber  int       `gorm:"not null" json:"task_number"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee *User    `gorm:"foreignKey:AssigneeID" json:"assignee"`
	Reporter *User    `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	TaskKey  string   `gorm:"-" json:"task_key,omitempty"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AfterFind derives the display key once the project has been preloaded.
func (t *Task) AfterFind(tx *gorm.DB) error {
	if t.Project != nil {
		t.TaskKey = FormatTaskKey(t.Project.Key, t.TaskNumber)
	}
	return nil
}

// FormatTaskKey renders the human-readable task identifier, e.g. JCP-12.
func FormatTaskKey(projectKey string, taskNumber int) string {
	return fmt.Sprintf("%s-%d", projectKey, taskNumber)
}

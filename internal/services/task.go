package services

import (
	"fmt"
	"strings"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/pkg/logger"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

// TaskService owns the board: task numbering, column positions and the
// change events published for every mutation.
type TaskService struct {
	db        *gorm.DB
	publisher Publisher
}

func NewTaskService(db *gorm.DB, publisher Publisher) *TaskService {
	return &TaskService{db: db, publisher: publisher}
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	ProjectID   string  `json:"project_id" binding:"required"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
	AssigneeID  *string `json:"assignee_id"`
}

// UpdateTaskRequest carries per-field changes. Title, status and priority
// are applied only when sent with a non-empty value; description and
// assignee_id can also be cleared with null.
type UpdateTaskRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Status      Optional[string] `json:"status"`
	Priority    Optional[string] `json:"priority"`
	AssigneeID  Optional[string] `json:"assignee_id"`
}

type MoveTaskRequest struct {
	Status   string `json:"status" binding:"required"`
	Position *int   `json:"position" binding:"required"`
}

func withTaskRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Project").Preload("Assignee").Preload("Reporter")
}

// ListByProject returns the project's board ordered by column then position.
// An unknown project yields an empty list.
func (s *TaskService) ListByProject(projectID string) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := withTaskRelations(s.db).
		Where("project_id = ?", projectID).
		Order("status ASC").
		Order("position ASC").
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(id string) (*models.Task, error) {
	return s.load(s.db, id)
}

// ListMine returns tasks assigned to the caller, newest first.
func (s *TaskService) ListMine(callerID string) ([]models.Task, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	tasks := []models.Task{}
	if err := withTaskRelations(s.db).
		Where("assignee_id = ?", callerID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list assigned tasks: %w", err)
	}
	return tasks, nil
}

// Create mints the next task number for the project and places the task at
// the top of the TODO column.
func (s *TaskService) Create(callerID string, req *CreateTaskRequest) (*models.Task, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewBadRequest("Task title is required")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, response.NewBadRequest("Invalid priority: " + priority)
	}

	var taskID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", req.ProjectID).Error; err != nil {
			return notFoundOr(err, "Project not found", "find project")
		}
		if req.AssigneeID != nil {
			if err := ensureUser(tx, *req.AssigneeID); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			UpdateColumn("task_counter", gorm.Expr("task_counter + ?", 1)).Error; err != nil {
			return fmt.Errorf("increment task counter: %w", err)
		}
		if err := tx.Select("task_counter").First(&project, "id = ?", project.ID).Error; err != nil {
			return fmt.Errorf("read task counter: %w", err)
		}

		task := models.Task{
			Title:       title,
			Description: req.Description,
			Status:      models.StatusTodo,
			Priority:    priority,
			ProjectID:   project.ID,
			AssigneeID:  req.AssigneeID,
			ReporterID:  callerID,
			Position:    0,
			TaskNumber:  project.TaskCounter,
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		taskID = task.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	task, err := s.load(s.db, taskID)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("task_key", task.TaskKey).Msg("Task created")
	s.publisher.PublishTaskEvent(TaskCreated, task)
	return task, nil
}

// Update applies the fields present in req.
func (s *TaskService) Update(callerID, id string, req *UpdateTaskRequest) (*models.Task, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	task, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title.Set && !req.Title.Null {
		if title := strings.TrimSpace(req.Title.Value); title != "" {
			updates["title"] = title
		}
	}
	if req.Description.Set {
		updates["description"] = req.Description.Ptr()
	}
	if req.Status.Set && req.Status.Value != "" {
		if !models.ValidStatus(req.Status.Value) {
			return nil, response.NewBadRequest("Invalid status: " + req.Status.Value)
		}
		updates["status"] = req.Status.Value
	}
	if req.Priority.Set && req.Priority.Value != "" {
		if !models.ValidPriority(req.Priority.Value) {
			return nil, response.NewBadRequest("Invalid priority: " + req.Priority.Value)
		}
		updates["priority"] = req.Priority.Value
	}
	if req.AssigneeID.Set {
		if !req.AssigneeID.Null {
			if err := ensureUser(s.db, req.AssigneeID.Value); err != nil {
				return nil, err
			}
		}
		updates["assignee_id"] = req.AssigneeID.Ptr()
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		if task, err = s.load(s.db, id); err != nil {
			return nil, err
		}
	}

	s.publisher.PublishTaskEvent(TaskUpdated, task)
	return task, nil
}

// Delete removes the task and its comments. Subscribers receive the task as
// it was before deletion.
func (s *TaskService) Delete(callerID, id string) error {
	if err := RequireCaller(callerID); err != nil {
		return err
	}

	snapshot, err := s.load(s.db, id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete task comments: %w", err)
		}
		if err := tx.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.PublishTaskEvent(TaskDeleted, snapshot)
	return nil
}

// Move places the task at position in the status column. When the column
// changes, tasks in the target column at or after position shift down by
// one. Moves inside a column only rewrite the moved task's position, and
// positions are never compacted.
func (s *TaskService) Move(callerID, id, status string, position int) (*models.Task, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	task, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	if !models.ValidStatus(status) {
		return nil, response.NewBadRequest("Invalid status: " + status)
	}
	if position < 0 {
		return nil, response.NewBadRequest("Position must not be negative")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if task.Status != status {
			if err := tx.Model(&models.Task{}).
				Where("project_id = ? AND status = ? AND id <> ? AND position >= ?", task.ProjectID, status, task.ID, position).
				UpdateColumn("position", gorm.Expr("position + ?", 1)).Error; err != nil {
				return fmt.Errorf("shift column: %w", err)
			}
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).
			Updates(map[string]interface{}{"status": status, "position": position}).Error; err != nil {
			return fmt.Errorf("move task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if task, err = s.load(s.db, id); err != nil {
		return nil, err
	}
	s.publisher.PublishTaskEvent(TaskMoved, task)
	return task, nil
}

func (s *TaskService) load(db *gorm.DB, id string) (*models.Task, error) {
	var task models.Task
	if err := withTaskRelations(db).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Task not found", "find task")
	}
	return &task, nil
}

func ensureUser(db *gorm.DB, id string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if count == 0 {
		return response.NewNotFound("User not found")
	}
	return nil
}

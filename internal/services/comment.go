package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

type CommentService struct {
	db        *gorm.DB
	publisher Publisher
}

func NewCommentService(db *gorm.DB, publisher Publisher) *CommentService {
	return &CommentService{db: db, publisher: publisher}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
	TaskID  string `json:"task_id" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func withCommentRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Task.Project")
}

// ListByTask returns the task's comments, oldest first.
func (s *CommentService) ListByTask(taskID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := withCommentRelations(s.db).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) Create(callerID string, req *CreateCommentRequest) (*models.Comment, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Task{}).Where("id = ?", req.TaskID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	if count == 0 {
		return nil, response.NewNotFound("Task not found")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, response.NewBadRequest("Comment content is required")
	}

	comment := models.Comment{
		Content:  content,
		TaskID:   req.TaskID,
		AuthorID: callerID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	created, err := s.load(comment.ID)
	if err != nil {
		return nil, err
	}
	s.publisher.PublishCommentAdded(created)
	return created, nil
}

// Update replaces the content and marks the comment edited. Author only.
func (s *CommentService) Update(callerID, id string, req *UpdateCommentRequest) (*models.Comment, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	comment, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := CanEditComment(comment, callerID, "update"); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, response.NewBadRequest("Comment content is required")
	}

	now := time.Now()
	if err := s.db.Model(&models.Comment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"content":   content,
		"is_edited": true,
		"edited_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	return s.load(id)
}

// Delete removes a comment. Author only.
func (s *CommentService) Delete(callerID, id string) error {
	if err := RequireCaller(callerID); err != nil {
		return err
	}

	comment, err := s.load(id)
	if err != nil {
		return err
	}
	if err := CanEditComment(comment, callerID, "delete"); err != nil {
		return err
	}

	if err := s.db.Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) load(id string) (*models.Comment, error) {
	var comment models.Comment
	if err := withCommentRelations(s.db).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Comment not found", "find comment")
	}
	return &comment, nil
}

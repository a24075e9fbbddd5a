package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(db *gorm.DB, publisher services.Publisher) *CommentHandler {
	return &CommentHandler{commentService: services.NewCommentService(db, publisher)}
}

// ListByTask returns a task's comments, oldest first
// GET /api/tasks/:id/comments
func (h *CommentHandler) ListByTask(c *gin.Context) {
	comments, err := h.commentService.ListByTask(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comments)
}

// Create posts a comment on a task
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// Update edits a comment
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	var req services.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comment)
}

// Delete removes a comment
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.commentService.Delete(middleware.GetUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, true)
}

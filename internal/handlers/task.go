package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(db *gorm.DB, publisher services.Publisher) *TaskHandler {
	return &TaskHandler{taskService: services.NewTaskService(db, publisher)}
}

// ListByProject returns a project's board
// GET /api/projects/:id/tasks
func (h *TaskHandler) ListByProject(c *gin.Context) {
	tasks, err := h.taskService.ListByProject(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tasks)
}

// GetByID returns a single task
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.taskService.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// ListMine returns tasks assigned to the caller
// GET /api/me/tasks
func (h *TaskHandler) ListMine(c *gin.Context) {
	tasks, err := h.taskService.ListMine(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tasks)
}

// Create adds a task to a project
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, task)
}

// Update changes the fields present in the body
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Delete removes a task and its comments
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.Delete(middleware.GetUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, true)
}

// Move places a task in a column at a position
// POST /api/tasks/:id/move
func (h *TaskHandler) Move(c *gin.Context) {
	var req services.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Move(middleware.GetUserID(c), c.Param("id"), req.Status, *req.Position)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

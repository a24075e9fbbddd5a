package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

// ProjectMemberHandler manages project membership.
type ProjectMemberHandler struct {
	projectService *services.ProjectService
}

func NewProjectMemberHandler(db *gorm.DB) *ProjectMemberHandler {
	return &ProjectMemberHandler{projectService: services.NewProjectService(db)}
}

// Add adds a user to a project.
// POST /api/projects/:id/members
func (h *ProjectMemberHandler) Add(c *gin.Context) {
	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.AddMember(middleware.GetUserID(c), c.Param("id"), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Remove removes a user from a project.
// DELETE /api/projects/:id/members/:userId
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	project, err := h.projectService.RemoveMember(middleware.GetUserID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

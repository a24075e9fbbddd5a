package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(db *gorm.DB, cfg *config.Config) *UserHandler {
	return &UserHandler{authService: services.NewAuthService(db, &cfg.JWT)}
}

// List returns every registered user, for assignee and member pickers
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.authService.ListUsers(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, users)
}

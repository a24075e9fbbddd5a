package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/utils"
	"github.com/taskboard/backend/pkg/logger"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	jwtCfg *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtCfg: jwtCfg}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthPayload is returned by register and login.
type AuthPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a MEMBER account and signs it in.
func (s *AuthService) Register(req *RegisterRequest) (*AuthPayload, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, response.NewBadRequest("Email already exists")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:    email,
		Password: hashed,
		Name:     strings.TrimSpace(req.Name),
		Role:     models.RoleMember,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewBadRequest("Email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info().Str("user_id", user.ID).Msg("User registered")
	return s.issue(&user)
}

// Login verifies credentials. Unknown email and wrong password share one message.
func (s *AuthService) Login(req *LoginRequest) (*AuthPayload, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewBadRequest("Invalid credentials")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewBadRequest("Invalid credentials")
	}

	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*AuthPayload, error) {
	token, err := utils.GenerateToken(user.ID, s.jwtCfg.ExpireHour)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthPayload{Token: token, User: user}, nil
}

// Me returns the caller's own record.
func (s *AuthService) Me(callerID string) (*models.User, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}
	return s.GetUserByID(callerID)
}

// GetUserByID loads a user or reports NotFound.
func (s *AuthService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "User not found", "find user")
	}
	return &user, nil
}

// ListUsers returns every user ordered by name.
func (s *AuthService) ListUsers(callerID string) ([]models.User, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	users := []models.User{}
	if err := s.db.Order("name ASC").Order("email ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and wraps anything else.
func notFoundOr(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(notFoundMsg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

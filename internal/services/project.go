package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/pkg/logger"
	"github.com/taskboard/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

var projectKeyPattern = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Key         string  `json:"key" binding:"required"`
	Description *string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string           `json:"name"`
	Description Optional[string] `json:"description"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// List returns the projects the caller owns or belongs to, newest first.
func (s *ProjectService) List(callerID string) ([]models.Project, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	projects := []models.Project{}
	member := s.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", callerID)
	if err := s.db.Where("owner_id = ? OR id IN (?)", callerID, member).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	for i := range projects {
		if err := s.loadRelations(s.db, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// Get returns a project the caller may read.
func (s *ProjectService) Get(callerID, id string) (*models.Project, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	project, err := s.find(s.db, id)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.memberIDs(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := CanReadProject(project, memberIDs, callerID); err != nil {
		return nil, err
	}

	if err := s.loadRelations(s.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Create stores a new project owned by the caller, who also becomes its first member.
func (s *ProjectService) Create(callerID string, req *CreateProjectRequest) (*models.Project, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("Project name is required")
	}
	key := strings.ToUpper(strings.TrimSpace(req.Key))
	if !projectKeyPattern.MatchString(key) {
		return nil, response.NewBadRequest("Project key must be 3-10 letters or digits")
	}

	project := models.Project{
		Name:        name,
		Key:         key,
		Description: req.Description,
		OwnerID:     callerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where(&models.Project{Key: key}).Count(&count).Error; err != nil {
			return fmt.Errorf("check project key: %w", err)
		}
		if count > 0 {
			return response.NewBadRequest("Project key already exists")
		}

		if err := tx.Create(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.NewBadRequest("Project key already exists")
			}
			return fmt.Errorf("create project: %w", err)
		}
		if err := tx.Create(&models.ProjectMember{ProjectID: project.ID, UserID: callerID}).Error; err != nil {
			return fmt.Errorf("add owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("project_id", project.ID).Str("key", key).Msg("Project created")
	if err := s.loadRelations(s.db, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Update changes name and description. Owner only.
func (s *ProjectService) Update(callerID, id string, req *UpdateProjectRequest) (*models.Project, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	project, err := s.find(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := CanManageProject(project, callerID, "update project"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Description.Set {
		updates["description"] = req.Description.Ptr()
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
	}

	project, err = s.find(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(s.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project with its tasks, their comments and the memberships. Owner only.
func (s *ProjectService) Delete(callerID, id string) error {
	if err := RequireCaller(callerID); err != nil {
		return err
	}

	project, err := s.find(s.db, id)
	if err != nil {
		return err
	}
	if err := CanManageProject(project, callerID, "delete project"); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete project comments: %w", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return fmt.Errorf("delete project members: %w", err)
		}
		if err := tx.Delete(&models.Project{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Str("project_id", id).Msg("Project deleted")
	return nil
}

// AddMember lets the owner or any member bring another user into the project.
func (s *ProjectService) AddMember(callerID, projectID, userID string) (*models.Project, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	project, err := s.find(s.db, projectID)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.memberIDs(s.db, projectID)
	if err != nil {
		return nil, err
	}
	if err := CanReadProject(project, memberIDs, callerID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "User not found", "find user")
	}
	if err := CanAddMember(project, memberIDs, callerID, userID); err != nil {
		return nil, err
	}

	if err := s.db.Create(&models.ProjectMember{ProjectID: projectID, UserID: userID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewBadRequest("User is already a member")
		}
		return nil, fmt.Errorf("add member: %w", err)
	}

	if err := s.loadRelations(s.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

// RemoveMember drops a user from the project. The owner can never be removed.
// Removing a user who is not a member is a no-op.
func (s *ProjectService) RemoveMember(callerID, projectID, userID string) (*models.Project, error) {
	if err := RequireCaller(callerID); err != nil {
		return nil, err
	}

	project, err := s.find(s.db, projectID)
	if err != nil {
		return nil, err
	}
	if err := CanRemoveMember(project, callerID, userID); err != nil {
		return nil, err
	}

	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error; err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}

	if err := s.loadRelations(s.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) find(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Project not found", "find project")
	}
	return &project, nil
}

func (s *ProjectService) memberIDs(db *gorm.DB, projectID string) ([]string, error) {
	var ids []string
	if err := db.Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}
	return ids, nil
}

// loadRelations resolves Owner and Members, members in join order.
func (s *ProjectService) loadRelations(db *gorm.DB, project *models.Project) error {
	var owner models.User
	if err := db.First(&owner, "id = ?", project.OwnerID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load project owner: %w", err)
		}
	} else {
		project.Owner = &owner
	}

	members := []models.User{}
	if err := db.Model(&models.User{}).
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ?", project.ID).
		Order("project_members.created_at ASC").
		Find(&members).Error; err != nil {
		return fmt.Errorf("load project members: %w", err)
	}
	project.Members = members
	return nil
}

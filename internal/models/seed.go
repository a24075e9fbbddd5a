package models

import (
	"github.com/taskboard/backend/internal/utils"
	"github.com/taskboard/backend/pkg/logger"
	"gorm.io/gorm"
)

const DemoPassword = "password123"

// SeedDemoData fills an empty database with two users, one project, three
// tasks and two comments. With reset, existing rows are wiped first;
// otherwise seeding is skipped when any user already exists.
func SeedDemoData(db *gorm.DB, reset bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if reset {
			for _, model := range []interface{}{&Comment{}, &Task{}, &ProjectMember{}, &Project{}, &User{}} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return err
				}
			}
			logger.Info().Msg("Existing data cleared")
		} else {
			var count int64
			if err := tx.Model(&User{}).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				logger.Debug().Int64("users", count).Msg("Database not empty, skipping demo seed")
				return nil
			}
		}

		hashed, err := utils.HashPassword(DemoPassword)
		if err != nil {
			return err
		}

		admin := User{Name: "Admin User", Email: "admin@example.com", Password: hashed, Role: RoleAdmin}
		member := User{Name: "Member User", Email: "member@example.com", Password: hashed, Role: RoleMember}
		if err := tx.Create(&[]*User{&admin, &member}).Error; err != nil {
			return err
		}

		description := "A clone of Jira for learning purposes."
		project := Project{
			Name:        "Jira Clone Project",
			Key:         "JCP",
			Description: &description,
			OwnerID:     admin.ID,
			TaskCounter: 3,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		members := []ProjectMember{
			{ProjectID: project.ID, UserID: admin.ID},
			{ProjectID: project.ID, UserID: member.ID},
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}

		tasks := []Task{
			{
				Title:       "Setup project structure",
				Description: strPtr("Initialize the service layout, storage and HTTP server."),
				Status:      StatusDone,
				Priority:    PriorityHigh,
				ProjectID:   project.ID,
				ReporterID:  admin.ID,
				AssigneeID:  &admin.ID,
				Position:    0,
				TaskNumber:  1,
			},
			{
				Title:       "Implement user authentication",
				Description: strPtr("Create user model, registration, login, JWT."),
				Status:      StatusInProgress,
				Priority:    PriorityHigh,
				ProjectID:   project.ID,
				ReporterID:  admin.ID,
				AssigneeID:  &member.ID,
				Position:    1,
				TaskNumber:  2,
			},
			{
				Title:       "Design database schema",
				Description: strPtr("Define models for User, Project, Task, Comment."),
				Status:      StatusTodo,
				Priority:    PriorityMedium,
				ProjectID:   project.ID,
				ReporterID:  admin.ID,
				Position:    2,
				TaskNumber:  3,
			},
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return err
		}

		comments := []Comment{
			{Content: "Great start!", TaskID: tasks[0].ID, AuthorID: admin.ID},
			{Content: "Working on it, will update soon.", TaskID: tasks[1].ID, AuthorID: member.ID},
		}
		if err := tx.Create(&comments).Error; err != nil {
			return err
		}

		logger.Info().
			Str("project", project.Key).
			Int("tasks", len(tasks)).
			Int("comments", len(comments)).
			Msg("Demo data seeded")
		return nil
	})
}

func strPtr(s string) *string { return &s }

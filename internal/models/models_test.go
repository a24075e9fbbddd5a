package models_test

import (
	"testing"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/testutil"
	"github.com/taskboard/backend/internal/utils"
)

func TestBeforeCreate_AssignsIDs(t *testing.T) {
	db := testutil.NewDB(t)

	user := testutil.CreateUser(t, db, "a@example.com", "A")
	if user.ID == "" {
		t.Fatal("user ID should be assigned on create")
	}
	if user.Role != models.RoleMember {
		t.Errorf("Role = %q, expected %q", user.Role, models.RoleMember)
	}

	project := models.Project{Name: "P", Key: "PRJ", OwnerID: user.ID}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.ID == "" || project.ID == user.ID {
		t.Errorf("project ID = %q, expected a fresh id", project.ID)
	}
}

func TestTask_AfterFindDerivesKey(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "a@example.com", "A")
	project := models.Project{Name: "P", Key: "ABC", OwnerID: user.ID}
	db.Create(&project)

	task := models.Task{Title: "t", ProjectID: project.ID, ReporterID: user.ID, TaskNumber: 7}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	var loaded models.Task
	if err := db.Preload("Project").First(&loaded, "id = ?", task.ID).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}
	if loaded.TaskKey != "ABC-7" {
		t.Errorf("TaskKey = %q, expected %q", loaded.TaskKey, "ABC-7")
	}
	if loaded.Status != models.StatusTodo {
		t.Errorf("Status = %q, expected default %q", loaded.Status, models.StatusTodo)
	}
	if loaded.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q, expected default %q", loaded.Priority, models.PriorityMedium)
	}

	var bare models.Task
	db.First(&bare, "id = ?", task.ID)
	if bare.TaskKey != "" {
		t.Errorf("TaskKey without project should be empty, got %q", bare.TaskKey)
	}
}

func TestValidStatusAndPriority(t *testing.T) {
	tests := []struct {
		value    string
		status   bool
		priority bool
	}{
		{"TODO", true, false},
		{"IN_PROGRESS", true, false},
		{"DONE", true, false},
		{"LOW", false, true},
		{"MEDIUM", false, true},
		{"HIGH", false, true},
		{"todo", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := models.ValidStatus(tt.value); got != tt.status {
			t.Errorf("ValidStatus(%q) = %v, expected %v", tt.value, got, tt.status)
		}
		if got := models.ValidPriority(tt.value); got != tt.priority {
			t.Errorf("ValidPriority(%q) = %v, expected %v", tt.value, got, tt.priority)
		}
	}
}

func TestSeedDemoData(t *testing.T) {
	db := testutil.NewDB(t)

	if err := models.SeedDemoData(db, false); err != nil {
		t.Fatalf("SeedDemoData() error = %v", err)
	}

	var users []models.User
	db.Order("email").Find(&users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Email != "admin@example.com" || users[0].Role != models.RoleAdmin {
		t.Errorf("first user = %s/%s, expected admin@example.com/ADMIN", users[0].Email, users[0].Role)
	}
	if !utils.CheckPassword(models.DemoPassword, users[1].Password) {
		t.Error("member password should verify against the demo password")
	}

	var project models.Project
	if err := db.First(&project, "key = ?", "JCP").Error; err != nil {
		t.Fatalf("seeded project missing: %v", err)
	}
	if project.TaskCounter != 3 {
		t.Errorf("TaskCounter = %d, expected 3", project.TaskCounter)
	}

	var memberCount, taskCount, commentCount int64
	db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&memberCount)
	db.Model(&models.Task{}).Count(&taskCount)
	db.Model(&models.Comment{}).Count(&commentCount)
	if memberCount != 2 || taskCount != 3 || commentCount != 2 {
		t.Errorf("members/tasks/comments = %d/%d/%d, expected 2/3/2", memberCount, taskCount, commentCount)
	}
}

func TestSeedDemoData_SkipsWhenUsersExist(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "someone@example.com", "Someone")

	if err := models.SeedDemoData(db, false); err != nil {
		t.Fatalf("SeedDemoData() error = %v", err)
	}

	var count int64
	db.Model(&models.Project{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no seeded project, got %d", count)
	}
}

func TestSeedDemoData_Reset(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "someone@example.com", "Someone")

	if err := models.SeedDemoData(db, true); err != nil {
		t.Fatalf("SeedDemoData() error = %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", "someone@example.com").Count(&count)
	if count != 0 {
		t.Error("reset should remove existing users")
	}
	db.Model(&models.User{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 users after reset, got %d", count)
	}
}

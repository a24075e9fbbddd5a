package utils

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-board")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("hash = %q, expected a bcrypt $2a$ hash", hash)
	}

	again, _ := HashPassword("s3cret-board")
	if again == hash {
		t.Error("hashing twice should produce different salts")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		expected bool
	}{
		{"matching", "password123", hash, true},
		{"truncated", "password12", hash, false},
		{"different case", "Password123", hash, false},
		{"empty password", "", hash, false},
		{"not a bcrypt hash", "password123", "password123", false},
		{"empty hash", "password123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.expected {
				t.Errorf("CheckPassword(%q) = %v, expected %v", tt.password, got, tt.expected)
			}
		})
	}
}

func TestHashPassword_EmptyAllowed(t *testing.T) {
	hash, err := HashPassword("")
	if err != nil {
		t.Fatalf("HashPassword(\"\") error = %v", err)
	}
	if !CheckPassword("", hash) {
		t.Error("empty password should verify against its own hash")
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/utils"
	"github.com/taskboard/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-for-middleware-testing")
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(200, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func serve(router *gin.Engine, target, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func userIDFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body["user_id"]
}

func TestAuthRequired_Rejects(t *testing.T) {
	router := newRouter(AuthRequired())

	testCases := []string{
		"",
		"InvalidToken",
		"Basic token123",
		"Bearer",
		"Bearer invalid.jwt.token",
	}

	for _, authHeader := range testCases {
		w := serve(router, "/protected", authHeader)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected status %d, got %d", authHeader, http.StatusUnauthorized, w.Code)
			continue
		}
		var resp response.Response
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Kind != response.KindUnauthenticated || resp.Message != "Not authenticated" {
			t.Errorf("header %q: body = %+v", authHeader, resp)
		}
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	token, _ := utils.GenerateToken("user-1", 24)
	router := newRouter(AuthRequired())

	w := serve(router, "/protected", "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if id := userIDFrom(t, w); id != "user-1" {
		t.Errorf("user_id = %q, expected %q", id, "user-1")
	}
}

func TestAuthRequired_IgnoresQueryToken(t *testing.T) {
	token, _ := utils.GenerateToken("user-1", 24)
	router := newRouter(AuthRequired())

	w := serve(router, "/protected?token="+token, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestStreamAuthRequired(t *testing.T) {
	token, _ := utils.GenerateToken("user-2", 24)
	router := newRouter(StreamAuthRequired())

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"query token", "/protected?token=" + token, "", http.StatusOK},
		{"header token", "/protected", "Bearer " + token, http.StatusOK},
		{"bad query token", "/protected?token=nope", "", http.StatusUnauthorized},
		{"no token", "/protected", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.target, tt.header)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	token, _ := utils.GenerateToken("user-3", 24)
	router := newRouter(OptionalAuth())

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"anonymous", "", ""},
		{"invalid token", "Bearer garbage", ""},
		{"valid token", "Bearer " + token, "user-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, "/protected", tt.header)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if id := userIDFrom(t, w); id != tt.want {
				t.Errorf("user_id = %q, expected %q", id, tt.want)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if id := GetUserID(c); id != "" {
		t.Errorf("expected empty id for anonymous context, got %q", id)
	}

	c.Set(ContextUserID, "abc")
	if id := GetUserID(c); id != "abc" {
		t.Errorf("expected %q, got %q", "abc", id)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", ""},
		{"Token abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest("GET", "/", nil)
		c.Request.Header.Set("Authorization", tt.header)
		if got := BearerToken(c); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, expected %q", tt.header, got, tt.want)
		}
	}
}

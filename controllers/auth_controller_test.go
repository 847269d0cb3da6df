package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

func newAuthRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	ac := NewAuthController(db)
	fc := NewFeedController(db, "http://localhost:8080")

	api := r.Group("/api/v1")
	api.POST("/auth/register", ac.Register)
	api.POST("/auth/login", ac.Login)
	api.POST("/auth/logout", ac.Logout)
	api.GET("/auth/me", middleware.AuthRequired(db), ac.Me)
	api.PUT("/auth/complete-profile", middleware.AuthRequired(db), ac.CompleteProfile)
	api.GET("/home", middleware.AuthRequired(db), fc.Home)
	return r
}

type tokenPayload struct {
	Token string `json:"token"`
	User  struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func doAuthed(t *testing.T, router *gin.Engine, method, path, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestRegisterIssuesTokenAndRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	router := newAuthRouter(db)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		gin.H{"email": "Student@Example.com", "password": "secret123"})
	assertStatus(t, w, http.StatusCreated)

	var payload tokenPayload
	decodeData(t, env, &payload)
	if payload.Token == "" {
		t.Fatal("register should issue a token")
	}
	if payload.User.Email != "student@example.com" {
		t.Fatalf("email = %q, want lowercased", payload.User.Email)
	}

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		gin.H{"email": "student@example.com", "password": "another123"})
	assertStatus(t, w, http.StatusBadRequest)
	if env.Code != 40002 {
		t.Fatalf("code = %d, want 40002", env.Code)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	db := setupTestDB(t)
	router := newAuthRouter(db)

	cases := []gin.H{
		{"email": "", "password": "secret123"},
		{"email": "not-an-email", "password": "secret123"},
		{"email": "a@b.com", "password": "short"},
	}
	for _, body := range cases {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", body)
		assertStatus(t, w, http.StatusBadRequest)
	}
}

func TestLoginVerifiesCredentials(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "student@example.com", 0, "")
	router := newAuthRouter(db)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "student@example.com", "password": "password123"})
	assertStatus(t, w, http.StatusOK)
	var payload tokenPayload
	decodeData(t, env, &payload)
	if payload.Token == "" {
		t.Fatal("login should issue a token")
	}

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "student@example.com", "password": "wrongpass"})
	assertStatus(t, w, http.StatusUnauthorized)
	if env.Code != 40110 {
		t.Fatalf("code = %d, want 40110", env.Code)
	}

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "nobody@example.com", "password": "password123"})
	assertStatus(t, w, http.StatusUnauthorized)
	if env.Code != 40110 {
		t.Fatalf("unknown email should answer the same 40110, got %d", env.Code)
	}
}

func TestCompleteProfileUnlocksFeed(t *testing.T) {
	db := setupTestDB(t)
	router := newAuthRouter(db)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		gin.H{"email": "student@example.com", "password": "secret123"})
	var payload tokenPayload
	decodeData(t, env, &payload)
	token := payload.Token

	// feed is gated until level and track are set
	w, env := doAuthed(t, router, http.MethodGet, "/api/v1/home", token)
	assertStatus(t, w, http.StatusUnauthorized)
	if env.Code != 40120 {
		t.Fatalf("code = %d, want 40120", env.Code)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/complete-profile",
		jsonBody(t, gin.H{"name": "Sam", "track": "cs", "level": 2}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assertStatus(t, w, http.StatusOK)

	w, _ = doAuthed(t, router, http.MethodGet, "/api/v1/home", token)
	assertStatus(t, w, http.StatusOK)
}

func TestMeRejectsVanishedUser(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ghost@example.com", 1, "cs")
	router := newAuthRouter(db)

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if err := db.Delete(&models.User{}, user.ID).Error; err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	w, env := doAuthed(t, router, http.MethodGet, "/api/v1/auth/me", token)
	assertStatus(t, w, http.StatusUnauthorized)
	if env.Code != 40106 {
		t.Fatalf("code = %d, want 40106", env.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "student@example.com", 1, "cs")
	router := newAuthRouter(db)

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	w, _ := doAuthed(t, router, http.MethodGet, "/api/v1/auth/me", token)
	assertStatus(t, w, http.StatusOK)

	w, _ = doAuthed(t, router, http.MethodPost, "/api/v1/auth/logout", token)
	assertStatus(t, w, http.StatusOK)

	w, env := doAuthed(t, router, http.MethodGet, "/api/v1/auth/me", token)
	assertStatus(t, w, http.StatusUnauthorized)
	if env.Code != 40104 {
		t.Fatalf("code = %d, want 40104 revoked", env.Code)
	}
}

func TestAuthRequiredHeaderFormats(t *testing.T) {
	db := setupTestDB(t)
	router := newAuthRouter(db)

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

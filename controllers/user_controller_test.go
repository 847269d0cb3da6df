package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
)

func newUserRouter(db *gorm.DB, id middleware.Identity, uploadDir string) *gin.Engine {
	r := gin.New()
	uc := NewUserController(db, uploadDir, "http://localhost:8080", 1<<20)
	group := r.Group("/api/v1", injectIdentity(id))
	group.GET("/user/notifications", uc.Notifications)
	group.PUT("/user/profile-picture", uc.UpdateProfilePicture)
	return r
}

func TestNotificationsNewestFirstAndScoped(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com", 2, "cs")
	other := createTestUser(t, db, "other@example.com", 2, "cs")

	seed := func(userID uint, title string, at time.Time) {
		n := models.Notification{UserID: userID, Title: title, Message: "m", CreatedAt: at}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("failed to seed notification: %v", err)
		}
	}
	seed(user.ID, "older", time.Now().Add(-time.Hour))
	seed(user.ID, "newer", time.Now())
	seed(other.ID, "not mine", time.Now())

	router := newUserRouter(db, identityOf(user), t.TempDir())
	w, env := doJSON(t, router, http.MethodGet, "/api/v1/user/notifications", nil)
	assertStatus(t, w, http.StatusOK)

	var listing struct {
		Notifications []struct {
			Title string `json:"title"`
		} `json:"notifications"`
	}
	decodeData(t, env, &listing)
	if len(listing.Notifications) != 2 {
		t.Fatalf("notifications = %d, want 2", len(listing.Notifications))
	}
	if listing.Notifications[0].Title != "newer" || listing.Notifications[1].Title != "older" {
		t.Fatalf("ordering = %+v, want newest first", listing.Notifications)
	}
}

func TestUpdateProfilePictureStoresImage(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com", 2, "cs")
	uploadDir := t.TempDir()

	router := newUserRouter(db, identityOf(user), uploadDir)

	b := newMultipart()
	b.file(t, "profilePicture", "avatar.JPG", "image/jpeg", []byte("jpegbytes"))

	if err := b.writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/user/profile-picture", &b.buf)
	req.Header.Set("Content-Type", b.writer.FormDataContentType())
	w := newRecorder(t, router, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.ProfilePicture == "" {
		t.Fatal("profile_picture should be set")
	}
	if !strings.Contains(reloaded.ProfilePicture, "profiles/") {
		t.Fatalf("profile picture %q should live under profiles/", reloaded.ProfilePicture)
	}
	stored := filepath.Base(reloaded.ProfilePicture)
	if !strings.HasSuffix(stored, ".jpg") {
		t.Fatalf("stored name %q should keep a lowercased extension", stored)
	}
	if _, err := os.Stat(filepath.Join(uploadDir, "profiles", stored)); err != nil {
		t.Fatalf("stored avatar missing on disk: %v", err)
	}
}

func TestUpdateProfilePictureRejectsNonImages(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com", 2, "cs")
	router := newUserRouter(db, identityOf(user), t.TempDir())

	b := newMultipart()
	b.file(t, "profilePicture", "resume.pdf", "application/pdf", []byte("%PDF"))

	if err := b.writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/user/profile-picture", &b.buf)
	req.Header.Set("Content-Type", b.writer.FormDataContentType())
	w := newRecorder(t, router, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateProfilePictureRequiresFile(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com", 2, "cs")
	router := newUserRouter(db, identityOf(user), t.TempDir())

	w, _ := doJSON(t, router, http.MethodPut, "/api/v1/user/profile-picture", nil)
	assertStatus(t, w, http.StatusBadRequest)
}

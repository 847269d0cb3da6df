package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

// UserController serves notifications and profile picture updates.
type UserController struct {
	db        *gorm.DB
	uploadDir string
	baseURL   string
	maxBytes  int64
}

// NewUserController creates a UserController. maxBytes limits the profile
// picture size.
func NewUserController(db *gorm.DB, uploadDir, baseURL string, maxBytes int64) *UserController {
	return &UserController{db: db, uploadDir: uploadDir, baseURL: baseURL, maxBytes: maxBytes}
}

// Notifications returns the caller's notifications, newest first.
func (u *UserController) Notifications(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var notifications []models.Notification
	if err := u.db.
		Where("user_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to list notifications")
		return
	}

	utils.Success(ctx, gin.H{"notifications": notifications})
}

// UpdateProfilePicture stores a new avatar and updates the user row. Only
// image MIME types are accepted.
func (u *UserController) UpdateProfilePicture(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	header, err := ctx.FormFile("profilePicture")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "profilePicture file is required")
		return
	}

	mimeType := utils.DetectMIME(header)
	if !strings.HasPrefix(mimeType, "image/") {
		utils.Error(ctx, http.StatusBadRequest, 40061, "profile picture must be an image")
		return
	}

	stored := utils.StoredFileName(header.Filename)
	destPath := filepath.Join(u.uploadDir, "profiles", stored)
	if _, err := utils.SaveMultipartFile(header, destPath, u.maxBytes); err != nil {
		if errors.Is(err, utils.ErrFileTooLarge) {
			utils.Error(ctx, http.StatusBadRequest, 40062, "profile picture exceeds size limit")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to store profile picture")
		return
	}

	storedPath := filepath.ToSlash(destPath)
	if err := u.db.Model(&models.User{}).
		Where("id = ?", identity.UserID).
		Update("profile_picture", storedPath).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to update profile picture")
		return
	}

	utils.Success(ctx, gin.H{"profile_picture": utils.PublicFileURL(u.baseURL, storedPath)})
}

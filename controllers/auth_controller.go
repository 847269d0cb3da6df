package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

// AuthController handles registration, login and profile completion.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates an account from email + password and returns a bearer token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check existing account")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	user := models.User{Email: email, PasswordHash: hash}
	if err := a.db.Create(&user).Error; err != nil {
		// Unique index on email catches a concurrent duplicate registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusBadRequest, 40002, "email already registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to issue token")
		return
	}

	utils.Created(ctx, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email},
	})
}

// Login verifies credentials and returns a fresh bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load user")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":               user.ID,
			"email":            user.Email,
			"name":             user.Name,
			"profile_complete": user.ProfileComplete(),
		},
	})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
		return
	}
	tokenString := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(tokenString)
	if err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(tokenString, claims.ExpiresAt.Time)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the caller's own profile.
func (a *AuthController) Me(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, identity.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to load profile")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// CompleteProfile fills in the academic fields the feed visibility rule needs.
func (a *AuthController) CompleteProfile(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var req struct {
		Name           string `json:"name"`
		School         string `json:"school"`
		Track          string `json:"track"`
		Level          int    `json:"level"`
		Specialization string `json:"specialization"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}
	if req.Level < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40005, "level must be a positive ordinal")
		return
	}

	updates := map[string]interface{}{}
	if v := strings.TrimSpace(req.Name); v != "" {
		updates["name"] = v
	}
	if v := strings.TrimSpace(req.School); v != "" {
		updates["school"] = v
	}
	if v := strings.TrimSpace(req.Track); v != "" {
		updates["track"] = v
	}
	if req.Level >= 1 {
		updates["level"] = req.Level
	}
	if v := strings.TrimSpace(req.Specialization); v != "" {
		updates["specialization"] = v
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40006, "no profile fields provided")
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", identity.UserID).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to update profile")
		return
	}

	var user models.User
	if err := a.db.First(&user, identity.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50009, "failed to load profile")
		return
	}
	utils.Success(ctx, gin.H{"user": user, "profile_complete": user.ProfileComplete()})
}

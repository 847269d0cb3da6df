package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

// InteractionController flips like/bookmark membership and manages comments
// together with the denormalized comment counter.
type InteractionController struct {
	db *gorm.DB
}

// NewInteractionController creates an InteractionController.
func NewInteractionController(db *gorm.DB) *InteractionController {
	return &InteractionController{db: db}
}

func parseResourceID(ctx *gin.Context, param string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(param))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (i *InteractionController) resourceExists(resourceID uint) (bool, error) {
	var count int64
	err := i.db.Model(&models.Resource{}).Where("id = ?", resourceID).Count(&count).Error
	return count > 0, err
}

func (i *InteractionController) likeCount(resourceID uint) (int64, error) {
	var count int64
	err := i.db.Model(&models.Like{}).Where("resource_id = ?", resourceID).Count(&count).Error
	return count, err
}

// ToggleLike flips the like state for (caller, resource) and returns the
// fresh count. The unique index makes concurrent duplicate inserts collapse:
// a duplicate-key error means somebody else's toggle already created the row,
// which is the state the caller asked for.
func (i *InteractionController) ToggleLike(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	resourceID, ok := parseResourceID(ctx, "id")
	if !ok {
		return
	}

	exists, err := i.resourceExists(resourceID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load resource")
		return
	}
	if !exists {
		utils.Error(ctx, http.StatusNotFound, 40430, "resource not found")
		return
	}

	var existing models.Like
	err = i.db.Where("user_id = ? AND resource_id = ?", identity.UserID, resourceID).First(&existing).Error
	switch {
	case err == nil:
		if err := i.db.Where("user_id = ? AND resource_id = ?", identity.UserID, resourceID).
			Delete(&models.Like{}).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to remove like")
			return
		}
		count, err := i.likeCount(resourceID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to count likes")
			return
		}
		utils.Success(ctx, gin.H{"liked": false, "count": count})
	case errors.Is(err, gorm.ErrRecordNotFound):
		createErr := i.db.Create(&models.Like{UserID: identity.UserID, ResourceID: resourceID}).Error
		if createErr != nil && !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to create like")
			return
		}
		count, err := i.likeCount(resourceID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to count likes")
			return
		}
		utils.Success(ctx, gin.H{"liked": true, "count": count})
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load like state")
	}
}

// ToggleBookmark flips the bookmark state for (caller, resource). Bookmarks
// are private, so no count is returned.
func (i *InteractionController) ToggleBookmark(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	resourceID, ok := parseResourceID(ctx, "id")
	if !ok {
		return
	}

	exists, err := i.resourceExists(resourceID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load resource")
		return
	}
	if !exists {
		utils.Error(ctx, http.StatusNotFound, 40430, "resource not found")
		return
	}

	var existing models.Bookmark
	err = i.db.Where("user_id = ? AND resource_id = ?", identity.UserID, resourceID).First(&existing).Error
	switch {
	case err == nil:
		if err := i.db.Where("user_id = ? AND resource_id = ?", identity.UserID, resourceID).
			Delete(&models.Bookmark{}).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to remove bookmark")
			return
		}
		utils.Success(ctx, gin.H{"bookmarked": false})
	case errors.Is(err, gorm.ErrRecordNotFound):
		createErr := i.db.Create(&models.Bookmark{UserID: identity.UserID, ResourceID: resourceID}).Error
		if createErr != nil && !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to create bookmark")
			return
		}
		utils.Success(ctx, gin.H{"bookmarked": true})
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to load bookmark state")
	}
}

// GetPostStats returns the like count plus the caller's liked/bookmarked flags.
func (i *InteractionController) GetPostStats(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	resourceID, ok := parseResourceID(ctx, "id")
	if !ok {
		return
	}

	count, err := i.likeCount(resourceID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to count likes")
		return
	}

	var liked, bookmarked int64
	if err := i.db.Model(&models.Like{}).
		Where("user_id = ? AND resource_id = ?", identity.UserID, resourceID).
		Count(&liked).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load like state")
		return
	}
	if err := i.db.Model(&models.Bookmark{}).
		Where("user_id = ? AND resource_id = ?", identity.UserID, resourceID).
		Count(&bookmarked).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to load bookmark state")
		return
	}

	utils.Success(ctx, gin.H{
		"likes_count":   count,
		"is_liked":      liked > 0,
		"is_bookmarked": bookmarked > 0,
	})
}

// ListComments returns a resource's comments newest first with author summaries.
func (i *InteractionController) ListComments(ctx *gin.Context) {
	if _, ok := middleware.CurrentIdentity(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	resourceID, ok := parseResourceID(ctx, "id")
	if !ok {
		return
	}

	var comments []models.Comment
	if err := i.db.Preload("User").
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50039, "failed to list comments")
		return
	}

	items := make([]gin.H, 0, len(comments))
	for _, c := range comments {
		items = append(items, gin.H{
			"id":         c.ID,
			"content":    c.Content,
			"created_at": c.CreatedAt,
			"author":     c.User.Summary(),
		})
	}
	utils.Success(ctx, gin.H{"comments": items})
}

// CreateComment inserts a comment and bumps the resource's denormalized
// counter inside the same transaction so the invariant holds even when the
// second statement fails.
func (i *InteractionController) CreateComment(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	resourceID, ok := parseResourceID(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}
	content := strings.TrimSpace(utils.Sanitize(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "content cannot be empty")
		return
	}

	exists, err := i.resourceExists(resourceID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load resource")
		return
	}
	if !exists {
		utils.Error(ctx, http.StatusNotFound, 40430, "resource not found")
		return
	}

	comment := models.Comment{
		ResourceID: resourceID,
		UserID:     identity.UserID,
		Content:    content,
	}
	err = i.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Resource{}).
			Where("id = ?", resourceID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create comment")
		return
	}

	if err := i.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load comment")
		return
	}

	utils.Created(ctx, gin.H{
		"comment": gin.H{
			"id":         comment.ID,
			"content":    comment.Content,
			"created_at": comment.CreatedAt,
			"author":     comment.User.Summary(),
		},
	})
}

// DeleteComment removes the caller's own comment and decrements the counter,
// floored at zero, inside one transaction.
func (i *InteractionController) DeleteComment(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	raw := strings.TrimSpace(ctx.Param("commentId"))
	commentID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || commentID == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid comment id")
		return
	}

	var comment models.Comment
	if err := i.db.First(&comment, uint(commentID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load comment")
		return
	}

	if comment.UserID != identity.UserID {
		utils.Error(ctx, http.StatusForbidden, 40330, "you can only delete your own comment")
		return
	}

	err = i.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Comment{}, comment.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Resource{}).
			Where("id = ?", comment.ResourceID).
			UpdateColumn("comments_count",
				gorm.Expr("CASE WHEN comments_count > 0 THEN comments_count - 1 ELSE 0 END")).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

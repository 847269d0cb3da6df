package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

// BookmarkController lists the caller's saved resources.
type BookmarkController struct {
	db      *gorm.DB
	baseURL string
}

// NewBookmarkController creates a BookmarkController.
func NewBookmarkController(db *gorm.DB, baseURL string) *BookmarkController {
	return &BookmarkController{db: db, baseURL: baseURL}
}

// List returns the caller's bookmarked resources, most recently bookmarked
// first. Items are shaped like feed publications so clients can reuse their
// rendering; is_liked is computed per item, is_bookmarked is true by
// construction.
func (b *BookmarkController) List(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var bookmarks []models.Bookmark
	if err := b.db.
		Where("user_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list bookmarks")
		return
	}
	if len(bookmarks) == 0 {
		utils.Success(ctx, gin.H{"bookmarks": []publication{}})
		return
	}

	ids := make([]uint, 0, len(bookmarks))
	for _, bm := range bookmarks {
		ids = append(ids, bm.ResourceID)
	}

	var resources []models.Resource
	if err := b.db.Preload("User").Where("id IN ?", ids).Find(&resources).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load bookmarked resources")
		return
	}
	byID := make(map[uint]models.Resource, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
	}

	attachments, err := attachmentsByResource(b.db, ids)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load attachments")
		return
	}
	likeCounts, err := likeCountsByResource(b.db, ids)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to load like counts")
		return
	}
	likedSet, err := likedResourceSet(b.db, identity.UserID, ids)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load like state")
		return
	}

	// iterate the bookmark rows, not the resource map, to keep
	// newest-bookmark-first ordering
	items := make([]publication, 0, len(bookmarks))
	for _, bm := range bookmarks {
		res, ok := byID[bm.ResourceID]
		if !ok {
			continue
		}
		item := buildPublication(
			res,
			attachments[res.ID],
			likeCounts[res.ID],
			likedSet[res.ID],
			true,
			b.baseURL,
		)
		items = append(items, item)
	}

	utils.Success(ctx, gin.H{"bookmarks": items})
}

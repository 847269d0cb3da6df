package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

const (
	searchItemsLimit = 20
	searchFilesLimit = 10
	searchUsersLimit = 5
	minQueryLength   = 2
)

// SearchController serves the combined items/files/users search. Result
// visibility follows the same level/track rule as the feed.
type SearchController struct {
	db      *gorm.DB
	baseURL string
}

// NewSearchController creates a SearchController.
func NewSearchController(db *gorm.DB, baseURL string) *SearchController {
	return &SearchController{db: db, baseURL: baseURL}
}

// Search runs the three sub-searches for one query string.
func (s *SearchController) Search(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	query := strings.TrimSpace(ctx.Query("q"))
	if len([]rune(query)) < minQueryLength {
		utils.Error(ctx, http.StatusBadRequest, 40050, "query must be at least 2 characters")
		return
	}
	pattern := "%" + query + "%"

	items, err := s.searchItems(identity, pattern)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "search failed")
		return
	}
	files, err := s.searchFiles(identity, pattern)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "search failed")
		return
	}
	users, err := s.searchUsers(identity, pattern)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "search failed")
		return
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"files": files,
		"users": users,
	})
}

// visibleScope applies the feed visibility predicate for the given identity.
func visibleScope(db *gorm.DB, identity middleware.Identity) *gorm.DB {
	scoped := db.
		Where("(level = 0 OR level <= ?)", identity.Level).
		Where("(track = '' OR track = ?)", identity.Track)
	if identity.Specialization != "" {
		scoped = scoped.Where("(specialization = '' OR specialization = ?)", identity.Specialization)
	}
	return scoped
}

func (s *SearchController) searchItems(identity middleware.Identity, pattern string) ([]gin.H, error) {
	var resources []models.Resource
	err := visibleScope(s.db.Preload("User"), identity).
		Where("(content LIKE ? OR title LIKE ? OR professor LIKE ?)", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(searchItemsLimit).
		Find(&resources).Error
	if err != nil {
		return nil, err
	}

	items := make([]gin.H, 0, len(resources))
	for _, res := range resources {
		items = append(items, gin.H{
			"id":         res.ID,
			"type":       res.Type,
			"title":      res.Title,
			"content":    res.Content,
			"professor":  res.Professor,
			"created_at": res.CreatedAt,
			"author":     res.User.Summary(),
		})
	}
	return items, nil
}

func (s *SearchController) searchFiles(identity middleware.Identity, pattern string) ([]gin.H, error) {
	// attachments are matched by original file name, scoped to resources the
	// caller is allowed to see
	sub := visibleScope(s.db.Model(&models.Resource{}), identity).Select("id")

	var attachments []models.ResourceAttachment
	err := s.db.
		Where("file_name LIKE ?", pattern).
		Where("resource_id IN (?)", sub).
		Order("id DESC").
		Limit(searchFilesLimit).
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}

	files := make([]gin.H, 0, len(attachments))
	for _, att := range attachments {
		files = append(files, gin.H{
			"id":          att.ID,
			"resource_id": att.ResourceID,
			"file_name":   att.FileName,
			"file_type":   att.FileType,
			"file_size":   att.FileSize,
			"url":         utils.PublicFileURL(s.baseURL, att.FilePath),
		})
	}
	return files, nil
}

func (s *SearchController) searchUsers(identity middleware.Identity, pattern string) ([]models.AuthorSummary, error) {
	var users []models.User
	err := s.db.
		Where("name LIKE ?", pattern).
		Where("id <> ?", identity.UserID).
		Order("name ASC").
		Limit(searchUsersLimit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]models.AuthorSummary, 0, len(users))
	for idx := range users {
		summaries = append(summaries, users[idx].Summary())
	}
	return summaries, nil
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

const (
	feedLimit        = 50
	maxImagesPerItem = 4
)

// FeedController assembles the level/track filtered home feed.
type FeedController struct {
	db      *gorm.DB
	baseURL string
}

// NewFeedController creates a FeedController. baseURL is used to build
// absolute attachment URLs.
func NewFeedController(db *gorm.DB, baseURL string) *FeedController {
	return &FeedController{db: db, baseURL: baseURL}
}

type feedImage struct {
	ID  uint   `json:"id"`
	URL string `json:"url"`
}

type attachmentMeta struct {
	ID       uint   `json:"id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	IsImage  bool   `json:"is_image"`
}

type levelBlock struct {
	Level          int    `json:"level"`
	Track          string `json:"track"`
	Specialization string `json:"specialization"`
	Year           int    `json:"year"`
}

type publication struct {
	ID                  uint                 `json:"id"`
	Type                string               `json:"type"`
	Title               string               `json:"title"`
	Content             string               `json:"content"`
	CreatedAt           time.Time            `json:"created_at"`
	Author              models.AuthorSummary `json:"author"`
	Level               levelBlock           `json:"level_info"`
	HasMedia            bool                 `json:"has_media"`
	Images              []feedImage          `json:"images"`
	PDFCount            int                  `json:"pdf_count"`
	LikesCount          int64                `json:"likes_count"`
	IsLiked             bool                 `json:"is_liked"`
	IsBookmarked        bool                 `json:"is_bookmarked"`
	CommentsCount       int                  `json:"comments_count"`
	AttachmentsMetadata []attachmentMeta     `json:"attachments_metadata"`
}

// Home returns the newest visible publications for the authenticated user.
func (f *FeedController) Home(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	if !identity.ProfileComplete() {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "incomplete profile: level and track are required")
		return
	}

	resources, err := f.visibleResources(identity)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load feed")
		return
	}

	visibleLevels := make([]int, identity.Level)
	for i := range visibleLevels {
		visibleLevels[i] = i + 1
	}
	meta := gin.H{
		"total":          len(resources),
		"user_level":     identity.Level,
		"user_track":     identity.Track,
		"visible_levels": visibleLevels,
	}

	if len(resources) == 0 {
		utils.Success(ctx, gin.H{"publications": []publication{}, "meta": meta})
		return
	}

	publications, err := f.assemble(identity, resources)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to assemble feed")
		return
	}

	utils.Success(ctx, gin.H{"publications": publications, "meta": meta})
}

// visibleResources applies the visibility rule: general content (level 0 /
// empty track) plus content at or below the user's level on the user's track,
// restricted to the user's specialization when they have one.
func (f *FeedController) visibleResources(identity middleware.Identity) ([]models.Resource, error) {
	query := f.db.
		Preload("User").
		Where("(level = 0 OR level <= ?)", identity.Level).
		Where("(track = '' OR track = ?)", identity.Track)
	if identity.Specialization != "" {
		query = query.Where("(specialization = '' OR specialization = ?)", identity.Specialization)
	}

	var resources []models.Resource
	err := query.Order("created_at DESC").Limit(feedLimit).Find(&resources).Error
	return resources, err
}

// assemble batch-fetches attachments and interaction aggregates for exactly
// the given resources and shapes the response items.
func (f *FeedController) assemble(identity middleware.Identity, resources []models.Resource) ([]publication, error) {
	ids := make([]uint, 0, len(resources))
	for _, r := range resources {
		ids = append(ids, r.ID)
	}

	attachments, err := attachmentsByResource(f.db, ids)
	if err != nil {
		return nil, err
	}
	likeCounts, err := likeCountsByResource(f.db, ids)
	if err != nil {
		return nil, err
	}
	likedSet, err := likedResourceSet(f.db, identity.UserID, ids)
	if err != nil {
		return nil, err
	}
	bookmarkedSet, err := bookmarkedResourceSet(f.db, identity.UserID, ids)
	if err != nil {
		return nil, err
	}

	publications := make([]publication, 0, len(resources))
	for _, res := range resources {
		publications = append(publications, buildPublication(
			res,
			attachments[res.ID],
			likeCounts[res.ID],
			likedSet[res.ID],
			bookmarkedSet[res.ID],
			f.baseURL,
		))
	}
	return publications, nil
}

// buildPublication shapes one feed item: images are capped, PDFs counted,
// and every attachment is summarized in the metadata block.
func buildPublication(res models.Resource, atts []models.ResourceAttachment, likeCount int64, liked, bookmarked bool, baseURL string) publication {
	images := make([]feedImage, 0, maxImagesPerItem)
	pdfCount := 0
	metadata := make([]attachmentMeta, 0, len(atts))

	for _, att := range atts {
		if att.IsImage() && len(images) < maxImagesPerItem {
			images = append(images, feedImage{
				ID:  att.ID,
				URL: utils.PublicFileURL(baseURL, att.FilePath),
			})
		}
		if att.IsPDF() {
			pdfCount++
		}
		metadata = append(metadata, attachmentMeta{
			ID:       att.ID,
			FileName: att.FileName,
			FileType: att.FileType,
			FileSize: att.FileSize,
			IsImage:  att.IsImage(),
		})
	}

	return publication{
		ID:        res.ID,
		Type:      res.Type,
		Title:     res.Title,
		Content:   res.Content,
		CreatedAt: res.CreatedAt,
		Author:    res.User.Summary(),
		Level: levelBlock{
			Level:          res.Level,
			Track:          res.Track,
			Specialization: res.Specialization,
			Year:           res.Year,
		},
		HasMedia:            len(atts) > 0,
		Images:              images,
		PDFCount:            pdfCount,
		LikesCount:          likeCount,
		IsLiked:             liked,
		IsBookmarked:        bookmarked,
		CommentsCount:       res.CommentsCount,
		AttachmentsMetadata: metadata,
	}
}

// attachmentsByResource loads all attachments for the given resource ids in
// one query and groups them per resource.
func attachmentsByResource(db *gorm.DB, ids []uint) (map[uint][]models.ResourceAttachment, error) {
	var rows []models.ResourceAttachment
	if err := db.Where("resource_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	grouped := make(map[uint][]models.ResourceAttachment, len(ids))
	for _, row := range rows {
		grouped[row.ResourceID] = append(grouped[row.ResourceID], row)
	}
	return grouped, nil
}

// likeCountsByResource aggregates like counts for the given resource ids.
func likeCountsByResource(db *gorm.DB, ids []uint) (map[uint]int64, error) {
	type row struct {
		ResourceID uint
		Total      int64
	}
	var rows []row
	err := db.Model(&models.Like{}).
		Select("resource_id, COUNT(*) AS total").
		Where("resource_id IN ?", ids).
		Group("resource_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ResourceID] = r.Total
	}
	return counts, nil
}

// likedResourceSet returns the subset of ids the user has liked.
func likedResourceSet(db *gorm.DB, userID uint, ids []uint) (map[uint]bool, error) {
	var likedIDs []uint
	err := db.Model(&models.Like{}).
		Where("user_id = ? AND resource_id IN ?", userID, ids).
		Pluck("resource_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		set[id] = true
	}
	return set, nil
}

// bookmarkedResourceSet returns the subset of ids the user has bookmarked.
func bookmarkedResourceSet(db *gorm.DB, userID uint, ids []uint) (map[uint]bool, error) {
	var markedIDs []uint
	err := db.Model(&models.Bookmark{}).
		Where("user_id = ? AND resource_id IN ?", userID, ids).
		Pluck("resource_id", &markedIDs).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(markedIDs))
	for _, id := range markedIDs {
		set[id] = true
	}
	return set, nil
}

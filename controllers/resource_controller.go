package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

// ResourceController publishes new resources with their file attachments.
type ResourceController struct {
	db        *gorm.DB
	uploadDir string
	maxBytes  int64
}

// NewResourceController creates a ResourceController. maxBytes limits the
// size of each uploaded part.
func NewResourceController(db *gorm.DB, uploadDir string, maxBytes int64) *ResourceController {
	return &ResourceController{db: db, uploadDir: uploadDir, maxBytes: maxBytes}
}

// Create handles the multipart publish form: text fields plus zero or more
// file parts. Files are written to disk first, then the resource row and all
// attachment rows are inserted in one transaction. A file already on disk
// whose transaction failed is an orphan, not a corrupt record.
func (r *ResourceController) Create(ctx *gin.Context) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid multipart form")
		return
	}

	resourceType := strings.TrimSpace(ctx.PostForm("type"))
	if resourceType == "" {
		resourceType = models.TypePost
	}
	if !models.ValidResourceType(resourceType) {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid resource type")
		return
	}

	content := strings.TrimSpace(utils.Sanitize(ctx.PostForm("content")))
	title := strings.TrimSpace(utils.Sanitize(ctx.PostForm("title")))
	files := form.File["files"]
	if content == "" && len(files) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40042, "content or files are required")
		return
	}

	level, err := optionalInt(ctx.PostForm("level"))
	if err != nil || level < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid level")
		return
	}
	year, err := optionalInt(ctx.PostForm("year"))
	if err != nil || year < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid year")
		return
	}

	resource := models.Resource{
		UserID:         identity.UserID,
		Type:           resourceType,
		Title:          title,
		Content:        content,
		Level:          level,
		Track:          strings.TrimSpace(ctx.PostForm("track")),
		Specialization: strings.TrimSpace(ctx.PostForm("specialization")),
		Professor:      strings.TrimSpace(ctx.PostForm("professor")),
		Year:           year,
	}

	attachments := make([]models.ResourceAttachment, 0, len(files))
	for _, header := range files {
		stored := utils.StoredFileName(header.Filename)
		destPath := filepath.Join(r.uploadDir, stored)
		size, err := utils.SaveMultipartFile(header, destPath, r.maxBytes)
		if err != nil {
			if errors.Is(err, utils.ErrFileTooLarge) {
				utils.Error(ctx, http.StatusBadRequest, 40045, "file exceeds size limit")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to store file")
			return
		}
		attachments = append(attachments, models.ResourceAttachment{
			FilePath: filepath.ToSlash(destPath),
			FileName: header.Filename,
			FileType: utils.DetectMIME(header),
			FileSize: size,
		})
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&resource).Error; err != nil {
			return err
		}
		for idx := range attachments {
			attachments[idx].ResourceID = resource.ID
		}
		if len(attachments) == 0 {
			return nil
		}
		return tx.Create(&attachments).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create resource")
		return
	}

	utils.Created(ctx, gin.H{"resource_id": resource.ID})
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

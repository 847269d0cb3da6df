package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/models"
)

func newFeedRouter(db *gorm.DB, id middleware.Identity) *gin.Engine {
	r := gin.New()
	fc := NewFeedController(db, "http://localhost:8080")
	r.GET("/api/v1/home", injectIdentity(id), fc.Home)
	return r
}

type feedResponse struct {
	Publications []struct {
		ID      uint   `json:"id"`
		Content string `json:"content"`
		Author  struct {
			ID uint `json:"id"`
		} `json:"author"`
		Images              []struct{ URL string } `json:"images"`
		PDFCount            int                    `json:"pdf_count"`
		HasMedia            bool                   `json:"has_media"`
		IsLiked             bool                   `json:"is_liked"`
		IsBookmarked        bool                   `json:"is_bookmarked"`
		CommentsCount       int                    `json:"comments_count"`
		AttachmentsMetadata []struct {
			IsImage bool `json:"is_image"`
		} `json:"attachments_metadata"`
	} `json:"publications"`
	Meta struct {
		Total         int    `json:"total"`
		UserLevel     int    `json:"user_level"`
		UserTrack     string `json:"user_track"`
		VisibleLevels []int  `json:"visible_levels"`
	} `json:"meta"`
}

func TestHomeAppliesVisibilityRule(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author@example.com", 5, "math")
	viewer := createTestUser(t, db, "viewer@example.com", 3, "cs")

	general := createTestResource(t, db, author.ID, 0, "", "general")
	sameTrackBelow := createTestResource(t, db, author.ID, 2, "cs", "cs level 2")
	sameTrackAt := createTestResource(t, db, author.ID, 3, "cs", "cs level 3")
	createTestResource(t, db, author.ID, 4, "cs", "cs level 4 hidden")
	createTestResource(t, db, author.ID, 2, "math", "math hidden")

	router := newFeedRouter(db, identityOf(viewer))
	w, env := doJSON(t, router, http.MethodGet, "/api/v1/home", nil)
	assertStatus(t, w, http.StatusOK)

	var feed feedResponse
	decodeData(t, env, &feed)

	wantVisible := map[uint]bool{general.ID: true, sameTrackBelow.ID: true, sameTrackAt.ID: true}
	if len(feed.Publications) != len(wantVisible) {
		t.Fatalf("publications = %d, want %d", len(feed.Publications), len(wantVisible))
	}
	for _, pub := range feed.Publications {
		if !wantVisible[pub.ID] {
			t.Fatalf("resource %d (%q) should not be visible", pub.ID, pub.Content)
		}
	}
	if feed.Meta.UserLevel != 3 || feed.Meta.UserTrack != "cs" {
		t.Fatalf("meta = %+v, want level 3 track cs", feed.Meta)
	}
	if len(feed.Meta.VisibleLevels) != 3 {
		t.Fatalf("visible_levels = %v, want [1 2 3]", feed.Meta.VisibleLevels)
	}
}

func TestHomeExcludesOwnPostAboveOwnLevel(t *testing.T) {
	db := setupTestDB(t)
	viewer := createTestUser(t, db, "viewer@example.com", 2, "cs")

	// the rule is position based, not ownership based
	createTestResource(t, db, viewer.ID, 4, "cs", "own but above level")

	router := newFeedRouter(db, identityOf(viewer))
	w, env := doJSON(t, router, http.MethodGet, "/api/v1/home", nil)
	assertStatus(t, w, http.StatusOK)

	var feed feedResponse
	decodeData(t, env, &feed)
	if len(feed.Publications) != 0 {
		t.Fatalf("publications = %d, want 0", len(feed.Publications))
	}
}

func TestHomeOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	viewer := createTestUser(t, db, "viewer@example.com", 3, "cs")

	old := models.Resource{UserID: viewer.ID, Type: models.TypePost, Content: "old", CreatedAt: time.Now().Add(-time.Hour)}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("failed to seed resource: %v", err)
	}
	fresh := createTestResource(t, db, viewer.ID, 0, "", "fresh")

	router := newFeedRouter(db, identityOf(viewer))
	w, env := doJSON(t, router, http.MethodGet, "/api/v1/home", nil)
	assertStatus(t, w, http.StatusOK)

	var feed feedResponse
	decodeData(t, env, &feed)
	if len(feed.Publications) != 2 {
		t.Fatalf("publications = %d, want 2", len(feed.Publications))
	}
	if feed.Publications[0].ID != fresh.ID || feed.Publications[1].ID != old.ID {
		t.Fatalf("ordering = [%d %d], want newest first", feed.Publications[0].ID, feed.Publications[1].ID)
	}
}

func TestHomeIncompleteProfile(t *testing.T) {
	db := setupTestDB(t)
	viewer := createTestUser(t, db, "viewer@example.com", 0, "")

	router := newFeedRouter(db, identityOf(viewer))
	w, env := doJSON(t, router, http.MethodGet, "/api/v1/home", nil)
	assertStatus(t, w, http.StatusUnauthorized)
	if env.Code != 40120 {
		t.Fatalf("code = %d, want 40120", env.Code)
	}
}

func TestHomeEmptyFeedStillReturnsMeta(t *testing.T) {
	db := setupTestDB(t)
	viewer := createTestUser(t, db, "viewer@example.com", 1, "cs")

	router := newFeedRouter(db, identityOf(viewer))
	w, env := doJSON(t, router, http.MethodGet, "/api/v1/home", nil)
	assertStatus(t, w, http.StatusOK)

	var feed feedResponse
	decodeData(t, env, &feed)
	if feed.Publications == nil {
		t.Fatal("publications should decode as an empty array, not null")
	}
	if len(feed.Publications) != 0 || feed.Meta.Total != 0 {
		t.Fatalf("feed = %+v, want empty with zero total", feed)
	}
	if feed.Meta.UserLevel != 1 || feed.Meta.UserTrack != "cs" {
		t.Fatalf("meta = %+v, want the caller's profile echoed", feed.Meta)
	}
}

func TestHomeMarksCallerInteractions(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author@example.com", 3, "cs")
	viewer := createTestUser(t, db, "viewer@example.com", 3, "cs")

	liked := createTestResource(t, db, author.ID, 0, "", "liked one")
	plain := createTestResource(t, db, author.ID, 0, "", "plain one")

	if err := db.Create(&models.Like{UserID: viewer.ID, ResourceID: liked.ID}).Error; err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}
	if err := db.Create(&models.Bookmark{UserID: viewer.ID, ResourceID: liked.ID}).Error; err != nil {
		t.Fatalf("failed to seed bookmark: %v", err)
	}

	router := newFeedRouter(db, identityOf(viewer))
	w, env := doJSON(t, router, http.MethodGet, "/api/v1/home", nil)
	assertStatus(t, w, http.StatusOK)

	var feed feedResponse
	decodeData(t, env, &feed)
	for _, pub := range feed.Publications {
		switch pub.ID {
		case liked.ID:
			if !pub.IsLiked || !pub.IsBookmarked {
				t.Fatalf("resource %d should be liked and bookmarked", pub.ID)
			}
		case plain.ID:
			if pub.IsLiked || pub.IsBookmarked {
				t.Fatalf("resource %d should carry no interactions", pub.ID)
			}
		}
	}
}

func TestBuildPublicationCapsImagesAndCountsPDFs(t *testing.T) {
	res := models.Resource{ID: 7, Type: models.TypePost, Content: "files"}

	atts := []models.ResourceAttachment{
		{ID: 1, FileType: "image/png", FilePath: "uploads/a.png"},
		{ID: 2, FileType: "image/jpeg", FilePath: "uploads/b.jpg"},
		{ID: 3, FileType: "image/gif", FilePath: "uploads/c.gif"},
		{ID: 4, FileType: "image/webp", FilePath: "uploads/d.webp"},
		{ID: 5, FileType: "image/png", FilePath: "uploads/e.png"},
		{ID: 6, FileType: "application/pdf", FilePath: "uploads/f.pdf"},
		{ID: 7, FileType: "application/pdf", FilePath: "uploads/g.pdf"},
	}

	pub := buildPublication(res, atts, 0, false, false, "http://localhost:8080")

	if len(pub.Images) != maxImagesPerItem {
		t.Fatalf("images = %d, want cap of %d", len(pub.Images), maxImagesPerItem)
	}
	if pub.PDFCount != 2 {
		t.Fatalf("pdf_count = %d, want 2", pub.PDFCount)
	}
	if len(pub.AttachmentsMetadata) != len(atts) {
		t.Fatalf("metadata = %d, want all %d attachments", len(pub.AttachmentsMetadata), len(atts))
	}
	if !pub.HasMedia {
		t.Fatal("has_media should be true when attachments exist")
	}
	if pub.Images[0].URL != "http://localhost:8080/uploads/a.png" {
		t.Fatalf("image url = %q", pub.Images[0].URL)
	}
}

func TestBuildPublicationWithoutAttachments(t *testing.T) {
	res := models.Resource{ID: 9, Type: models.TypePost, Content: "plain", CommentsCount: 3}

	pub := buildPublication(res, nil, 5, true, false, "http://localhost:8080")

	if pub.HasMedia {
		t.Fatal("has_media should be false without attachments")
	}
	if pub.LikesCount != 5 || !pub.IsLiked || pub.IsBookmarked {
		t.Fatalf("interaction fields = %+v", pub)
	}
	if pub.CommentsCount != 3 {
		t.Fatalf("comments_count = %d, want denormalized value 3", pub.CommentsCount)
	}
}

package routes

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/faxai/faxai/config"
	"github.com/faxai/faxai/controllers"
	"github.com/faxai/faxai/middleware"
	"github.com/faxai/faxai/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, logger *zap.Logger) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if logger != nil {
		r.Use(middleware.RequestLogger(logger))
		r.Use(middleware.Recovery(logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/uploads", filepath.Clean(cfg.UploadDir))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	maxUploadBytes := int64(cfg.UploadMaxSizeMB) << 20
	maxAvatarBytes := int64(cfg.ProfilePicSizeMB) << 20

	authController := controllers.NewAuthController(db)
	feedController := controllers.NewFeedController(db, cfg.PublicBaseURL)
	resourceController := controllers.NewResourceController(db, cfg.UploadDir, maxUploadBytes)
	interactionController := controllers.NewInteractionController(db)
	searchController := controllers.NewSearchController(db, cfg.PublicBaseURL)
	bookmarkController := controllers.NewBookmarkController(db, cfg.PublicBaseURL)
	userController := controllers.NewUserController(db, cfg.UploadDir, cfg.PublicBaseURL, maxAvatarBytes)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(db), authController.Me)
	authGroup.PUT("/complete-profile", middleware.AuthRequired(db), authController.CompleteProfile)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(db))

	protected.GET("/home", feedController.Home)
	protected.GET("/search", searchController.Search)

	protected.POST("/files", resourceController.Create)

	protected.POST("/posts/:id/like", interactionController.ToggleLike)
	protected.GET("/posts/:id/like", interactionController.GetPostStats)
	protected.POST("/posts/:id/bookmark", interactionController.ToggleBookmark)
	protected.GET("/posts/:id/comments", interactionController.ListComments)
	protected.POST("/posts/:id/comments", interactionController.CreateComment)
	protected.DELETE("/posts/comments/:commentId", interactionController.DeleteComment)

	protected.GET("/bookmarks", bookmarkController.List)
	protected.GET("/user/notifications", userController.Notifications)
	protected.PUT("/user/profile-picture", userController.UpdateProfilePicture)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/utils"
)

// ContextIdentityKey is the key used to hand the resolved identity from the
// auth gate to the handler at the request boundary. Handlers extract it once
// and pass the value explicitly into everything downstream.
const ContextIdentityKey = "auth_identity"

// Identity is the authenticated caller as resolved from the database on each
// request. It carries the academic profile needed by the visibility rule so
// downstream code never re-reads the user row.
type Identity struct {
	UserID         uint
	Email          string
	Name           string
	Level          int
	Track          string
	Specialization string
}

// ProfileComplete reports whether the identity can be served a filtered feed.
func (id Identity) ProfileComplete() bool {
	return id.Level >= 1 && id.Track != ""
}

// AuthRequired verifies the bearer token, rejects revoked tokens, and
// resolves the subject against the users table. A structurally valid token
// whose user no longer exists is rejected the same way as a bad token.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Error(ctx, http.StatusUnauthorized, 40106, "user no longer exists")
			} else {
				utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to resolve user")
			}
			ctx.Abort()
			return
		}

		ctx.Set(ContextIdentityKey, Identity{
			UserID:         user.ID,
			Email:          user.Email,
			Name:           user.Name,
			Level:          user.Level,
			Track:          user.Track,
			Specialization: user.Specialization,
		})
		ctx.Next()
	}
}

// CurrentIdentity extracts the identity resolved by AuthRequired.
func CurrentIdentity(ctx *gin.Context) (Identity, bool) {
	value, exists := ctx.Get(ContextIdentityKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := value.(Identity)
	return id, ok
}

package auth

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/users"
)

const DemoUser = "demo-user"

// TokenVerifier is satisfied by *auth.Client from the Firebase Admin SDK.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserRegistry records owners before their projects are written.
type UserRegistry interface {
	EnsureUser(ctx context.Context, u users.Profile) (string, error)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg})
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "missing authorization token")
			return
		}

		decoded, err := v.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("id token rejected", "error", err)
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(CtxFirebaseUID, decoded.UID)
		if email, ok := decoded.Claims["email"].(string); ok {
			c.Set(CtxEmail, email)
		}
		c.Next()
	}
}

// DevUser trusts the X-User-Id header, falling back to DemoUser.
// Use this ONLY for development/testing.
func DevUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = DemoUser
		}
		c.Set(CtxFirebaseUID, uid)
		if email := strings.TrimSpace(c.GetHeader("X-User-Email")); email != "" {
			c.Set(CtxEmail, email)
		}
		c.Next()
	}
}

// WithUser upserts the authenticated owner. It must run after
// FirebaseAuthMiddleware or DevUser.
func WithUser(registry UserRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			abort(c, http.StatusUnauthorized, "unauthenticated")
			return
		}

		id, err := registry.EnsureUser(c.Request.Context(), users.Profile{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetHeader("X-User-Name"),
			PhotoURL:    c.GetHeader("X-User-Photo"),
		})
		if err != nil {
			logger.FromContext(c.Request.Context()).Error("ensure user failed", "firebase_uid", fuid, "error", err)
			abort(c, http.StatusInternalServerError, "ensure user failed")
			return
		}

		c.Set(CtxUserDBID, id)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

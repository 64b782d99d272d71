package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"ok":false,"error","kind"}. Internal errors are logged
// and their details are not returned.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	log := logger.FromContext(c.Request.Context())

	msg := "internal error"
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	switch {
	case status >= http.StatusInternalServerError && kind == domain.KindInternal:
		log.Error("request failed", "path", c.FullPath(), "error", err)
	case status >= http.StatusInternalServerError:
		log.Warn("upstream failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"ok": false, "error": msg, "kind": kind})
}

func badRequest(c *gin.Context, msg string) {
	respondError(c, domain.InvalidInput(msg))
}

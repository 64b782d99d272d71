package http

import "github.com/gin-gonic/gin"

// Register attaches project and history routes to an authenticated group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("/upload", h.upload)
	projects.POST("/figma", h.figma)
	projects.GET("", h.list)
	projects.PATCH("/:id", h.rename)
	projects.GET("/:id/icons", h.projectIcons)
	projects.POST("/:id/query", h.query)
	projects.GET("/:id/history", h.history)

	history := rg.Group("/history")
	history.GET("/:history_id/icons", h.historyIcons)
	history.GET("/:history_id/download", h.download)

	rg.GET("/icons/download", h.downloadIcon)
}

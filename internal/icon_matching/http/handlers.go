package http

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iconsmith/iconsmith-backend/internal/auth"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/service"
)

func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image is required")
		return
	}
	if fh.Size > h.maxUpload {
		badRequest(c, "image too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "unreadable image")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		badRequest(c, "unreadable image")
		return
	}
	if int64(len(data)) > h.maxUpload {
		badRequest(c, "image too large")
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		badRequest(c, "upload must be an image")
		return
	}

	opts := service.SubmitOptions{
		Name:         c.PostForm("name"),
		IconColorHex: c.PostForm("icon_color"),
		IconStyle:    c.PostForm("icon_style"),
	}
	img := domain.DesignImage{Data: data, ContentType: contentType}
	p, err := h.svc.SubmitImage(c.Request.Context(), auth.UserFirebaseUID(c), img, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

type figmaReq struct {
	ScreenLink string `json:"screen_link"`
	Name       string `json:"name"`
	IconColor  string `json:"icon_color"`
	IconStyle  string `json:"icon_style"`
}

func (h *Handler) figma(c *gin.Context) {
	var req figmaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	opts := service.SubmitOptions{Name: req.Name, IconColorHex: req.IconColor, IconStyle: req.IconStyle}
	p, err := h.svc.SubmitFigmaLink(c.Request.Context(), auth.UserFirebaseUID(c), req.ScreenLink, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListProjects(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []domain.ProjectSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

type renameReq struct {
	Name string `json:"name"`
}

func (h *Handler) rename(c *gin.Context) {
	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	p, err := h.svc.RenameProject(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), strings.TrimSpace(req.Name))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) projectIcons(c *gin.Context) {
	page, size, ok := pagination(c)
	if !ok {
		return
	}
	res, err := h.svc.ProjectIcons(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type queryReq struct {
	Query string `json:"query"`
}

func (h *Handler) query(c *gin.Context) {
	var req queryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	res, err := h.svc.Refine(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"path":        res.Path,
		"explanation": res.Explanation,
		"color":       res.Color,
		"project":     res.Project,
	})
}

func (h *Handler) history(c *gin.Context) {
	items, err := h.svc.ListHistory(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []domain.HistorySnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "history": items})
}

func (h *Handler) historyIcons(c *gin.Context) {
	page, size, ok := pagination(c)
	if !ok {
		return
	}
	res, err := h.svc.HistoryIcons(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("history_id"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) download(c *gin.Context) {
	page, size, ok := pagination(c)
	if !ok {
		return
	}
	historyID := c.Param("history_id")

	var buf bytes.Buffer
	if _, err := h.svc.DownloadHistoryIcons(c.Request.Context(), auth.UserFirebaseUID(c), historyID, page, size, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "icons-" + historyID + ".zip"}))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (h *Handler) downloadIcon(c *gin.Context) {
	data, name, err := h.svc.DownloadIcon(c.Request.Context(), c.Query("url"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// pagination reads page and page_size. Missing values fall back to the
// service defaults.
func pagination(c *gin.Context) (page, size int, ok bool) {
	page, size = 1, service.DefaultPageSize
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "invalid page")
			return 0, 0, false
		}
		page = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "invalid page_size")
			return 0, 0, false
		}
		size = n
	}
	return page, size, true
}

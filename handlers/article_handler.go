package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"article-api/helper"
	"article-api/metrics"
	"article-api/models"
	"article-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const imageField = "image"

type ArticleHandler struct {
	articleService services.ArticleService
	imageService   services.ImageService
	planner        *services.ListingPlanner
	recorder       metrics.Recorder
	maxImageBytes  int64
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(
	articleService services.ArticleService,
	imageService services.ImageService,
	planner *services.ListingPlanner,
	recorder metrics.Recorder,
	maxImageBytes int64,
	h *helper.HTTPHelper,
) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		imageService:   imageService,
		planner:        planner,
		recorder:       recorder,
		maxImageBytes:  maxImageBytes,
		Helper:         h,
	}
}

// CreateArticle accepts JSON or a multipart form with an optional image file.
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, &req) {
		return
	}

	image, err := h.uploadImage(c)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	req.Image = image

	article, err := h.articleService.CreateArticle(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "create", err)
		return
	}

	h.recorder.RecordArticleOp("create", "ok")
	c.JSON(http.StatusCreated, article)
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, err.Error())
		return
	}

	page, limit, err := h.planner.ParsePaging(params.Page, params.Limit)
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	result, err := h.articleService.GetArticles(c.Request.Context(), models.ArticleFilter{Name: params.Name}, params.SortBy, page, limit)
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	h.recorder.RecordArticleOp("list", "ok")
	c.JSON(http.StatusOK, result)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	article, err := h.articleService.GetArticle(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get", err)
		return
	}

	h.recorder.RecordArticleOp("get", "ok")
	c.JSON(http.StatusOK, article)
}

// UpdateArticle applies a partial update. Absent fields keep their stored value.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	var req models.UpdateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, &req) {
		return
	}

	patch := models.ArticlePatch{Name: req.Name, Content: req.Content}

	// No file is written for an article that does not exist.
	if isMultipart(c) {
		if _, err := h.articleService.GetArticle(c.Request.Context(), id); err != nil {
			h.fail(c, "update", err)
			return
		}
	}

	image, err := h.uploadImage(c)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	if image != "" {
		patch.Image = &image
	}

	article, err := h.articleService.UpdateArticle(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, "update", err)
		return
	}

	h.recorder.RecordArticleOp("update", "ok")
	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	if _, err := h.articleService.DeleteArticle(c.Request.Context(), id); err != nil {
		h.fail(c, "delete", err)
		return
	}

	h.recorder.RecordArticleOp("delete", "ok")
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) articleID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID")
		return "", false
	}
	return id.String(), true
}

// uploadImage stores the multipart image file when one is present and returns its URL.
func (h *ArticleHandler) uploadImage(c *gin.Context) (string, error) {
	if !isMultipart(c) {
		return "", nil
	}

	file, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", models.NewInvalidArgument("invalid image upload: %v", err)
	}
	if file.Size > h.maxImageBytes {
		return "", models.NewInvalidArgument("image exceeds %d bytes", h.maxImageBytes)
	}

	f, err := file.Open()
	if err != nil {
		return "", models.NewInvalidArgument("invalid image upload: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		return "", models.NewInvalidArgument("invalid image upload: %v", err)
	}

	return h.imageService.Upload(c.Request.Context(), data)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func (h *ArticleHandler) fail(c *gin.Context, op string, err error) {
	h.recorder.RecordArticleOp(op, outcome(h.Helper.GetStatusCode(err)))
	h.Helper.SendError(c, err)
}

func outcome(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "upstream_failure"
	}
}

package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/domains/aksara/service"
	"aksara-bali-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const modelFileField = "model_file"

// multipartOverhead - phần form ngoài file (các field text, boundary)
const multipartOverhead = 1 << 20

// Handler - HTTP handler cho /api/aksara
type Handler struct {
	service        service.ServiceInterface
	maxUploadBytes int64
	exposeErrors   bool
}

// NewHandler - exposeErrors = true (development) thì lỗi 500 kèm nguyên nhân
func NewHandler(svc service.ServiceInterface, maxUploadBytes int64, exposeErrors bool) *Handler {
	return &Handler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		exposeErrors:   exposeErrors,
	}
}

// ListAksara - GET /api/aksara?page=&limit=&kategori=
func (h *Handler) ListAksara(c *gin.Context) {
	page := model.ParsePage(c.Query("page"))
	limit := model.ParseLimit(c.Query("limit"))

	result, err := h.service.List(c.Request.Context(), page, limit, c.Query("kategori"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithPagination(c, "Aksara retrieved successfully", result.Items, result.Pagination)
}

// SearchAksara - GET /api/aksara/search?q=&page=&limit=&kategori=
func (h *Handler) SearchAksara(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	page := model.ParsePage(c.Query("page"))
	limit := model.ParseLimit(c.Query("limit"))

	result, err := h.service.Search(c.Request.Context(), query, page, limit, c.Query("kategori"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	msg := fmt.Sprintf("Found %d results", result.Pagination.Total)
	response.SearchResult(c, msg, query, result.Items, result.Pagination)
}

// GetAksara - GET /api/aksara/:id
func (h *Handler) GetAksara(c *gin.Context) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Aksara retrieved successfully", a)
}

// CreateAksara - POST /api/aksara (multipart, file model_file tuỳ chọn)
func (h *Handler) CreateAksara(c *gin.Context) {
	h.limitBody(c)

	var req model.AksaraRequest
	if err := c.ShouldBind(&req); err != nil {
		h.handleBindError(c, err)
		return
	}

	upload, closeFn, err := h.readUpload(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer closeFn()

	result, err := h.service.Create(c.Request.Context(), req, upload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	msg := "Aksara created successfully"
	if result.HasModel {
		msg += " with 3D model"
	}
	response.Success(c, http.StatusCreated, msg, result)
}

// UpdateAksara - PUT /api/aksara/:id (JSON, đủ field)
func (h *Handler) UpdateAksara(c *gin.Context) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	var req model.AksaraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, err)
		return
	}

	result, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Aksara updated successfully", result)
}

// DeleteAksara - DELETE /api/aksara/:id
func (h *Handler) DeleteAksara(c *gin.Context) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Aksara deleted successfully", result)
}

// ============================================
// UPLOAD HELPERS
// ============================================

func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
}

func (h *Handler) handleBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.handleError(c, model.ErrModelTooLarge)
		return
	}
	log.Debug().Err(err).Msg("Invalid request body")
	response.Error(c, http.StatusBadRequest, "Invalid request data", nil)
}

// readUpload trả về nil upload khi request không có file model_file
func (h *Handler) readUpload(c *gin.Context) (*service.ModelUpload, func(), error) {
	noop := func() {}

	header, err := c.FormFile(modelFileField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, noop, model.ErrModelTooLarge
		}
		// http.ErrMissingFile, http.ErrNotMultipart, ...
		return nil, noop, nil
	}
	if header.Size > h.maxUploadBytes {
		return nil, noop, model.ErrModelTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, model.NewStorageError("Upload model file", err)
	}
	return &service.ModelUpload{Body: file, Size: header.Size}, closer(file), nil
}

func closer(f multipart.File) func() {
	return func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close uploaded file")
		}
	}
}

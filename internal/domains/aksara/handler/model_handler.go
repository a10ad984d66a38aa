package handler

import (
	"fmt"
	"net/http"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// UploadModel - POST /api/aksara/:id/model, ghi đè <nama>.obj
func (h *Handler) UploadModel(c *gin.Context) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.limitBody(c)
	upload, closeFn, err := h.readUpload(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer closeFn()

	result, err := h.service.AttachModel(c.Request.Context(), id, upload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "3D model uploaded successfully", result)
}

// DownloadModel - GET /api/aksara/:id/model
func (h *Handler) DownloadModel(c *gin.Context) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	rc, key, err := h.service.OpenModel(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to close model file")
		}
	}()

	c.DataFromReader(http.StatusOK, -1, "text/plain; charset=utf-8", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", key),
	})
}

// ReconcileModels - GET /api/models/reconcile, chỉ báo cáo, không xoá
func (h *Handler) ReconcileModels(c *gin.Context) {
	report, err := h.service.Reconcile(c.Request.Context(), false)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Model reconciliation report", report)
}

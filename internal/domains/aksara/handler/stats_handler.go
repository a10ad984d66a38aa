package handler

import (
	"net/http"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// GetCategories - GET /api/categories
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// GetCategoryStats - GET /api/categories/stats
func (h *Handler) GetCategoryStats(c *gin.Context) {
	counts, err := h.service.CategoryStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Category statistics retrieved successfully", counts)
}

// GetStats - GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

// GetRandom - GET /api/random?count= (1..20, mặc định 5)
func (h *Handler) GetRandom(c *gin.Context) {
	count := model.ParseRandomCount(c.Query("count"))

	items, err := h.service.Random(c.Request.Context(), count)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Random aksara retrieved successfully", items)
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response - envelope chung cho mọi endpoint
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`

	SearchQuery string `json:"searchQuery,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithPagination(c *gin.Context, message string, data interface{}, pagination interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

func SearchResult(c *gin.Context, message, query string, data interface{}, pagination interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:     true,
		Message:     message,
		Data:        data,
		Pagination:  pagination,
		SearchQuery: query,
	})
}

// Error responses
func Error(c *gin.Context, statusCode int, message string, errs interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message, nil)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message, nil)
}

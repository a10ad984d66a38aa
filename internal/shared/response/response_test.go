package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccess_OmitsEmptyFields(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Success(c, http.StatusCreated, "Aksara created successfully", gin.H{"id": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Aksara created successfully", body["message"])
	assert.NotContains(t, body, "pagination")
	assert.NotContains(t, body, "errors")
}

func TestSuccessWithPagination_KeepsEmptyData(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SuccessWithPagination(c, "ok", []int{}, gin.H{"page": 3})

	body := decode(t, rec)
	assert.Equal(t, []interface{}{}, body["data"])
	assert.Contains(t, body, "pagination")
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, http.StatusBadRequest, "Validation failed", map[string]string{"nama": "is required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]interface{}{"nama": "is required"}, body["errors"])
	assert.NotContains(t, body, "data")
}

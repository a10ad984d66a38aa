package handler

import (
	"errors"
	"fmt"
	"net/http"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var errorMessages = map[error]string{
	model.ErrAksaraNotFound: "Aksara not found",
	model.ErrAlreadyDeleted: "Aksara not found or already deleted",
	model.ErrModelNotFound:  "3D model not found",
	model.ErrNoModelFile:    "No model file uploaded",
	model.ErrDuplicateName:  "Aksara with this name already exists",
	model.ErrModelKeyTaken:  "Aksara name conflicts with the model file of another aksara",
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := model.ToHTTPStatus(err)

	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		var fields interface{}
		if len(vErr.Fields) > 0 {
			fields = vErr.Fields
		}
		response.Error(c, status, vErr.Message, fields)
		return
	}

	if errors.Is(err, model.ErrModelTooLarge) {
		response.Error(c, status, fmt.Sprintf("Model file exceeds the upload limit of %d bytes", h.maxUploadBytes), nil)
		return
	}

	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			response.Error(c, status, msg, nil)
			return
		}
	}

	// Lỗi không xác định
	_ = c.Error(err)
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")

	op := "Request"
	var sErr *model.StorageError
	if errors.As(err, &sErr) {
		op = sErr.Op
	}

	msg := op + " failed"
	if h.exposeErrors {
		cause := err
		if sErr != nil && sErr.Err != nil {
			cause = sErr.Err
		}
		msg += ": " + cause.Error()
	}
	response.Error(c, http.StatusInternalServerError, msg, nil)
}

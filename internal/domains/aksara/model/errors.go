package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAksaraNotFound = errors.New("aksara not found")
	ErrAlreadyDeleted = errors.New("aksara not found or already deleted")
	ErrDuplicateName  = errors.New("aksara name already exists")
	ErrModelKeyTaken  = errors.New("aksara name maps to another entry's model file") // "Ka" và "Ka." cùng Ka.obj
	ErrModelNotFound  = errors.New("3D model not found")
	ErrNoModelFile    = errors.New("no model file uploaded")
	ErrModelTooLarge  = errors.New("model file too large")
)

// ValidationError - input sai (thiếu field, id sai format, query quá ngắn)
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// StorageError bọc lỗi DB hoặc File Store. Op là tên thao tác hiển thị cho client.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// ToHTTPStatus map error -> HTTP status
func ToHTTPStatus(err error) int {
	var vErr *ValidationError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoModelFile), errors.Is(err, ErrModelTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, ErrAksaraNotFound), errors.Is(err, ErrAlreadyDeleted), errors.Is(err, ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrModelKeyTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

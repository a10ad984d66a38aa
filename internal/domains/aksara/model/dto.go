package model

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"aksara-bali-backend/internal/infrastructure/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	DefaultRandomCount = 5
	MaxRandomCount     = 20

	MinSearchLength = 2
)

// AksaraRequest - body cho POST /api/aksara (form hoặc JSON) và PUT /api/aksara/:id (JSON)
type AksaraRequest struct {
	Name             string `form:"nama" json:"nama"`
	Character        string `form:"aksara_bali" json:"aksara_bali"`
	Category         string `form:"kategori" json:"kategori"`
	Latin            string `form:"latin" json:"latin"`
	UnicodeCodepoint string `form:"unicode_aksara" json:"unicode_aksara"`
	UsageExample     string `form:"contoh_penggunaan" json:"contoh_penggunaan"`
	Description      string `form:"deskripsi" json:"deskripsi"`
}

// Normalize trim khoảng trắng hai đầu của mọi field
func (r *AksaraRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Character = strings.TrimSpace(r.Character)
	r.Category = strings.TrimSpace(r.Category)
	r.Latin = strings.TrimSpace(r.Latin)
	r.UnicodeCodepoint = strings.TrimSpace(r.UnicodeCodepoint)
	r.UsageExample = strings.TrimSpace(r.UsageExample)
	r.Description = strings.TrimSpace(r.Description)
}

// Validate trả về *ValidationError. Thiếu field bắt buộc được báo trước,
// theo thứ tự nama, aksara_bali, kategori, latin.
func (r AksaraRequest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"nama", r.Name},
		{"aksara_bali", r.Character},
		{"kategori", r.Category},
		{"latin", r.Latin},
	}

	var missing []string
	for _, f := range required {
		if err := validation.Validate(f.value, validation.Required); err != nil {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Fields:  fieldErrors(missing, "is required"),
		}
	}

	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.RuneLength(1, 100).Error("must be at most 100 characters"),
			validation.By(usableModelName),
		),
		validation.Field(&r.Character, validation.RuneLength(1, 10).Error("must be at most 10 characters")),
		validation.Field(&r.Category, validation.RuneLength(1, 50).Error("must be at most 50 characters")),
		validation.Field(&r.Latin, validation.RuneLength(1, 50).Error("must be at most 50 characters")),
		validation.Field(&r.UnicodeCodepoint, validation.RuneLength(0, 20).Error("must be at most 20 characters")),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make(map[string]string, len(errs))
	for name, fieldErr := range errs {
		fields[name] = fieldErr.Error()
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

// usableModelName - tên phải còn lại ký tự sau khi sanitize thành key <nama>.obj
func usableModelName(value interface{}) error {
	name, _ := value.(string)
	if storage.ModelKey(name) == "" {
		return errors.New("must contain characters usable in a model file name")
	}
	return nil
}

func fieldErrors(names []string, msg string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = msg
	}
	return out
}

// ToAksara - optional text rỗng được lưu NULL
func (r AksaraRequest) ToAksara() *Aksara {
	return &Aksara{
		Name:             r.Name,
		Character:        r.Character,
		Category:         r.Category,
		Latin:            r.Latin,
		UnicodeCodepoint: r.UnicodeCodepoint,
		UsageExample:     optionalText(r.UsageExample),
		Description:      optionalText(r.Description),
	}
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ============================================
// PAGINATION
// ============================================

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ParsePage: thiếu, sai format hoặc < 1 -> 1
func ParsePage(raw string) int {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || p < 1 {
		return DefaultPage
	}
	if p > math.MaxInt32 {
		return math.MaxInt32
	}
	return p
}

// ParseLimit: thiếu, sai format hoặc < 1 -> 20; > 100 -> 100
func ParseLimit(raw string) int {
	l, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || l < 1 {
		return DefaultLimit
	}
	if l > MaxLimit {
		return MaxLimit
	}
	return l
}

// ParseRandomCount: mặc định 5, kẹp trong 1..20
func ParseRandomCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultRandomCount
	}
	if n < 1 {
		return 1
	}
	if n > MaxRandomCount {
		return MaxRandomCount
	}
	return n
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}

// ParseID - id phải là số nguyên dương
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, NewValidationError("Invalid ID format")
	}
	return id, nil
}

// ============================================
// RESULTS
// ============================================

type ListResult struct {
	Items      []Aksara
	Pagination Pagination
}

const (
	ActionRename   = "rename"
	ActionDelete   = "delete"
	ActionRollback = "rollback"
	ActionPrune    = "prune"

	SideEffectOK      = "ok"
	SideEffectSkipped = "skipped"
	SideEffectFailed  = "failed"
)

// SideEffect - kết quả của một thao tác File Store best-effort.
// Thao tác chính (DB) đã thành công dù Status là failed.
type SideEffect struct {
	Action string `json:"action"`
	Status string `json:"status"`
	From   string `json:"from,omitempty"`
	Key    string `json:"key,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s SideEffect) Failed() bool {
	return s.Status == SideEffectFailed
}

type CreateResult struct {
	ID       int64 `json:"id"`
	HasModel bool  `json:"has_model"`
}

type UpdateResult struct {
	AffectedRows int64      `json:"affectedRows"`
	ModelFile    SideEffect `json:"model_file"`
}

type AttachResult struct {
	File string `json:"file"`
}

type DeleteResult struct {
	ModelFile SideEffect `json:"model_file"`
}

// ReconcileReport - diff giữa File Store và tên trong DB
type ReconcileReport struct {
	StoreFiles          int          `json:"storeFiles"`
	Entries             int          `json:"entries"`
	EntriesWithModel    int          `json:"entriesWithModel"`
	EntriesWithoutModel int          `json:"entriesWithoutModel"`
	OrphanFiles         []string     `json:"orphanFiles"`
	Pruned              bool         `json:"pruned"`
	PruneResults        []SideEffect `json:"pruneResults,omitempty"`
}

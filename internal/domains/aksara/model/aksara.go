package model

import "time"

// Aksara - một dòng trong bảng aksara_bali
type Aksara struct {
	ID               int64     `json:"id"`
	Name             string    `json:"nama"`
	Character        string    `json:"aksara_bali"`
	Category         string    `json:"kategori"`
	Latin            string    `json:"latin"`
	UnicodeCodepoint string    `json:"unicode_aksara"`
	UsageExample     *string   `json:"contoh_penggunaan"`
	Description      *string   `json:"deskripsi"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// HasModel không lưu trong DB, tính lúc đọc từ File Store
	HasModel bool `json:"has_model"`
}

// ListFilter - filter cho list/search query
type ListFilter struct {
	Query    string // chỉ dùng cho search
	Category string
	Limit    int
	Offset   int
}

type CategoryCount struct {
	Category string `json:"kategori"`
	Count    int    `json:"count"`
}

type LatestEntry struct {
	Name      string    `json:"nama"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats - GET /api/stats
type Stats struct {
	Total            int             `json:"total"`
	ByCategory       []CategoryCount `json:"byCategory"`
	Categories       int             `json:"categories"`
	ModelsCount      int             `json:"modelsCount"`
	RecentAdditions  int             `json:"recentAdditions"`
	RecentWindowDays int             `json:"recentWindowDays"`
	LatestEntry      *LatestEntry    `json:"latestEntry"`
}

// DatabaseInfo - GET /api/db-test
type DatabaseInfo struct {
	Driver  string         `json:"driver"`
	Version string         `json:"version"`
	Tables  []string       `json:"tables"`
	Columns []ColumnSchema `json:"aksaraTableSchema"`
}

type ColumnSchema struct {
	Name     string  `json:"column_name"`
	DataType string  `json:"data_type"`
	Nullable string  `json:"is_nullable"`
	Default  *string `json:"column_default"`
}

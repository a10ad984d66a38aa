package repository

import (
	"context"
	"time"

	"aksara-bali-backend/internal/domains/aksara/model"
)

// Repository - data access cho bảng aksara_bali.
// Mỗi method là một câu SQL đơn, không có transaction nhiều bước.
type Repository interface {
	List(ctx context.Context, filter model.ListFilter) ([]model.Aksara, int, error)
	Search(ctx context.Context, filter model.ListFilter) ([]model.Aksara, int, error)
	FindByID(ctx context.Context, id int64) (*model.Aksara, error)
	// ExistsByName kiểm tra tên đã dùng bởi entry khác (excludeID = 0 khi tạo mới)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	// ExistsByModelKey - key là storage.ModelKey(nama); key rỗng luôn trả false
	ExistsByModelKey(ctx context.Context, key string, excludeID int64) (bool, error)
	Create(ctx context.Context, a *model.Aksara) (int64, error)
	Update(ctx context.Context, id int64, a *model.Aksara) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)

	Categories(ctx context.Context) ([]string, error)
	CategoryCounts(ctx context.Context) ([]model.CategoryCount, error)
	Count(ctx context.Context) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	Latest(ctx context.Context) (*model.LatestEntry, error)
	Random(ctx context.Context, n int) ([]model.Aksara, error)
	Names(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Info(ctx context.Context) (*model.DatabaseInfo, error)
}

package service

import (
	"context"
	"io"

	"aksara-bali-backend/internal/domains/aksara/model"
)

// ServiceInterface - business logic cho aksara và file model 3D
type ServiceInterface interface {
	List(ctx context.Context, page, limit int, category string) (*model.ListResult, error)
	Search(ctx context.Context, query string, page, limit int, category string) (*model.ListResult, error)
	Get(ctx context.Context, id int64) (*model.Aksara, error)
	Create(ctx context.Context, req model.AksaraRequest, upload *ModelUpload) (*model.CreateResult, error)
	Update(ctx context.Context, id int64, req model.AksaraRequest) (*model.UpdateResult, error)
	Delete(ctx context.Context, id int64) (*model.DeleteResult, error)

	AttachModel(ctx context.Context, id int64, upload *ModelUpload) (*model.AttachResult, error)
	OpenModel(ctx context.Context, id int64) (io.ReadCloser, string, error)
	Reconcile(ctx context.Context, prune bool) (*model.ReconcileReport, error)

	Categories(ctx context.Context) ([]string, error)
	CategoryStats(ctx context.Context) ([]model.CategoryCount, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Random(ctx context.Context, count int) ([]model.Aksara, error)

	Ping(ctx context.Context) error
	DatabaseInfo(ctx context.Context) (*model.DatabaseInfo, error)
}

// ModelUpload - file .obj nhận từ multipart form
type ModelUpload struct {
	Body io.Reader
	Size int64
}

// SideEffectRecorder đếm các side effect thất bại (Prometheus)
type SideEffectRecorder interface {
	RecordSideEffectFailure(action string)
	RecordModelUpload(ok bool)
	RecordReconcile(orphans int, err error)
}

// ReconcileEnqueuer xếp task reconcile khi File Store lệch với DB
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, reason string) error
}

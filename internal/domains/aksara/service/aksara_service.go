package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/domains/aksara/repository"
	"aksara-bali-backend/internal/infrastructure/storage"

	"github.com/rs/zerolog/log"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	repo       repository.Repository
	store      storage.ModelStore
	recorder   SideEffectRecorder
	reconciler ReconcileEnqueuer
	recentDays int
	now        func() time.Time
}

// NewService - recorder và reconciler có thể nil
func NewService(
	repo repository.Repository,
	store storage.ModelStore,
	recorder SideEffectRecorder,
	reconciler ReconcileEnqueuer,
	recentDays int,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if recentDays <= 0 {
		recentDays = 30
	}
	return &Service{
		repo:       repo,
		store:      store,
		recorder:   recorder,
		reconciler: reconciler,
		recentDays: recentDays,
		now:        time.Now,
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordSideEffectFailure(string) {}
func (nopRecorder) RecordModelUpload(bool)         {}
func (nopRecorder) RecordReconcile(int, error)     {}

// wrap giữ nguyên lỗi nghiệp vụ, còn lại bọc thành StorageError
func wrap(op string, err error) error {
	var vErr *model.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &vErr),
		errors.Is(err, model.ErrAksaraNotFound),
		errors.Is(err, model.ErrAlreadyDeleted),
		errors.Is(err, model.ErrDuplicateName),
		errors.Is(err, model.ErrModelKeyTaken),
		errors.Is(err, model.ErrModelNotFound),
		errors.Is(err, model.ErrNoModelFile):
		return err
	}
	return model.NewStorageError(op, err)
}

// ============================================
// READ
// ============================================

func (s *Service) List(ctx context.Context, page, limit int, category string) (*model.ListResult, error) {
	items, total, err := s.repo.List(ctx, model.ListFilter{
		Category: category,
		Limit:    limit,
		Offset:   model.Offset(page, limit),
	})
	if err != nil {
		return nil, wrap("Fetch aksara", err)
	}

	s.annotate(ctx, items)
	return &model.ListResult{
		Items:      items,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

func (s *Service) Search(ctx context.Context, query string, page, limit int, category string) (*model.ListResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < model.MinSearchLength {
		return nil, model.NewValidationError("Search query must be at least 2 characters")
	}

	items, total, err := s.repo.Search(ctx, model.ListFilter{
		Query:    query,
		Category: category,
		Limit:    limit,
		Offset:   model.Offset(page, limit),
	})
	if err != nil {
		return nil, wrap("Search", err)
	}

	s.annotate(ctx, items)
	return &model.ListResult{
		Items:      items,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Aksara, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap("Fetch aksara", err)
	}
	a.HasModel = s.hasModel(ctx, a.Name)
	return a, nil
}

// ============================================
// WRITE
// ============================================

// Create ghi file (nếu có) trước rồi mới insert; insert lỗi thì xoá file vừa ghi.
func (s *Service) Create(ctx context.Context, req model.AksaraRequest, upload *ModelUpload) (*model.CreateResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, req.Name, 0); err != nil {
		return nil, wrap("Create aksara", err)
	}

	var key string
	if upload != nil {
		key = storage.ModelKey(req.Name)
		if err := s.store.Save(ctx, key, upload.Body, upload.Size); err != nil {
			s.recorder.RecordModelUpload(false)
			log.Error().Err(err).Str("key", key).Msg("Model upload failed")
			return nil, model.NewStorageError("Upload model file", err)
		}
		s.recorder.RecordModelUpload(true)
	}

	id, err := s.repo.Create(ctx, req.ToAksara())
	if err != nil {
		if key != "" {
			s.rollbackModel(ctx, key)
		}
		return nil, wrap("Create aksara", err)
	}

	log.Info().Int64("aksara_id", id).Str("nama", req.Name).Bool("has_model", key != "").Msg("Aksara created")
	return &model.CreateResult{ID: id, HasModel: key != ""}, nil
}

// ensureUnique - nama và key file model (sau sanitize) đều không được trùng entry khác.
// Constraint trong DB vẫn bắt trường hợp race giữa hai request.
func (s *Service) ensureUnique(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrDuplicateName
	}

	taken, err = s.repo.ExistsByModelKey(ctx, storage.ModelKey(name), excludeID)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrModelKeyTaken
	}
	return nil
}

// Update thay toàn bộ field; đổi nama thì đổi tên file model theo (best-effort).
func (s *Service) Update(ctx context.Context, id int64, req model.AksaraRequest) (*model.UpdateResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap("Update aksara", err)
	}

	if err := s.ensureUnique(ctx, req.Name, id); err != nil {
		return nil, wrap("Update aksara", err)
	}

	affected, err := s.repo.Update(ctx, id, req.ToAksara())
	if err != nil {
		return nil, wrap("Update aksara", err)
	}

	result := &model.UpdateResult{AffectedRows: affected}
	if affected == 0 {
		result.ModelFile = model.SideEffect{Action: model.ActionRename, Status: model.SideEffectSkipped}
		return result, nil
	}

	result.ModelFile = s.observe(ctx, id, s.renameModel(ctx, existing.Name, req.Name), true)
	return result, nil
}

// Delete xoá row trước; file model xoá sau, lỗi file không làm request thất bại.
func (s *Service) Delete(ctx context.Context, id int64) (*model.DeleteResult, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap("Delete aksara", err)
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, wrap("Delete aksara", err)
	}
	if affected == 0 {
		return nil, model.ErrAlreadyDeleted
	}

	log.Info().Int64("aksara_id", id).Str("nama", existing.Name).Msg("Aksara deleted")
	return &model.DeleteResult{
		ModelFile: s.observe(ctx, id, s.deleteModel(ctx, existing.Name), true),
	}, nil
}

// ============================================
// AGGREGATES
// ============================================

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, wrap("Fetch categories", err)
	}
	return categories, nil
}

func (s *Service) CategoryStats(ctx context.Context) ([]model.CategoryCount, error) {
	counts, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, wrap("Fetch category statistics", err)
	}
	return counts, nil
}

func (s *Service) Random(ctx context.Context, count int) ([]model.Aksara, error) {
	if count < 1 {
		count = 1
	}
	if count > model.MaxRandomCount {
		count = model.MaxRandomCount
	}

	items, err := s.repo.Random(ctx, count)
	if err != nil {
		return nil, wrap("Fetch random aksara", err)
	}
	s.annotate(ctx, items)
	return items, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) DatabaseInfo(ctx context.Context) (*model.DatabaseInfo, error) {
	info, err := s.repo.Info(ctx)
	if err != nil {
		return nil, wrap("Database test", err)
	}
	return info, nil
}

package service

import (
	"context"
	"errors"
	"io"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/infrastructure/storage"

	"github.com/rs/zerolog/log"
)

func (s *Service) hasModel(ctx context.Context, name string) bool {
	key := storage.ModelKey(name)
	if key == "" {
		return false
	}
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Model existence check failed")
		return false
	}
	return ok
}

// annotate - một lần Exists cho mỗi row
func (s *Service) annotate(ctx context.Context, items []model.Aksara) {
	for i := range items {
		items[i].HasModel = s.hasModel(ctx, items[i].Name)
	}
}

func failed(se model.SideEffect, msg string, err error) model.SideEffect {
	log.Warn().Err(err).Str("action", se.Action).Str("key", se.Key).Msg(msg)
	se.Status = model.SideEffectFailed
	se.Error = msg
	return se
}

func (s *Service) renameModel(ctx context.Context, oldName, newName string) model.SideEffect {
	from, to := storage.ModelKey(oldName), storage.ModelKey(newName)
	se := model.SideEffect{Action: model.ActionRename, From: from, Key: to, Status: model.SideEffectSkipped}

	if from == "" || from == to {
		return se
	}

	exists, err := s.store.Exists(ctx, from)
	if err != nil {
		return failed(se, "model file could not be checked", err)
	}
	if !exists {
		return se
	}
	if to == "" {
		return failed(se, "new name cannot be used as a model file name", nil)
	}

	// file mồ côi trùng key mới sẽ bị ghi đè; báo lại trong kết quả
	replaced, err := s.store.Exists(ctx, to)
	if err != nil {
		return failed(se, "model file could not be checked", err)
	}

	if err := s.store.Rename(ctx, from, to); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return se
		}
		return failed(se, "model file could not be renamed", err)
	}

	se.Status = model.SideEffectOK
	if replaced {
		se.Error = "replaced existing model file"
		log.Warn().Str("from", from).Str("key", to).Msg("Model rename replaced an existing file")
	}
	return se
}

func (s *Service) deleteModel(ctx context.Context, name string) model.SideEffect {
	key := storage.ModelKey(name)
	se := model.SideEffect{Action: model.ActionDelete, Key: key, Status: model.SideEffectSkipped}
	if key == "" {
		return se
	}

	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return se
		}
		return failed(se, "model file could not be deleted", err)
	}

	se.Status = model.SideEffectOK
	return se
}

// rollbackModel xoá file đã ghi khi insert thất bại
func (s *Service) rollbackModel(ctx context.Context, key string) model.SideEffect {
	se := model.SideEffect{Action: model.ActionRollback, Key: key, Status: model.SideEffectOK}
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		se = failed(se, "uploaded model file could not be removed", err)
	}
	return s.observe(ctx, 0, se, true)
}

// observe - side effect thất bại được đếm, và (nếu có queue) xếp một reconcile
func (s *Service) observe(ctx context.Context, id int64, se model.SideEffect, enqueue bool) model.SideEffect {
	if !se.Failed() {
		return se
	}

	log.Warn().
		Int64("aksara_id", id).
		Str("action", se.Action).
		Str("key", se.Key).
		Str("error", se.Error).
		Msg("Model file side effect failed; stores may be out of sync")
	s.recorder.RecordSideEffectFailure(se.Action)

	if enqueue && s.reconciler != nil {
		if err := s.reconciler.EnqueueReconcile(context.WithoutCancel(ctx), se.Action+" failed"); err != nil {
			log.Error().Err(err).Msg("Failed to enqueue reconcile task")
		}
	}
	return se
}

// ============================================
// ATTACH / DOWNLOAD
// ============================================

// AttachModel ghi đè <nama>.obj của entry
func (s *Service) AttachModel(ctx context.Context, id int64, upload *ModelUpload) (*model.AttachResult, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap("Upload model file", err)
	}
	if upload == nil {
		return nil, model.ErrNoModelFile
	}

	key := storage.ModelKey(a.Name)
	if key == "" {
		return nil, model.NewValidationError("Aksara name cannot be used as a model file name")
	}

	if err := s.store.Save(ctx, key, upload.Body, upload.Size); err != nil {
		s.recorder.RecordModelUpload(false)
		return nil, model.NewStorageError("Upload model file", err)
	}
	s.recorder.RecordModelUpload(true)

	log.Info().Int64("aksara_id", id).Str("key", key).Msg("Model file attached")
	return &model.AttachResult{File: key}, nil
}

// OpenModel - caller phải Close reader
func (s *Service) OpenModel(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", wrap("Read model file", err)
	}

	key := storage.ModelKey(a.Name)
	if key == "" {
		return nil, "", model.ErrModelNotFound
	}

	rc, err := s.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", model.ErrModelNotFound
		}
		return nil, "", model.NewStorageError("Read model file", err)
	}
	return rc, key, nil
}

// ============================================
// RECONCILE
// ============================================

// Reconcile so sánh File Store với tên entry. prune = true thì xoá file mồ côi.
func (s *Service) Reconcile(ctx context.Context, prune bool) (*model.ReconcileReport, error) {
	report, err := s.reconcile(ctx, prune)
	if err != nil {
		s.recorder.RecordReconcile(0, err)
		return nil, wrap("Reconcile models", err)
	}

	remaining := len(report.OrphanFiles)
	for _, se := range report.PruneResults {
		if se.Status == model.SideEffectOK {
			remaining--
		}
	}
	s.recorder.RecordReconcile(remaining, nil)

	log.Info().
		Int("store_files", report.StoreFiles).
		Int("entries", report.Entries).
		Int("orphans", len(report.OrphanFiles)).
		Bool("prune", prune).
		Msg("Model reconcile finished")
	return report, nil
}

func (s *Service) reconcile(ctx context.Context, prune bool) (*model.ReconcileReport, error) {
	names, err := s.repo.Names(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		present[k] = struct{}{}
	}

	expected := make(map[string]struct{}, len(names))
	report := &model.ReconcileReport{
		StoreFiles:  len(keys),
		Entries:     len(names),
		OrphanFiles: make([]string, 0),
		Pruned:      prune,
	}

	for _, n := range names {
		key := storage.ModelKey(n)
		if key != "" {
			expected[key] = struct{}{}
		}
		if _, ok := present[key]; ok && key != "" {
			report.EntriesWithModel++
		} else {
			report.EntriesWithoutModel++
		}
	}

	for _, k := range keys {
		if _, ok := expected[k]; !ok {
			report.OrphanFiles = append(report.OrphanFiles, k)
		}
	}

	if !prune {
		return report, nil
	}

	for _, k := range report.OrphanFiles {
		se := model.SideEffect{Action: model.ActionPrune, Key: k, Status: model.SideEffectOK}
		if err := s.store.Delete(ctx, k); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			se = failed(se, "orphan model file could not be deleted", err)
		}
		report.PruneResults = append(report.PruneResults, s.observe(ctx, 0, se, false))
	}
	return report, nil
}

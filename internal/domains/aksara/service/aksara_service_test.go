package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/domains/aksara/repository"
	"aksara-bali-backend/internal/infrastructure/storage"
)

// ---- test doubles ----

type flakyStore struct {
	storage.ModelStore
	renameErr error
	deleteErr error
	saveErr   error
	existsErr error
}

func (f *flakyStore) Rename(ctx context.Context, from, to string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.ModelStore.Rename(ctx, from, to)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.ModelStore.Delete(ctx, key)
}

func (f *flakyStore) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.ModelStore.Save(ctx, key, r, size)
}

func (f *flakyStore) Exists(ctx context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.ModelStore.Exists(ctx, key)
}

type failingCreateRepo struct {
	repository.Repository
	err error
}

func (r *failingCreateRepo) Create(ctx context.Context, a *model.Aksara) (int64, error) {
	return 0, r.err
}

type recorder struct {
	failures  map[string]int
	uploads   []bool
	reconcile []int
}

func newRecorder() *recorder {
	return &recorder{failures: map[string]int{}}
}

func (r *recorder) RecordSideEffectFailure(action string) { r.failures[action]++ }
func (r *recorder) RecordModelUpload(ok bool)             { r.uploads = append(r.uploads, ok) }
func (r *recorder) RecordReconcile(orphans int, err error) {
	r.reconcile = append(r.reconcile, orphans)
}

type enqueuer struct {
	reasons []string
}

func (e *enqueuer) EnqueueReconcile(ctx context.Context, reason string) error {
	e.reasons = append(e.reasons, reason)
	return nil
}

type fixture struct {
	svc   *Service
	repo  repository.Repository
	store *flakyStore
	rec   *recorder
	queue *enqueuer
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	local, err := storage.NewLocalModelStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		store: &flakyStore{ModelStore: local},
		rec:   newRecorder(),
		queue: &enqueuer{},
		clock: time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC),
	}
	f.repo = repository.NewMemoryRepositoryWithClock(func() time.Time { return f.clock })
	f.svc = NewService(f.repo, f.store, f.rec, f.queue, 30)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func validRequest(name string) model.AksaraRequest {
	return model.AksaraRequest{
		Name:      name,
		Character: "ᬓ",
		Category:  "Aksara Wianjana",
		Latin:     "ka",
	}
}

func upload(body string) *ModelUpload {
	return &ModelUpload{Body: strings.NewReader(body), Size: int64(len(body))}
}

func (f *fixture) create(t *testing.T, name string, file *ModelUpload) int64 {
	t.Helper()
	res, err := f.svc.Create(context.Background(), validRequest(name), file)
	require.NoError(t, err)
	return res.ID
}

func (f *fixture) exists(t *testing.T, key string) bool {
	t.Helper()
	ok, err := f.store.ModelStore.Exists(context.Background(), key)
	require.NoError(t, err)
	return ok
}

// ---- list & search ----

func TestList_SecondPageOfTwentyFive(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 25; i++ {
		f.create(t, fmt.Sprintf("Aksara %02d", i), nil)
	}

	res, err := f.svc.List(context.Background(), 2, 10, "")
	require.NoError(t, err)

	require.Len(t, res.Items, 10)
	for i, a := range res.Items {
		assert.Equal(t, int64(11+i), a.ID)
	}
	assert.Equal(t, model.Pagination{
		Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, HasPrev: true,
	}, res.Pagination)
}

func TestList_PageBeyondEnd(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 5; i++ {
		f.create(t, fmt.Sprintf("Aksara %d", i), nil)
	}

	res, err := f.svc.List(context.Background(), 9, 10, "")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 5, res.Pagination.Total)
	assert.Equal(t, 1, res.Pagination.TotalPages)
	assert.False(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)
}

func TestList_CategoryFilterAndHasModel(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Aksara Ka", upload("v 0 0 0"))
	req := validRequest("Aksara A")
	req.Category = "Aksara Suara"
	_, err := f.svc.Create(context.Background(), req, nil)
	require.NoError(t, err)

	res, err := f.svc.List(context.Background(), 1, 20, "Aksara Wianjana")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Aksara Ka", res.Items[0].Name)
	assert.True(t, res.Items[0].HasModel)
}

func TestList_ExistsErrorReportsFalse(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Aksara Ka", upload("v"))
	f.store.existsErr = errors.New("io error")

	res, err := f.svc.List(context.Background(), 1, 20, "")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.False(t, res.Items[0].HasModel)
}

func TestSearch_MinimumLength(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Search(context.Background(), "a", 1, 20, "")
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Search query must be at least 2 characters", vErr.Message)

	_, err = f.svc.Search(context.Background(), "  a  ", 1, 20, "")
	require.ErrorAs(t, err, &vErr)

	res, err := f.svc.Search(context.Background(), "zz", 1, 20, "")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Pagination.TotalPages)
}

func TestSearch_CaseInsensitiveAcrossFields(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Aksara Ka", nil)

	req := validRequest("Aksara Ga")
	req.Latin = "ga"
	req.Description = "Mirip KA tapi bersuara"
	_, err := f.svc.Create(context.Background(), req, nil)
	require.NoError(t, err)

	req = validRequest("Aksara Na")
	req.Latin = "na"
	_, err = f.svc.Create(context.Background(), req, nil)
	require.NoError(t, err)

	res, err := f.svc.Search(context.Background(), "ka", 1, 20, "")
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	// ORDER BY nama
	assert.Equal(t, "Aksara Ga", res.Items[0].Name)
	assert.Equal(t, "Aksara Ka", res.Items[1].Name)
}

// ---- get / create ----

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, model.ErrAksaraNotFound)
}

func TestCreate_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), model.AksaraRequest{Category: "Aksara Suara"}, upload("v"))
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Missing required fields: nama, aksara_bali, latin", vErr.Message)

	n, _ := f.repo.Count(context.Background())
	assert.Zero(t, n)
	keys, _ := f.store.List(context.Background())
	assert.Empty(t, keys)
}

func TestCreate_WithModelFile(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(context.Background(), validRequest("Aksara Ka"), upload("v 1 2 3"))
	require.NoError(t, err)
	assert.True(t, res.HasModel)
	assert.True(t, f.exists(t, "Aksara Ka.obj"))

	got, err := f.svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.True(t, got.HasModel)
	assert.Equal(t, []bool{true}, f.rec.uploads)
}

func TestCreate_TrimsAndStoresOptionalAsNil(t *testing.T) {
	f := newFixture(t)
	req := validRequest("  Aksara Ka  ")
	req.UsageExample = "   "

	res, err := f.svc.Create(context.Background(), req, nil)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aksara Ka", got.Name)
	assert.Nil(t, got.UsageExample)
	assert.False(t, got.HasModel)
}

func TestCreate_DuplicateNameWritesNoFile(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Aksara Ka", nil)

	_, err := f.svc.Create(context.Background(), validRequest("Aksara Ka"), upload("v"))
	assert.ErrorIs(t, err, model.ErrDuplicateName)
	assert.False(t, f.exists(t, "Aksara Ka.obj"))
}

func TestCreate_InsertFailureRemovesUploadedFile(t *testing.T) {
	f := newFixture(t)
	f.svc.repo = &failingCreateRepo{Repository: f.repo, err: errors.New("db down")}

	_, err := f.svc.Create(context.Background(), validRequest("Aksara Ka"), upload("v"))
	var sErr *model.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "Create aksara", sErr.Op)
	assert.False(t, f.exists(t, "Aksara Ka.obj"))
	assert.Zero(t, f.rec.failures[model.ActionRollback])
}

func TestCreate_RollbackFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.svc.repo = &failingCreateRepo{Repository: f.repo, err: errors.New("db down")}
	f.store.deleteErr = errors.New("permission denied")

	_, err := f.svc.Create(context.Background(), validRequest("Aksara Ka"), upload("v"))
	require.Error(t, err)
	assert.Equal(t, 1, f.rec.failures[model.ActionRollback])
	assert.Equal(t, []string{"rollback failed"}, f.queue.reasons)
}

func TestCreate_UploadFailureInsertsNothing(t *testing.T) {
	f := newFixture(t)
	f.store.saveErr = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), validRequest("Aksara Ka"), upload("v"))
	var sErr *model.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "Upload model file", sErr.Op)

	n, _ := f.repo.Count(context.Background())
	assert.Zero(t, n)
	assert.Equal(t, []bool{false}, f.rec.uploads)
}

func TestCreate_NameWithoutFileNameCharactersRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), validRequest("..."), upload("v"))
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "nama")
	assert.Equal(t, 400, model.ToHTTPStatus(err))

	n, _ := f.repo.Count(context.Background())
	assert.Zero(t, n)
	keys, _ := f.store.List(context.Background())
	assert.Empty(t, keys)
}

func TestCreate_NameSharingModelKeyRejected(t *testing.T) {
	tests := []struct {
		existing string
		name     string
		key      string
	}{
		{"Ka", "Ka.", "Ka.obj"},
		{"A/B", "A_B", "A_B.obj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := f.create(t, tt.existing, upload("owner"))

			_, err := f.svc.Create(context.Background(), validRequest(tt.name), nil)
			assert.ErrorIs(t, err, model.ErrModelKeyTaken)
			assert.Equal(t, 409, model.ToHTTPStatus(err))

			_, err = f.svc.Create(context.Background(), validRequest(tt.name), upload("intruder"))
			assert.ErrorIs(t, err, model.ErrModelKeyTaken)

			// file của entry cũ còn nguyên
			rc, key, err := f.svc.OpenModel(context.Background(), id)
			require.NoError(t, err)
			defer rc.Close()
			data, _ := io.ReadAll(rc)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, "owner", string(data))

			n, _ := f.repo.Count(context.Background())
			assert.Equal(t, 1, n)
		})
	}
}

// ---- update ----

func TestUpdate_RenamesModelFile(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "A", upload("v"))

	req := validRequest("B")
	req.Latin = "b"
	res, err := f.svc.Update(context.Background(), id, req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.AffectedRows)
	assert.Equal(t, model.SideEffect{Action: "rename", Status: "ok", From: "A.obj", Key: "B.obj"}, res.ModelFile)
	assert.False(t, f.exists(t, "A.obj"))
	assert.True(t, f.exists(t, "B.obj"))

	got, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, "b", got.Latin)
	assert.True(t, got.HasModel)
}

func TestUpdate_SameNameSkipsRename(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "A", upload("v"))

	res, err := f.svc.Update(context.Background(), id, validRequest("A"))
	require.NoError(t, err)
	assert.Equal(t, model.SideEffectSkipped, res.ModelFile.Status)
	assert.True(t, f.exists(t, "A.obj"))
}

func TestUpdate_NoModelFileSkipsRename(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "A", nil)

	res, err := f.svc.Update(context.Background(), id, validRequest("B"))
	require.NoError(t, err)
	assert.Equal(t, model.SideEffectSkipped, res.ModelFile.Status)
}

func TestUpdate_RenameFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "A", upload("v"))
	f.store.renameErr = errors.New("cross-device link")

	res, err := f.svc.Update(context.Background(), id, validRequest("B"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AffectedRows)
	assert.True(t, res.ModelFile.Failed())
	assert.NotContains(t, res.ModelFile.Error, "cross-device")
	assert.Equal(t, 1, f.rec.failures[model.ActionRename])
	assert.Equal(t, []string{"rename failed"}, f.queue.reasons)

	got, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.False(t, got.HasModel)
}

func TestUpdate_NameSharingModelKeyRejected(t *testing.T) {
	f := newFixture(t)
	idKa := f.create(t, "Ka", upload("v"))
	idGa := f.create(t, "Ga", nil)

	_, err := f.svc.Update(context.Background(), idGa, validRequest("Ka."))
	assert.ErrorIs(t, err, model.ErrModelKeyTaken)

	got, err := f.svc.Get(context.Background(), idGa)
	require.NoError(t, err)
	assert.Equal(t, "Ga", got.Name)
	assert.False(t, got.HasModel)

	// xoá Ga không được đụng tới Ka.obj
	_, err = f.svc.Delete(context.Background(), idGa)
	require.NoError(t, err)
	got, err = f.svc.Get(context.Background(), idKa)
	require.NoError(t, err)
	assert.True(t, got.HasModel)
}

func TestUpdate_OwnModelKeyIsNotAConflict(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "Ka", upload("v"))

	// "Ka." map về Ka.obj của chính entry này
	res, err := f.svc.Update(context.Background(), id, validRequest("Ka."))
	require.NoError(t, err)
	assert.Equal(t, model.SideEffectSkipped, res.ModelFile.Status)
	assert.True(t, f.exists(t, "Ka.obj"))
}

func TestUpdate_RenameOverOrphanIsReported(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "A", upload("model A"))
	f.putOrphan(t, "B.obj")

	res, err := f.svc.Update(context.Background(), id, validRequest("B"))
	require.NoError(t, err)
	assert.Equal(t, model.SideEffect{
		Action: "rename", Status: "ok", From: "A.obj", Key: "B.obj", Error: "replaced existing model file",
	}, res.ModelFile)
	assert.Empty(t, f.rec.failures)
	assert.Empty(t, f.queue.reasons)

	rc, _, err := f.svc.OpenModel(context.Background(), id)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "model A", string(data))
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A", nil)
	idB := f.create(t, "B", nil)

	_, err := f.svc.Update(context.Background(), 999, validRequest("C"))
	assert.ErrorIs(t, err, model.ErrAksaraNotFound)

	_, err = f.svc.Update(context.Background(), idB, validRequest("A"))
	assert.ErrorIs(t, err, model.ErrDuplicateName)

	_, err = f.svc.Update(context.Background(), idB, model.AksaraRequest{Name: "B"})
	var vErr *model.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// ---- delete ----

func TestDelete_RemovesRowAndFile(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "Aksara Ka", upload("v"))

	res, err := f.svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.SideEffectOK, res.ModelFile.Status)

	_, err = f.svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrAksaraNotFound)
	assert.False(t, f.exists(t, "Aksara Ka.obj"))
}

func TestDelete_WithoutFileIsSkipped(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "Aksara Ka", nil)

	res, err := f.svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.SideEffectSkipped, res.ModelFile.Status)
}

func TestDelete_FileFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "Aksara Ka", upload("v"))
	f.store.deleteErr = errors.New("read-only file system")

	res, err := f.svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, res.ModelFile.Failed())
	assert.Equal(t, 1, f.rec.failures[model.ActionDelete])

	_, err = f.svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrAksaraNotFound)
}

func TestDelete_Unknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, model.ErrAksaraNotFound)
}

// ---- attach / open ----

func TestAttachModel_Overwrites(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "Aksara Ka", upload("old"))

	res, err := f.svc.AttachModel(context.Background(), id, upload("new model"))
	require.NoError(t, err)
	assert.Equal(t, "Aksara Ka.obj", res.File)

	rc, key, err := f.svc.OpenModel(context.Background(), id)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "Aksara Ka.obj", key)
	assert.Equal(t, "new model", string(data))
}

func TestAttachModel_Errors(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "Aksara Ka", nil)

	_, err := f.svc.AttachModel(context.Background(), 99, upload("v"))
	assert.ErrorIs(t, err, model.ErrAksaraNotFound)

	_, err = f.svc.AttachModel(context.Background(), id, nil)
	assert.ErrorIs(t, err, model.ErrNoModelFile)
}

func TestOpenModel_Missing(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "Aksara Ka", nil)

	_, _, err := f.svc.OpenModel(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrModelNotFound)
}

// ---- aggregates ----

func TestRandom_ClampsCount(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.create(t, fmt.Sprintf("Aksara %d", i), nil)
	}

	items, err := f.svc.Random(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, items, model.MaxRandomCount)

	items, err = f.svc.Random(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Aksara Ka", nil)
	f.create(t, "Aksara Ga", nil)
	req := validRequest("Aksara A")
	req.Category = "Aksara Suara"
	_, err := f.svc.Create(context.Background(), req, nil)
	require.NoError(t, err)

	cats, err := f.svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Aksara Suara", "Aksara Wianjana"}, cats)

	counts, err := f.svc.CategoryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryCount{
		{Category: "Aksara Wianjana", Count: 2},
		{Category: "Aksara Suara", Count: 1},
	}, counts)
}

package repository

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/infrastructure/storage"
)

// memoryRepository giữ dữ liệu trong RAM (DB_DRIVER=memory, test).
// Cùng ràng buộc với bảng Postgres: id tăng dần, nama và model key unique.
type memoryRepository struct {
	mu     sync.RWMutex
	rows   []model.Aksara // luôn sắp theo id
	nextID int64
	now    func() time.Time
}

func NewMemoryRepository() Repository {
	return NewMemoryRepositoryWithClock(time.Now)
}

func NewMemoryRepositoryWithClock(now func() time.Time) Repository {
	return &memoryRepository{nextID: 1, now: now}
}

func clone(a model.Aksara) model.Aksara {
	if a.UsageExample != nil {
		v := *a.UsageExample
		a.UsageExample = &v
	}
	if a.Description != nil {
		v := *a.Description
		a.Description = &v
	}
	return a
}

func page(items []model.Aksara, limit, offset int) []model.Aksara {
	out := make([]model.Aksara, 0)
	if offset < 0 || offset >= len(items) {
		return out
	}
	end := offset + limit
	if end > len(items) || end < offset {
		end = len(items)
	}
	for _, a := range items[offset:end] {
		out = append(out, clone(a))
	}
	return out
}

func (r *memoryRepository) List(ctx context.Context, filter model.ListFilter) ([]model.Aksara, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]model.Aksara, 0, len(r.rows))
	for _, a := range r.rows {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		matched = append(matched, a)
	}
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func containsFold(field, q string) bool {
	return strings.Contains(strings.ToLower(field), q)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *memoryRepository) Search(ctx context.Context, filter model.ListFilter) ([]model.Aksara, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(filter.Query)
	matched := make([]model.Aksara, 0)
	for _, a := range r.rows {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if containsFold(a.Name, q) || containsFold(a.Latin, q) || containsFold(deref(a.Description), q) ||
			containsFold(deref(a.UsageExample), q) || containsFold(a.Character, q) {
			matched = append(matched, a)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *memoryRepository) indexOf(id int64) int {
	i := sort.Search(len(r.rows), func(i int) bool { return r.rows[i].ID >= id })
	if i < len(r.rows) && r.rows[i].ID == id {
		return i
	}
	return -1
}

func (r *memoryRepository) FindByID(ctx context.Context, id int64) (*model.Aksara, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, model.ErrAksaraNotFound
	}
	a := clone(r.rows[i])
	return &a, nil
}

func (r *memoryRepository) nameTaken(name string, excludeID int64) bool {
	for _, a := range r.rows {
		if a.Name == name && a.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *memoryRepository) keyTaken(key string, excludeID int64) bool {
	if key == "" {
		return false
	}
	for _, a := range r.rows {
		if storage.ModelKey(a.Name) == key && a.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *memoryRepository) ExistsByModelKey(ctx context.Context, key string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keyTaken(key, excludeID), nil
}

func (r *memoryRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nameTaken(name, excludeID), nil
}

func (r *memoryRepository) Create(ctx context.Context, a *model.Aksara) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(a.Name, 0) {
		return 0, model.ErrDuplicateName
	}
	if r.keyTaken(storage.ModelKey(a.Name), 0) {
		return 0, model.ErrModelKeyTaken
	}

	row := clone(*a)
	row.ID = r.nextID
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	row.HasModel = false
	r.nextID++
	r.rows = append(r.rows, row)
	return row.ID, nil
}

func (r *memoryRepository) Update(ctx context.Context, id int64, a *model.Aksara) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return 0, nil
	}
	if r.nameTaken(a.Name, id) {
		return 0, model.ErrDuplicateName
	}
	if r.keyTaken(storage.ModelKey(a.Name), id) {
		return 0, model.ErrModelKeyTaken
	}

	row := clone(*a)
	row.ID = id
	row.CreatedAt = r.rows[i].CreatedAt
	row.UpdatedAt = r.now()
	row.HasModel = false
	r.rows[i] = row
	return 1, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return 0, nil
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return 1, nil
}

func (r *memoryRepository) Categories(ctx context.Context) ([]string, error) {
	counts, _ := r.CategoryCounts(ctx)
	categories := make([]string, 0, len(counts))
	for _, c := range counts {
		categories = append(categories, c.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *memoryRepository) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	r.mu.RLock()
	byCategory := make(map[string]int)
	for _, a := range r.rows {
		byCategory[a.Category]++
	}
	r.mu.RUnlock()

	counts := make([]model.CategoryCount, 0, len(byCategory))
	for c, n := range byCategory {
		counts = append(counts, model.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
	return counts, nil
}

func (r *memoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

func (r *memoryRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.rows {
		if !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) Latest(ctx context.Context) (*model.LatestEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.Aksara
	for i := range r.rows {
		a := &r.rows[i]
		if latest == nil || !a.CreatedAt.Before(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	return &model.LatestEntry{Name: latest.Name, CreatedAt: latest.CreatedAt}, nil
}

func (r *memoryRepository) Random(ctx context.Context, n int) ([]model.Aksara, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perm := rand.Perm(len(r.rows))
	if n > len(perm) {
		n = len(perm)
	}
	out := make([]model.Aksara, 0, n)
	for _, i := range perm[:n] {
		out = append(out, clone(r.rows[i]))
	}
	return out, nil
}

func (r *memoryRepository) Names(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rows))
	for _, a := range r.rows {
		names = append(names, a.Name)
	}
	return names, nil
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *memoryRepository) Info(ctx context.Context) (*model.DatabaseInfo, error) {
	return &model.DatabaseInfo{
		Driver:  "memory",
		Version: "in-memory",
		Tables:  []string{"aksara_bali"},
		Columns: []model.ColumnSchema{},
	}, nil
}

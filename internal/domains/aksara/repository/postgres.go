package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/infrastructure/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation    = "23505"
	modelKeyConstraint = "uq_aksara_bali_model_key"
)

const aksaraColumns = `id, nama, aksara_bali, kategori, latin, unicode_aksara,
		contoh_penggunaan, deskripsi, created_at, updated_at`

const (
	queryInsert = `
		INSERT INTO aksara_bali (nama, aksara_bali, kategori, latin, unicode_aksara, contoh_penggunaan, deskripsi, model_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	queryUpdate = `
		UPDATE aksara_bali
		SET nama = $1, aksara_bali = $2, kategori = $3, latin = $4, unicode_aksara = $5,
			contoh_penggunaan = $6, deskripsi = $7, model_key = $8, updated_at = NOW()
		WHERE id = $9`

	queryDelete = `DELETE FROM aksara_bali WHERE id = $1`

	queryFindByID = `SELECT ` + aksaraColumns + ` FROM aksara_bali WHERE id = $1`

	queryExistsByName = `SELECT EXISTS(SELECT 1 FROM aksara_bali WHERE nama = $1 AND id <> $2)`

	queryExistsByModelKey = `SELECT EXISTS(SELECT 1 FROM aksara_bali WHERE model_key = $1 AND id <> $2)`

	queryCategories = `SELECT DISTINCT kategori FROM aksara_bali ORDER BY kategori`

	queryCategoryCounts = `
		SELECT kategori, COUNT(*) AS count
		FROM aksara_bali
		GROUP BY kategori
		ORDER BY count DESC, kategori ASC`

	queryCount = `SELECT COUNT(*) FROM aksara_bali`

	queryCountSince = `SELECT COUNT(*) FROM aksara_bali WHERE created_at >= $1`

	queryLatest = `SELECT nama, created_at FROM aksara_bali ORDER BY created_at DESC, id DESC LIMIT 1`

	queryRandom = `SELECT ` + aksaraColumns + ` FROM aksara_bali ORDER BY RANDOM() LIMIT $1`

	queryNames = `SELECT nama FROM aksara_bali ORDER BY id`

	queryVersion = `SELECT version()`

	queryTables = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema()
		ORDER BY table_name`

	queryColumns = `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'aksara_bali'
		ORDER BY ordinal_position`
)

// DBTX - *pgxpool.Pool trong production, pgxmock trong test
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type postgresRepository struct {
	db DBTX
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(db DBTX) Repository {
	return &postgresRepository{db: db}
}

func scanAksara(row pgx.Row) (*model.Aksara, error) {
	var a model.Aksara
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Character,
		&a.Category,
		&a.Latin,
		&a.UnicodeCodepoint,
		&a.UsageExample,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func rowToAksara(row pgx.CollectableRow) (model.Aksara, error) {
	a, err := scanAksara(row)
	if err != nil {
		return model.Aksara{}, err
	}
	return *a, nil
}

func (r *postgresRepository) queryAksara(ctx context.Context, query string, args ...any) ([]model.Aksara, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	items, err := pgx.CollectRows(rows, rowToAksara)
	if err != nil {
		return nil, fmt.Errorf("scan aksara: %w", err)
	}
	if items == nil {
		items = make([]model.Aksara, 0)
	}
	return items, nil
}

// queryStrings - một cột text, kết quả không bao giờ nil
func (r *postgresRepository) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make([]string, 0)
	}
	return values, nil
}

// modelKeyArg - NULL khi nama không tạo được key
func modelKeyArg(name string) any {
	if key := storage.ModelKey(name); key != "" {
		return key
	}
	return nil
}

// ========================= LIST =====================

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.Aksara, int, error) {
	where := ""
	args := []any{}
	if filter.Category != "" {
		where = " WHERE kategori = $1"
		args = append(args, filter.Category)
	}

	var total int
	if err := r.db.QueryRow(ctx, queryCount+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count aksara: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT %s FROM aksara_bali%s ORDER BY id ASC LIMIT $%d OFFSET $%d",
		aksaraColumns, where, n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	items, err := r.queryAksara(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list aksara: %w", err)
	}
	return items, total, nil
}

// ========================= SEARCH =====================

// escapeLike - %, _ và \ trong q được match literal
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildSearchWhere(filter model.ListFilter) (string, []any) {
	where := ` WHERE (nama ILIKE $1 OR latin ILIKE $1 OR deskripsi ILIKE $1
		OR contoh_penggunaan ILIKE $1 OR aksara_bali ILIKE $1)`
	args := []any{"%" + escapeLike(filter.Query) + "%"}

	if filter.Category != "" {
		where += " AND kategori = $2"
		args = append(args, filter.Category)
	}
	return where, args
}

func (r *postgresRepository) Search(ctx context.Context, filter model.ListFilter) ([]model.Aksara, int, error) {
	where, args := buildSearchWhere(filter)

	var total int
	if err := r.db.QueryRow(ctx, queryCount+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT %s FROM aksara_bali%s ORDER BY nama ASC, id ASC LIMIT $%d OFFSET $%d",
		aksaraColumns, where, n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	items, err := r.queryAksara(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search aksara: %w", err)
	}
	return items, total, nil
}

// ========================= CRUD =====================

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.Aksara, error) {
	a, err := scanAksara(r.db.QueryRow(ctx, queryFindByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAksaraNotFound
		}
		return nil, fmt.Errorf("find aksara %d: %w", id, err)
	}
	return a, nil
}

func (r *postgresRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, queryExistsByName, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check aksara name: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ExistsByModelKey(ctx context.Context, key string, excludeID int64) (bool, error) {
	if key == "" {
		return false, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, queryExistsByModelKey, key, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check model key: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Create(ctx context.Context, a *model.Aksara) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, queryInsert,
		a.Name, a.Character, a.Category, a.Latin, a.UnicodeCodepoint, a.UsageExample, a.Description,
		modelKeyArg(a.Name),
	).Scan(&id)
	if err != nil {
		return 0, mapWriteError("insert aksara", err)
	}
	return id, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, a *model.Aksara) (int64, error) {
	tag, err := r.db.Exec(ctx, queryUpdate,
		a.Name, a.Character, a.Category, a.Latin, a.UnicodeCodepoint, a.UsageExample, a.Description,
		modelKeyArg(a.Name), id,
	)
	if err != nil {
		return 0, mapWriteError("update aksara", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, queryDelete, id)
	if err != nil {
		return 0, fmt.Errorf("delete aksara: %w", err)
	}
	return tag.RowsAffected(), nil
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == modelKeyConstraint {
			return model.ErrModelKeyTaken
		}
		return model.ErrDuplicateName
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ========================= AGGREGATES =====================

func (r *postgresRepository) Categories(ctx context.Context) ([]string, error) {
	categories, err := r.queryStrings(ctx, queryCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *postgresRepository) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := r.db.Query(ctx, queryCategoryCounts)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	defer rows.Close()

	counts := make([]model.CategoryCount, 0)
	for rows.Next() {
		var cc model.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCount).Scan(&total); err != nil {
		return 0, fmt.Errorf("count aksara: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCountSince, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("count recent aksara: %w", err)
	}
	return total, nil
}

// Latest trả về nil khi bảng rỗng
func (r *postgresRepository) Latest(ctx context.Context) (*model.LatestEntry, error) {
	var e model.LatestEntry
	if err := r.db.QueryRow(ctx, queryLatest).Scan(&e.Name, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest aksara: %w", err)
	}
	return &e, nil
}

func (r *postgresRepository) Random(ctx context.Context, n int) ([]model.Aksara, error) {
	items, err := r.queryAksara(ctx, queryRandom, n)
	if err != nil {
		return nil, fmt.Errorf("random aksara: %w", err)
	}
	return items, nil
}

func (r *postgresRepository) Names(ctx context.Context) ([]string, error) {
	names, err := r.queryStrings(ctx, queryNames)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	return names, nil
}

// ========================= DIAGNOSTICS =====================

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *postgresRepository) Info(ctx context.Context) (*model.DatabaseInfo, error) {
	info := &model.DatabaseInfo{Driver: "postgres"}

	if err := r.db.QueryRow(ctx, queryVersion).Scan(&info.Version); err != nil {
		return nil, fmt.Errorf("server version: %w", err)
	}

	tables, err := r.queryStrings(ctx, queryTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	info.Tables = tables

	colRows, err := r.db.Query(ctx, queryColumns)
	if err != nil {
		return nil, fmt.Errorf("describe aksara_bali: %w", err)
	}
	defer colRows.Close()

	info.Columns = make([]model.ColumnSchema, 0)
	for colRows.Next() {
		var c model.ColumnSchema
		if err := colRows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.Default); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		info.Columns = append(info.Columns, c)
	}
	return info, colRows.Err()
}

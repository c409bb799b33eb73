package requirelist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no require list exists for the identifier.
var ErrNotFound = errors.New("require list not found")

// Repository persists require lists.
type Repository interface {
	// Create stores the record and fills in its assigned number.
	Create(ctx context.Context, list *RequireList) error
	Get(ctx context.Context, no int64) (RequireList, error)
}

// PostgresRepository stores require lists in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed require list repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a require list row and returns its generated number.
func (r *PostgresRepository) Create(ctx context.Context, list *RequireList) error {
	row := r.db.QueryRow(ctx, `INSERT INTO require_lists (analysis_no, company_no, info_db_no, created_at)
        VALUES ($1, $2, $3, $4) RETURNING require_list_no`,
		list.AnalysisNo, list.CompanyNo, list.InfoDbNo, list.CreatedAt.UTC())
	return row.Scan(&list.No)
}

// Get fetches a require list by number.
func (r *PostgresRepository) Get(ctx context.Context, no int64) (RequireList, error) {
	row := r.db.QueryRow(ctx, `SELECT require_list_no, analysis_no, company_no, info_db_no, created_at
        FROM require_lists WHERE require_list_no = $1`, no)
	var (
		list      RequireList
		createdAt time.Time
	)
	if err := row.Scan(&list.No, &list.AnalysisNo, &list.CompanyNo, &list.InfoDbNo, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequireList{}, ErrNotFound
		}
		return RequireList{}, err
	}
	list.CreatedAt = createdAt.UTC()
	return list, nil
}

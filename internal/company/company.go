package company

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no company exists for the identifier.
var ErrNotFound = errors.New("company not found")

// Company is a tenant organization owning accounts and datasources.
type Company struct {
	No        int64
	Name      string
	CreatedAt time.Time
}

// Repository persists companies.
type Repository interface {
	Get(ctx context.Context, no int64) (Company, error)
	Update(ctx context.Context, company Company) error
}

// PostgresRepository stores companies in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed company repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches a company by number.
func (r *PostgresRepository) Get(ctx context.Context, no int64) (Company, error) {
	row := r.db.QueryRow(ctx, `SELECT company_no, name, created_at FROM companies WHERE company_no = $1`, no)
	var (
		company   Company
		createdAt time.Time
	)
	if err := row.Scan(&company.No, &company.Name, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	company.CreatedAt = createdAt.UTC()
	return company, nil
}

// Update stores the mutable company fields.
func (r *PostgresRepository) Update(ctx context.Context, company Company) error {
	cmd, err := r.db.Exec(ctx, `UPDATE companies SET name = $1 WHERE company_no = $2`, company.Name, company.No)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

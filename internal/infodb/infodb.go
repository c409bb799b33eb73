package infodb

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no datasource record exists for the identifier.
var ErrNotFound = errors.New("datasource not found")

// InfoDb describes a customer datasource that analyses run against.
type InfoDb struct {
	No        int64
	CompanyNo int64
	Name      string
}

// Repository persists datasource records.
type Repository interface {
	Get(ctx context.Context, no int64) (InfoDb, error)
}

// PostgresRepository stores datasource records in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed datasource repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches a datasource record by number.
func (r *PostgresRepository) Get(ctx context.Context, no int64) (InfoDb, error) {
	row := r.db.QueryRow(ctx, `SELECT info_db_no, company_no, name FROM info_dbs WHERE info_db_no = $1`, no)
	var record InfoDb
	if err := row.Scan(&record.No, &record.CompanyNo, &record.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InfoDb{}, ErrNotFound
		}
		return InfoDb{}, err
	}
	return record, nil
}

type memoryRepository struct {
	mu      sync.RWMutex
	records map[int64]InfoDb
}

// NewMemoryRepository builds an in-memory datasource store for testing.
func NewMemoryRepository(seed ...InfoDb) Repository {
	repo := &memoryRepository{records: make(map[int64]InfoDb)}
	for _, record := range seed {
		repo.records[record.No] = record
	}
	return repo
}

func (r *memoryRepository) Get(_ context.Context, no int64) (InfoDb, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[no]
	if !ok {
		return InfoDb{}, ErrNotFound
	}
	return record, nil
}

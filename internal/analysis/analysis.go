package analysis

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no analysis type exists for the identifier.
var ErrNotFound = errors.New("analysis not found")

// Analysis is a catalog entry describing one kind of analysis the external
// engine can run (cohort retention, churn prediction, and so on).
type Analysis struct {
	No   int64
	Name string
}

// Repository reads the analysis catalog.
type Repository interface {
	Get(ctx context.Context, no int64) (Analysis, error)
}

// PostgresRepository stores the catalog in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed catalog repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches a catalog entry by number.
func (r *PostgresRepository) Get(ctx context.Context, no int64) (Analysis, error) {
	row := r.db.QueryRow(ctx, `SELECT analysis_no, name FROM analyses WHERE analysis_no = $1`, no)
	var entry Analysis
	if err := row.Scan(&entry.No, &entry.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return entry, nil
}

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[int64]Analysis
}

// NewMemoryRepository builds an in-memory catalog for testing.
func NewMemoryRepository(seed ...Analysis) Repository {
	repo := &memoryRepository{entries: make(map[int64]Analysis)}
	for _, entry := range seed {
		repo.entries[entry.No] = entry
	}
	return repo
}

func (r *memoryRepository) Get(_ context.Context, no int64) (Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[no]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return entry, nil
}

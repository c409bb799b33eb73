package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no matching non-deleted account exists.
	ErrNotFound = errors.New("account not found")

	// ErrEmailTaken indicates the email is already bound to a non-deleted account.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository persists accounts and their roles.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Update(ctx context.Context, user User) error
	SoftDelete(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, companyNo int64) ([]User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
	EnsureRole(ctx context.Context, name string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role_name, company_no, department_name, created_at, last_login_at, deleted`

// Create inserts a new account inside a single transaction. A unique
// violation on the email index maps to ErrEmailTaken so concurrent signups
// for the same address cannot both succeed.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO users (id, email, name, password_hash, role_name, company_no, department_name, created_at, last_login_at, deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		userID, user.Email, user.Name, user.PasswordHash, user.RoleName, user.CompanyNo,
		user.DepartmentName, user.CreatedAt.UTC(), user.LastLoginAt.UTC(), user.Deleted)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}

	return tx.Commit(ctx)
}

// FindByEmail fetches a non-deleted account by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted = false`, email)
	return scanUser(row)
}

// FindByID fetches a non-deleted account by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted = false`, userID)
	return scanUser(row)
}

// Update stores mutable profile fields.
func (r *PostgresRepository) Update(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET name = $1, department_name = $2 WHERE id = $3 AND deleted = false`,
		user.Name, user.DepartmentName, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete hides the account without destroying the row.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET deleted = true WHERE id = $1 AND deleted = false`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCompany returns the non-deleted members of a company.
func (r *PostgresRepository) ListByCompany(ctx context.Context, companyNo int64) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE company_no = $1 AND deleted = false ORDER BY created_at`, companyNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// TouchLogin records a successful authentication instant.
func (r *PostgresRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2 AND deleted = false`, at.UTC(), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureRole idempotently provisions a role record.
func (r *PostgresRepository) EnsureRole(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name)
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id          uuid.UUID
		createdAt   time.Time
		lastLoginAt time.Time
		user        User
	)
	if err := row.Scan(&id, &user.Email, &user.Name, &user.PasswordHash, &user.RoleName,
		&user.CompanyNo, &user.DepartmentName, &createdAt, &lastLoginAt, &user.Deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	user.LastLoginAt = lastLoginAt.UTC()
	return user, nil
}

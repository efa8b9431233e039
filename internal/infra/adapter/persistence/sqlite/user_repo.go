package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/internal/domain/entity"
	"blog/internal/infra/db"
	"blog/internal/repository"
)

// UserRepo implements the UserRepository interface using SQLite.
type UserRepo struct{ db db.Querier }

// NewUserRepo creates a new SQLite-backed user repository.
func NewUserRepo(q db.Querier) repository.UserRepository {
	return &UserRepo{db: q}
}

const userColumns = `id, username, password_hash, is_staff, created_at`

func (repo *UserRepo) scanOne(row *sql.Row, op string) (*entity.User, error) {
	var (
		user      entity.User
		createdAt int64
	)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsStaff, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.CreatedAt = fromMicros(createdAt)
	return &user, nil
}

// Get retrieves a user by ID. Returns (nil, nil) when absent.
func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return repo.scanOne(repo.db.QueryRowContext(ctx, query, id), "Get")
}

// GetByUsername retrieves a user by username. Returns (nil, nil) when absent.
func (repo *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return repo.scanOne(repo.db.QueryRowContext(ctx, query, username), "GetByUsername")
}

// ExistsByUsername reports whether the username is taken.
func (repo *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByUsername: %w", err)
	}
	return exists, nil
}

// Create inserts a user and sets its ID.
func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `INSERT INTO users (username, password_hash, is_staff, created_at) VALUES (?, ?, ?, ?)`
	res, err := repo.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.IsStaff, toMicros(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("Create: LastInsertId: %w", err)
	}
	user.ID = id
	return nil
}

// Delete removes a user; their articles and comments go with them.
func (repo *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

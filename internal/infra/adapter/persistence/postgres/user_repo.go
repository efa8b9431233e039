package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/internal/domain/entity"
	"blog/internal/infra/db"
	"blog/internal/repository"
)

type UserRepo struct {
	db db.Querier
}

func NewUserRepo(q db.Querier) repository.UserRepository {
	return &UserRepo{db: q}
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	const query = `
SELECT id, username, password_hash, is_staff, created_at
FROM users
WHERE id = $1`
	return repo.getOne(ctx, "Get", query, id)
}

func (repo *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const query = `
SELECT id, username, password_hash, is_staff, created_at
FROM users
WHERE username = $1`
	return repo.getOne(ctx, "GetByUsername", query, username)
}

func (repo *UserRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.User, error) {
	var user entity.User
	err := repo.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsStaff, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func (repo *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByUsername: %w", err)
	}
	return exists, nil
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users (username, password_hash, is_staff, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.IsStaff, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

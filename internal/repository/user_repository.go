package repository

import (
	"context"

	"blog/internal/domain/entity"
)

type UserRepository interface {
	// Get returns (nil, nil) if the user is not found.
	Get(ctx context.Context, id int64) (*entity.User, error)
	// GetByUsername returns (nil, nil) if the user is not found.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Create inserts the user and stores the generated ID on it.
	Create(ctx context.Context, user *entity.User) error
	// Delete removes the user; the database cascades to their articles and comments.
	Delete(ctx context.Context, id int64) error
}

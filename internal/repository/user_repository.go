package repository

import (
	"context"

	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/domain"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create inserts a new user and fills in the generated ID
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID; returns (nil, nil) when absent
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByEmail retrieves a user by email; returns (nil, nil) when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update persists changed user fields
	Update(ctx context.Context, user *domain.User) error
	// Delete removes a user
	Delete(ctx context.Context, id int64) error
	// ExistsByEmail reports whether a user with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SessionRepository defines the interface for refresh-token sessions
type SessionRepository interface {
	// Create stores a session until its ExpiresAt
	Create(ctx context.Context, session *domain.Session) error
	// GetByRefreshToken retrieves a session; returns (nil, nil) when absent
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	// Delete removes a session by ID
	Delete(ctx context.Context, id string) error
	// DeleteByUserID removes every session belonging to the user
	DeleteByUserID(ctx context.Context, userID int64) error
}

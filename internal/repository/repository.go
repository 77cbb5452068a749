package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"heartwave/dating-app/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Unsubscribe stops a live subscription when called.
type Unsubscribe func()

// UserRepository defines the interface for interacting with account data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProfileRepository defines the interface for interacting with profile
// documents. SetField is the generic single-field write the profile
// screen uses; SetPhoto is its typed shorthand for the photo reference.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)

	// EnsureProfile returns the user's profile, creating it from the
	// given seed values when none exists yet.
	EnsureProfile(ctx context.Context, userID primitive.ObjectID, seed domain.Profile) (*domain.Profile, error)

	// SetField writes a single field (dot-path) on the user's profile.
	SetField(ctx context.Context, userID primitive.ObjectID, fieldPath string, value interface{}) error

	SetPhoto(ctx context.Context, userID primitive.ObjectID, photo domain.PhotoRef) error

	// Subscribe delivers every subsequent change of the user's profile
	// to onChange until the returned Unsubscribe is called or ctx ends.
	Subscribe(ctx context.Context, userID primitive.ObjectID, onChange func(domain.Profile)) (Unsubscribe, error)
}

// MessageRepository defines the interface for interacting with chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error)
	GetByChatID(ctx context.Context, chatID string, limit int64) ([]domain.Message, error)
}

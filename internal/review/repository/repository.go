package repository

import (
	"context"
	"errors"

	"github.com/cmdbreizh/site-backend/internal/review"
)

var (
	ErrNotFound = errors.New("review not found")
)

// Repository is the review store contract. Publish and Remove report whether a
// row was affected rather than failing, so stale moderation links degrade to
// no-ops instead of errors.
type Repository interface {
	Create(ctx context.Context, nr *review.NewReview) (*review.Review, error)
	// GetByToken looks a review up by its ID regardless of published state
	// (capability access for moderation).
	GetByToken(ctx context.Context, token string) (*review.Review, error)
	Publish(ctx context.Context, id string) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
	// UpdateNonContent updates name/email/rating only; comment and published
	// are left untouched.
	UpdateNonContent(ctx context.Context, id, name, email string, rating float64) (*review.Review, error)
	// UpdateContent updates all editable fields and forces published=false so
	// the new comment goes through moderation again.
	UpdateContent(ctx context.Context, id string, nr *review.NewReview) (*review.Review, error)
	ListPublished(ctx context.Context) ([]*review.Review, error)
	ListAll(ctx context.Context) ([]*review.Review, error)
}

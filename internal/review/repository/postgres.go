package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cmdbreizh/site-backend/internal/review"
)

// PostgresRepo implements Repository on top of Postgres via sqlx. Every
// mutation is a single statement (its own implicit transaction), so no
// explicit locking is needed for concurrent moderation clicks.
type PostgresRepo struct {
	db *sqlx.DB
}

func NewPostgresRepo(db *sqlx.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Create inserts a new unpublished review. The generated UUID serves as both
// primary key and moderation token.
func (r *PostgresRepo) Create(ctx context.Context, nr *review.NewReview) (*review.Review, error) {
	const insertQuery = `
		INSERT INTO reviews (id, name, email, comment, rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, name, email, comment, rating, published
	`
	id := uuid.NewString()

	var rv review.Review
	err := r.db.QueryRowxContext(ctx, insertQuery, id, nr.Name, nr.Email, nr.Comment, nr.Rating).StructScan(&rv)
	if err != nil {
		return nil, fmt.Errorf("PostgresRepo.Create: %w", err)
	}
	return &rv, nil
}

func (r *PostgresRepo) GetByToken(ctx context.Context, token string) (*review.Review, error) {
	const selectQuery = `
		SELECT id, created_at, name, email, comment, rating, published
		FROM reviews
		WHERE id = $1
	`
	var rv review.Review
	if err := r.db.GetContext(ctx, &rv, selectQuery, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("PostgresRepo.GetByToken: %w", err)
	}
	return &rv, nil
}

// Publish marks a review visible. The update matches on id alone, so
// re-approving an already-published review still reports one row affected;
// zero rows means the id no longer exists.
func (r *PostgresRepo) Publish(ctx context.Context, id string) (bool, error) {
	const updateQuery = `UPDATE reviews SET published = true WHERE id = $1`
	res, err := r.db.ExecContext(ctx, updateQuery, id)
	if err != nil {
		return false, fmt.Errorf("PostgresRepo.Publish: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("PostgresRepo.Publish rows affected: %w", err)
	}
	return n > 0, nil
}

// Remove hard-deletes a review. Rejection keeps no audit trail.
func (r *PostgresRepo) Remove(ctx context.Context, id string) (bool, error) {
	const deleteQuery = `DELETE FROM reviews WHERE id = $1`
	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		return false, fmt.Errorf("PostgresRepo.Remove: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("PostgresRepo.Remove rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepo) UpdateNonContent(ctx context.Context, id, name, email string, rating float64) (*review.Review, error) {
	const updateQuery = `
		UPDATE reviews
		SET name = $2, email = $3, rating = $4
		WHERE id = $1
		RETURNING id, created_at, name, email, comment, rating, published
	`
	var rv review.Review
	err := r.db.QueryRowxContext(ctx, updateQuery, id, name, email, rating).StructScan(&rv)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("PostgresRepo.UpdateNonContent: %w", err)
	}
	return &rv, nil
}

func (r *PostgresRepo) UpdateContent(ctx context.Context, id string, nr *review.NewReview) (*review.Review, error) {
	const updateQuery = `
		UPDATE reviews
		SET name = $2, email = $3, comment = $4, rating = $5, published = false
		WHERE id = $1
		RETURNING id, created_at, name, email, comment, rating, published
	`
	var rv review.Review
	err := r.db.QueryRowxContext(ctx, updateQuery, id, nr.Name, nr.Email, nr.Comment, nr.Rating).StructScan(&rv)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("PostgresRepo.UpdateContent: %w", err)
	}
	return &rv, nil
}

func (r *PostgresRepo) ListPublished(ctx context.Context) ([]*review.Review, error) {
	const selectQuery = `
		SELECT id, created_at, name, email, comment, rating, published
		FROM reviews
		WHERE published = true
		ORDER BY created_at DESC
	`
	var reviews []*review.Review
	if err := r.db.SelectContext(ctx, &reviews, selectQuery); err != nil {
		return nil, fmt.Errorf("PostgresRepo.ListPublished: %w", err)
	}
	return reviews, nil
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]*review.Review, error) {
	const selectQuery = `
		SELECT id, created_at, name, email, comment, rating, published
		FROM reviews
		ORDER BY created_at DESC
	`
	var reviews []*review.Review
	if err := r.db.SelectContext(ctx, &reviews, selectQuery); err != nil {
		return nil, fmt.Errorf("PostgresRepo.ListAll: %w", err)
	}
	return reviews, nil
}

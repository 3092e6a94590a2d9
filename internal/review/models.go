package review

import "time"

// Review is the persistent customer review model. The ID doubles as the
// moderation capability token carried in the emailed approve/reject links:
// whoever holds it can fetch and moderate the review regardless of its
// published state.
type Review struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Comment   string    `json:"comment" db:"comment"`
	Rating    float64   `json:"rating" db:"rating"` // NUMERIC(2,1), e.g. 3.5
	Published bool      `json:"published" db:"published"`
}

// NewReview carries the author-editable fields of a submission.
type NewReview struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Comment string  `json:"comment"`
	Rating  float64 `json:"rating"`
}

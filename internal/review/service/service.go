package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/cmdbreizh/site-backend/internal/mailer"
	"github.com/cmdbreizh/site-backend/internal/review"
	"github.com/cmdbreizh/site-backend/internal/review/repository"
	"github.com/cmdbreizh/site-backend/pkg/logger"
)

var (
	// ErrValidation marks malformed or missing input; never retried.
	ErrValidation = errors.New("invalid review input")
	// ErrNoRowAffected reports a moderation mutation that matched no row,
	// i.e. the review vanished between fetch and update.
	ErrNoRowAffected = errors.New("no row affected")
)

// Notifier is the slice of the mail gateway the workflow needs.
type Notifier interface {
	SendAdminModeration(ctx context.Context, email mailer.AdminModerationEmail) error
	SendAuthorConfirmation(ctx context.Context, email mailer.AuthorConfirmationEmail) error
}

// Service sequences review store mutations with notification dispatch. It is
// stateless per call; the repository owns all persistence.
type Service struct {
	repo     repository.Repository
	notifier Notifier
	baseURL  string
}

func New(repo repository.Repository, notifier Notifier, baseURL string) *Service {
	return &Service{repo: repo, notifier: notifier, baseURL: strings.TrimRight(baseURL, "/")}
}

// SubmitInput carries a submission or an edit; a present ID makes it an edit.
type SubmitInput struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Comment string  `json:"comment"`
	Rating  float64 `json:"rating"`
}

// SubmitOrUpdate creates or edits a review and returns its ID.
//
// New submissions are created unpublished; the site owner gets a moderation
// email and the author a best-effort confirmation. Edits re-read the stored
// row: a changed comment goes through UpdateContent (back to pending, owner
// re-notified), anything else through UpdateNonContent with no email at all,
// so cosmetic changes do not generate moderation traffic.
//
// A failed admin email reports failure even though the review row stays
// persisted; without that email the review can never be moderated.
func (s *Service) SubmitOrUpdate(ctx context.Context, in SubmitInput) (string, error) {
	// one decimal of precision, matching the NUMERIC(2,1) column
	in.Rating = math.Round(in.Rating*10) / 10
	if err := validate(in); err != nil {
		return "", err
	}

	nr := &review.NewReview{Name: in.Name, Email: in.Email, Comment: in.Comment, Rating: in.Rating}

	if in.ID == "" {
		rv, err := s.repo.Create(ctx, nr)
		if err != nil {
			return "", fmt.Errorf("create review: %w", err)
		}
		if err := s.notifier.SendAdminModeration(ctx, s.moderationEmail(rv)); err != nil {
			return "", fmt.Errorf("review %s created but moderation email failed: %w", rv.ID, err)
		}
		if rv.Email != "" {
			if err := s.notifier.SendAuthorConfirmation(ctx, mailer.AuthorConfirmationEmail{Review: rv}); err != nil {
				// courtesy notice only, never fails the submission
				logger.Warnf("author confirmation email failed for review %s: %v", rv.ID, err)
			}
		}
		return rv.ID, nil
	}

	prev, err := s.repo.GetByToken(ctx, in.ID)
	if err != nil {
		return "", err
	}

	if prev.Comment == in.Comment {
		rv, err := s.repo.UpdateNonContent(ctx, in.ID, in.Name, in.Email, in.Rating)
		if err != nil {
			return "", err
		}
		return rv.ID, nil
	}

	rv, err := s.repo.UpdateContent(ctx, in.ID, nr)
	if err != nil {
		return "", err
	}
	if err := s.notifier.SendAdminModeration(ctx, s.moderationEmail(rv)); err != nil {
		return "", fmt.Errorf("review %s updated but moderation email failed: %w", rv.ID, err)
	}
	return rv.ID, nil
}

// Approve publishes the review behind the token.
func (s *Service) Approve(ctx context.Context, token string) error {
	rv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	ok, err := s.repo.Publish(ctx, rv.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoRowAffected
	}
	return nil
}

// Reject hard-deletes the review behind the token.
func (s *Service) Reject(ctx context.Context, token string) error {
	rv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	ok, err := s.repo.Remove(ctx, rv.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoRowAffected
	}
	return nil
}

// UpdateDirect applies a non-content edit without touching comment or
// published state; used by the direct update endpoint.
func (s *Service) UpdateDirect(ctx context.Context, id, name, email string, rating float64) error {
	rating = math.Round(rating*10) / 10
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: rating out of range", ErrValidation)
	}
	_, err := s.repo.UpdateNonContent(ctx, id, name, email, rating)
	return err
}

// Get fetches a review by its token regardless of published state.
func (s *Service) Get(ctx context.Context, token string) (*review.Review, error) {
	return s.repo.GetByToken(ctx, token)
}

// Published returns the publicly visible reviews, newest first.
func (s *Service) Published(ctx context.Context) ([]*review.Review, error) {
	return s.repo.ListPublished(ctx)
}

// All returns every review regardless of state; admin use only.
func (s *Service) All(ctx context.Context) ([]*review.Review, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) moderationEmail(rv *review.Review) mailer.AdminModerationEmail {
	return mailer.AdminModerationEmail{
		Review:     rv,
		ApproveURL: s.moderationURL("approve", rv.ID),
		RejectURL:  s.moderationURL("reject", rv.ID),
	}
}

func (s *Service) moderationURL(action, token string) string {
	return fmt.Sprintf("%s/api/reviews/validate?action=%s&token=%s", s.baseURL, action, url.QueryEscape(token))
}

func validate(in SubmitInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Comment) == "" {
		return fmt.Errorf("%w: comment is required", ErrValidation)
	}
	if in.Rating < 0 || in.Rating > 5 {
		return fmt.Errorf("%w: rating out of range", ErrValidation)
	}
	return nil
}

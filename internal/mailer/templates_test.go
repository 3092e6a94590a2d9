package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmdbreizh/site-backend/internal/review"
)

func TestAdminModerationEmail_RenderIncludesLinks(t *testing.T) {
	e := AdminModerationEmail{
		Review: &review.Review{
			ID:      "11111111-2222-3333-4444-555555555555",
			Name:    "Alice Smith",
			Email:   "alice@example.com",
			Comment: "Great service, highly recommended to everyone",
			Rating:  4.5,
		},
		ApproveURL: "https://example.test/api/reviews/validate?action=approve&token=11111111-2222-3333-4444-555555555555",
		RejectURL:  "https://example.test/api/reviews/validate?action=reject&token=11111111-2222-3333-4444-555555555555",
	}

	text, html, err := e.render()
	require.NoError(t, err)
	require.Contains(t, html, "action=approve")
	require.Contains(t, html, "action=reject")
	require.Contains(t, html, "Alice Smith")
	require.Contains(t, html, "4.5")
	require.Contains(t, text, e.ApproveURL)
	require.Contains(t, text, e.RejectURL)
}

func TestAuthorConfirmationEmail_Render(t *testing.T) {
	e := AuthorConfirmationEmail{
		Review: &review.Review{Name: "Bob", Email: "bob@example.com", Comment: "ok", Rating: 3.5},
	}
	text, html, err := e.render()
	require.NoError(t, err)
	require.Contains(t, html, "Merci pour votre avis")
	require.Contains(t, html, "Bob")
	require.Contains(t, text, "rating: 3.5")
}

func TestContactEmail_RenderSortedAndEscaped(t *testing.T) {
	e := ContactEmail{Fields: map[string]string{
		"name":    "Jane",
		"message": "<b>hello</b>",
		"email":   "jane@example.com",
	}}
	text, html, err := e.render()
	require.NoError(t, err)
	// keys are dumped in sorted order
	require.Equal(t, "email: jane@example.com\nmessage: <b>hello</b>\nname: Jane", text)
	require.Contains(t, html, "&lt;b&gt;hello&lt;/b&gt;")
}

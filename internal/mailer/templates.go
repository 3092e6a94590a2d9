package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/cmdbreizh/site-backend/internal/review"
)

// One typed variant per email template, each with its own renderer. This
// replaces the untyped data bag the templates used to receive, so a template
// cannot silently reference a field the caller never set.

// AdminModerationEmail asks the site owner to approve or reject a review.
// Visiting either link performs the action; the review ID in the URLs is the
// bearer capability.
type AdminModerationEmail struct {
	Review     *review.Review
	ApproveURL string
	RejectURL  string
}

// AuthorConfirmationEmail thanks the author for a newly submitted review.
type AuthorConfirmationEmail struct {
	Review *review.Review
}

// ContactEmail relays a contact-form submission as a plain key/value dump.
type ContactEmail struct {
	Fields  map[string]string
	ReplyTo string
}

var adminModerationTmpl = template.Must(template.New("review-validation").Parse(`
<h1>Nouvelle évaluation reçue</h1>
<p><strong>De:</strong> {{.Review.Name}}</p>
<p><strong>Email:</strong> {{.Review.Email}}</p>
<p><strong>Note:</strong> {{.Review.Rating}} / 5</p>
<p><strong>Commentaire:</strong> {{.Review.Comment}}</p>
<p>
  <a href="{{.ApproveURL}}" style="display:inline-block;padding:10px 20px;background:#16a34a;color:#fff;text-decoration:none;border-radius:4px;">Approuver</a>
  &nbsp;
  <a href="{{.RejectURL}}" style="display:inline-block;padding:10px 20px;background:#dc2626;color:#fff;text-decoration:none;border-radius:4px;">Rejeter</a>
</p>
`))

var authorConfirmationTmpl = template.Must(template.New("review").Parse(`
<h1>Merci pour votre avis</h1>
<p>Bonjour {{.Review.Name}},</p>
<p>Votre avis a bien été reçu et sera publié après validation.</p>
<p><strong>Note:</strong> {{.Review.Rating}} / 5</p>
<p><strong>Commentaire:</strong> {{.Review.Comment}}</p>
`))

func (e AdminModerationEmail) render() (text, html string, err error) {
	var b bytes.Buffer
	if err := adminModerationTmpl.Execute(&b, e); err != nil {
		return "", "", fmt.Errorf("render review-validation: %w", err)
	}
	text = strings.Join([]string{
		"name: " + e.Review.Name,
		"email: " + e.Review.Email,
		fmt.Sprintf("rating: %.1f", e.Review.Rating),
		"comment: " + e.Review.Comment,
		"approve: " + e.ApproveURL,
		"reject: " + e.RejectURL,
	}, "\n")
	return text, b.String(), nil
}

func (e AuthorConfirmationEmail) render() (text, html string, err error) {
	var b bytes.Buffer
	if err := authorConfirmationTmpl.Execute(&b, e); err != nil {
		return "", "", fmt.Errorf("render review: %w", err)
	}
	text = strings.Join([]string{
		"name: " + e.Review.Name,
		fmt.Sprintf("rating: %.1f", e.Review.Rating),
		"comment: " + e.Review.Comment,
	}, "\n")
	return text, b.String(), nil
}

func (e ContactEmail) render() (text, html string, err error) {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+e.Fields[k])
	}
	text = strings.Join(lines, "\n")
	html = "<pre>" + template.HTMLEscapeString(text) + "</pre>"
	return text, html, nil
}

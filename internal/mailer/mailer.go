package mailer

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/cmdbreizh/site-backend/internal/config"
	"github.com/cmdbreizh/site-backend/pkg/metrics"
)

// sendTimeout bounds a single SMTP round trip so a slow relay cannot hang a
// submission response or a moderation redirect.
const sendTimeout = 10 * time.Second

// Mailer delivers templated transactional email over SMTP. It knows nothing
// about reviews beyond the typed email variants handed to it.
type Mailer struct {
	client *mail.Client
	from   string
	// admin is the default recipient for site-owner notifications
	admin       string
	companyName string
}

func New(cfg config.SMTPConfig, site config.SiteConfig) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithSSL(),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{
		client:      client,
		from:        cfg.From,
		admin:       site.CompanyEmail,
		companyName: site.CompanyName,
	}, nil
}

// SendAdminModeration sends the moderation request to the site owner with the
// approve/reject links for the review.
func (m *Mailer) SendAdminModeration(ctx context.Context, email AdminModerationEmail) error {
	text, html, err := email.render()
	if err != nil {
		return m.fail("review-validation", err)
	}
	subject := fmt.Sprintf("Validation d'avis - %s", email.Review.Name)
	return m.send(ctx, "review-validation", m.admin, email.Review.Email, subject, text, html)
}

// SendAuthorConfirmation sends the courtesy notice to the review author.
func (m *Mailer) SendAuthorConfirmation(ctx context.Context, email AuthorConfirmationEmail) error {
	text, html, err := email.render()
	if err != nil {
		return m.fail("review", err)
	}
	return m.send(ctx, "review", email.Review.Email, "", "Merci pour votre avis", text, html)
}

// SendContact forwards a contact-form submission to the site owner.
func (m *Mailer) SendContact(ctx context.Context, email ContactEmail) error {
	text, html, err := email.render()
	if err != nil {
		return m.fail("contact", err)
	}
	return m.send(ctx, "contact", m.admin, email.ReplyTo, "Contact depuis le site web", text, html)
}

func (m *Mailer) send(ctx context.Context, template, to, replyTo, subject, text, html string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.companyName, m.from); err != nil {
		return m.fail(template, err)
	}
	if err := msg.To(to); err != nil {
		return m.fail(template, err)
	}
	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return m.fail(template, err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return m.fail(template, err)
	}
	metrics.EmailsSent.WithLabelValues(template, "ok").Inc()
	return nil
}

func (m *Mailer) fail(template string, err error) error {
	metrics.EmailsSent.WithLabelValues(template, "error").Inc()
	return fmt.Errorf("send %s email: %w", template, err)
}

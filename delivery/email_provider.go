package delivery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"
	"github.com/mrz1836/postmark"
)

// ErrInvalidConfig is returned when a provider is constructed without its
// required settings.
var ErrInvalidConfig = errors.New("invalid email provider configuration")

// PostmarkProvider sends test emails through Postmark.
type PostmarkProvider struct {
	client    *postmark.Client
	fromEmail string
}

func NewPostmarkProvider(serverToken, accountToken, fromEmail string) (*PostmarkProvider, error) {
	if serverToken == "" {
		return nil, fmt.Errorf("%w: Postmark server token is required", ErrInvalidConfig)
	}
	if _, err := ParseRecipient(fromEmail); err != nil {
		return nil, fmt.Errorf("%w: sender email must be a valid address", ErrInvalidConfig)
	}
	return &PostmarkProvider{
		client:    postmark.NewClient(serverToken, accountToken),
		fromEmail: fromEmail,
	}, nil
}

func (p *PostmarkProvider) Name() string { return "postmark" }

func (p *PostmarkProvider) Send(ctx context.Context, msg Message) error {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:       p.fromEmail,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TextBody:   msg.TextBody,
		TrackOpens: false,
	})
	if err != nil {
		return fmt.Errorf("postmark request failed: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	return nil
}

// OutboxProvider writes messages to a local directory instead of sending
// them. It is used when no Postmark token is configured.
type OutboxProvider struct {
	dir       string
	fromEmail string
	now       func() time.Time
}

func NewOutboxProvider(dir, fromEmail string) *OutboxProvider {
	return &OutboxProvider{dir: dir, fromEmail: fromEmail, now: time.Now}
}

func (p *OutboxProvider) Name() string { return "outbox" }

// Send writes <dir>/<timestamp>_<tag>_<suffix>.eml along with the raw .html body and,
// when present, the .txt alternative.
func (p *OutboxProvider) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("failed to create outbox directory: %w", err)
	}

	tag := msg.Tag
	if tag == "" {
		tag = "message"
	}
	tag = strings.NewReplacer("/", "-", `\`, "-", " ", "-").Replace(tag)
	base := fmt.Sprintf("%s_%s_%s", p.now().Format("2006_01_02_150405"), tag, uuid.NewString()[:8])

	htmlPath := filepath.Join(p.dir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(msg.HTMLBody), 0644); err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	if msg.TextBody != "" {
		if err := os.WriteFile(filepath.Join(p.dir, base+".txt"), []byte(msg.TextBody), 0644); err != nil {
			return fmt.Errorf("failed to write outbox message: %w", err)
		}
	}

	emlPath := filepath.Join(p.dir, base+".eml")
	if err := p.writeMIME(emlPath, msg); err != nil {
		return err
	}

	log.Printf("INFO (OutboxProvider): Wrote message for %s (%q) to %s", msg.To, msg.Subject, emlPath)
	return nil
}

func (p *OutboxProvider) writeMIME(path string, msg Message) error {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	builder := enmime.Builder().
		From("", p.fromEmail).
		To("", msg.To).
		Subject(subject).
		Date(p.now()).
		HTML([]byte(msg.HTMLBody))
	if msg.TextBody != "" {
		builder = builder.Text([]byte(msg.TextBody))
	}
	if msg.Tag != "" {
		builder = builder.Header("X-Mailcraft-Tag", msg.Tag)
	}

	part, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build MIME message: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	if err := part.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode MIME message: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	return nil
}

package delivery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/coreybb/mailcraft/models"
	"github.com/google/uuid"
)

var (
	// ErrNoProvider is returned when a test send is requested but no email
	// provider is configured.
	ErrNoProvider = errors.New("no email provider configured")
	// ErrInvalidRecipient is returned for a recipient that is not a valid address.
	ErrInvalidRecipient = errors.New("invalid recipient address")
)

// Message is a rendered template ready to be sent.
type Message struct {
	To       string
	Subject  string
	Tag      string
	HTMLBody string
	TextBody string
}

// EmailProvider is the adapter interface for transactional email services.
type EmailProvider interface {
	// Name identifies the provider in test send records (e.g. "postmark").
	Name() string
	Send(ctx context.Context, msg Message) error
}

// TestSendRecorder persists test send outcomes.
type TestSendRecorder interface {
	CreateTestSend(ctx context.Context, send *models.TestSend) error
}

// TestSendService sends rendered templates to a reviewer's inbox and records
// each attempt.
type TestSendService struct {
	provider EmailProvider
	recorder TestSendRecorder
	now      func() time.Time
}

// NewTestSendService creates a TestSendService. provider may be nil, in which
// case every send fails with ErrNoProvider.
func NewTestSendService(recorder TestSendRecorder, provider EmailProvider) *TestSendService {
	return &TestSendService{
		provider: provider,
		recorder: recorder,
		now:      time.Now,
	}
}

// ParseRecipient validates a single recipient address and returns it in bare
// form.
func ParseRecipient(to string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}
	return addr.Address, nil
}

// SendTest delivers msg for templateID and records the attempt. The returned
// record reflects the outcome even when the send itself failed.
func (s *TestSendService) SendTest(ctx context.Context, templateID string, msg Message) (*models.TestSend, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	to, err := ParseRecipient(msg.To)
	if err != nil {
		return nil, err
	}
	msg.To = to

	sendErr := s.provider.Send(ctx, msg)

	record := &models.TestSend{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		Recipient:  to,
		Provider:   s.provider.Name(),
		Status:     models.TestSendStatusSent,
		CreatedAt:  s.now().UTC(),
	}
	if sendErr != nil {
		record.Status = models.TestSendStatusFailed
		record.ErrorMessage = sendErr.Error()
		log.Printf("ERROR (TestSendService): Test send of template %s via %s failed: %v", templateID, record.Provider, sendErr)
	} else {
		log.Printf("INFO (TestSendService): Template %s sent to %s via %s", templateID, to, record.Provider)
	}

	if s.recorder != nil {
		if err := s.recorder.CreateTestSend(ctx, record); err != nil {
			log.Printf("WARN (TestSendService): Failed to record test send for template %s: %v", templateID, err)
		}
	}

	if sendErr != nil {
		return record, fmt.Errorf("test send via %s failed: %w", record.Provider, sendErr)
	}
	return record, nil
}

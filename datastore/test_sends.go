package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coreybb/mailcraft/models"
	"github.com/google/uuid"
)

type TestSendRepository struct {
	db *sql.DB
}

func NewTestSendRepository(db *sql.DB) *TestSendRepository {
	return &TestSendRepository{db: db}
}

func (r *TestSendRepository) CreateTestSend(ctx context.Context, send *models.TestSend) error {
	if _, err := uuid.Parse(send.ID); err != nil {
		return fmt.Errorf("invalid test send ID format: %w", err)
	}
	if _, err := uuid.Parse(send.TemplateID); err != nil {
		return fmt.Errorf("invalid template ID format: %w", err)
	}

	query := `
		INSERT INTO test_sends (id, template_id, recipient, provider, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		send.ID, send.TemplateID, send.Recipient, send.Provider, send.Status, NewNullString(send.ErrorMessage), send.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert test send: %w", err)
	}
	return nil
}

// GetTestSendsByTemplateID lists the test sends of a template, newest first.
func (r *TestSendRepository) GetTestSendsByTemplateID(ctx context.Context, templateID string) ([]models.TestSend, error) {
	if _, err := uuid.Parse(templateID); err != nil {
		return nil, fmt.Errorf("invalid template ID format: %w", err)
	}

	query := `
		SELECT id, template_id, recipient, provider, status, error_message, created_at
		FROM test_sends
		WHERE template_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query test sends for template %s: %w", templateID, err)
	}
	defer rows.Close()

	sends := []models.TestSend{}
	for rows.Next() {
		var s models.TestSend
		var errMsg sql.NullString
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.Recipient, &s.Provider, &s.Status, &errMsg, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan test send row: %w", err)
		}
		s.ErrorMessage = errMsg.String
		sends = append(sends, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test send rows: %w", err)
	}
	return sends, nil
}

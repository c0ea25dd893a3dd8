package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/models"
	"github.com/google/uuid"
)

// TemplateRepository handles database operations for email templates.
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = `id, user_id, project_id, title, content, is_public,
		       views_count, forks_count, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner, extra ...any) (models.Template, error) {
	var t models.Template
	var projectID sql.NullString
	var content []byte

	dest := []any{
		&t.ID,
		&t.UserID,
		&projectID,
		&t.Title,
		&content,
		&t.IsPublic,
		&t.ViewsCount,
		&t.ForksCount,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return t, err
	}
	if projectID.Valid {
		t.ProjectID = &projectID.String
	}
	// Stored content is decoded tolerantly; malformed JSON yields an empty document.
	t.Content = document.Decode(content)
	return t, nil
}

func encodeContent(doc document.Document) (string, error) {
	data, err := document.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode template content: %w", err)
	}
	return string(data), nil
}

func nullableID(id *string) (sql.NullString, error) {
	if id == nil || *id == "" {
		return sql.NullString{}, nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return sql.NullString{}, fmt.Errorf("invalid project ID format: %w", err)
	}
	return sql.NullString{String: *id, Valid: true}, nil
}

// likePattern builds a case-insensitive substring pattern for ILIKE, escaping
// the wildcard characters in the user's search text.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(search)) + "%"
}

// CreateTemplate inserts a new template record into the database.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, template *models.Template) error {
	if _, err := uuid.Parse(template.ID); err != nil {
		return fmt.Errorf("invalid template ID format: %w", err)
	}
	if _, err := uuid.Parse(template.UserID); err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	if template.Title == "" {
		return fmt.Errorf("template title cannot be empty")
	}
	if template.CreatedAt.IsZero() {
		return fmt.Errorf("template CreatedAt timestamp must be set")
	}
	if template.UpdatedAt.IsZero() {
		template.UpdatedAt = template.CreatedAt
	}

	projectID, err := nullableID(template.ProjectID)
	if err != nil {
		return err
	}
	content, err := encodeContent(template.Content)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO templates (
			id, user_id, project_id, title, content, is_public,
			views_count, forks_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		template.ID,
		template.UserID,
		projectID,
		template.Title,
		content,
		template.IsPublic,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

// GetTemplateByID retrieves a template owned by userID.
func (r *TemplateRepository) GetTemplateByID(ctx context.Context, templateID string, userID string) (*models.Template, error) {
	if _, err := uuid.Parse(templateID); err != nil {
		return nil, fmt.Errorf("invalid template ID format: %w", err)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1 AND user_id = $2`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, templateID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("template not found for id %s and user_id %s: %w", templateID, userID, err)
		}
		return nil, fmt.Errorf("failed to get template by ID: %w", err)
	}
	return &t, nil
}

// GetTemplatesByUserID lists a user's templates, most recently updated first.
// A non-empty search restricts results to titles containing it, ignoring case.
func (r *TemplateRepository) GetTemplatesByUserID(ctx context.Context, userID string, search string) ([]models.Template, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	query := `SELECT ` + templateColumns + ` FROM templates WHERE user_id = $1`
	args := []any{userID}
	if strings.TrimSpace(search) != "" {
		query += ` AND title ILIKE $2`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY updated_at DESC`

	return r.queryTemplates(ctx, query, args...)
}

// GetTemplatesByProjectID lists the templates of one of the user's projects.
func (r *TemplateRepository) GetTemplatesByProjectID(ctx context.Context, projectID string, userID string) ([]models.Template, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, fmt.Errorf("invalid project ID format: %w", err)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	query := `SELECT ` + templateColumns + ` FROM templates
		WHERE project_id = $1 AND user_id = $2
		ORDER BY updated_at DESC`
	return r.queryTemplates(ctx, query, projectID, userID)
}

func (r *TemplateRepository) queryTemplates(ctx context.Context, query string, args ...any) ([]models.Template, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}
	return templates, nil
}

// UpdateTemplate saves the title, content, project and visibility of a
// template and bumps its updated_at.
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, template *models.Template) error {
	if _, err := uuid.Parse(template.ID); err != nil {
		return fmt.Errorf("invalid template ID format for update: %w", err)
	}
	if _, err := uuid.Parse(template.UserID); err != nil {
		return fmt.Errorf("invalid user ID format for update context: %w", err)
	}
	if template.Title == "" {
		return fmt.Errorf("template title cannot be empty for update")
	}

	projectID, err := nullableID(template.ProjectID)
	if err != nil {
		return err
	}
	content, err := encodeContent(template.Content)
	if err != nil {
		return err
	}
	template.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE templates
		SET title = $1,
		    content = $2,
		    project_id = $3,
		    is_public = $4,
		    updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		template.Title,
		content,
		projectID,
		template.IsPublic,
		template.UpdatedAt,
		template.ID,
		template.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template with ID %s: %w", template.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for template update ID %s: %w", template.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template not found for update (ID: %s, UserID: %s): %w", template.ID, template.UserID, sql.ErrNoRows)
	}
	return nil
}

// DeleteTemplate removes a template owned by userID.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, templateID string, userID string) error {
	if _, err := uuid.Parse(templateID); err != nil {
		return fmt.Errorf("invalid template ID format for delete: %w", err)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("invalid user ID format for delete context: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1 AND user_id = $2`, templateID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete template with ID %s: %w", templateID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for template delete ID %s: %w", templateID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template not found for delete (ID: %s, UserID: %s): %w", templateID, userID, sql.ErrNoRows)
	}
	return nil
}

// DuplicateTemplate stores dup as a new template and, when source is public,
// increments the source's fork count in the same transaction.
func (r *TemplateRepository) DuplicateTemplate(ctx context.Context, source *models.Template, dup *models.Template) error {
	if _, err := uuid.Parse(source.ID); err != nil {
		return fmt.Errorf("invalid source template ID format: %w", err)
	}
	if _, err := uuid.Parse(dup.ID); err != nil {
		return fmt.Errorf("invalid template ID format: %w", err)
	}
	if _, err := uuid.Parse(dup.UserID); err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	if dup.CreatedAt.IsZero() {
		return fmt.Errorf("template CreatedAt timestamp must be set")
	}

	content, err := encodeContent(dup.Content)
	if err != nil {
		return err
	}
	projectID, err := nullableID(dup.ProjectID)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin duplicate transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO templates (
			id, user_id, project_id, title, content, is_public,
			views_count, forks_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, FALSE, 0, 0, $6, $6)
	`, dup.ID, dup.UserID, projectID, dup.Title, content, dup.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert duplicated template: %w", err)
	}

	if source.IsPublic {
		_, err = tx.ExecContext(ctx,
			`UPDATE templates SET forks_count = forks_count + 1 WHERE id = $1 AND is_public`, source.ID)
		if err != nil {
			return fmt.Errorf("failed to increment fork count for template %s: %w", source.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit duplicate transaction: %w", err)
	}
	dup.UpdatedAt = dup.CreatedAt
	return nil
}

const galleryQuery = `
		SELECT t.id, t.user_id, t.project_id, t.title, t.content, t.is_public,
		       t.views_count, t.forks_count, t.created_at, t.updated_at,
		       p.public_username
		FROM templates t
		JOIN profiles p ON p.id = t.user_id
		WHERE t.is_public`

// GetPublicTemplates lists gallery templates, most viewed first.
func (r *TemplateRepository) GetPublicTemplates(ctx context.Context, search string) ([]models.GalleryTemplate, error) {
	query := galleryQuery
	var args []any
	if strings.TrimSpace(search) != "" {
		query += ` AND t.title ILIKE $1`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY t.views_count DESC, t.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query public templates: %w", err)
	}
	defer rows.Close()

	templates := []models.GalleryTemplate{}
	for rows.Next() {
		var g models.GalleryTemplate
		t, err := scanTemplate(rows, &g.OwnerUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to scan public template row: %w", err)
		}
		g.Template = t
		templates = append(templates, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating public template rows: %w", err)
	}
	return templates, nil
}

// GetPublicTemplate retrieves one gallery template.
func (r *TemplateRepository) GetPublicTemplate(ctx context.Context, templateID string) (*models.GalleryTemplate, error) {
	if _, err := uuid.Parse(templateID); err != nil {
		return nil, fmt.Errorf("invalid template ID format: %w", err)
	}

	var g models.GalleryTemplate
	t, err := scanTemplate(r.db.QueryRowContext(ctx, galleryQuery+` AND t.id = $1`, templateID), &g.OwnerUsername)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("public template not found for id %s: %w", templateID, err)
		}
		return nil, fmt.Errorf("failed to get public template: %w", err)
	}
	g.Template = t
	return &g, nil
}

// IncrementViews records one gallery view of a public template.
func (r *TemplateRepository) IncrementViews(ctx context.Context, templateID string) error {
	if _, err := uuid.Parse(templateID); err != nil {
		return fmt.Errorf("invalid template ID format: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE templates SET views_count = views_count + 1 WHERE id = $1 AND is_public`, templateID)
	if err != nil {
		return fmt.Errorf("failed to increment views for template %s: %w", templateID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for template views %s: %w", templateID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("public template not found (ID: %s): %w", templateID, sql.ErrNoRows)
	}
	return nil
}

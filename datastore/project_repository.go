package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coreybb/mailcraft/models"
	"github.com/google/uuid"
)

// ProjectRepository handles database operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// NewNullString maps an empty string to SQL NULL.
func NewNullString(s string) sql.NullString {
	if len(s) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{
		String: s,
		Valid:  true,
	}
}

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	var description sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if description.Valid {
		p.Description = description.String
	}
	return p, err
}

// CreateProject inserts a new project record into the database.
func (r *ProjectRepository) CreateProject(ctx context.Context, project *models.Project) error {
	if _, err := uuid.Parse(project.ID); err != nil {
		return fmt.Errorf("invalid project ID format: %w", err)
	}
	if _, err := uuid.Parse(project.UserID); err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	if project.Title == "" {
		return fmt.Errorf("project title cannot be empty")
	}
	if project.CreatedAt.IsZero() {
		return fmt.Errorf("project CreatedAt timestamp must be set")
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = project.CreatedAt
	}

	query := `
		INSERT INTO projects (id, user_id, title, description, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.UserID,
		project.Title,
		NewNullString(project.Description),
		project.IsPublic,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetProjectByID retrieves a project owned by userID.
func (r *ProjectRepository) GetProjectByID(ctx context.Context, projectID string, userID string) (*models.Project, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, fmt.Errorf("invalid project ID format: %w", err)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	query := `
		SELECT id, user_id, title, description, is_public, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, projectID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project not found for id %s and user_id %s: %w", projectID, userID, err)
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}
	return &p, nil
}

// GetProjectsByUserID lists a user's projects, most recently updated first,
// optionally filtered by a case-insensitive title search.
func (r *ProjectRepository) GetProjectsByUserID(ctx context.Context, userID string, search string) ([]models.Project, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	query := `
		SELECT id, user_id, title, description, is_public, created_at, updated_at
		FROM projects
		WHERE user_id = $1`
	args := []any{userID}
	if strings.TrimSpace(search) != "" {
		query += ` AND title ILIKE $2`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects by user ID %s: %w", userID, err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row for user ID %s: %w", userID, err)
		}
		projects = append(projects, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows for user ID %s: %w", userID, err)
	}
	return projects, nil
}

// DeleteProject removes a project. Its templates are kept and detached.
func (r *ProjectRepository) DeleteProject(ctx context.Context, projectID string, userID string) error {
	if _, err := uuid.Parse(projectID); err != nil {
		return fmt.Errorf("invalid project ID format for delete: %w", err)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("invalid user ID format for delete context: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project with ID %s: %w", projectID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for project delete ID %s: %w", projectID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("project not found for delete (ID: %s, UserID: %s): %w", projectID, userID, sql.ErrNoRows)
	}
	return nil
}

package processing_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/mailcraft/conversion"
	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/processing"
	"github.com/coreybb/mailcraft/render"
	"github.com/coreybb/mailcraft/storage"
)

type fakeTemplates map[string]*models.Template

func (f fakeTemplates) GetTemplateByID(_ context.Context, templateID, userID string) (*models.Template, error) {
	t, ok := f[templateID]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("template not found: %w", sql.ErrNoRows)
	}
	return t, nil
}

func newProcessor(t *testing.T) (*processing.ExportProcessor, *models.Template, string) {
	t.Helper()
	tpl := &models.Template{
		ID:     "tpl-1",
		UserID: "user-1",
		Title:  "Spring Sale",
		Content: document.Document{Blocks: []document.Block{
			document.TextBlock{ID: "1", Content: "<p>Hello</p>"},
			document.ButtonBlock{ID: "2", Text: "Shop", Href: "https://shop.example.com"},
		}},
	}
	base := t.TempDir()
	ep := processing.NewExportProcessor(fakeTemplates{tpl.ID: tpl}, conversion.NewConverter(), storage.NewLocalFileStorer(base))
	return ep, tpl, base
}

func TestExportProcessor_RenderHTML(t *testing.T) {
	ep, tpl, _ := newProcessor(t)

	artifact, err := ep.Render(context.Background(), tpl.ID, tpl.UserID, conversion.FormatHTML)
	require.NoError(t, err)

	assert.Equal(t, render.ExportHTML(tpl.Content, tpl.Title), string(artifact.Body))
	assert.Equal(t, "Spring Sale.html", artifact.Filename)
	assert.Equal(t, "text/html; charset=utf-8", artifact.ContentType)
}

func TestExportProcessor_RenderText(t *testing.T) {
	ep, tpl, _ := newProcessor(t)

	artifact, err := ep.Render(context.Background(), tpl.ID, tpl.UserID, conversion.FormatText)
	require.NoError(t, err)

	assert.Equal(t, "Spring Sale.txt", artifact.Filename)
	assert.Contains(t, string(artifact.Body), "Hello")
	assert.Contains(t, string(artifact.Body), "https://shop.example.com")
	assert.NotContains(t, string(artifact.Body), "<p>")
}

func TestExportProcessor_RenderMissingTemplate(t *testing.T) {
	ep, tpl, _ := newProcessor(t)

	_, err := ep.Render(context.Background(), tpl.ID, "someone-else", conversion.FormatHTML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestExportProcessor_Store(t *testing.T) {
	ep, tpl, base := newProcessor(t)

	stored, err := ep.Store(context.Background(), tpl.ID, tpl.UserID, conversion.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("exports", "user-1", "tpl-1.html"), stored.Path)
	assert.Equal(t, "Spring Sale.html", stored.Filename)

	data, err := os.ReadFile(filepath.Join(base, stored.Path))
	require.NoError(t, err)
	assert.Equal(t, render.ExportHTML(tpl.Content, tpl.Title), string(data))
}

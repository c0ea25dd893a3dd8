package processing

import (
	"context"
	"fmt"
	"log"

	"github.com/coreybb/mailcraft/conversion"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/render"
	"github.com/coreybb/mailcraft/storage"
)

// TemplateGetter loads a template owned by a user.
type TemplateGetter interface {
	GetTemplateByID(ctx context.Context, templateID string, userID string) (*models.Template, error)
}

// Artifact is a rendered export of a template.
type Artifact struct {
	Format      conversion.Format
	Filename    string
	ContentType string
	Body        []byte
}

// StoredExport describes an artifact written through the export storer.
type StoredExport struct {
	TemplateID string            `json:"template_id"`
	Format     conversion.Format `json:"format"`
	Filename   string            `json:"filename"`
	Path       string            `json:"path"`
}

// ExportProcessor renders stored templates to downloadable artifacts.
type ExportProcessor struct {
	Templates TemplateGetter
	Converter *conversion.Converter
	Storer    storage.ExportStorer
}

// NewExportProcessor creates a new ExportProcessor.
func NewExportProcessor(templates TemplateGetter, converter *conversion.Converter, storer storage.ExportStorer) *ExportProcessor {
	return &ExportProcessor{
		Templates: templates,
		Converter: converter,
		Storer:    storer,
	}
}

// RenderTemplate exports t in format f. The HTML body is the deterministic
// export document of the template's content.
func (ep *ExportProcessor) RenderTemplate(t *models.Template, f conversion.Format) (*Artifact, error) {
	htmlDoc := render.ExportHTML(t.Content, t.Title)
	body, err := ep.Converter.Convert(htmlDoc, f)
	if err != nil {
		return nil, fmt.Errorf("failed to convert template %s to %s: %w", t.ID, f, err)
	}
	return &Artifact{
		Format:      f,
		Filename:    render.ExportFilename(t.Title, f.Extension()),
		ContentType: f.ContentType(),
		Body:        []byte(body),
	}, nil
}

// Render loads a user's template and exports it in format f.
func (ep *ExportProcessor) Render(ctx context.Context, templateID, userID string, f conversion.Format) (*Artifact, error) {
	t, err := ep.Templates.GetTemplateByID(ctx, templateID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template %s: %w", templateID, err)
	}
	return ep.RenderTemplate(t, f)
}

// Store renders a user's template and writes the artifact to storage.
func (ep *ExportProcessor) Store(ctx context.Context, templateID, userID string, f conversion.Format) (*StoredExport, error) {
	artifact, err := ep.Render(ctx, templateID, userID, f)
	if err != nil {
		return nil, err
	}

	path, err := ep.Storer.Store(userID, templateID, artifact.Body, f.Extension())
	if err != nil {
		return nil, fmt.Errorf("failed to store export of template %s: %w", templateID, err)
	}

	log.Printf("INFO (ExportProcessor): Stored %s export of template %s at %s", f, templateID, path)
	return &StoredExport{
		TemplateID: templateID,
		Format:     f,
		Filename:   artifact.Filename,
		Path:       path,
	}, nil
}

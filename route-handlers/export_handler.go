package routehandlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/coreybb/mailcraft/conversion"
	"github.com/coreybb/mailcraft/delivery"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/processing"
	"github.com/coreybb/mailcraft/render"
	"github.com/coreybb/mailcraft/webutil"
)

// testSendTag labels test emails at the provider.
const testSendTag = "test-send"

// TestSender sends a rendered template to a reviewer.
type TestSender interface {
	SendTest(ctx context.Context, templateID string, msg delivery.Message) (*models.TestSend, error)
}

// ExportHandler serves previews and exports of stored templates.
type ExportHandler struct {
	Repo      TemplateStore
	Processor *processing.ExportProcessor
	Sender    TestSender
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(repo TemplateStore, processor *processing.ExportProcessor, sender TestSender) *ExportHandler {
	return &ExportHandler{Repo: repo, Processor: processor, Sender: sender}
}

type testSendRequest struct {
	To string `json:"to"`
}

func formatParam(r *http.Request) (conversion.Format, error) {
	f, ok := conversion.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		return "", webutil.ErrBadRequest("Invalid format value. Must be one of: html, text")
	}
	return f, nil
}

// HandlePreview returns the display tree of a template for ?viewport=.
func (h *ExportHandler) HandlePreview(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}
	viewport := render.ParseViewport(r.URL.Query().Get("viewport"))
	webutil.RespondWithJSON(w, http.StatusOK, render.Preview(t.Content, viewport))
	return nil
}

// HandlePreviewHTML renders the preview as a standalone page.
func (h *ExportHandler) HandlePreviewHTML(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}
	viewport := render.ParseViewport(r.URL.Query().Get("viewport"))
	page, err := render.PreviewHTML(t.Content, viewport, t.Title)
	if err != nil {
		log.Printf("ERROR: Failed to render preview page for template %s: %v", t.ID, err)
		return webutil.ErrInternalServerWrap("Failed to render preview", err)
	}
	webutil.RespondWithHTML(w, http.StatusOK, page)
	return nil
}

// HandleExport downloads the export of a template. ?format=text selects the
// plain-text alternative.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) error {
	f, err := formatParam(r)
	if err != nil {
		return err
	}
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	artifact, err := h.Processor.RenderTemplate(t, f)
	if err != nil {
		log.Printf("ERROR: Failed to export template %s: %v", t.ID, err)
		return webutil.ErrInternalServerWrap("Failed to export template", err)
	}

	log.Printf("INFO: Template exported: ID=%s, Format=%s, Filename=%s", t.ID, f, artifact.Filename)
	return webutil.RespondWithDownload(w, r, artifact.ContentType, artifact.Filename, artifact.Body)
}

// HandleStoreExport writes the export to artifact storage.
func (h *ExportHandler) HandleStoreExport(w http.ResponseWriter, r *http.Request) error {
	f, err := formatParam(r)
	if err != nil {
		return err
	}
	userID, templateID, err := ownedResourceParams(r, "Template")
	if err != nil {
		return err
	}

	stored, err := h.Processor.Store(r.Context(), templateID, userID, f)
	if err != nil {
		return notFoundOr(err, "Template", "store export")
	}
	webutil.RespondWithJSON(w, http.StatusCreated, stored)
	return nil
}

// HandleTestSend emails the rendered template to the requested address.
func (h *ExportHandler) HandleTestSend(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	var req testSendRequest
	if err := decodeJSONBody(r, &req, true, false); err != nil {
		return err
	}
	if _, err := delivery.ParseRecipient(req.To); err != nil {
		return webutil.ErrBadRequestWrap("A valid recipient address is required", err)
	}

	htmlArtifact, err := h.Processor.RenderTemplate(t, conversion.FormatHTML)
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render template", err)
	}
	textArtifact, err := h.Processor.RenderTemplate(t, conversion.FormatText)
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render template", err)
	}

	record, err := h.Sender.SendTest(r.Context(), t.ID, delivery.Message{
		To:       req.To,
		Subject:  t.Title,
		Tag:      testSendTag,
		HTMLBody: string(htmlArtifact.Body),
		TextBody: string(textArtifact.Body),
	})
	switch {
	case errors.Is(err, delivery.ErrNoProvider):
		return webutil.ErrServiceUnavailable("Test sends are not configured")
	case errors.Is(err, delivery.ErrInvalidRecipient):
		return webutil.ErrBadRequestWrap("A valid recipient address is required", err)
	case err != nil:
		return webutil.ErrBadGatewayWrap("Failed to send test email", err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, record)
	return nil
}

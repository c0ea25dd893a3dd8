package routehandlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/webutil"
	"github.com/google/uuid"
)

// TemplateHandler holds dependencies for template route handlers.
type TemplateHandler struct {
	Repo     TemplateStore
	Profiles ProfileEnsurer
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(repo TemplateStore, profiles ProfileEnsurer) *TemplateHandler {
	return &TemplateHandler{Repo: repo, Profiles: profiles}
}

type createTemplateRequest struct {
	Title     *string            `json:"title,omitempty"`
	ProjectID *string            `json:"project_id,omitempty"`
	Content   *document.Document `json:"content,omitempty"`
}

// updateTemplateRequest replaces only the fields that are present.
type updateTemplateRequest struct {
	Title     *string            `json:"title,omitempty"`
	Content   *document.Document `json:"content,omitempty"`
	IsPublic  *bool              `json:"is_public,omitempty"`
	ProjectID *string            `json:"project_id,omitempty"`
}

func validProjectID(id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return nil, webutil.ErrBadRequest("Invalid project ID format")
	}
	return id, nil
}

// ensureProfile makes sure the owning profile row exists before a template
// or project is written for userID.
func ensureProfile(r *http.Request, profiles ProfileEnsurer, userID string) error {
	if profiles == nil {
		return nil
	}
	if _, err := profiles.EnsureProfile(r.Context(), userID); err != nil {
		return profileError(userID, err)
	}
	return nil
}

// HandleCreateTemplate creates a new template. Every field is optional.
func (h *TemplateHandler) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return err
	}

	var req createTemplateRequest
	if err := decodeJSONBody(r, &req, true, true); err != nil {
		return err
	}
	projectID, err := validProjectID(req.ProjectID)
	if err != nil {
		return err
	}

	title := models.DefaultTemplateTitle
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}
	content := document.New()
	if req.Content != nil {
		content = *req.Content
	}

	if err := ensureProfile(r, h.Profiles, userID); err != nil {
		return err
	}

	now := time.Now().UTC()
	newTemplate := models.Template{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProjectID: projectID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Repo.CreateTemplate(r.Context(), &newTemplate); err != nil {
		log.Printf("ERROR: Failed to create template for user %s: %v", userID, err)
		return webutil.ErrInternalServerWrap("Failed to create template", err)
	}

	log.Printf("INFO: Template created: ID=%s, Title=%s, UserID=%s", newTemplate.ID, newTemplate.Title, userID)
	webutil.RespondWithJSON(w, http.StatusCreated, newTemplate)
	return nil
}

// HandleGetTemplates lists the user's templates; ?q= filters by title.
func (h *TemplateHandler) HandleGetTemplates(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return err
	}

	templates, err := h.Repo.GetTemplatesByUserID(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("ERROR: Failed to list templates for user %s: %v", userID, err)
		return webutil.ErrInternalServerWrap("Failed to retrieve templates", err)
	}
	if templates == nil {
		templates = []models.Template{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, templates)
	return nil
}

type templateGetter interface {
	GetTemplateByID(ctx context.Context, templateID string, userID string) (*models.Template, error)
}

// loadTemplate reads the {user_id}/{id} path and fetches the template.
func loadTemplate(r *http.Request, repo templateGetter) (*models.Template, error) {
	userID, templateID, err := ownedResourceParams(r, "Template")
	if err != nil {
		return nil, err
	}
	t, err := repo.GetTemplateByID(r.Context(), templateID, userID)
	if err != nil {
		return nil, notFoundOr(err, "Template", "retrieve template")
	}
	return t, nil
}

func (h *TemplateHandler) HandleGetTemplate(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, t)
	return nil
}

// HandleUpdateTemplate saves the editor state of a template.
func (h *TemplateHandler) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	var req updateTemplateRequest
	if err := decodeJSONBody(r, &req, true, false); err != nil {
		return err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return webutil.ErrBadRequest("Template title cannot be empty")
		}
		t.Title = title
	}
	if req.Content != nil {
		t.Content = *req.Content
	}
	if req.IsPublic != nil {
		t.IsPublic = *req.IsPublic
	}
	if req.ProjectID != nil {
		projectID, err := validProjectID(req.ProjectID)
		if err != nil {
			return err
		}
		t.ProjectID = projectID
	}

	return saveTemplate(w, r, h.Repo, t, http.StatusOK)
}

type templateUpdater interface {
	UpdateTemplate(ctx context.Context, template *models.Template) error
}

// saveTemplate persists t and responds with it.
func saveTemplate(w http.ResponseWriter, r *http.Request, repo templateUpdater, t *models.Template, status int) error {
	if err := repo.UpdateTemplate(r.Context(), t); err != nil {
		return notFoundOr(err, "Template", "update template")
	}
	log.Printf("INFO: Template updated: ID=%s, Blocks=%d", t.ID, t.Content.Len())
	webutil.RespondWithJSON(w, status, t)
	return nil
}

func (h *TemplateHandler) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) error {
	userID, templateID, err := ownedResourceParams(r, "Template")
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteTemplate(r.Context(), templateID, userID); err != nil {
		return notFoundOr(err, "Template", "delete template")
	}

	log.Printf("INFO: Template deleted: ID=%s, UserID=%s", templateID, userID)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// HandleDuplicateTemplate copies one of the user's templates.
func (h *TemplateHandler) HandleDuplicateTemplate(w http.ResponseWriter, r *http.Request) error {
	source, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	dup, err := duplicate(r, h.Repo, source, source.UserID, source.ProjectID)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusCreated, dup)
	return nil
}

type duplicator interface {
	DuplicateTemplate(ctx context.Context, source *models.Template, dup *models.Template) error
}

// duplicate stores a private copy of source owned by userID.
func duplicate(r *http.Request, repo duplicator, source *models.Template, userID string, projectID *string) (*models.Template, error) {
	dup := &models.Template{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProjectID: projectID,
		Title:     models.CopyTitle(source.Title),
		Content:   source.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.DuplicateTemplate(r.Context(), source, dup); err != nil {
		log.Printf("ERROR: Failed to duplicate template %s for user %s: %v", source.ID, userID, err)
		return nil, webutil.ErrInternalServerWrap("Failed to duplicate template", err)
	}
	dup.UpdatedAt = dup.CreatedAt

	log.Printf("INFO: Template duplicated: Source=%s, ID=%s, UserID=%s", source.ID, dup.ID, userID)
	return dup, nil
}

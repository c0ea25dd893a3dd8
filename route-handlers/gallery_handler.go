package routehandlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/render"
	"github.com/coreybb/mailcraft/webutil"
	"github.com/microcosm-cc/bluemonday"
)

// GalleryHandler serves templates that their owners have made public.
type GalleryHandler struct {
	Repo     GalleryStore
	Profiles ProfileEnsurer
	policy   *bluemonday.Policy
}

func NewGalleryHandler(repo GalleryStore, profiles ProfileEnsurer) *GalleryHandler {
	return &GalleryHandler{Repo: repo, Profiles: profiles, policy: bluemonday.UGCPolicy()}
}

// allowedURLSchemes are the link schemes kept in gallery previews.
var allowedURLSchemes = map[string]bool{"": true, "http": true, "https": true, "mailto": true}

func safeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !allowedURLSchemes[strings.ToLower(u.Scheme)] {
		return render.FallbackButtonHref
	}
	return raw
}

// sanitize makes another user's document safe to display: text markup goes
// through the UGC policy and links with unexpected schemes are neutralized.
func (h *GalleryHandler) sanitize(doc document.Document) document.Document {
	return doc.MapText(h.policy.Sanitize).MapURLs(safeURL)
}

func (h *GalleryHandler) HandleGetGallery(w http.ResponseWriter, r *http.Request) error {
	templates, err := h.Repo.GetPublicTemplates(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("ERROR: Failed to list gallery templates: %v", err)
		return webutil.ErrInternalServerWrap("Failed to retrieve gallery", err)
	}
	if templates == nil {
		templates = []models.GalleryTemplate{}
	}
	for i := range templates {
		templates[i].Content = h.sanitize(templates[i].Content)
	}
	webutil.RespondWithJSON(w, http.StatusOK, templates)
	return nil
}

func (h *GalleryHandler) loadPublic(r *http.Request) (*models.GalleryTemplate, error) {
	templateID, err := uuidParam(r, ParamID, "Template ID")
	if err != nil {
		return nil, err
	}
	t, err := h.Repo.GetPublicTemplate(r.Context(), templateID)
	if err != nil {
		return nil, notFoundOr(err, "Template", "retrieve public template")
	}
	return t, nil
}

// HandleGetGalleryTemplate returns one public template and counts the view.
func (h *GalleryHandler) HandleGetGalleryTemplate(w http.ResponseWriter, r *http.Request) error {
	t, err := h.loadPublic(r)
	if err != nil {
		return err
	}
	if err := h.Repo.IncrementViews(r.Context(), t.ID); err != nil {
		log.Printf("WARN: Failed to count view of template %s: %v", t.ID, err)
	} else {
		t.ViewsCount++
	}

	t.Content = h.sanitize(t.Content)
	webutil.RespondWithJSON(w, http.StatusOK, t)
	return nil
}

// HandleGetGalleryPreview returns the sanitized display tree of a public template.
func (h *GalleryHandler) HandleGetGalleryPreview(w http.ResponseWriter, r *http.Request) error {
	t, err := h.loadPublic(r)
	if err != nil {
		return err
	}
	viewport := render.ParseViewport(r.URL.Query().Get("viewport"))
	webutil.RespondWithJSON(w, http.StatusOK, render.Preview(h.sanitize(t.Content), viewport))
	return nil
}

// HandleForkGalleryTemplate copies a public template into the user's templates.
func (h *GalleryHandler) HandleForkGalleryTemplate(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return err
	}
	source, err := h.loadPublic(r)
	if err != nil {
		return err
	}
	if err := ensureProfile(r, h.Profiles, userID); err != nil {
		return err
	}

	dup, err := duplicate(r, h.Repo, &source.Template, userID, nil)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusCreated, dup)
	return nil
}

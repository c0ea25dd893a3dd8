package routehandlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/coreybb/mailcraft/datastore"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/webutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Path parameter names shared with the router.
const (
	ParamUserID  = "user_id"
	ParamID      = "id"
	ParamBlockID = "block_id"
)

// maxBodyBytes bounds request payloads; a template document is small.
const maxBodyBytes = 1 << 20

// TemplateStore is the persistence surface the template handlers need.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, template *models.Template) error
	GetTemplateByID(ctx context.Context, templateID string, userID string) (*models.Template, error)
	GetTemplatesByUserID(ctx context.Context, userID string, search string) ([]models.Template, error)
	UpdateTemplate(ctx context.Context, template *models.Template) error
	DeleteTemplate(ctx context.Context, templateID string, userID string) error
	DuplicateTemplate(ctx context.Context, source *models.Template, dup *models.Template) error
}

// GalleryStore exposes public templates.
type GalleryStore interface {
	GetPublicTemplates(ctx context.Context, search string) ([]models.GalleryTemplate, error)
	GetPublicTemplate(ctx context.Context, templateID string) (*models.GalleryTemplate, error)
	IncrementViews(ctx context.Context, templateID string) error
	DuplicateTemplate(ctx context.Context, source *models.Template, dup *models.Template) error
}

// ProjectStore is the persistence surface of the project handlers.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByID(ctx context.Context, projectID string, userID string) (*models.Project, error)
	GetProjectsByUserID(ctx context.Context, userID string, search string) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID string, userID string) error
}

// ProjectTemplateLister lists the templates filed under a project.
type ProjectTemplateLister interface {
	GetTemplatesByProjectID(ctx context.Context, projectID string, userID string) ([]models.Template, error)
}

// ProfileEnsurer returns a user's profile, creating it on first use.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// uuidParam reads a path parameter that must be a UUID.
func uuidParam(r *http.Request, name, label string) (string, error) {
	v := chi.URLParam(r, name)
	if v == "" {
		return "", webutil.ErrBadRequest(label + " path parameter is required")
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", webutil.ErrBadRequest("Invalid " + label + " format")
	}
	return v, nil
}

func userIDParam(r *http.Request) (string, error) {
	return uuidParam(r, ParamUserID, "User ID")
}

// ownedResourceParams reads the {user_id} and {id} path parameters.
func ownedResourceParams(r *http.Request, label string) (userID, id string, err error) {
	if userID, err = userIDParam(r); err != nil {
		return "", "", err
	}
	if id, err = uuidParam(r, ParamID, label+" ID"); err != nil {
		return "", "", err
	}
	return userID, id, nil
}

// decodeJSONBody decodes the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSONBody(r *http.Request, dst any, strict, allowEmpty bool) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	return nil
}

// notFoundOr maps a missing row to a 404 and anything else to a logged 500.
func notFoundOr(err error, resource, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return webutil.ErrNotFoundWrap(resource+" not found", err)
	}
	log.Printf("ERROR: Failed to %s: %v", action, err)
	return webutil.ErrInternalServerWrap("Failed to "+action, err)
}

// profileError maps a failed profile lookup to an HTTP error.
func profileError(userID string, err error) error {
	log.Printf("ERROR: Failed to ensure profile for user %s: %v", userID, err)
	if errors.Is(err, datastore.ErrUsernameTaken) {
		return webutil.ErrConflict("Could not allocate a public username, please retry")
	}
	return webutil.ErrInternalServerWrap("Failed to load user profile", err)
}

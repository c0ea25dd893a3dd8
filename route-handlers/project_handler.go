package routehandlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/webutil"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	Repo      ProjectStore
	Templates ProjectTemplateLister
	Profiles  ProfileEnsurer
}

func NewProjectHandler(repo ProjectStore, templates ProjectTemplateLister, profiles ProfileEnsurer) *ProjectHandler {
	return &ProjectHandler{Repo: repo, Templates: templates, Profiles: profiles}
}

type createProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

func (h *ProjectHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return err
	}

	var req createProjectRequest
	if err := decodeJSONBody(r, &req, true, true); err != nil {
		return err
	}

	title := models.DefaultProjectTitle
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}
	description := models.DefaultProjectDescription
	if req.Description != nil {
		description = *req.Description
	}

	if err := ensureProfile(r, h.Profiles, userID); err != nil {
		return err
	}

	now := time.Now().UTC()
	project := models.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Repo.CreateProject(r.Context(), &project); err != nil {
		log.Printf("ERROR: Failed to create project for user %s: %v", userID, err)
		return webutil.ErrInternalServerWrap("Failed to create project", err)
	}

	log.Printf("INFO: Project created: ID=%s, Title=%s, UserID=%s", project.ID, project.Title, userID)
	webutil.RespondWithJSON(w, http.StatusCreated, project)
	return nil
}

func (h *ProjectHandler) HandleGetProjects(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return err
	}

	projects, err := h.Repo.GetProjectsByUserID(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("ERROR: Failed to list projects for user %s: %v", userID, err)
		return webutil.ErrInternalServerWrap("Failed to retrieve projects", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, projects)
	return nil
}

func (h *ProjectHandler) HandleGetProject(w http.ResponseWriter, r *http.Request) error {
	userID, projectID, err := ownedResourceParams(r, "Project")
	if err != nil {
		return err
	}

	project, err := h.Repo.GetProjectByID(r.Context(), projectID, userID)
	if err != nil {
		return notFoundOr(err, "Project", "retrieve project")
	}
	webutil.RespondWithJSON(w, http.StatusOK, project)
	return nil
}

// HandleGetProjectTemplates lists the templates filed under a project.
func (h *ProjectHandler) HandleGetProjectTemplates(w http.ResponseWriter, r *http.Request) error {
	userID, projectID, err := ownedResourceParams(r, "Project")
	if err != nil {
		return err
	}

	if _, err := h.Repo.GetProjectByID(r.Context(), projectID, userID); err != nil {
		return notFoundOr(err, "Project", "retrieve project")
	}
	templates, err := h.Templates.GetTemplatesByProjectID(r.Context(), projectID, userID)
	if err != nil {
		log.Printf("ERROR: Failed to list templates of project %s: %v", projectID, err)
		return webutil.ErrInternalServerWrap("Failed to retrieve project templates", err)
	}
	if templates == nil {
		templates = []models.Template{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, templates)
	return nil
}

func (h *ProjectHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) error {
	userID, projectID, err := ownedResourceParams(r, "Project")
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteProject(r.Context(), projectID, userID); err != nil {
		return notFoundOr(err, "Project", "delete project")
	}

	log.Printf("INFO: Project deleted: ID=%s, UserID=%s", projectID, userID)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

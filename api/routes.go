package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	rh "github.com/coreybb/mailcraft/route-handlers"
	"github.com/coreybb/mailcraft/webutil"
)

const (
	apiBasePath       = "/api"
	usersBasePath     = "/users"
	templatesSubPath  = "/templates"
	projectsSubPath   = "/projects"
	gallerySubPath    = "/gallery"
	profileSubPath    = "/profile"
	blocksSubPath     = "/blocks"
	defaultReqTimeout = 60 * time.Second
)

// Handlers groups the route handlers served by the API.
type Handlers struct {
	Templates *rh.TemplateHandler
	Blocks    *rh.BlockHandler
	Exports   *rh.ExportHandler
	Projects  *rh.ProjectHandler
	Gallery   *rh.GalleryHandler
	Profiles  *rh.ProfileHandler
}

// SetupRoutes builds the HTTP router. A zero requestTimeout uses the default.
func SetupRoutes(h Handlers, requestTimeout time.Duration) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = defaultReqTimeout
	}

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout(requestTimeout))

	r.Route(apiBasePath, func(r chi.Router) {
		userPath := usersBasePath + pathWithParam("", rh.ParamUserID)
		r.Route(userPath, func(r chi.Router) {
			r.Get(profileSubPath, webutil.MakeHandler(h.Profiles.HandleGetProfile))
			configureTemplateRoutes(r, h)
			configureProjectRoutes(r, h.Projects)
			r.Post(gallerySubPath+pathWithParam("", rh.ParamID)+"/fork", webutil.MakeHandler(h.Gallery.HandleForkGalleryTemplate))
		})
		configureGalleryRoutes(r, h.Gallery)
	})

	r.Get("/healthz", handleHealthCheck)

	return r
}

// Helper for constructing paths with a parameter
func pathWithParam(basePath string, paramName string) string {
	return basePath + "/{" + paramName + "}"
}

// --- Template Routes ---
// /api/users/{user_id}/templates/...
func configureTemplateRoutes(r chi.Router, h Handlers) {
	r.Route(templatesSubPath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(h.Templates.HandleGetTemplates))
		r.Post("/", webutil.MakeHandler(h.Templates.HandleCreateTemplate))

		r.Route(pathWithParam("", rh.ParamID), func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(h.Templates.HandleGetTemplate))
			r.Put("/", webutil.MakeHandler(h.Templates.HandleUpdateTemplate))
			r.Delete("/", webutil.MakeHandler(h.Templates.HandleDeleteTemplate))
			r.Post("/duplicate", webutil.MakeHandler(h.Templates.HandleDuplicateTemplate))

			r.Route(blocksSubPath, func(r chi.Router) {
				r.Post("/", webutil.MakeHandler(h.Blocks.HandleAddBlock))
				r.Post("/reorder", webutil.MakeHandler(h.Blocks.HandleReorderBlocks))
				r.Patch(pathWithParam("", rh.ParamBlockID), webutil.MakeHandler(h.Blocks.HandleUpdateBlock))
				r.Delete(pathWithParam("", rh.ParamBlockID), webutil.MakeHandler(h.Blocks.HandleDeleteBlock))
			})

			r.Get("/preview", webutil.MakeHandler(h.Exports.HandlePreview))
			r.Get("/preview.html", webutil.MakeHandler(h.Exports.HandlePreviewHTML))
			r.Get("/export", webutil.MakeHandler(h.Exports.HandleExport))
			r.Post("/export/store", webutil.MakeHandler(h.Exports.HandleStoreExport))
			r.Post("/test-send", webutil.MakeHandler(h.Exports.HandleTestSend))
		})
	})
}

// --- Project Routes ---
func configureProjectRoutes(r chi.Router, handler *rh.ProjectHandler) {
	r.Route(projectsSubPath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetProjects))
		r.Post("/", webutil.MakeHandler(handler.HandleCreateProject))
		r.Route(pathWithParam("", rh.ParamID), func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(handler.HandleGetProject))
			r.Delete("/", webutil.MakeHandler(handler.HandleDeleteProject))
			r.Get(templatesSubPath, webutil.MakeHandler(handler.HandleGetProjectTemplates))
		})
	})
}

// --- Gallery Routes ---
func configureGalleryRoutes(r chi.Router, handler *rh.GalleryHandler) {
	r.Route(gallerySubPath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetGallery))
		r.Route(pathWithParam("", rh.ParamID), func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(handler.HandleGetGalleryTemplate))
			r.Get("/preview", webutil.MakeHandler(handler.HandleGetGalleryPreview))
		})
	})
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

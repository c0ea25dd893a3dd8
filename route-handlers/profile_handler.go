package routehandlers

import (
	"net/http"

	"github.com/coreybb/mailcraft/webutil"
)

type ProfileHandler struct {
	Profiles ProfileEnsurer
}

func NewProfileHandler(profiles ProfileEnsurer) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// HandleGetProfile returns the user's profile, creating it on first access.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return err
	}

	profile, err := h.Profiles.EnsureProfile(r.Context(), userID)
	if err != nil {
		return profileError(userID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, profile)
	return nil
}

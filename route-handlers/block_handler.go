package routehandlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/webutil"
	"github.com/go-chi/chi/v5"
)

// BlockHandler applies single document operations to stored templates. Each
// request loads the template content, applies exactly one operation and saves
// the result. Operations that target a missing block or an invalid position
// leave the document unchanged and still succeed.
type BlockHandler struct {
	Repo  TemplateStore
	NewID document.IDGenerator
}

// NewBlockHandler creates a new BlockHandler.
func NewBlockHandler(repo TemplateStore) *BlockHandler {
	return &BlockHandler{Repo: repo, NewID: document.NewID}
}

type addBlockRequest struct {
	Type string `json:"type"`
}

type reorderRequest struct {
	Source      *int `json:"source"`
	Destination *int `json:"destination"`
}

// HandleAddBlock appends a block with default content.
func (h *BlockHandler) HandleAddBlock(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	var req addBlockRequest
	if err := decodeJSONBody(r, &req, true, false); err != nil {
		return err
	}
	blockType, ok := document.ParseBlockType(req.Type)
	if !ok {
		return webutil.ErrBadRequestWrap("Invalid block type: must be one of text, image, button, divider", document.ErrUnknownBlockType)
	}

	doc, err := t.Content.AddBlockWithIDs(blockType, h.NewID)
	if err != nil {
		if errors.Is(err, document.ErrUnknownBlockType) {
			return webutil.ErrBadRequestWrap("Invalid block type", err)
		}
		log.Printf("ERROR: Failed to add block to template %s: %v", t.ID, err)
		return webutil.ErrInternalServerWrap("Failed to add block", err)
	}
	t.Content = doc

	log.Printf("INFO: Block added: Template=%s, Type=%s, BlockID=%s", t.ID, blockType, doc.Blocks[doc.Len()-1].BlockID())
	return saveTemplate(w, r, h.Repo, t, http.StatusCreated)
}

// HandleUpdateBlock merges the request fields into one block. Fields that do
// not belong to the block's type are ignored.
func (h *BlockHandler) HandleUpdateBlock(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	var patch document.Patch
	if err := decodeJSONBody(r, &patch, false, false); err != nil {
		return err
	}

	return h.apply(w, r, t, t.Content.UpdateBlock(chi.URLParam(r, ParamBlockID), patch))
}

// HandleDeleteBlock removes a block. Deleting a missing block is a no-op.
func (h *BlockHandler) HandleDeleteBlock(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	return h.apply(w, r, t, t.Content.DeleteBlock(chi.URLParam(r, ParamBlockID)))
}

// HandleReorderBlocks moves the block at source to destination. A missing
// destination is a cancelled drag and leaves the template untouched.
func (h *BlockHandler) HandleReorderBlocks(w http.ResponseWriter, r *http.Request) error {
	t, err := loadTemplate(r, h.Repo)
	if err != nil {
		return err
	}

	var req reorderRequest
	if err := decodeJSONBody(r, &req, true, false); err != nil {
		return err
	}
	if req.Source == nil {
		return webutil.ErrBadRequest("Source index is required")
	}
	if req.Destination == nil {
		webutil.RespondWithJSON(w, http.StatusOK, t)
		return nil
	}

	return h.apply(w, r, t, t.Content.Reorder(*req.Source, *req.Destination))
}

// apply saves doc as the template's content. An unchanged document is
// returned as-is so updated_at only moves on real edits.
func (h *BlockHandler) apply(w http.ResponseWriter, r *http.Request, t *models.Template, doc document.Document) error {
	if t.Content.Equal(doc) {
		webutil.RespondWithJSON(w, http.StatusOK, t)
		return nil
	}
	t.Content = doc
	return saveTemplate(w, r, h.Repo, t, http.StatusOK)
}

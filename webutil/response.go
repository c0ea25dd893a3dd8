package webutil

import (
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"net/http"
)

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: Failed to marshal JSON response: %v", err)
		w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondWithHTML writes an HTML page.
func RespondWithHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set(HeaderContentType, ContentTypeHTMLUTF8)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// RespondWithDownload writes body as an attachment named filename. The body
// is tagged with its SHA-256 ETag, and a matching If-None-Match yields 304.
func RespondWithDownload(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) error {
	etag, err := GenerateETag(body)
	if err != nil {
		return fmt.Errorf("failed to tag download: %w", err)
	}

	w.Header().Set(HeaderETag, etag)
	w.Header().Set(HeaderCacheControl, "no-cache")
	if r.Header.Get(HeaderIfNoneMatch) == etag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set(HeaderContentType, contentType)
	w.Header().Set(HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return nil
}

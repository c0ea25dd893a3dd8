package models

import (
	"time"

	"github.com/coreybb/mailcraft/document"
)

const (
	DefaultTemplateTitle = "Untitled Template"
	copyTitleSuffix      = " (Copy)"
)

// Template is one stored email template. Content is persisted verbatim as the
// document's {"blocks": [...]} JSON.
type Template struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	ProjectID  *string           `json:"project_id,omitempty"`
	Title      string            `json:"title"`
	Content    document.Document `json:"content"`
	IsPublic   bool              `json:"is_public"`
	ViewsCount int               `json:"views_count"`
	ForksCount int               `json:"forks_count"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CopyTitle returns the title given to a duplicate of a template titled title.
func CopyTitle(title string) string {
	return title + copyTitleSuffix
}

// GalleryTemplate is a public template as listed in the gallery, with the
// owner's public username.
type GalleryTemplate struct {
	Template
	OwnerUsername string `json:"owner_username"`
}

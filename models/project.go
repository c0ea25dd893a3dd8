package models

import "time"

const (
	DefaultProjectTitle       = "Untitled Project"
	DefaultProjectDescription = "A new email project"
)

// Project groups templates belonging to one user.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

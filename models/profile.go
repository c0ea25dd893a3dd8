package models

import "time"

// Profile is the public face of an authenticated user. The id is the user id
// issued by the identity provider.
type Profile struct {
	ID             string    `json:"id"`
	PublicUsername string    `json:"public_username"`
	CreatedAt      time.Time `json:"created_at"`
}

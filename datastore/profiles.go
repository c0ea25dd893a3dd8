package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/coreybb/mailcraft/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrUsernameTaken is returned when a profile's public username is already in use.
var ErrUsernameTaken = errors.New("public username already taken")

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

type ProfileRepository struct {
	db          *sql.DB
	newUsername func() string
	now         func() time.Time
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db, newUsername: GenerateUsername, now: time.Now}
}

// GenerateUsername returns a public username of the form user-abc123.
func GenerateUsername() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 3)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("user-%s%03d", b, rand.Intn(1000))
}

// EnsureProfile returns the profile of userID, creating it with a generated
// public username on first use. A username collision is retried once with a
// timestamp suffix.
func (r *ProfileRepository) EnsureProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := r.GetProfileByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := r.now().UTC()
	profile = &models.Profile{ID: userID, PublicUsername: r.newUsername(), CreatedAt: now}
	err = r.CreateProfile(ctx, profile)
	if errors.Is(err, ErrUsernameTaken) {
		log.Printf("WARN (ProfileRepository): Username %s taken, retrying with suffix", profile.PublicUsername)
		profile.PublicUsername = fmt.Sprintf("%s-%d", profile.PublicUsername, now.UnixMilli())
		err = r.CreateProfile(ctx, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile for user %s: %w", userID, err)
	}

	// A concurrent request may have created the profile first.
	return r.GetProfileByID(ctx, userID)
}

// CreateProfile inserts a profile. Inserting an existing user id is a no-op.
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if _, err := uuid.Parse(profile.ID); err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	query := `
		INSERT INTO profiles (id, public_username, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, profile.ID, profile.PublicUsername, profile.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "profiles_public_username_key" {
			return fmt.Errorf("failed to insert profile %s: %w", profile.PublicUsername, ErrUsernameTaken)
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// GetProfileByID retrieves the profile of a user.
func (r *ProfileRepository) GetProfileByID(ctx context.Context, userID string) (*models.Profile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	query := `
		SELECT id, public_username, created_at
		FROM profiles
		WHERE id = $1
	`
	var profile models.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&profile.ID, &profile.PublicUsername, &profile.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}
	return &profile, nil
}

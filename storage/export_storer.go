package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// defaultBasePath is the base directory for stored exports when none is configured.
const defaultBasePath = "_output"

// ExportStorer stores rendered template artifacts.
type ExportStorer interface {
	// Store saves content and returns the path where it was stored, relative
	// to the storer's base path. ext selects the file extension.
	Store(userID, templateID string, content []byte, ext string) (relativeStoragePath string, err error)
}

// LocalFileStorer implements ExportStorer on the local file system.
type LocalFileStorer struct {
	basePath string
}

// NewLocalFileStorer creates a new LocalFileStorer.
// If basePath is empty, it defaults to defaultBasePath.
func NewLocalFileStorer(basePath string) *LocalFileStorer {
	if basePath == "" {
		basePath = defaultBasePath
	}
	return &LocalFileStorer{basePath: basePath}
}

// BasePath returns the directory stored paths are relative to.
func (lfs *LocalFileStorer) BasePath() string {
	return lfs.basePath
}

// Store writes content to <basePath>/exports/<userID>/<templateID>.<ext> and
// returns exports/<userID>/<templateID>.<ext>. Storing the same template and
// extension again replaces the previous artifact.
func (lfs *LocalFileStorer) Store(userID, templateID string, content []byte, ext string) (string, error) {
	if userID == "" || templateID == "" {
		return "", fmt.Errorf("userID and templateID cannot be empty for storing exports")
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return "", fmt.Errorf("extension cannot be empty for storing exports")
	}
	for _, part := range []string{userID, templateID, ext} {
		if strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
			return "", fmt.Errorf("invalid path component %q", part)
		}
	}

	relativeDir := filepath.Join("exports", userID)
	fileName := templateID + "." + ext
	relativeStoragePath := filepath.Join(relativeDir, fileName)

	fullStorageDir := filepath.Join(lfs.basePath, relativeDir)
	fullStoragePath := filepath.Join(fullStorageDir, fileName)

	if err := os.MkdirAll(fullStorageDir, os.ModePerm); err != nil {
		log.Printf("ERROR (LocalFileStorer): Failed to create storage directory '%s': %v", fullStorageDir, err)
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(fullStoragePath, content, 0644); err != nil {
		log.Printf("ERROR (LocalFileStorer): Failed to write export to '%s': %v", fullStoragePath, err)
		return "", fmt.Errorf("failed to save export: %w", err)
	}

	log.Printf("INFO (LocalFileStorer): Saved export to: %s", fullStoragePath)
	return relativeStoragePath, nil
}

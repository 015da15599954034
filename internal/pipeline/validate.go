package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/generation"
)

var allowedImageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// ValidateImage checks that path names an existing file with a supported
// image extension.
func ValidateImage(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return &generation.ValidationError{Path: path, Reason: "unsupported file type"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &generation.ValidationError{Path: path, Reason: "file not found"}
	}
	if info.IsDir() {
		return &generation.ValidationError{Path: path, Reason: "is a directory"}
	}
	return nil
}

// AllowedImageExtension reports whether a filename carries a supported image
// extension, without touching the filesystem. Used for upload validation.
func AllowedImageExtension(filename string) bool {
	_, ok := allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

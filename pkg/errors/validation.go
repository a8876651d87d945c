package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxPathLength = 500

// ValidatePath validates a path taken from an upload or an archive entry.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateUploadName validates the client-supplied name of an uploaded file.
// Only the base name is kept by intake, so directory components are allowed
// but the base must be a plain, visible file name.
func ValidateUploadName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "upload name cannot be empty")
	}
	base := filepath.Base(filepath.ToSlash(name))
	if base == "." || base == "/" || base == ".." {
		return New(ErrCodeInvalidInput, "upload name %q has no file component", name)
	}
	if strings.HasPrefix(base, ".") {
		return New(ErrCodeInvalidInput, "upload name cannot be a hidden file: %q", name)
	}
	for _, r := range base {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "upload name contains invalid control characters")
		}
	}
	return nil
}

// ValidateDirection validates a layout flow direction.
func ValidateDirection(dir string) error {
	switch dir {
	case "LR", "TB":
		return nil
	default:
		return New(ErrCodeInvalidOptions, "invalid direction %q (want LR or TB)", dir)
	}
}

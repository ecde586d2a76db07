// Package validation checks user-supplied paths and files before the CLI
// opens them.
package validation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// Limits on user input.
const (
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxLayoutSize is the maximum size of a layout file (64 KB).
	MaxLayoutSize = 64 << 10
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrFileTooLarge     = errors.New("file too large")
)

// ValidatePath rejects empty and overlong paths and paths containing
// control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ReadLimited reads the file at path, failing with ErrFileTooLarge if it
// holds more than limit bytes.
func ReadLimited(path string, limit int64) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if apperrors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFound("file", path)
		}
		return nil, apperrors.NewIO("open", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apperrors.NewIO("read", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, limit)
	}
	return data, nil
}

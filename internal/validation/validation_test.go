package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid relative", "data/file.bin", nil},
		{"valid absolute", "/tmp/file.bin", nil},
		{"unicode", "データ.bin", nil},
		{"empty", "", ErrEmptyPath},
		{"too long", strings.Repeat("a", MaxPathLength+1), ErrPathTooLong},
		{"null byte", "file\x00.bin", ErrInvalidCharacter},
		{"newline", "file\n.bin", ErrInvalidCharacter},
		{"escape", "file\x1b.bin", ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePath(%q) unexpected error: %v", tt.path, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestReadLimited(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.txt")
	if err := os.WriteFile(path, []byte("a:u8"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	data, err := ReadLimited(path, 4)
	if err != nil {
		t.Fatalf("ReadLimited() unexpected error: %v", err)
	}
	if string(data) != "a:u8" {
		t.Errorf("ReadLimited() = %q, want %q", data, "a:u8")
	}

	if _, err := ReadLimited(path, 3); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ReadLimited() over limit error = %v, want ErrFileTooLarge", err)
	}

	if _, err := ReadLimited(filepath.Join(dir, "missing"), 10); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ReadLimited() missing error = %v, want ErrNotFound", err)
	}

	if _, err := ReadLimited("", 10); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("ReadLimited() empty path error = %v, want ErrEmptyPath", err)
	}
}

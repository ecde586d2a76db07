// Package digest computes content hashes of windows.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
	"github.com/FocuswithJustin/winstream/core/stream"
)

// HashResult contains both SHA-256 and BLAKE3 hashes of a window's bytes.
type HashResult struct {
	SHA256 string `json:"sha256" yaml:"sha256"`
	BLAKE3 string `json:"blake3" yaml:"blake3"`
	Size   int64  `json:"size" yaml:"size"`
}

// Sum hashes the whole of w. It reads through a child window, so the
// caller's cursor does not move.
func Sum(w *stream.Window) (*HashResult, error) {
	view, err := stream.OpenFrom(w, 0, stream.RestOfStore)
	if err != nil {
		return nil, err
	}
	defer view.Close()
	return SumReader(view)
}

// SumReader hashes everything r yields.
func SumReader(r io.Reader) (*HashResult, error) {
	sh := sha256.New()
	b3 := blake3.New()
	n, err := io.Copy(io.MultiWriter(sh, b3), r)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash content")
	}
	return &HashResult{
		SHA256: hex.EncodeToString(sh.Sum(nil)),
		BLAKE3: hex.EncodeToString(b3.Sum(nil)),
		Size:   n,
	}, nil
}


// Verify hashes w and compares the result against a hex SHA-256 or BLAKE3
// digest. A mismatch is reported as a validation error.
func Verify(w *stream.Window, expected string) error {
	if len(expected) != sha256.Size*2 {
		return apperrors.NewValidation("digest", fmt.Sprintf("expected a %d-character hex digest", sha256.Size*2))
	}
	got, err := Sum(w)
	if err != nil {
		return err
	}
	if got.SHA256 == expected || got.BLAKE3 == expected {
		return nil
	}
	return apperrors.NewValidation("digest", fmt.Sprintf("content does not match %s", expected))
}

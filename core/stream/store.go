package stream

import (
	"io"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// Store is the raw byte medium underneath one or more windows.
//
// Implementations must be comparable (pointer types): the registry keys its
// entries by store identity.
type Store interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Len returns the current size of the store in bytes.
	Len() (int64, error)
}

// Mode specifies how a file-backed store is opened.
type Mode int

const (
	// ModeRead opens an existing file for reading only.
	ModeRead Mode = iota

	// ModeWrite opens a file for writing only. The file is created on the
	// first write.
	ModeWrite

	// ModeReadWrite opens a file for reading and writing. The file is
	// created on the first write.
	ModeReadWrite
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeReadWrite:
		return "readwrite"
	default:
		return "unknown"
	}
}

// MemoryStore is an in-memory Store that grows as it is written.
type MemoryStore struct {
	buf    []byte
	pos    int64
	closed bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreBytes returns a MemoryStore whose initial contents are data.
// The store takes ownership of data.
func NewMemoryStoreBytes(data []byte) *MemoryStore {
	return &MemoryStore{buf: data}
}

func (m *MemoryStore) check(op string) error {
	if m.closed {
		return apperrors.NewDisposed("memory store", op)
	}
	return nil
}

// Read implements io.Reader.
func (m *MemoryStore) Read(p []byte) (int, error) {
	if err := m.check("read"); err != nil {
		return 0, err
	}
	if m.pos >= int64(len(m.buf)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

// Write implements io.Writer. Writing past the end grows the buffer; a gap
// left by seeking past the end is zero filled.
func (m *MemoryStore) Write(p []byte) (int, error) {
	if err := m.check("write"); err != nil {
		return 0, err
	}
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		if end > int64(cap(m.buf)) {
			grown := make([]byte, end, max(end, 2*int64(cap(m.buf))))
			copy(grown, m.buf)
			m.buf = grown
		} else {
			old := len(m.buf)
			m.buf = m.buf[:end]
			clear(m.buf[old:])
		}
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker. Seeking past the end is allowed.
func (m *MemoryStore) Seek(offset int64, whence int) (int64, error) {
	if err := m.check("seek"); err != nil {
		return 0, err
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, apperrors.NewValidation("whence", "unknown seek mode")
	}
	if abs < 0 {
		return 0, apperrors.NewRange("position", abs, 0, -1)
	}
	m.pos = abs
	return abs, nil
}

// Len returns the number of bytes held.
func (m *MemoryStore) Len() (int64, error) {
	if err := m.check("get length"); err != nil {
		return 0, err
	}
	return int64(len(m.buf)), nil
}

// Bytes returns the stored bytes. The slice aliases the store's buffer.
func (m *MemoryStore) Bytes() ([]byte, error) {
	if err := m.check("get bytes"); err != nil {
		return nil, err
	}
	return m.buf, nil
}

// Close releases the buffer. Closing twice is a no-op.
func (m *MemoryStore) Close() error {
	m.closed = true
	m.buf = nil
	return nil
}

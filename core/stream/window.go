package stream

import (
	"io"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// RestOfStore is the length sentinel meaning "up to the end of the store".
// It is resolved to a concrete length when the window is opened or resized.
const RestOfStore int64 = -1

// copyBufferSize is the chunk size used by WriteTo.
const copyBufferSize = 32 * 1024

// Window is a bounded view [offset, offset+length) over a Store, with its own
// cursor relative to offset.
//
// A window whose end coincides with the end of its store grows, together
// with the store, when written past its length. Windows that end before the
// store does never grow.
type Window struct {
	h      *handle
	offset int64
	length int64
	pos    int64
	closed bool
}

func newWindow(h *handle, offset, length int64) *Window {
	liveWindows.Add(1)
	return &Window{h: h, offset: offset, length: length}
}

// resolveLength validates offset and length against an available size and
// resolves RestOfStore.
func resolveLength(offset, length, available int64) (int64, error) {
	if offset < 0 || offset > available {
		return 0, apperrors.NewRange("offset", offset, 0, available)
	}
	if length == RestOfStore {
		return available - offset, nil
	}
	if length < 0 || offset+length > available {
		return 0, apperrors.NewRange("length", length, 0, available-offset)
	}
	return length, nil
}

// Open opens a window over store starting at offset. length may be
// RestOfStore. The window takes one reference on the store.
func Open(store Store, offset, length int64) (*Window, error) {
	if store == nil {
		return nil, apperrors.NewValidation("store", "must not be nil")
	}
	if offset < 0 {
		return nil, apperrors.NewRange("offset", offset, 0, -1)
	}
	size, err := store.Len()
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(offset, length, size)
	if err != nil {
		return nil, err
	}
	return newWindow(acquire(store), offset, length), nil
}

// OpenFrom opens a sub-window of parent starting at the parent-relative
// offset. The sub-window must lie inside the parent and shares the parent's
// store and registry entry; it holds its own reference, so it stays usable
// after the parent is closed.
func OpenFrom(parent *Window, offset, length int64) (*Window, error) {
	if parent == nil {
		return nil, apperrors.NewValidation("parent", "must not be nil")
	}
	if err := parent.check("open sub-window"); err != nil {
		return nil, err
	}
	length, err := resolveLength(offset, length, parent.length)
	if err != nil {
		return nil, err
	}
	parent.h.retain()
	return newWindow(parent.h, parent.offset+offset, length), nil
}

// OpenFile opens a window over the whole file at path.
func OpenFile(path string, mode Mode) (*Window, error) {
	fs, err := OpenFileStore(path, mode)
	if err != nil {
		return nil, err
	}
	w, err := Open(fs, 0, RestOfStore)
	if err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// NewMemory opens a window over a new, empty in-memory store.
func NewMemory() *Window {
	return newWindow(acquire(NewMemoryStore()), 0, 0)
}

// OpenBytes opens a window over an in-memory store holding data.
// The store takes ownership of data.
func OpenBytes(data []byte) *Window {
	return newWindow(acquire(NewMemoryStoreBytes(data)), 0, int64(len(data)))
}

func (w *Window) check(op string) error {
	if w.closed {
		return apperrors.NewDisposed("window", op)
	}
	return nil
}

// Offset returns the window start within its store.
func (w *Window) Offset() (int64, error) {
	if err := w.check("get offset"); err != nil {
		return 0, err
	}
	return w.offset, nil
}

// Position returns the cursor relative to the window start.
func (w *Window) Position() (int64, error) {
	if err := w.check("get position"); err != nil {
		return 0, err
	}
	return w.pos, nil
}

// SetPosition moves the cursor. v must lie in [0, length].
func (w *Window) SetPosition(v int64) error {
	if err := w.check("set position"); err != nil {
		return err
	}
	if v < 0 || v > w.length {
		return apperrors.NewRange("position", v, 0, w.length)
	}
	w.pos = v
	return nil
}

// AbsolutePosition returns the cursor in store coordinates.
func (w *Window) AbsolutePosition() (int64, error) {
	if err := w.check("get absolute position"); err != nil {
		return 0, err
	}
	return w.offset + w.pos, nil
}

// Length returns the window length.
func (w *Window) Length() (int64, error) {
	if err := w.check("get length"); err != nil {
		return 0, err
	}
	return w.length, nil
}

// Len implements Store so that a window can back other windows.
func (w *Window) Len() (int64, error) {
	return w.Length()
}

// SetLength resizes the window. v is RestOfStore or a value in
// [0, store length - offset]. The cursor is clamped to the new length.
func (w *Window) SetLength(v int64) error {
	if err := w.check("set length"); err != nil {
		return err
	}
	size, err := w.h.store.Len()
	if err != nil {
		return err
	}
	available := size - w.offset
	if v == RestOfStore {
		v = available
	} else if v < 0 || v > available {
		return apperrors.NewRange("length", v, 0, available)
	}
	w.length = v
	if w.pos > w.length {
		w.pos = w.length
	}
	return nil
}

// EndOfStream reports whether the cursor is at the window end.
func (w *Window) EndOfStream() (bool, error) {
	if err := w.check("check end of stream"); err != nil {
		return false, err
	}
	return w.pos == w.length, nil
}

// Seek implements io.Seeker within the window. A target outside
// [0, length] fails and leaves the cursor where it was.
func (w *Window) Seek(offset int64, whence int) (int64, error) {
	if err := w.check("seek"); err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = w.pos + offset
	case io.SeekEnd:
		target = w.length + offset
	default:
		return w.pos, apperrors.NewValidation("whence", "unknown seek mode")
	}
	if target < 0 || target > w.length {
		return w.pos, apperrors.NewRange("position", target, 0, w.length)
	}
	w.pos = target
	return target, nil
}

// sync moves the shared store cursor to this window's absolute position.
// It runs before every transfer: a sibling window may have moved it.
func (w *Window) sync() error {
	_, err := w.h.store.Seek(w.offset+w.pos, io.SeekStart)
	return err
}

// ReadByte reads one byte. At the window end it returns ErrEndOfStream.
func (w *Window) ReadByte() (byte, error) {
	if err := w.check("read"); err != nil {
		return 0, err
	}
	if w.pos >= w.length {
		return 0, apperrors.ErrEndOfStream
	}
	if err := w.sync(); err != nil {
		return 0, err
	}
	var b [1]byte
	if _, err := io.ReadFull(w.h.store, b[:]); err != nil {
		return 0, storeError("read", err)
	}
	w.pos++
	return b[0], nil
}

// Read implements io.Reader. It reads at most the bytes left in the window
// and returns io.EOF once none are left.
func (w *Window) Read(p []byte) (int, error) {
	if err := w.check("read"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	remaining := w.length - w.pos
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	if err := w.sync(); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(w.h.store, p)
	w.pos += int64(n)
	if err != nil {
		return n, storeError("read", err)
	}
	return n, nil
}

// writable returns how many of n bytes may be written at the cursor.
func (w *Window) writable(n int64) (int64, error) {
	remaining := w.length - w.pos
	if n <= remaining {
		return n, nil
	}
	size, err := w.h.store.Len()
	if err != nil {
		return 0, err
	}
	if w.offset+w.length == size {
		return n, nil
	}
	return remaining, nil
}

// WriteByte writes one byte, growing a tail window if needed.
func (w *Window) WriteByte(b byte) error {
	if err := w.check("write"); err != nil {
		return err
	}
	n, err := w.writable(1)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrEndOfStream
	}
	if err := w.sync(); err != nil {
		return err
	}
	if _, err := w.h.store.Write([]byte{b}); err != nil {
		return err
	}
	w.advance(1)
	return nil
}

// Write implements io.Writer. A tail window grows to take all of p; other
// windows write what fits and report ErrEndOfStream for the rest.
func (w *Window) Write(p []byte) (int, error) {
	if err := w.check("write"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := w.writable(int64(len(p)))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, apperrors.ErrEndOfStream
	}
	if err := w.sync(); err != nil {
		return 0, err
	}
	m, err := w.h.store.Write(p[:n])
	w.advance(int64(m))
	if err != nil {
		return m, err
	}
	if m < len(p) {
		return m, apperrors.ErrEndOfStream
	}
	return m, nil
}

func (w *Window) advance(n int64) {
	w.pos += n
	if w.pos > w.length {
		w.length = w.pos
	}
}

// WriteTo implements io.WriterTo, copying from the cursor to the window end.
func (w *Window) WriteTo(dst io.Writer) (int64, error) {
	if err := w.check("read"); err != nil {
		return 0, err
	}
	buf := make([]byte, min(copyBufferSize, max(w.length-w.pos, 1)))
	var total int64
	for {
		n, err := w.Read(buf)
		if n > 0 {
			written, werr := dst.Write(buf[:n])
			total += int64(written)
			if werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Close disposes the window. It releases the window's reference on the
// store, closing the store if this was the last one. Closing twice is a no-op.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	liveWindows.Add(-1)
	return w.h.release()
}

// storeError marks a store that ran dry inside the window bounds.
func storeError(op string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return apperrors.NewIO(op, "", io.ErrUnexpectedEOF)
	}
	return err
}

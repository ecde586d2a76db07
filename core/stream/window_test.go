package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// references reports the current reference count of store's entry.
func references(store Store) int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if h, ok := registry.entries[store]; ok {
		return h.refs
	}
	return 0
}

func TestOpenWindowIsolation(t *testing.T) {
	store := NewMemoryStoreBytes([]byte{0x10, 0x20})

	w, err := Open(store, 1, 1)
	require.NoError(t, err)
	defer w.Close()

	length, err := w.Length()
	require.NoError(t, err)
	assert.EqualValues(t, 1, length)

	pos, err := w.Position()
	require.NoError(t, err)
	assert.EqualValues(t, 0, pos)

	b, err := w.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x20), b)

	_, err = w.ReadByte()
	assert.ErrorIs(t, err, apperrors.ErrEndOfStream)
}

func TestOpenBounds(t *testing.T) {
	tests := []struct {
		name       string
		offset     int64
		length     int64
		wantLength int64
		wantErr    error
	}{
		{name: "rest of store", offset: 1, length: RestOfStore, wantLength: 3},
		{name: "exact fit", offset: 2, length: 2, wantLength: 2},
		{name: "empty at end", offset: 4, length: 0, wantLength: 0},
		{name: "negative offset", offset: -1, length: 1, wantErr: apperrors.ErrOutOfRange},
		{name: "offset past end", offset: 5, length: RestOfStore, wantErr: apperrors.ErrOutOfRange},
		{name: "length past end", offset: 2, length: 3, wantErr: apperrors.ErrOutOfRange},
		{name: "negative length", offset: 0, length: -2, wantErr: apperrors.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStoreBytes([]byte{1, 2, 3, 4})
			before := LiveWindows()

			w, err := Open(store, tt.offset, tt.length)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, w)
				assert.Equal(t, before, LiveWindows())
				assert.Zero(t, references(store))
				return
			}
			require.NoError(t, err)
			defer w.Close()

			length, err := w.Length()
			require.NoError(t, err)
			assert.Equal(t, tt.wantLength, length)
			offset, err := w.Offset()
			require.NoError(t, err)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestOpenNilStore(t *testing.T) {
	_, err := Open(nil, 0, RestOfStore)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = OpenFrom(nil, 0, RestOfStore)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestReferenceCounting(t *testing.T) {
	store := NewMemoryStoreBytes([]byte{0xAA, 0xBB, 0xCC})

	first, err := Open(store, 0, RestOfStore)
	require.NoError(t, err)
	second, err := Open(store, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, references(store))

	require.NoError(t, first.Close())
	assert.Equal(t, 1, references(store))

	b, err := second.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xBB), b)

	require.NoError(t, second.Close())
	assert.Zero(t, references(store))

	_, err = store.Read(make([]byte, 1))
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	_, err = store.Len()
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
}

func TestCloseIsIdempotent(t *testing.T) {
	before := LiveWindows()
	store := NewMemoryStoreBytes([]byte{1, 2})

	a, err := Open(store, 0, RestOfStore)
	require.NoError(t, err)
	b, err := Open(store, 0, RestOfStore)
	require.NoError(t, err)
	assert.Equal(t, before+2, LiveWindows())

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Equal(t, 1, references(store))
	assert.Equal(t, before+1, LiveWindows())

	_, err = b.ReadByte()
	require.NoError(t, err, "double close must not release the sibling's reference")

	require.NoError(t, b.Close())
	assert.Equal(t, before, LiveWindows())
}

func TestDisposedWindowErrors(t *testing.T) {
	w := OpenBytes([]byte{1, 2, 3})
	require.NoError(t, w.Close())

	_, err := w.Position()
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	_, err = w.Offset()
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	_, err = w.Length()
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	assert.ErrorIs(t, w.SetPosition(0), apperrors.ErrDisposed)
	assert.ErrorIs(t, w.SetLength(1), apperrors.ErrDisposed)
	_, err = w.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	_, err = w.ReadByte()
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	_, err = w.Read(make([]byte, 1))
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	assert.ErrorIs(t, w.WriteByte(1), apperrors.ErrDisposed)
	_, err = w.Write([]byte{1})
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	_, err = w.EndOfStream()
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
	_, err = OpenFrom(w, 0, RestOfStore)
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
}

func TestOpenFrom(t *testing.T) {
	store := NewMemoryStoreBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	parent, err := Open(store, 2, 5)
	require.NoError(t, err)

	child, err := OpenFrom(parent, 1, RestOfStore)
	require.NoError(t, err)
	defer child.Close()

	offset, err := child.Offset()
	require.NoError(t, err)
	assert.EqualValues(t, 3, offset)
	length, err := child.Length()
	require.NoError(t, err)
	assert.EqualValues(t, 4, length)
	assert.Equal(t, 2, references(store), "sub-window shares the parent's entry")

	_, err = OpenFrom(parent, 2, 4)
	assert.ErrorIs(t, err, apperrors.ErrOutOfRange)
	_, err = OpenFrom(parent, -1, 1)
	assert.ErrorIs(t, err, apperrors.ErrOutOfRange)

	require.NoError(t, parent.Close())

	data, err := io.ReadAll(child)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5, 6}, data)
}

func TestPositionAndSeek(t *testing.T) {
	w := OpenBytes([]byte{1, 2, 3, 4})
	defer w.Close()

	require.NoError(t, w.SetPosition(4))
	eos, err := w.EndOfStream()
	require.NoError(t, err)
	assert.True(t, eos)

	assert.ErrorIs(t, w.SetPosition(5), apperrors.ErrOutOfRange)
	assert.ErrorIs(t, w.SetPosition(-1), apperrors.ErrOutOfRange)
	pos, _ := w.Position()
	assert.EqualValues(t, 4, pos, "failed set leaves position unchanged")

	tests := []struct {
		name    string
		offset  int64
		whence  int
		want    int64
		wantErr bool
	}{
		{name: "start", offset: 1, whence: io.SeekStart, want: 1},
		{name: "current", offset: 2, whence: io.SeekCurrent, want: 3},
		{name: "end", offset: -1, whence: io.SeekEnd, want: 3},
		{name: "before start", offset: -4, whence: io.SeekCurrent, want: 3, wantErr: true},
		{name: "past end", offset: 1, whence: io.SeekEnd, want: 3, wantErr: true},
		{name: "bad whence", offset: 0, whence: 7, want: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Seek(tt.offset, tt.whence)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			pos, err := w.Position()
			require.NoError(t, err)
			assert.Equal(t, tt.want, pos)
		})
	}
}

func TestAbsolutePosition(t *testing.T) {
	store := NewMemoryStoreBytes(make([]byte, 10))
	w, err := Open(store, 3, 4)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.SetPosition(2))
	abs, err := w.AbsolutePosition()
	require.NoError(t, err)
	assert.EqualValues(t, 5, abs)
}

func TestSetLength(t *testing.T) {
	store := NewMemoryStoreBytes(make([]byte, 10))
	w, err := Open(store, 4, 4)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.SetPosition(3))
	require.NoError(t, w.SetLength(2))
	pos, _ := w.Position()
	assert.EqualValues(t, 2, pos, "shrinking clamps the cursor")

	require.NoError(t, w.SetLength(RestOfStore))
	length, _ := w.Length()
	assert.EqualValues(t, 6, length)

	assert.ErrorIs(t, w.SetLength(7), apperrors.ErrOutOfRange)
	assert.ErrorIs(t, w.SetLength(-5), apperrors.ErrOutOfRange)
	length, _ = w.Length()
	assert.EqualValues(t, 6, length)
}

func TestReadBoundaryPolicies(t *testing.T) {
	w := OpenBytes([]byte{9, 8, 7})
	defer w.Close()

	buf := make([]byte, 8)
	n, err := w.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{9, 8, 7}, buf[:n])

	n, err = w.Read(buf)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err, "bulk read reports plain io.EOF at the boundary")

	_, err = w.ReadByte()
	assert.ErrorIs(t, err, apperrors.ErrEndOfStream)
}

func TestSiblingWindowsInterleave(t *testing.T) {
	store := NewMemoryStoreBytes([]byte("abcdef"))
	left, err := Open(store, 0, 3)
	require.NoError(t, err)
	defer left.Close()
	right, err := Open(store, 3, 3)
	require.NoError(t, err)
	defer right.Close()

	var got []byte
	for i := 0; i < 3; i++ {
		l, err := left.ReadByte()
		require.NoError(t, err)
		r, err := right.ReadByte()
		require.NoError(t, err)
		got = append(got, l, r)
	}
	assert.Equal(t, "adbecf", string(got))

	// Moving the store cursor behind the windows' backs changes nothing.
	_, err = store.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.NoError(t, left.SetPosition(1))
	b, err := left.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('b'), b)
}

func TestTailWindowGrows(t *testing.T) {
	w := NewMemory()
	defer w.Close()

	n, err := w.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, w.WriteByte(0x01))

	length, _ := w.Length()
	assert.EqualValues(t, 5, length)
	pos, _ := w.Position()
	assert.EqualValues(t, 5, pos)
}

func TestInteriorWindowDoesNotGrow(t *testing.T) {
	store := NewMemoryStoreBytes([]byte{0, 0, 0, 0, 0})
	w, err := Open(store, 1, 2)
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Write([]byte{1, 2, 3})
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, apperrors.ErrEndOfStream)
	assert.ErrorIs(t, w.WriteByte(4), apperrors.ErrEndOfStream)

	data, err := store.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 0, 0}, data)
}

func TestWindowAsStore(t *testing.T) {
	outer := OpenBytes([]byte{0, 1, 2, 3, 4, 5})
	inner, err := Open(outer, 2, 3)
	require.NoError(t, err)

	data, err := io.ReadAll(inner)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4}, data)

	// outer is registered as a store of its own; releasing the last window
	// over it closes it.
	require.NoError(t, inner.Close())
	_, err = outer.Position()
	assert.ErrorIs(t, err, apperrors.ErrDisposed)
}

func TestWriteTo(t *testing.T) {
	w := OpenBytes([]byte("hello world"))
	defer w.Close()
	require.NoError(t, w.SetPosition(6))

	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "world", buf.String())

	eos, _ := w.EndOfStream()
	assert.True(t, eos)
}

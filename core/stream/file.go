package stream

import (
	"io"
	"os"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// FileStore is a Store over a file on the local file system.
//
// In the write modes the file is neither created nor opened for writing until
// the first byte is written. A file that exists but cannot be written opens
// fine and reports a PermissionError on the first write.
type FileStore struct {
	path     string
	mode     Mode
	file     *os.File // nil until the file is opened
	writable bool     // file was opened with write access
	size     int64
	pos      int64
	closed   bool
}

// OpenFileStore opens path in the given mode.
// ModeRead requires the file to exist.
func OpenFileStore(path string, mode Mode) (*FileStore, error) {
	fs := &FileStore{path: path, mode: mode}

	switch mode {
	case ModeRead:
		f, err := os.Open(path)
		if err != nil {
			return nil, fileError("open", path, err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, apperrors.NewIO("stat", path, err)
		}
		fs.file = f
		fs.size = info.Size()

	case ModeWrite, ModeReadWrite:
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fs, nil
			}
			return nil, apperrors.NewIO("stat", path, err)
		}
		fs.size = info.Size()
		if mode == ModeReadWrite {
			// Existing content stays readable before the first write. If the
			// file cannot be read, reads report the error when they happen.
			if f, err := os.Open(path); err == nil {
				fs.file = f
			}
		}

	default:
		return nil, apperrors.NewValidation("mode", "unknown open mode")
	}

	return fs, nil
}

// fileError maps os errors onto the error taxonomy.
func fileError(op, path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &apperrors.NotFoundError{Resource: "file", ID: path, Err: err}
	case os.IsPermission(err):
		return &apperrors.PermissionError{Operation: op, Resource: path, Reason: "access denied", Err: err}
	default:
		return apperrors.NewIO(op, path, err)
	}
}

// Path returns the file path.
func (s *FileStore) Path() string {
	return s.path
}

// Mode returns the mode the store was opened with.
func (s *FileStore) Mode() Mode {
	return s.mode
}

func (s *FileStore) check(op string) error {
	if s.closed {
		return apperrors.NewDisposed("file store", op)
	}
	return nil
}

// Read implements io.Reader.
func (s *FileStore) Read(p []byte) (int, error) {
	if err := s.check("read"); err != nil {
		return 0, err
	}
	if s.mode == ModeWrite {
		return 0, apperrors.NewPermission("read", s.path, "store opened for writing only")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= s.size {
		return 0, io.EOF
	}
	if s.file == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return 0, fileError("read", s.path, err)
		}
		s.file = f
	}
	n, err := s.file.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// ensureWritable opens (and if needed creates) the file with write access.
func (s *FileStore) ensureWritable() error {
	if s.writable {
		return nil
	}
	flag := os.O_RDWR | os.O_CREATE
	if s.mode == ModeWrite {
		flag = os.O_WRONLY | os.O_CREATE
	}
	f, err := os.OpenFile(s.path, flag, 0o644)
	if err != nil {
		if os.IsPermission(err) {
			return &apperrors.PermissionError{
				Operation: "write",
				Resource:  s.path,
				Reason:    "file is not writable",
				Err:       err,
			}
		}
		return apperrors.NewIO("create", s.path, err)
	}
	if s.file != nil {
		s.file.Close()
	}
	s.file = f
	s.writable = true
	return nil
}

// Write implements io.Writer. The first write creates the file.
func (s *FileStore) Write(p []byte) (int, error) {
	if err := s.check("write"); err != nil {
		return 0, err
	}
	if s.mode == ModeRead {
		return 0, apperrors.NewPermission("write", s.path, "store opened for reading only")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := s.ensureWritable(); err != nil {
		return 0, err
	}
	n, err := s.file.WriteAt(p, s.pos)
	s.pos += int64(n)
	if s.pos > s.size {
		s.size = s.pos
	}
	if err != nil {
		return n, fileError("write", s.path, err)
	}
	return n, nil
}

// Seek implements io.Seeker. It only moves the store cursor; no system call
// is made.
func (s *FileStore) Seek(offset int64, whence int) (int64, error) {
	if err := s.check("seek"); err != nil {
		return 0, err
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.size + offset
	default:
		return 0, apperrors.NewValidation("whence", "unknown seek mode")
	}
	if abs < 0 {
		return 0, apperrors.NewRange("position", abs, 0, -1)
	}
	s.pos = abs
	return abs, nil
}

// Len returns the file size, counting bytes written through this store.
func (s *FileStore) Len() (int64, error) {
	if err := s.check("get length"); err != nil {
		return 0, err
	}
	return s.size, nil
}

// Close closes the underlying file, if it was ever opened.
func (s *FileStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return apperrors.NewIO("close", s.path, err)
	}
	return nil
}

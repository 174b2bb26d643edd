package value

import "os"

// FileObj wraps an OS file handle. Closing is idempotent (spec §3).
// Grounded on the teacher's filesystem module's thin wrapper around *os.File
// (sentra/internal/filesystem/filesystem.go), adapted to carry the
// refcounted heap header instead of a GC-only handle.
type FileObj struct {
	Header
	Path   string
	Mode   string
	handle *os.File
	Closed bool
}

func NewFile(path, mode string, f *os.File) *FileObj {
	return &FileObj{Header: NewHeader(), Path: path, Mode: mode, handle: f}
}

func (f *FileObj) Destroy() {
	if !f.Closed && f.handle != nil {
		f.handle.Close()
		f.Closed = true
	}
}

var ErrClosedFile = &IOError{Msg: "operation on closed file"}

type IOError struct{ Msg string }

func (e *IOError) Error() string { return e.Msg }

func (f *FileObj) Read() (string, error) {
	if f.Closed {
		return "", ErrClosedFile
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", &IOError{Msg: err.Error()}
	}
	return string(b), nil
}

func (f *FileObj) ReadBytes(n int) ([]byte, error) {
	if f.Closed {
		return nil, ErrClosedFile
	}
	buf := make([]byte, n)
	read, err := f.handle.Read(buf)
	if err != nil && read == 0 {
		return nil, &IOError{Msg: err.Error()}
	}
	return buf[:read], nil
}

func (f *FileObj) Write(s string) (int, error) {
	if f.Closed {
		return 0, ErrClosedFile
	}
	n, err := f.handle.WriteString(s)
	if err != nil {
		return n, &IOError{Msg: err.Error()}
	}
	return n, nil
}

func (f *FileObj) Seek(pos int64) error {
	if f.Closed {
		return ErrClosedFile
	}
	_, err := f.handle.Seek(pos, 0)
	if err != nil {
		return &IOError{Msg: err.Error()}
	}
	return nil
}

func (f *FileObj) Close() error {
	if f.Closed {
		return nil
	}
	f.Closed = true
	if f.handle == nil {
		return nil
	}
	if err := f.handle.Close(); err != nil {
		return &IOError{Msg: err.Error()}
	}
	return nil
}

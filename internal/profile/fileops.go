package profile

import (
	"os"
)

// FileOps abstracts the filesystem primitives the store relies on, so the
// mutation pipeline is testable without a real OS file handle.
type FileOps interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	// WriteFileSync creates or truncates path and syncs before closing.
	WriteFileSync(path string, data []byte, perm os.FileMode) error
	Rename(oldPath, newPath string) error
	Remove(path string) error
	SetReadOnly(path string) error
	ClearReadOnly(path string) error
	IsReadOnly(path string) (bool, error)
}

type osFileOps struct{}

// NewOSFileOps returns FileOps backed by the real filesystem.
func NewOSFileOps() FileOps {
	return &osFileOps{}
}

func (o *osFileOps) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (o *osFileOps) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (o *osFileOps) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func (o *osFileOps) WriteFileSync(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (o *osFileOps) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (o *osFileOps) Remove(path string) error {
	return os.Remove(path)
}

package fs

import (
	"io"
	"os"
	"strings"
	"time"
)

type MockFileInfo struct {
	IsDirValue bool
}

func (m MockFileInfo) IsDir() bool        { return m.IsDirValue }
func (m MockFileInfo) ModTime() time.Time { return time.Time{} }
func (m MockFileInfo) Mode() os.FileMode  { return 0 }
func (m MockFileInfo) Name() string       { return "" }
func (m MockFileInfo) Size() int64        { return 1 }
func (m MockFileInfo) Sys() interface{}   { return nil }

// MockFS serves Files by name. Missing names report os.ErrNotExist unless
// Err is set.
type MockFS struct {
	Files map[string]string
	Dirs  map[string]bool
	Wd    string
	Err   error
}

func (m MockFS) Open(name string) (io.ReadCloser, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	content, ok := m.Files[name]
	if !ok {
		return nil, os.ErrNotExist
	}

	return io.NopCloser(strings.NewReader(content)), nil
}

func (m MockFS) Stat(name string) (os.FileInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Dirs[name] {
		return MockFileInfo{IsDirValue: true}, nil
	}
	if _, ok := m.Files[name]; !ok {
		return nil, os.ErrNotExist
	}

	return MockFileInfo{}, nil
}

func (m MockFS) Getwd() (string, error) { return m.Wd, m.Err }

// Package fs is the thin slice of the operating system the configuration
// loader and local git discovery touch, so both can be tested without disk.
package fs

import (
	"io"
	"os"
)

type Filesystem interface {
	Stat(string) (os.FileInfo, error)
	Open(string) (io.ReadCloser, error)
	Getwd() (string, error)
}

type OS struct{}

func (OS) Open(name string) (io.ReadCloser, error) { return os.Open(name) }
func (OS) Stat(name string) (os.FileInfo, error)   { return os.Stat(name) }
func (OS) Getwd() (string, error)                  { return os.Getwd() }

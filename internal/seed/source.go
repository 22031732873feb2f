package seed

import (
	"embed"
	"io"
	"os"
)

//go:embed data/database.data
var bundled embed.FS

const bundledPath = "data/database.data"

// Source opens a seed resource for reading.
type Source interface {
	Open() (io.ReadCloser, error)
	Name() string
}

type embeddedSource struct{}

// Embedded returns the seed resource bundled with the binary.
func Embedded() Source {
	return embeddedSource{}
}

func (embeddedSource) Open() (io.ReadCloser, error) {
	return bundled.Open(bundledPath)
}

func (embeddedSource) Name() string {
	return "embedded:" + bundledPath
}

type fileSource struct {
	path string
}

// File returns a seed resource read from disk.
func File(path string) Source {
	return fileSource{path: path}
}

func (s fileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.path) //nolint:gosec // G304: seed path comes from configuration
}

func (s fileSource) Name() string {
	return s.path
}

// FromPath returns File(path), or Embedded when path is empty.
func FromPath(path string) Source {
	if path == "" {
		return Embedded()
	}
	return File(path)
}

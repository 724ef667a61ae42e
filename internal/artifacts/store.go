// internal/artifacts/store.go
package artifacts

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Store when no artifact has the requested name.
var ErrNotFound = errors.New("artifact not found")

// ErrArtifactLoad matches every ArtifactLoadError.
var ErrArtifactLoad = errors.New("artifact load failed")

// Store reads serialized artifacts by name.
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// Writer stores serialized artifacts under a name, replacing any previous value.
type Writer interface {
	Put(ctx context.Context, name string, data []byte) error
}

// ReadWriter is a store that can also publish artifacts.
type ReadWriter interface {
	Store
	Writer
}

// ArtifactLoadError names the artifact that could not be read or decoded.
type ArtifactLoadError struct {
	Name string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load artifact %s: %v", e.Name, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

func (e *ArtifactLoadError) Is(target error) bool { return target == ErrArtifactLoad }

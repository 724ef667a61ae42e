// internal/artifacts/publish.go
package artifacts

import (
	"context"
	"fmt"
)

// Publish copies every named artifact from src to dst and returns the number
// copied. It stops at the first failure.
func Publish(ctx context.Context, src Store, dst Writer, names Names) (int, error) {
	copied := 0
	for _, name := range names.All() {
		data, err := src.Load(ctx, name)
		if err != nil {
			return copied, &ArtifactLoadError{Name: name, Err: err}
		}
		if err := dst.Put(ctx, name, data); err != nil {
			return copied, fmt.Errorf("failed to publish %s: %w", name, err)
		}
		copied++
	}
	return copied, nil
}

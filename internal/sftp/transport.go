package sftp

import (
	"context"
	"path"
)

// Transport moves whole files to and from the remote exchange server.
// Paths are remote paths, directories are created on demand.
type Transport interface {
	// List returns the names of the regular files in dir, sorted by name
	List(ctx context.Context, dir string) ([]string, error)

	// Download reads the whole remote file
	Download(ctx context.Context, filePath string) ([]byte, error)

	// Upload writes content to filePath, replacing an existing file
	Upload(ctx context.Context, filePath string, content []byte) error

	// Archive moves filePath into the archive directory
	Archive(ctx context.Context, filePath string) error
}

// Join builds a remote path, remote servers always use forward slashes
func Join(elem ...string) string {
	return path.Join(elem...)
}

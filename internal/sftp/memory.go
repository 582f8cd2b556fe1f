package sftp

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	ierr "github.com/studentaid/disbursement/internal/errors"
)

// MemoryTransport keeps files in a map. Used by tests and local runs
// without an exchange server.
type MemoryTransport struct {
	mu         sync.RWMutex
	files      map[string][]byte
	archiveDir string

	// FailUploads makes every upload fail with a transport error
	FailUploads bool
}

var _ Transport = (*MemoryTransport)(nil)

func NewMemoryTransport(archiveDir string) *MemoryTransport {
	return &MemoryTransport{
		files:      make(map[string][]byte),
		archiveDir: archiveDir,
	}
}

func (m *MemoryTransport) List(_ context.Context, dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir = path.Clean(dir)
	var names []string
	for p := range m.files {
		if path.Dir(p) == dir {
			names = append(names, path.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryTransport) Download(_ context.Context, filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.files[path.Clean(filePath)]
	if !ok {
		return nil, ierr.NewErrorf("file %s does not exist", filePath).Mark(ierr.ErrTransport)
	}
	return append([]byte(nil), content...), nil
}

func (m *MemoryTransport) Upload(_ context.Context, filePath string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUploads {
		return ierr.NewErrorf("upload of %s refused", filePath).Mark(ierr.ErrTransport)
	}
	m.files[path.Clean(filePath)] = append([]byte(nil), content...)
	return nil
}

func (m *MemoryTransport) Archive(_ context.Context, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := path.Clean(filePath)
	content, ok := m.files[src]
	if !ok {
		return ierr.NewErrorf("file %s does not exist", filePath).Mark(ierr.ErrTransport)
	}
	delete(m.files, src)
	m.files[path.Join(m.archiveDir, path.Base(src))] = content
	return nil
}

// Put seeds a remote file
func (m *MemoryTransport) Put(filePath, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(filePath)] = []byte(content)
}

// Get returns a remote file and whether it exists
func (m *MemoryTransport) Get(filePath string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path.Clean(filePath)]
	return string(content), ok
}

// Paths lists every stored path with the given prefix
func (m *MemoryTransport) Paths(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var paths []string
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

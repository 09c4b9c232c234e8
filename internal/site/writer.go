package site

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var errWritePathRequired = errors.New("site: write requires path")

// Writer persists rendered output files.
type Writer interface {
	WriteFile(ctx context.Context, rel string, data []byte) error
}

// DirWriter writes below a root directory, creating parents as needed.
type DirWriter struct {
	root string
}

func NewDirWriter(root string) *DirWriter {
	return &DirWriter{root: filepath.Clean(root)}
}

func (w *DirWriter) WriteFile(ctx context.Context, rel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return errWritePathRequired
	}
	target := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}

// MemoryWriter keeps outputs in memory. Dry runs and tests use it.
type MemoryWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{files: map[string][]byte{}}
}

func (w *MemoryWriter) WriteFile(ctx context.Context, rel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rel) == "" {
		return errWritePathRequired
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path.Clean(rel)] = append([]byte(nil), data...)
	return nil
}

// File returns the content written to rel.
func (w *MemoryWriter) File(rel string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, ok := w.files[path.Clean(rel)]
	return string(data), ok
}

// Paths lists written files in sorted order.
func (w *MemoryWriter) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for key := range w.files {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

package testsupport

import (
	"os"
	"path/filepath"
)

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteTree creates files under dir. Keys are slash-separated relative
// paths; parent directories are created as needed.
func WriteTree(dir string, files map[string]string) error {
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

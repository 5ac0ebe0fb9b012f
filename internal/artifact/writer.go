package artifact

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Write stores every document under dir, creating it if needed.
// Document names are flat file names; nested names are rejected by the
// join staying inside dir.
func Write(dir string, docs []Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	for _, d := range docs {
		name := filepath.Base(d.Name)
		if name == "." || name == string(filepath.Separator) {
			return errors.Errorf("invalid document name %q", d.Name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), d.Content, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}
	return nil
}

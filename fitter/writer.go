package fitter

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// writeFileAtomic replaces path with data through a temp file in the same
// directory, so readers never observe a partially written PNG and a failed
// write leaves the previous file in place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := renameio.WriteFile(path, data, perm, renameio.WithTempDir(filepath.Dir(path))); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// Package zip bundles generated clips into a single archive for download.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteArchive streams the named files from dir into a zip archive written
// to w. Entries keep their base filename only. Missing files abort the
// archive since a partial bundle would silently drop clips.
func WriteArchive(w io.Writer, dir string, filenames []string) error {
	zw := zip.NewWriter(w)
	for _, name := range filenames {
		if err := addFile(zw, dir, name); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zip: close archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", name, err)
	}
	defer f.Close()

	entry, err := zw.Create(filepath.Base(name))
	if err != nil {
		return fmt.Errorf("zip: create entry %s: %w", name, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("zip: write entry %s: %w", name, err)
	}
	return nil
}

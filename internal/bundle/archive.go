// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// archiveEpoch is the fixed timestamp stamped on every archive entry.
// Together with the lexical walk order and normalized metadata it makes
// repeated bundles of identical trees byte-identical.
var archiveEpoch = time.Unix(0, 0).UTC()

// Archive writes a gzipped tar of the files under srcDir to outPath.
// Entries carry slash-separated relative paths, the fixed epoch mtime,
// zeroed ownership, and modes normalized to 0755/0644 by the owner exec
// bit. Directories are implied by their files rather than stored.
func Archive(srcDir, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		mode := int64(0o644)
		if info.Mode().Perm()&0o100 != 0 {
			mode = 0o755
		}

		hdr := &tar.Header{
			Name:     filepath.ToSlash(rel),
			Mode:     mode,
			Size:     info.Size(),
			ModTime:  archiveEpoch,
			Typeflag: tar.TypeReg,
			Format:   tar.FormatUSTAR,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(tw, src)
		return err
	})
	if walkErr != nil {
		f.Close()
		os.Remove(outPath)
		return walkErr
	}

	if err := tw.Close(); err != nil {
		f.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

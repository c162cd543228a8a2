// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// maxBinaryBytes is the upper bound on the extracted engine size
// (500 MB). Prevents decompression bombs when unpacking a release
// archive.
const maxBinaryBytes = 500 << 20

// Cache fetches pinned engine builds and reuses them across runs. Cache
// entries live at Root/mitamae/mitamae-<version>-<arch>; a pre-existing
// entry short-circuits the download entirely. Concurrent invocations may
// race on an empty cache, but both write the identical artifact through
// a rename, so the race is benign.
type Cache struct {
	// Root is the cache directory, typically from config.Settings.
	Root string
	// Client performs release downloads. Defaults to http.DefaultClient.
	Client *http.Client
}

// NewCache creates a Cache rooted at root.
func NewCache(root string) *Cache {
	return &Cache{Root: root, Client: http.DefaultClient}
}

// Fetch places the engine binary for arch into destDir and returns its
// path. On a cache miss the pinned release is downloaded, verified
// against its pinned SHA256, the binary extracted from its tar.gz,
// persisted into the cache, and then copied into destDir.
func (c *Cache) Fetch(ctx context.Context, arch, destDir string) (string, error) {
	dest := filepath.Join(destDir, BinaryName)
	entry := c.entryPath(arch)

	if info, err := os.Stat(entry); err == nil && info.Mode().IsRegular() {
		if err := copyExecutable(entry, dest); err != nil {
			return "", fmt.Errorf("reusing cached engine: %w", err)
		}
		return dest, nil
	}

	rel, err := releaseFor(arch)
	if err != nil {
		return "", err
	}

	binary, err := c.download(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("downloading engine for %s: %w", arch, err)
	}

	if err := writeEntry(entry, binary); err != nil {
		return "", fmt.Errorf("caching engine: %w", err)
	}
	if err := copyExecutable(entry, dest); err != nil {
		return "", fmt.Errorf("staging engine: %w", err)
	}
	return dest, nil
}

// entryPath returns the cache location for arch at the pinned version.
func (c *Cache) entryPath(arch string) string {
	return filepath.Join(c.Root, BinaryName, fmt.Sprintf("%s-%s-%s", BinaryName, Version, arch))
}

// download retrieves the release archive, verifies it against the
// pinned digest, and extracts the engine binary from it. Nothing from
// an archive that fails verification reaches the cache.
func (c *Cache) download(ctx context.Context, rel release) ([]byte, error) {
	url := rel.url()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	archive, err := io.ReadAll(io.LimitReader(resp.Body, maxBinaryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading release archive: %w", err)
	}
	if len(archive) > maxBinaryBytes {
		return nil, errors.New("release archive exceeds size limit")
	}

	if err := verifyChecksum(rel.asset, archive, rel.sha256); err != nil {
		return nil, err
	}

	return extractBinary(bytes.NewReader(archive))
}

// extractBinary pulls the first regular file out of a gzipped tarball.
// mitamae release archives contain exactly one entry, the engine itself.
func extractBinary(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading release archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("release archive contains no regular file")
		}
		if err != nil {
			return nil, fmt.Errorf("reading release archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		binary, err := io.ReadAll(io.LimitReader(tr, maxBinaryBytes+1))
		if err != nil {
			return nil, fmt.Errorf("extracting engine: %w", err)
		}
		if len(binary) > maxBinaryBytes {
			return nil, errors.New("engine binary exceeds size limit")
		}
		return binary, nil
	}
}

// writeEntry persists the binary at path, creating parent directories.
// The temp-file-plus-rename dance keeps racing invocations from
// observing a half-written entry.
func writeEntry(path string, binary []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(binary); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// copyExecutable copies src to dest with mode 0755.
func copyExecutable(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

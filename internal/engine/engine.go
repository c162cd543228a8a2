// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
)

const (
	// Version is the pinned mitamae release shipped to targets. Bumping
	// it changes the cache key; entries for older versions are orphaned
	// but harmless.
	Version = "1.14.2"

	// BinaryName is the engine file name inside the work directory and
	// next to the extracted bundle on the target.
	BinaryName = "mitamae"
)

// ErrUnsupportedArch reports a target architecture with no known engine
// build.
var ErrUnsupportedArch = errors.New("unsupported architecture")

// release pins one engine build: the asset name and the hex-encoded
// SHA256 of the release archive, taken from the sha256sum output
// published alongside the release. Bumping Version means re-pinning
// every digest here.
type release struct {
	asset  string
	sha256 string
}

// releases maps uname -m output to the matching pinned build. armv6l
// and armv7l share the armhf asset.
var releases = map[string]release{
	"x86_64":  {"mitamae-x86_64-linux.tar.gz", "43ac8b1dff4bb7185c20ef44190a056724ab433cb793171991fcef52951bb0d9"},
	"aarch64": {"mitamae-aarch64-linux.tar.gz", "a095bcfd98bb0062cd5e8e000549d3bad978bc07f71c45a679543fd792b38ee4"},
	"armv6l":  {"mitamae-armhf-linux.tar.gz", "9c4b96bba3e0599ac3b544e63e4efe3059def3400872787f23db4e32f709fbbb"},
	"armv7l":  {"mitamae-armhf-linux.tar.gz", "9c4b96bba3e0599ac3b544e63e4efe3059def3400872787f23db4e32f709fbbb"},
}

// releaseFor returns the pinned build for arch. Unknown architectures
// are a configuration error, reported via ErrUnsupportedArch.
func releaseFor(arch string) (release, error) {
	rel, ok := releases[arch]
	if !ok {
		return release{}, fmt.Errorf("%w: %s", ErrUnsupportedArch, arch)
	}
	return rel, nil
}

// url returns the download URL of the pinned build.
func (r release) url() string {
	return fmt.Sprintf("https://github.com/itamae-kitchen/mitamae/releases/download/v%s/%s", Version, r.asset)
}

// ReleaseURL returns the download URL of the pinned engine build for
// arch.
func ReleaseURL(arch string) (string, error) {
	rel, err := releaseFor(arch)
	if err != nil {
		return "", err
	}
	return rel.url(), nil
}

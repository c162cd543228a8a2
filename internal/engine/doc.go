// SPDX-License-Identifier: MPL-2.0

// Package engine manages the pinned mitamae binary that actually applies
// recipes on the target.
//
// The package is organized into four concerns:
//   - detect.go: target CPU architecture probing through a Runner
//   - engine.go: version pin and the static architecture-to-release
//     table, each entry carrying the pinned SHA256 of its archive
//   - checksum.go: digest verification of downloaded archives
//   - cache.go: on-disk cache of downloaded builds, keyed by
//     (version, architecture), with HTTP download, digest check, and
//     tar.gz extraction on a cache miss
package engine

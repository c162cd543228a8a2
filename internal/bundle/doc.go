// SPDX-License-Identifier: MPL-2.0

// Package bundle assembles the recipe tree and merged node config into a
// deterministic tar.gz ready for transfer to the target.
package bundle

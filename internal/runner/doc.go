// SPDX-License-Identifier: MPL-2.0

// Package runner abstracts command execution against a provisioning
// target.
//
// Two implementations are available:
//   - LocalRunner: runs commands directly on the invoking machine
//   - SSHRunner: runs commands on a remote host through the system ssh
//     and scp clients
//
// Both satisfy the Runner interface with Output(), RunInteractive(), and
// SendFiles(). Interactive runs are attached to a pseudo-terminal so the
// engine's colored and interactive output behaves as if run by hand, and
// their output can be routed through a PrefixWriter to visually separate
// target output from cookersh's own status lines.
package runner

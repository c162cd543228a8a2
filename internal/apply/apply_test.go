// SPDX-License-Identifier: MPL-2.0

package apply

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// scriptedRunner records the sequence of operations and fails whichever
// step the test arms.
type scriptedRunner struct {
	mktempOut   string
	mktempErr   error
	sendErr     error
	runErr      error
	ops         []string
	sentDestDir string
	sentPaths   []string
	ranCommand  []string
}

func (s *scriptedRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	s.ops = append(s.ops, "output:"+name)
	return s.mktempOut, s.mktempErr
}

func (s *scriptedRunner) RunInteractive(_ context.Context, out io.Writer, name string, args ...string) error {
	s.ops = append(s.ops, "run:"+name)
	s.ranCommand = append([]string{name}, args...)
	if s.runErr == nil {
		io.WriteString(out, "ok\n")
	}
	return s.runErr
}

func (s *scriptedRunner) SendFiles(_ context.Context, destDir string, paths ...string) error {
	s.ops = append(s.ops, "send")
	s.sentDestDir = destDir
	s.sentPaths = paths
	return s.sendErr
}

func TestApply_Sequence(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	archivePath := filepath.Join(workDir, "recipes.tar.gz")
	enginePath := filepath.Join(workDir, "mitamae")
	for _, p := range []string{archivePath, enginePath} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}

	r := &scriptedRunner{mktempOut: "/tmp/cookersh.abc\n"}
	var out bytes.Buffer
	a := &Applier{Runner: r, Out: &out}

	err := a.Apply(context.Background(), workDir, archivePath, enginePath, Options{Recipes: []string{"main.rb"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOps := []string{"output:mktemp", "send", "run:sh"}
	if strings.Join(r.ops, ",") != strings.Join(wantOps, ",") {
		t.Errorf("operations = %v, want %v", r.ops, wantOps)
	}

	if r.sentDestDir != "/tmp/cookersh.abc" {
		t.Errorf("transfer dest = %q, want %q", r.sentDestDir, "/tmp/cookersh.abc")
	}

	wantPaths := []string{archivePath, enginePath, filepath.Join(workDir, ScriptName)}
	if strings.Join(r.sentPaths, ",") != strings.Join(wantPaths, ",") {
		t.Errorf("transferred paths = %v, want %v", r.sentPaths, wantPaths)
	}

	wantCmd := []string{"sh", "/tmp/cookersh.abc/apply.sh"}
	if strings.Join(r.ranCommand, ",") != strings.Join(wantCmd, ",") {
		t.Errorf("bootstrap command = %v, want %v", r.ranCommand, wantCmd)
	}

	// The script must exist in the work directory and be executable.
	info, err := os.Stat(filepath.Join(workDir, ScriptName))
	if err != nil {
		t.Fatalf("stating bootstrap script: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("bootstrap script mode = %v, want executable", info.Mode())
	}
}

func TestApply_TransferFailure(t *testing.T) {
	t.Parallel()

	r := &scriptedRunner{mktempOut: "/tmp/x\n", sendErr: errors.New("scp: connection reset")}
	a := &Applier{Runner: r, Out: io.Discard}

	err := a.Apply(context.Background(), t.TempDir(), "a", "b", Options{Recipes: []string{"main.rb"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "could not copy recipes") {
		t.Errorf("error = %q, want transfer attribution", err)
	}

	for _, op := range r.ops {
		if strings.HasPrefix(op, "run:") {
			t.Error("bootstrap ran despite failed transfer")
		}
	}
}

func TestApply_ExecutionFailure(t *testing.T) {
	t.Parallel()

	r := &scriptedRunner{mktempOut: "/tmp/x\n", runErr: errors.New("exit status 2")}
	a := &Applier{Runner: r, Out: io.Discard}

	err := a.Apply(context.Background(), t.TempDir(), "a", "b", Options{Recipes: []string{"main.rb"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "could not apply recipes") {
		t.Errorf("error = %q, want apply attribution", err)
	}
}

func TestApply_MktempFailure(t *testing.T) {
	t.Parallel()

	r := &scriptedRunner{mktempErr: errors.New("unreachable")}
	a := &Applier{Runner: r, Out: io.Discard}

	err := a.Apply(context.Background(), t.TempDir(), "a", "b", Options{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(r.sentPaths) != 0 {
		t.Error("files were transferred despite mktemp failure")
	}
}

func TestApply_EmptyMktempOutput(t *testing.T) {
	t.Parallel()

	r := &scriptedRunner{mktempOut: "\n"}
	a := &Applier{Runner: r, Out: io.Discard}

	if err := a.Apply(context.Background(), t.TempDir(), "a", "b", Options{}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

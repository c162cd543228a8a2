// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"testing"
)

func TestPrefixWriter_WholeLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewPrefixWriter(&buf, "> ", "<")

	if _, err := w.Write([]byte("one\ntwo\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "> one<\n> two<\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrefixWriter_SplitAcrossWrites(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewPrefixWriter(&buf, "> ", "")

	chunks := []string{"par", "tial", "\nnext", " line\n"}
	for _, c := range chunks {
		n, err := w.Write([]byte(c))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != len(c) {
			t.Fatalf("Write(%q) = %d, want %d", c, n, len(c))
		}
	}

	want := "> partial\n> next line\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrefixWriter_FlushesIncrementally(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewPrefixWriter(&buf, "> ", "")

	// A chunk without a trailing newline must reach the underlying
	// writer immediately, not wait for the line to complete.
	if _, err := w.Write([]byte("progress: 50%")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.String() != "> progress: 50%" {
		t.Errorf("output = %q, want %q", buf.String(), "> progress: 50%")
	}
}

func TestPrefixWriter_EmptyLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewPrefixWriter(&buf, "| ", "")

	if _, err := w.Write([]byte("\n\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "| \n| \n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

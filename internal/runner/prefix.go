// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"io"
)

// ANSI sequences bracketing every line of target output. The faint
// rendition plus indentation keeps the engine's output visually distinct
// from cookersh's own status lines.
const (
	faintSeq = "\x1b[2m"
	resetSeq = "\x1b[0m"
)

// PrefixWriter rewrites a byte stream so that every line starts with
// begin and ends with end. Chunks are forwarded as soon as they arrive;
// nothing is held back until end-of-stream, so interactive output stays
// interactive.
type PrefixWriter struct {
	w       io.Writer
	begin   string
	end     string
	midline bool
}

// NewPrefixWriter wraps w, inserting begin at the start of each line and
// end before each newline.
func NewPrefixWriter(w io.Writer, begin, end string) *PrefixWriter {
	return &PrefixWriter{w: w, begin: begin, end: end}
}

// NewRemoteWriter wraps w so that target output shows up dimmed and
// indented.
func NewRemoteWriter(w io.Writer) *PrefixWriter {
	return NewPrefixWriter(w, faintSeq+"  ", resetSeq)
}

// Write forwards b line by line, tracking whether the previous chunk
// ended mid-line so the prefix is only emitted at true line starts.
func (p *PrefixWriter) Write(b []byte) (int, error) {
	total := len(b)

	for len(b) > 0 {
		if !p.midline {
			if _, err := io.WriteString(p.w, p.begin); err != nil {
				return total - len(b), err
			}
			p.midline = true
		}

		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			n, err := p.w.Write(b)
			return total - len(b) + n, err
		}

		if _, err := p.w.Write(b[:i]); err != nil {
			return total - len(b), err
		}
		if _, err := io.WriteString(p.w, p.end+"\n"); err != nil {
			return total - len(b), err
		}
		p.midline = false
		b = b[i+1:]
	}

	return total, nil
}

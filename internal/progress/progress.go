// Package progress renders a single-line download progress indicator,
// gated on the output stream actually being a terminal (golang.org/x/term),
// for the snapshot-document and custom-snapshot downloads snaploader
// performs.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// IsTerminalFunc checks whether a file descriptor is a terminal. A package
// variable so tests can override it without a real tty.
var IsTerminalFunc = term.IsTerminal

// IsInteractive reports whether stderr is a terminal, the signal this
// package uses to decide whether printing an in-place progress line makes
// sense versus just staying silent.
func IsInteractive() bool {
	return IsTerminalFunc(int(os.Stderr.Fd()))
}

// Writer wraps an io.Writer, printing a carriage-return-updated progress
// line to output as bytes flow through Write. Safe for concurrent use.
type Writer struct {
	writer    io.Writer
	output    io.Writer
	label     string
	total     int64
	written   int64
	startTime time.Time
	lastPrint time.Time
	mu        sync.Mutex
}

// NewWriter wraps w, reporting progress for label to output. total <= 0
// means the size is unknown: the percentage is omitted.
func NewWriter(w io.Writer, label string, total int64, output io.Writer) *Writer {
	return &Writer{
		writer:    w,
		output:    output,
		label:     label,
		total:     total,
		startTime: time.Now(),
	}
}

func (pw *Writer) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	if n > 0 {
		pw.mu.Lock()
		pw.written += int64(n)
		pw.printProgress()
		pw.mu.Unlock()
	}
	return n, err
}

// Finish clears the progress line.
func (pw *Writer) Finish() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	fmt.Fprintf(pw.output, "\r%s\r", strings.Repeat(" ", 80))
}

func (pw *Writer) printProgress() {
	now := time.Now()
	if now.Sub(pw.lastPrint) < 100*time.Millisecond {
		return
	}
	pw.lastPrint = now

	if pw.total > 0 {
		pct := float64(pw.written) / float64(pw.total) * 100
		fmt.Fprintf(pw.output, "\r%s: %.0f%% (%d/%d bytes)", pw.label, pct, pw.written, pw.total)
	} else {
		fmt.Fprintf(pw.output, "\r%s: %d bytes", pw.label, pw.written)
	}
}

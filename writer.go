package streamcsv

import (
	"errors"
	"io"
)

var (
	errNilWriter      = errors.New("streamcsv: writer is nil")
	errWriterNoTarget = errors.New("streamcsv: writer destination cannot be nil")
)

// Writer serializes rows as CSV lines with minimal quoting.
//
// Each row reaches the destination in a single Write call terminated by '\n';
// the Writer keeps no data buffered between rows. It is not safe for concurrent use.
type Writer struct {
	dst io.Writer

	line []byte
	err  error
}

// NewWriter creates a new Writer appending rows to w.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:  w,
		line: make([]byte, 0, 256),
	}
}

// Reset points the writer at a new destination and clears any stored error.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	w.dst = dst
	w.err = nil
}

// Write emits a single row. Fields are escaped, joined with commas, and terminated with '\n'.
func (w *Writer) Write(record []string) error {
	if err := w.ready(); err != nil {
		return err
	}

	w.line = w.line[:0]
	for i, field := range record {
		if i > 0 {
			w.line = append(w.line, comma)
		}
		w.line = AppendField(w.line, field)
	}
	w.line = append(w.line, '\n')
	return w.flushLine()
}

// WriteValues emits a single row built from values coerced with Text.
func (w *Writer) WriteValues(values ...any) error {
	if err := w.ready(); err != nil {
		return err
	}

	w.line = w.line[:0]
	for i, v := range values {
		if i > 0 {
			w.line = append(w.line, comma)
		}
		w.line = AppendField(w.line, Text(v))
	}
	w.line = append(w.line, '\n')
	return w.flushLine()
}

// WriteAll writes multiple rows in order, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

func (w *Writer) ready() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	return w.err
}

// flushLine hands the assembled line to the destination, remembering the first failure.
func (w *Writer) flushLine() error {
	n, err := w.dst.Write(w.line)
	if err == nil && n < len(w.line) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = err
	}
	return err
}

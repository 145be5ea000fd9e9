// Package transcode drives streamcsv readers and writers for the csvcodec commands.
package transcode

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/oleg578/streamcsv"
)

// Options configures the reader side of a run.
type Options struct {
	Strict      bool
	ReuseRecord bool
}

func (o Options) newReader(src io.Reader) *streamcsv.Reader {
	r := streamcsv.NewReader(src)
	r.Strict = o.Strict
	r.ReuseRecord = o.ReuseRecord
	return r
}

// Stats summarizes a Normalize run.
type Stats struct {
	Rows   int
	Fields int
	Bytes  int64
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Normalize copies every row from src to dst, re-serialized with minimal quoting
// and '\n' terminators. ctx is checked between rows.
func Normalize(ctx context.Context, src io.Reader, dst io.Writer, opts Options, logger *zap.Logger) (Stats, error) {
	var stats Stats
	cw := &countingWriter{w: dst}
	w := streamcsv.NewWriter(cw)

	for row, err := range opts.newReader(src).Rows() {
		if err != nil {
			return stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := w.Write(row); err != nil {
			return stats, fmt.Errorf("write row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
		stats.Fields += len(row)
		stats.Bytes = cw.n
	}

	logger.Info("normalized",
		zap.Int("rows", stats.Rows),
		zap.Int("fields", stats.Fields),
		zap.Int64("bytes", stats.Bytes),
	)
	return stats, nil
}

// Summary describes the shape of a CSV stream.
type Summary struct {
	// Header is the first row.
	Header []string
	// Rows counts every row, header included.
	Rows      int
	MinFields int
	MaxFields int
	// Sample holds up to the requested number of rows following the header.
	Sample [][]string
}

// Inspect reads src to the end and reports its shape, keeping head rows after the header.
func Inspect(ctx context.Context, src io.Reader, opts Options, head int, logger *zap.Logger) (Summary, error) {
	var sum Summary

	for row, err := range opts.newReader(src).Rows() {
		if err != nil {
			return sum, fmt.Errorf("read row %d: %w", sum.Rows+1, err)
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		switch {
		case sum.Rows == 0:
			sum.Header = cloneRow(row)
			sum.MinFields, sum.MaxFields = len(row), len(row)
		case len(sum.Sample) < head:
			sum.Sample = append(sum.Sample, cloneRow(row))
		}
		sum.MinFields = min(sum.MinFields, len(row))
		sum.MaxFields = max(sum.MaxFields, len(row))
		sum.Rows++

		if logger.Core().Enabled(zap.DebugLevel) {
			logger.Debug("row", zap.Int("index", sum.Rows), zap.Int("fields", len(row)))
		}
	}

	logger.Info("inspected",
		zap.Int("rows", sum.Rows),
		zap.Int("min_fields", sum.MinFields),
		zap.Int("max_fields", sum.MaxFields),
	)
	return sum, nil
}

// cloneRow copies row and its field text, so it outlives a reader with ReuseRecord set.
func cloneRow(row []string) []string {
	out := make([]string, len(row))
	for i, field := range row {
		out[i] = strings.Clone(field)
	}
	return out
}

// WriteReport prints s in a human-readable layout.
func WriteReport(w io.Writer, s Summary) error {
	ew := &errWriter{w: w}

	ew.printf("Rows: %d\n", s.Rows)
	ew.printf("Fields per row: min %d, max %d\n", s.MinFields, s.MaxFields)
	if s.Rows == 0 {
		return ew.err
	}

	ew.printf("\nHeader:\n")
	for i, field := range s.Header {
		ew.printf("Column %d: %s\n", i+1, field)
	}

	for n, record := range s.Sample {
		ew.printf("\nRow %d:\n", n+1)
		for i, field := range record {
			if i < len(s.Header) {
				ew.printf("  %s: %s\n", s.Header[i], field)
			} else {
				ew.printf("  Column %d: %s\n", i+1, field)
			}
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
)

// ErrNotNormalized is returned by Check when the input differs from its normalized form.
var ErrNotNormalized = errors.New("input is not normalized")

// CheckResult holds the line diff between an input and its normalized form.
type CheckResult struct {
	Stats Stats
	Diffs []diffpatch.Diff
}

// Changed reports whether normalization altered any line.
func (c CheckResult) Changed() bool {
	for _, d := range c.Diffs {
		if d.Type != diffpatch.DiffEqual {
			return true
		}
	}
	return false
}

// Check normalizes src in memory and diffs the result against the original text line by line.
// Unlike Normalize it holds the whole input, so it suits files that fit in memory.
func Check(ctx context.Context, src io.Reader, opts Options, logger *zap.Logger) (CheckResult, error) {
	original, err := io.ReadAll(src)
	if err != nil {
		return CheckResult{}, fmt.Errorf("read input: %w", err)
	}

	var normalized bytes.Buffer
	stats, err := Normalize(ctx, bytes.NewReader(original), &normalized, opts, logger)
	if err != nil {
		return CheckResult{Stats: stats}, err
	}

	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(original), normalized.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	res := CheckResult{Stats: stats, Diffs: diffs}
	logger.Info("checked", zap.Bool("changed", res.Changed()), zap.Int("rows", stats.Rows))
	return res, nil
}

const noNewlineMarker = `\ No newline at end of file`

// WriteDiff prints diffs with "-", "+" and " " line prefixes. Carriage returns are
// shown as \r so line-ending changes stay visible, and a side whose last line
// lacks a newline is followed by noNewlineMarker.
func WriteDiff(w io.Writer, diffs []diffpatch.Diff, colorize bool) error {
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	if colorize {
		removed.EnableColor()
		added.EnableColor()
	} else {
		removed.DisableColor()
		added.DisableColor()
	}

	ew := &errWriter{w: w}
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			line = strings.ReplaceAll(line, "\r", `\r`)
			switch d.Type {
			case diffpatch.DiffDelete:
				ew.printf("%s\n", removed.Sprint("-"+line))
			case diffpatch.DiffInsert:
				ew.printf("%s\n", added.Sprint("+"+line))
			default:
				ew.printf(" %s\n", line)
			}
		}
		if d.Text != "" && !strings.HasSuffix(d.Text, "\n") {
			ew.printf("%s\n", noNewlineMarker)
		}
	}
	return ew.err
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

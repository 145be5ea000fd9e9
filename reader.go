package streamcsv

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"unsafe"
)

const defaultBufferSize = 4 << 10 // 4096 bytes

// maxEmptyReads bounds consecutive (0, nil) results from the source before giving up.
const maxEmptyReads = 100

var (
	// ErrUnterminatedQuote is returned in strict mode when a quoted field is still open at end of input.
	ErrUnterminatedQuote = errors.New("streamcsv: unterminated quoted field")
)

// ParseError contains location information for CSV parsing errors.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("streamcsv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Reader parses rows from a CSV stream one at a time.
//
// A Reader is not safe for concurrent use. It never closes its source.
type Reader struct {
	src io.Reader

	// ReuseRecord indicates whether Read should reuse the backing array of the returned slice.
	// Fields returned by one call are overwritten by the next.
	ReuseRecord bool
	// Strict reports an unclosed quoted field at end of input as ErrUnterminatedQuote
	// instead of returning the partial field as the final row.
	Strict bool

	buf    []byte
	bufPos int
	bufLen int
	bufErr error

	lookahead    byte
	hasLookahead bool

	record      []string
	dataBuf     []byte
	fieldBounds []int
	finished    bool

	line int
	col  int
	last byte
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is nil.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("streamcsv: reader source cannot be nil")
	}

	return &Reader{
		src:         r,
		buf:         make([]byte, defaultBufferSize),
		record:      make([]string, 0, 16),
		dataBuf:     make([]byte, 0, 512),
		fieldBounds: make([]int, 0, 32),
		line:        1,
	}
}

// Read parses the next row from the underlying stream. io.EOF signals that no
// more rows remain; once returned, every later call returns io.EOF as well.
// Errors from the source are returned unchanged and discard the partial row.
func (r *Reader) Read() (dst []string, err error) {
	if r == nil || r.src == nil || r.finished {
		return nil, io.EOF
	}

	// Nothing left to parse: end the sequence without an empty row.
	if _, err := r.peekByte(); err != nil {
		if err == io.EOF {
			r.finished = true
		}
		return nil, err
	}

	if r.ReuseRecord {
		r.record = r.record[:0]
	} else {
		r.record = nil
	}
	r.dataBuf = r.dataBuf[:0]
	r.fieldBounds = r.fieldBounds[:0]

	inQuotes := false
	fieldStart := 0
	quoteLine, quoteColumn := 0, 0

	for {
		b, err := r.readByte()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			r.finished = true
			if inQuotes && r.Strict {
				return nil, &ParseError{Line: quoteLine, Column: quoteColumn, Err: ErrUnterminatedQuote}
			}
			if len(r.dataBuf) > fieldStart || len(r.fieldBounds) > 0 {
				r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			}
			if len(r.fieldBounds) == 0 {
				return nil, io.EOF
			}
			return r.buildRecord(), nil
		}

		if inQuotes {
			if b != quote {
				r.dataBuf = append(r.dataBuf, b)
				r.appendRun(false)
				continue
			}
			// Double quote inside quotes represents an escaped quote.
			next, err := r.peekByte()
			if err != nil && err != io.EOF {
				return nil, err
			}
			if err == nil && next == quote {
				r.readByte()
				r.dataBuf = append(r.dataBuf, quote)
				continue
			}
			inQuotes = false
			continue
		}

		switch b {
		case quote:
			inQuotes = true
			quoteLine, quoteColumn = r.line, r.col
		case comma:
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			fieldStart = len(r.dataBuf)
		case '\n':
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			return r.buildRecord(), nil
		case '\r':
			// Support CRLF by peeking ahead for '\n' and consuming it together.
			next, err := r.peekByte()
			if err != nil && err != io.EOF {
				return nil, err
			}
			if err == nil && next == '\n' {
				r.readByte()
			}
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			return r.buildRecord(), nil
		default:
			r.dataBuf = append(r.dataBuf, b)
			r.appendRun(true)
		}
	}
}

// ReadAll exhausts the reader, repeatedly calling Read to collect rows until io.EOF
// and returning the accumulated rows plus the first non-EOF error encountered.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// Rows returns the remaining rows as a single-use sequence. Iteration stops at
// end of input; a read error is yielded once with a nil row and ends the sequence.
func (r *Reader) Rows() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for {
			record, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(record, err) || err != nil {
				return
			}
		}
	}
}

// buildRecord maps the accumulated fieldBounds onto the data buffer, respecting ReuseRecord.
func (r *Reader) buildRecord() []string {
	fieldCount := len(r.fieldBounds) / 2

	var recordStr string
	if r.ReuseRecord {
		if len(r.dataBuf) > 0 {
			// Zero-copy string construction so fields can share a single backing buffer.
			recordStr = unsafe.String(unsafe.SliceData(r.dataBuf), len(r.dataBuf))
		}
		if cap(r.record) < fieldCount {
			r.record = make([]string, fieldCount)
		}
		r.record = r.record[:fieldCount]
	} else {
		recordStr = string(r.dataBuf)
		r.record = make([]string, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		r.record[i] = recordStr[r.fieldBounds[2*i]:r.fieldBounds[2*i+1]]
	}
	return r.record
}

// readByte consumes the next byte, draining the lookahead before the chunk buffer.
func (r *Reader) readByte() (byte, error) {
	b := r.lookahead
	if r.hasLookahead {
		r.hasLookahead = false
	} else {
		var err error
		if b, err = r.nextByte(); err != nil {
			return 0, err
		}
	}
	r.advance(b)
	return b, nil
}

// peekByte returns the next byte without consuming it, filling the lookahead on demand.
func (r *Reader) peekByte() (byte, error) {
	if !r.hasLookahead {
		b, err := r.nextByte()
		if err != nil {
			return 0, err
		}
		r.lookahead = b
		r.hasLookahead = true
	}
	return r.lookahead, nil
}

// nextByte yields one byte from the chunk buffer, refilling it from src as needed.
// io.EOF is sticky; other source errors are returned once.
func (r *Reader) nextByte() (byte, error) {
	empty := 0
	for r.bufPos >= r.bufLen {
		if r.bufErr != nil {
			err := r.bufErr
			if err != io.EOF {
				r.bufErr = nil
			}
			return 0, err
		}

		n, err := r.src.Read(r.buf)
		r.bufPos = 0
		r.bufLen = n
		r.bufErr = err
		if n == 0 && err == nil {
			empty++
			if empty >= maxEmptyReads {
				return 0, io.ErrNoProgress
			}
		}
	}

	b := r.buf[r.bufPos]
	r.bufPos++
	return b, nil
}

// appendRun copies buffered plain bytes that follow the current one straight into dataBuf.
// A run stops at a quote or line terminator, and at a comma outside quotes.
func (r *Reader) appendRun(unquoted bool) {
	if r.hasLookahead {
		return
	}

	data := r.buf[r.bufPos:r.bufLen]
	n := 0
	for ; n < len(data); n++ {
		c := data[n]
		if c == quote || c == '\n' || c == '\r' || (unquoted && c == comma) {
			break
		}
	}
	if n == 0 {
		return
	}
	r.dataBuf = append(r.dataBuf, data[:n]...)
	r.bufPos += n
	r.col += n
	r.last = data[n-1]
}

// advance updates the line and column of the last consumed byte. A CRLF pair counts as one line break.
func (r *Reader) advance(b byte) {
	switch b {
	case '\n':
		if r.last != '\r' {
			r.line++
		}
		r.col = 0
	case '\r':
		r.line++
		r.col = 0
	default:
		r.col++
	}
	r.last = b
}

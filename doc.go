// # StreamCSV: A Streaming CSV Codec for Go
//
// StreamCSV reads and writes comma-separated data incrementally over an io.Reader or io.Writer. It never loads a whole file into memory and never owns the underlying stream.
//
// # Features
//
// - Lazy row-at-a-time Reader over a chunked source with one byte of lookahead.
// - Accepts `\n`, `\r\n`, and bare `\r` as row terminators; quoted fields may contain any of them.
// - Writer with minimal quoting: a field is quoted only when it holds a comma, a quote, `\n`, or `\r`.
// - Lenient handling of an unclosed quote at end of input, with an opt-in `Reader.Strict` mode reporting `ErrUnterminatedQuote` through `ParseError`.
// - Range-over-func iteration via `Reader.Rows`.
//
// # Round trip
//
// Any rows written by Writer read back identically through Reader, provided each row carries at least one field:
//
//	var buf bytes.Buffer
//	w := streamcsv.NewWriter(&buf)
//	_ = w.WriteAll([][]string{{"id", "note"}, {"1", "He said \"hi\""}})
//
//	r := streamcsv.NewReader(&buf)
//	for row, err := range r.Rows() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(row)
//	}
//
// The dialect is fixed: comma delimiter, `"` quote, `\n` written as record terminator, no header special-casing.
package streamcsv

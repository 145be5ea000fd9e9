package streamcsv

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	comma = ','
	quote = '"'
)

// reserved lists the bytes that force a field to be quoted.
const reserved = ",\"\r\n"

// NeedsQuoting reports whether field contains a comma, a quote, or a line terminator.
func NeedsQuoting(field string) bool {
	return strings.ContainsAny(field, reserved)
}

// AppendField appends the escaped form of field to dst and returns the extended slice.
// Fields that need quoting are wrapped in quotes with every inner quote doubled;
// all other fields are appended unchanged.
func AppendField(dst []byte, field string) []byte {
	if !NeedsQuoting(field) {
		return append(dst, field...)
	}

	dst = append(dst, quote)
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == quote {
			dst = append(dst, field[start:i+1]...)
			dst = append(dst, quote)
			start = i + 1
		}
	}
	dst = append(dst, field[start:]...)
	return append(dst, quote)
}

// EscapeField returns field in its serialized form.
func EscapeField(field string) string {
	if !NeedsQuoting(field) {
		return field
	}
	return string(AppendField(make([]byte, 0, len(field)+2), field))
}

// Text coerces v to the text written for it in a CSV field.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

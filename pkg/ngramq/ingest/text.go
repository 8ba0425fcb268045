package ingest

import (
	"fmt"
	"strconv"
)

// Text coerces an arbitrary cell value to the string the tokenizer sees.
// Loaders use it for query cells that were decoded as numbers or booleans.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

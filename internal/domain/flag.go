package domain

import (
	"strconv"
	"strings"
)

// NormalizeFlag collapses the encodings the backend uses for a boolean
// (true/false, "true"/"false" in any case, numeric 0/1, or absent) into a
// strict bool. Absent and unrecognised values are false.
func NormalizeFlag(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case *bool:
		return x != nil && *x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	case float64:
		return x != 0
	case int:
		return x != 0
	default:
		return false
	}
}

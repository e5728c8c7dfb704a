package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToInt converts loosely typed values (YAML scalars, driver values) to int.
// Unparseable input yields 0.
func ToInt(val any) int {
	switch v := val.(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case uint32:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	case []byte:
		i, _ := strconv.Atoi(strings.TrimSpace(string(v)))
		return i
	default:
		i, _ := strconv.Atoi(fmt.Sprintf("%v", v))
		return i
	}
}

// ToBool converts loosely typed values to bool.
// Numbers are true when equal to 1; strings accept "1", "true" and "yes".
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int, int64, int32, uint, uint64, uint32, float64, float32:
		return ToInt(v) == 1
	case string:
		return isTrue(v)
	case []byte:
		return isTrue(string(v))
	default:
		return false
	}
}

// FormatID renders a registry id as a flat record key.
func FormatID(id int) string {
	return strconv.Itoa(id)
}

// ParseID parses a flat record key. Unlike ToInt it rejects anything that is
// not a plain decimal integer.
func ParseID(key string) (int, error) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("invalid id key %q: %w", key, err)
	}
	return id, nil
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// InferDataType maps a decoded row value to the coarse type label exposed in
// schema responses. Values arrive either JSON-decoded (string, json.Number,
// bool) or natively typed from a database driver.
func InferDataType(value any) string {
	switch v := value.(type) {
	case nil:
		return "unknown"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64:
		return "integer"
	case float32, float64:
		return "numeric"
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return "numeric"
		}
		return "integer"
	case string:
		return "text"
	case time.Time:
		return "timestamp"
	default:
		return "unknown"
	}
}

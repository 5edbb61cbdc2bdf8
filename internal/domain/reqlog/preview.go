package reqlog

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Unserializable replaces a preview whose body could not be rendered as text.
const Unserializable = "[unserializable]"

// Preview renders a response body as bounded text.
// Binary bodies are cut at limit bytes, text and structured bodies at limit characters.
// A limit <= 0 disables truncation. Preview never panics.
func Preview(body any, limit int) (out string) {
	defer func() {
		if recover() != nil {
			out = Unserializable
		}
	}()

	switch v := body.(type) {
	case nil:
		return ""
	case []byte:
		return truncateBytes(v, limit)
	case json.RawMessage:
		return truncateChars(string(v), limit)
	case string:
		return truncateChars(v, limit)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Unserializable
		}
		return truncateChars(string(b), limit)
	}
}

func truncateBytes(b []byte, limit int) string {
	if limit <= 0 || len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + marker(len(b)-limit, "bytes")
}

func truncateChars(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := utf8.RuneCountInString(s)
	if n <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + marker(n-limit, "chars")
}

func marker(omitted int, unit string) string {
	return fmt.Sprintf(" ... [truncated %d %s]", omitted, unit)
}

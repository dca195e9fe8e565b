package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Object returns v as a JSON object, or false if it is anything else.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// StringField reads key from an untrusted object.
//
// Strings are trimmed. Numbers are rendered in plain decimal form because
// models sometimes emit registry codes and phone numbers unquoted. Every
// other type, including null and a missing key, yields "".
func StringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return numberString(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// numberString formats n without exponent notation when it is integral.
func numberString(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}

package response

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// Normalize round-trips v through JSON and rewrites every object key to
// snake_case. nil stays nil.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return rewriteKeys(generic), nil
}

func rewriteKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[ToSnake(k)] = rewriteKeys(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = rewriteKeys(t[i])
		}
		return t
	default:
		return v
	}
}

// ToSnake converts CamelCase, camelCase and acronym runs ("UserID",
// "HTTPStatus") to snake_case. Already snake_case input is unchanged.
func ToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package oauth2c

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// A fieldParser attempts to read key out of content in one encoding. The
// second result reports whether the content was in this parser's encoding
// at all; a decodable body with the key absent is handled=true, value "".
type fieldParser func(content, key string) (value string, handled bool)

// fieldParsers are tried in order; the first parser that recognizes the
// encoding wins. Add an encoding by appending here, not by branching.
var fieldParsers = []fieldParser{jsonField, queryField}

// ExtractField reads a top-level field from a raw token-response body,
// accepting either a JSON document or a URL-encoded query string. It never
// fails: a malformed body, an unknown key, or empty input all yield "".
func ExtractField(content, key string) string {
	if content == "" || key == "" {
		return ""
	}
	for _, parse := range fieldParsers {
		if v, ok := parse(content, key); ok {
			return v
		}
	}
	return ""
}

func jsonField(content, key string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return "", false
	}
	return stringValue(doc[key]), true
}

func queryField(content, key string) (string, bool) {
	values, err := url.ParseQuery(content)
	if err != nil {
		return "", false
	}
	return values.Get(key), true
}

// stringValue renders a decoded JSON value as its string form, so numeric
// fields like expires_in survive extraction.
func stringValue(input any) string {
	switch v := input.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return ""
	}
}

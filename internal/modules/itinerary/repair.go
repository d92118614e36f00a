package itinerary

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var (
	errNoObject     = errors.New("no JSON object found in model output")
	errNotObject    = errors.New("top-level JSON value is not an object")
	errTrailingData = errors.New("unexpected data after JSON object")
)

// Parsed is the outcome of Repair: the decoded object plus the text it came from.
type Parsed struct {
	Object  Untrusted
	Raw     string
	Cleaned string
}

// Repair reduces noisy model output to a single JSON object.
// Fences are stripped first; a full parse is tried before falling back to the
// first-'{' / last-'}' slice. Failure is a *MalformedResponseError.
func Repair(raw string) (Parsed, error) {
	text := stripFences(raw)

	obj, err := decodeObject(text)
	if err == nil {
		return Parsed{Object: obj, Raw: raw, Cleaned: text}, nil
	}

	candidate, ok := braceSlice(text)
	if !ok {
		return Parsed{}, &MalformedResponseError{Raw: raw, Cleaned: text, Err: errNoObject}
	}
	obj, err = decodeObject(candidate)
	if err != nil {
		return Parsed{}, &MalformedResponseError{Raw: raw, Cleaned: candidate, Err: err}
	}
	return Parsed{Object: obj, Raw: raw, Cleaned: candidate}, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = text[3:]
		// language tag, e.g. ```json or ```JSON5
		i := 0
		for i < len(text) && isTagByte(text[i]) {
			i++
		}
		text = strings.TrimSpace(text[i:])
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
	}
	return text
}

func isTagByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '+'
}

func braceSlice(text string) (string, bool) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

func decodeObject(text string) (Untrusted, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return Untrusted(m), nil
}

package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode reports a payload that was found but could not be decoded.
var ErrDecode = errors.New("gateway: decode payload")

// Path addresses a value inside a JSON document. The empty Path is the
// document root.
type Path []string

// Root is the whole document.
var Root = Path{}

// Common candidates. Most endpoints wrap the payload in a
// {code,message,data} envelope, some return it bare.
var (
	DataPath     = Path{"data"}
	DataUserPath = Path{"data", "user"}
	UserPath     = Path{"user"}
)

// Lookup returns the first candidate path that resolves to a present
// value. Null, false, 0 and "" count as absent; empty objects and arrays
// count as present. With no candidates the root is tried.
func Lookup(body []byte, paths ...Path) (json.RawMessage, bool) {
	if len(paths) == 0 {
		paths = []Path{Root}
	}
	for _, p := range paths {
		if raw, ok := resolve(body, p); ok && present(raw) {
			return raw, true
		}
	}
	return nil, false
}

// DecodeObject unmarshals the first present candidate into v. It reports
// false, with v untouched, when no candidate is present.
func DecodeObject(body []byte, v any, paths ...Path) (bool, error) {
	raw, ok := Lookup(body, paths...)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return true, nil
}

// DecodeList unwraps a collection tried under "data", then under the
// resource-named key, then at the root. When the chosen value is not an
// array, or nothing is present, the result is an empty non-nil slice.
func DecodeList[T any](body []byte, resource string) ([]T, error) {
	paths := []Path{DataPath}
	if resource != "" {
		paths = append(paths, Path{resource})
	}
	paths = append(paths, Root)

	out := []T{}
	raw, ok := Lookup(body, paths...)
	if !ok || !isArray(raw) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return []T{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out, nil
}

func resolve(body []byte, p Path) (json.RawMessage, bool) {
	cur := json.RawMessage(bytes.TrimSpace(body))
	for _, key := range p {
		if len(cur) == 0 || cur[0] != '{' {
			return nil, false
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		cur = bytes.TrimSpace(next)
	}
	return cur, len(cur) > 0
}

func present(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return false
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil && f == 0 {
			return false
		}
	}
	return true
}

func isArray(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '['
}

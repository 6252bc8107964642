package classify

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when an enumerated value has no name.
var ErrUnknownValue = errors.New("unknown enumerated value")

// Name returns names[v], or "kind(v)" when v is out of range.
func Name(kind string, names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, v)
	}
	return names[v]
}

// MarshalName encodes v as its name. Out-of-range values fail, so an
// enumeration can never serialize outside its closed set.
func MarshalName(kind string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("%w: %s %d", ErrUnknownValue, kind, v)
	}
	return []byte(names[v]), nil
}

// ParseName returns the index of text in names.
func ParseName(kind string, names []string, text []byte) (int, error) {
	for i, n := range names {
		if n == string(text) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownValue, kind, text)
}

package protogen

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedError is returned when the descriptor tree violates an invariant
// the schema compiler guarantees, so no meaningful text can be produced.
type MalformedError struct {
	Kind   NodeKind
	Path   []int32 // location path of the offending element
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s at [%s]: %s", e.Kind, formatPath(e.Path), e.Reason)
}

// DecodeError wraps a failure to decode serialized descriptor bytes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding descriptor set: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// renderPanic carries a MalformedError out of the recursive emitter.
type renderPanic struct {
	err *MalformedError
}

func formatPath(path []int32) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}

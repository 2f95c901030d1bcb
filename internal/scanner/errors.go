package scanner

import "fmt"

// TruncatedError reports a message whose declared payload length runs
// past the end of the feed. It is always fatal for the run.
type TruncatedError struct {
	Offset int64
	Type   byte
	Need   int
	Have   int64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated message type %q at offset %d: need %d payload bytes, have %d",
		e.Type, e.Offset, e.Need, e.Have)
}

// UnknownTypeError reports an unrecognized type code. Only produced in
// strict mode; the default policy skips the byte and keeps scanning.
type UnknownTypeError struct {
	Offset int64
	Type   byte
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type 0x%02x at offset %d", e.Type, e.Offset)
}

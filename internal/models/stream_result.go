package models

// StreamResult holds either a value or an error from a streaming operation
type StreamResult[T any] struct {
	Value T
	Line  int // 1-based line of the source record, 0 when not applicable
	Err   error
}

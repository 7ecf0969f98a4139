package parser

import (
	"context"
	"io"

	"github.com/Belphemur/MovieLinks/internal/models"
)

// StreamParser parses records from a reader and emits them as they are read.
// The channel is closed once the input is exhausted, a fatal read error has
// been sent, or ctx is cancelled.
type StreamParser[T any] interface {
	Stream(ctx context.Context, body io.Reader) <-chan models.StreamResult[T]
}

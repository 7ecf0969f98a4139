package testutil

import (
	"context"
	"errors"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/models"
)

// CollectLinks consumes a link stream. Row-level errors are collected
// separately; the first other error is returned as err.
// This is a test helper and should not be used in production code.
func CollectLinks(ctx context.Context, stream <-chan models.StreamResult[models.Link]) (links []models.Link, rowErrs []error, err error) {
	for {
		select {
		case result, ok := <-stream:
			if !ok {
				return links, rowErrs, nil
			}
			if result.Err != nil {
				if errors.Is(result.Err, &apperrors.ErrInvalidRow{}) {
					rowErrs = append(rowErrs, result.Err)
					continue
				}
				return links, rowErrs, result.Err
			}
			links = append(links, result.Value)
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

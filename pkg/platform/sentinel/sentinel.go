// Package sentinel holds infrastructure sentinel errors. Stores and
// infrastructure layers return these (optionally wrapped) so callers can
// branch with errors.Is without depending on a concrete adapter.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
package sentinel

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable reports that a collaborator cannot serve the request,
	// e.g. an audit store without read support.
	ErrUnavailable = errors.New("unavailable")

	// ErrCircuitOpen reports that calls are being skipped while a failing
	// dependency cools down. It matches ErrUnavailable.
	ErrCircuitOpen = fmt.Errorf("circuit open: %w", ErrUnavailable)
)

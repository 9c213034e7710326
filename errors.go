package uieval

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrNotFound indicates a source has no annotation file for the requested name.
	ErrNotFound = errors.New("uieval: annotation file not found")

	// ErrInvalidThreshold indicates an overlap threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("uieval: invalid overlap threshold")

	// ErrNoSource indicates Evaluate was called without a ground truth or prediction source.
	ErrNoSource = errors.New("uieval: missing annotation source")
)

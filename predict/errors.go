package predict

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrNoAPIKey indicates the client was created without an API key.
	ErrNoAPIKey = errors.New("predict: missing API key")

	// ErrPredictionFailed indicates the remote model request failed.
	ErrPredictionFailed = errors.New("predict: model request failed")

	// ErrInvalidImage indicates the image could not be decoded.
	ErrInvalidImage = errors.New("predict: invalid image")
)

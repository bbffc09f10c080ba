package service

import "errors"

// Error kinds returned by AnalysisService. Concrete errors wrap one of these
// with a message naming the offending input.
var (
	ErrValidation      = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
	ErrDataUnavailable = errors.New("data unavailable")
)

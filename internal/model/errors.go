package model

import "errors"

// Failure kinds shared by the pipeline stages and the dispatcher.
// Callers wrap them with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrFetch             = errors.New("fetch failed")
	ErrStorageWrite      = errors.New("object storage write failed")
	ErrRecordWrite       = errors.New("record write failed")
	ErrRecordRead        = errors.New("record read failed")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrUnsupportedMethod = errors.New("method not allowed")
)

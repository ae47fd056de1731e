package service

import "errors"

// Service error taxonomy. NotFound and InvalidState surface to the route
// layer (404/400); platform publish failures are never raised as errors but
// captured per-platform on the post itself.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrPageNotFound = errors.New("page not found")
	ErrInvalidState = errors.New("invalid state")
)

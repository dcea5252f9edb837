package errors

import "errors"

// Page controller errors.
var (
	ErrNoPostSpecified = errors.New("no post specified")
	ErrPageNotFound    = errors.New("page not found")
	ErrInvalidSlug     = errors.New("invalid post slug")
)

// Content origin errors.
var (
	ErrFetch  = errors.New("fetch failed")
	ErrStatus = errors.New("unexpected response status")
	ErrDecode = errors.New("malformed response")
)

// Rendering errors.
var ErrMathConversion = errors.New("math conversion failed")

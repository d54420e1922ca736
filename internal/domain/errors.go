package domain

import "errors"

// Sentinel errors for catalog and playback operations
var (
	// ErrServerUnreachable indicates a transport failure or non-2xx response
	ErrServerUnreachable = errors.New("manifest server is unreachable")

	// ErrBadManifest indicates a malformed manifest or playlist document
	ErrBadManifest = errors.New("malformed manifest document")

	// ErrCache indicates a local store read or write failure
	ErrCache = errors.New("catalog cache failure")

	// ErrUnsupportedMedia indicates a URL with no playable strategy
	ErrUnsupportedMedia = errors.New("unsupported media format")
)

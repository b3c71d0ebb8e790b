package gllcms

import "errors"

var (
	ErrInvalidSettings = errors.New("gllcms: invalid settings")
	// ErrProfile is returned when the configured ICC profile cannot be read
	// or parsed.
	ErrProfile = errors.New("gllcms: unusable ICC profile")
	// ErrTransform is returned when a color transform cannot be built from
	// otherwise valid profiles.
	ErrTransform     = errors.New("gllcms: failed to build color transform")
	ErrFilterStopped = errors.New("gllcms: filter is closed")
)

package challenge

import "errors"

// Sentinel kinds for challenge calendar errors.
var (
	ErrBadDay = errors.New("malformed challenge day")
)

package cache

import "errors"

// Sentinel errors for cache operations.
var (
	ErrInvalidKey      = errors.New("cache: key is invalid")
	ErrKeyTooLong      = errors.New("cache: key exceeds max length")
	ErrInvalidTTL      = errors.New("cache: ttl must be positive")
	ErrInvalidCapacity = errors.New("cache: capacity must be positive")
	ErrClosed          = errors.New("cache: cache is closed")
	ErrNoSubject       = errors.New("cache: token has no subject claim")
)

package repository

import "errors"

// Sentinel kinds for cache errors. A miss is not an error.
var (
	ErrCacheRead  = errors.New("country cache read failed")
	ErrCacheWrite = errors.New("country cache write failed")
	ErrCacheData  = errors.New("country cache holds invalid data")
)

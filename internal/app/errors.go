package service

import "errors"

// ErrCanceled is returned when a calculation's context ended before it started.
var ErrCanceled = errors.New("calculation canceled")

package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNoData        = errors.New("no data")
	ErrInvalidRecord = errors.New("invalid record")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrLockHeld      = errors.New("lock already held")
)

package services

import "errors"

var (
	// ErrNoSnapshot is returned by view methods before the first successful
	// refresh.
	ErrNoSnapshot = errors.New("no data snapshot loaded")

	// ErrRefreshInProgress is returned when a refresh is requested while
	// another one is still running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

package domain

import "errors"

// Transport-level outcomes shared by the API client and the services using it.
var (
	ErrUnauthorized = errors.New("session expired or not authorized")
	ErrNotFound     = errors.New("resource not found")
	ErrUnreachable  = errors.New("api unreachable")
)

package domain

import "errors"

var (
	ErrTableNotFound   = errors.New("tier table not found")
	ErrInvalidExitType = errors.New("invalid exit type")
	ErrInvalidField    = errors.New("invalid tier field")
)

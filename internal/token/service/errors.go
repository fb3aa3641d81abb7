package service

import "errors"

var (
	ErrUserRequired = errors.New("user id is required")
)

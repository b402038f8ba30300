package admin

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAdmin           = errors.New("admin access required")
)

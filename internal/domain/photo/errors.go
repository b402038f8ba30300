package photo

import "errors"

var (
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrPhotoExists      = errors.New("photo already exists")
	ErrInvalidFilename  = errors.New("invalid photo filename")
	ErrIOFailure        = errors.New("photo storage operation failed")
	ErrIdentityNotFound = errors.New("unknown photo id")
)

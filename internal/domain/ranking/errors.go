package ranking

import "errors"

var (
	ErrCategoriesMissing = errors.New("categories are required")
	ErrCategoryCount     = errors.New("categories must include every configured category")
	ErrStaleRevision     = errors.New("ranking was changed by someone else, reload and try again")
	ErrInvalidSchema     = errors.New("invalid category schema")
	ErrWriteFailed       = errors.New("failed to save ranking")
)

// IsValidation reports whether err rejects the request payload rather than
// signalling a storage problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCategoriesMissing) || errors.Is(err, ErrCategoryCount)
}

package service

import (
	"errors"

	"github.com/craftfolio/craftfolio/internal/repository"
)

// The store interfaces report failures with the repository sentinel
// errors; these helpers keep the errors.Is calls in one place.

func isEmailConflict(err error) bool {
	return errors.Is(err, repository.ErrEmailExists)
}

func isUserMissing(err error) bool {
	return errors.Is(err, repository.ErrUserNotFound)
}

func isResetMismatch(err error) bool {
	return errors.Is(err, repository.ErrNoMatchingReset)
}

func isPortfolioMissing(err error) bool {
	return errors.Is(err, repository.ErrPortfolioNotFound)
}

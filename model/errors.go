package model

import "errors"

// error codes shared by services and controllers
// the message of each error is the code returned to API clients
var (
	ErrRateLimitReached = errors.New("RATE_LIMIT_REACHED")
	ErrRateLimiter      = errors.New("RATE_LIMITER_ERROR")
	ErrUnauthorized     = errors.New("UNAUTHORIZED")
	ErrNotFound         = errors.New("NOT_FOUND")
	ErrFetch            = errors.New("FETCH_ERROR")
	ErrInvalidInput     = errors.New("INVALID_INPUT")
	ErrStorage          = errors.New("STORAGE_ERROR")
	ErrSelectionChanged = errors.New("SELECTION_CHANGED")
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewAPIError(errReason error) APIError {
	switch {
	case errors.Is(errReason, ErrRateLimitReached):
		return APIError{
			Code:    ErrRateLimitReached.Error(),
			Message: "github rate limit reached. wait few minutes and try again",
		}

	case errors.Is(errReason, ErrUnauthorized):
		return APIError{
			Code:    ErrUnauthorized.Error(),
			Message: "missing or invalid github token",
		}

	case errors.Is(errReason, ErrNotFound):
		return APIError{
			Code:    ErrNotFound.Error(),
			Message: "repository not found",
		}

	case errors.Is(errReason, ErrSelectionChanged):
		return APIError{
			Code:    ErrSelectionChanged.Error(),
			Message: "another repository was selected before this one finished loading",
		}

	case errors.Is(errReason, ErrInvalidInput):
		return APIError{
			Code:    ErrInvalidInput.Error(),
			Message: errReason.Error(),
		}

	case errors.Is(errReason, ErrRateLimiter), errors.Is(errReason, ErrFetch), errors.Is(errReason, ErrStorage):
		return APIError{
			Code:    rootCode(errReason),
			Message: "internal server error. contact our support with the reason code for assistance",
		}
	}

	return APIError{
		Code:    "GENERIC_ERROR",
		Message: "internal server error. contact our support with the reason code for assistance",
	}
}

// rootCode return the code of the first known error found in the chain
func rootCode(err error) string {
	for _, known := range []error{ErrRateLimiter, ErrFetch, ErrStorage} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return err.Error()
}

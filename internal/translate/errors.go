package translate

import (
	"errors"
	"fmt"
)

// ErrEmptyTranslation is returned when the model answered without any text.
var ErrEmptyTranslation = errors.New("empty translation")

// ServiceError means the remote service rejected the call (throttling,
// authentication, unknown model id). Every other failure is a transport or
// decoding problem.
type ServiceError struct {
	Provider   Provider
	Code       string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	var detail string
	switch {
	case e.Code != "" && e.StatusCode != 0:
		detail = fmt.Sprintf("%s (http %d)", e.Code, e.StatusCode)
	case e.Code != "":
		detail = e.Code
	case e.StatusCode != 0:
		detail = fmt.Sprintf("http %d", e.StatusCode)
	default:
		detail = "request rejected"
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, detail, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, detail)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsServiceError reports whether err carries a *ServiceError.
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// External media-service and notification errors
var (
	ErrMediaUpload        = errors.New("media upload failed")
	ErrMediaDelete        = errors.New("media delete failed")
	ErrPartialFailure     = errors.New("partial failure")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrServiceTimeout     = errors.New("service timeout")
	ErrNotificationSend   = errors.New("notification send failed")
)

// NewMediaUploadError wraps a failed upstream upload. The gateway never
// retries; the underlying message is surfaced to the caller as-is.
func NewMediaUploadError(resourceType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrMediaUpload,
		Details:    fmt.Sprintf("Error uploading %s", resourceType),
		Cause:      cause,
	}
}

func NewMediaDeleteError(publicID string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrMediaDelete,
		Details:    fmt.Sprintf("Error deleting media asset %s", publicID),
		Cause:      cause,
	}
}

// NewPartialDeleteError reports a delete saga where some variants were
// removed and others were not. Callers decide whether to retry the
// failed variants; nothing is rolled back.
func NewPartialDeleteError(failedVariants []string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrPartialFailure,
		Details:    fmt.Sprintf("Failed to delete variants: %v", failedVariants),
		Cause:      cause,
	}
}

func NewServiceUnavailableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("Service %s is unreachable", service),
		Cause:      cause,
	}
}

func NewServiceTimeoutError(service string, timeout time.Duration) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusGatewayTimeout,
		err:        ErrServiceTimeout,
		Details:    fmt.Sprintf("Call to %s timed out after %v", service, timeout),
	}
}

func NewNotificationError(channel string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrNotificationSend,
		Details:    fmt.Sprintf("Failed to send notification via %s", channel),
		Cause:      cause,
	}
}

func IsMediaUploadError(err error) bool {
	return errors.Is(err, ErrMediaUpload)
}

func IsMediaDeleteError(err error) bool {
	return errors.Is(err, ErrMediaDelete)
}

func IsPartialFailureError(err error) bool {
	return errors.Is(err, ErrPartialFailure)
}

func IsNotificationError(err error) bool {
	return errors.Is(err, ErrNotificationSend)
}

package errors

import "fmt"

var ErrRateLimited = fmt.Errorf("rate limited")
var ErrServerError = fmt.Errorf("server error")
var ErrNetwork = fmt.Errorf("network error")
var ErrHardFail = fmt.Errorf("request failed")
var ErrRetriesExhausted = fmt.Errorf("max retries exceeded")

const maxExcerptLength = 300

// HardFailError is returned for unexpected response codes that must not be
// retried. It carries the status code and a truncated excerpt of the
// response body.
type HardFailError struct {
	StatusCode  int
	BodyExcerpt string
}

func NewHardFailError(statusCode int, body []byte) HardFailError {
	excerpt := string(body)
	if len(excerpt) > maxExcerptLength {
		excerpt = excerpt[:maxExcerptLength]
	}

	return HardFailError{StatusCode: statusCode, BodyExcerpt: excerpt}
}

func (hfe HardFailError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", hfe.StatusCode, hfe.BodyExcerpt)
}

func (hfe HardFailError) Is(target error) bool {
	return target == ErrHardFail
}

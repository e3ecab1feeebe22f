package feed

import "fmt"

// ServiceError carries an operation-scoped failure code alongside its cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opAggregatorNew = "feed.aggregator.new"
	opFetchUnified  = "feed.fetch_unified"
	opToggleLike    = "feed.toggle_like"
	opToggleSave    = "feed.toggle_save"
	opToggleJoin    = "feed.toggle_join"
	opLikeCount     = "feed.like_count"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

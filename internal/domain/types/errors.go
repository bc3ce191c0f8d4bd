package types

import "errors"

var (
	ErrNotFound = errors.New("requested item not found")

	ErrFetchFailed       = errors.New("snapshot fetch failed")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	ErrUnknownHandle     = errors.New("unknown overlay handle")

	ErrMalformedLine     = errors.New("malformed SBS line")
	ErrNothingToPublish  = errors.New("message carries no attributes")
	ErrInvalidMessage    = errors.New("invalid position message")
	ErrMissingAttributes = errors.New("message misses required attributes")
	ErrOutdated          = errors.New("message is out-dated")
	ErrDatabaseFailed    = errors.New("database operation failed")
	ErrPublishFailed     = errors.New("failed to publish message")

	ErrRateLimited = errors.New("rate limit exceeded")
)

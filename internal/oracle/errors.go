package oracle

import "errors"

var (
	// ErrTimeout indicates the oracle did not answer within its deadline
	ErrTimeout = errors.New("oracle call timed out")

	// ErrNoChoices indicates the response carried no choices or content blocks
	ErrNoChoices = errors.New("oracle response has no choices")

	// ErrEmptyResponse indicates both the content and reasoning channels were empty
	ErrEmptyResponse = errors.New("oracle response has no content")

	// ErrMissingAPIKey indicates no credential was supplied
	ErrMissingAPIKey = errors.New("oracle api key missing")
)

package submit

import "errors"

var (
	// ErrNoCredentials means the run never started: nothing was sent.
	ErrNoCredentials = errors.New("no stored credentials")

	// ErrMalformedItem marks an item that cannot be turned into a request.
	// Such items are skipped, never retried.
	ErrMalformedItem = errors.New("malformed pending upload")

	// ErrCanceled ends a run whose context was canceled. It wraps ctx.Err().
	ErrCanceled = errors.New("submission canceled")

	// ErrRetriesExhausted ends a run when a bounded policy gives up on an item.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// ItemError ties a rejected item to the reason it was not sent.
type ItemError struct {
	ID  string
	Err error
}

func (e ItemError) Error() string {
	return e.ID + ": " + e.Err.Error()
}

func (e ItemError) Unwrap() error {
	return e.Err
}

package submit

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultDelay is the wait between attempts for the same item.
const DefaultDelay = 15 * time.Second

// RetryPolicy describes how long to wait between attempts for one item.
// MaxAttempts == 0 retries forever.
type RetryPolicy struct {
	Delay       time.Duration
	Exponential bool
	MaxDelay    time.Duration
	MaxAttempts uint64
}

// DefaultPolicy retries every 15 seconds until the item is delivered.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{Delay: DefaultDelay}
}

// Backoff builds a fresh backoff. go-retry backoffs carry state, so every
// item gets its own.
func (p RetryPolicy) Backoff() retry.Backoff {
	d := p.Delay
	if d <= 0 {
		d = DefaultDelay
	}

	var b retry.Backoff
	if p.Exponential {
		b = retry.NewExponential(d)
		if p.MaxDelay > 0 {
			b = retry.WithCappedDuration(p.MaxDelay, b)
		}
	} else {
		b = retry.NewConstant(d)
	}

	if p.MaxAttempts > 0 {
		b = retry.WithMaxRetries(p.MaxAttempts-1, b)
	}
	return b
}

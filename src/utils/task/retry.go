package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Implement operation retrying
type Retry struct {
	ctx                context.Context
	initialInterval    time.Duration
	maxElapsedTime     time.Duration
	maxInterval        time.Duration
	maxAttempts        uint64
	acceptableDuration time.Duration
	onError            func(err error, isDurationAcceptable bool) error
}

func NewRetry() *Retry {
	return new(Retry)
}

func (self *Retry) WithInitialInterval(initialInterval time.Duration) *Retry {
	self.initialInterval = initialInterval
	return self
}

func (self *Retry) WithMaxElapsedTime(maxElapsedTime time.Duration) *Retry {
	self.maxElapsedTime = maxElapsedTime
	return self
}

func (self *Retry) WithMaxInterval(maxInterval time.Duration) *Retry {
	self.maxInterval = maxInterval
	return self
}

// Bounds the total number of attempts. 0 means no bound.
func (self *Retry) WithMaxAttempts(maxAttempts uint64) *Retry {
	self.maxAttempts = maxAttempts
	return self
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

// Attempts that take longer than this are reported as not acceptable to the
// error callback, which may decide to give up
func (self *Retry) WithAcceptableDuration(acceptableDuration time.Duration) *Retry {
	self.acceptableDuration = acceptableDuration
	return self
}

// Callback decides whether the error stops the retrying. Returning
// backoff.Permanent(err) stops, returning the error continues.
func (self *Retry) WithOnError(f func(err error, isDurationAcceptable bool) error) *Retry {
	self.onError = f
	return self
}

func (self *Retry) Run(f func() error) error {
	b := backoff.NewExponentialBackOff()
	if self.initialInterval > 0 {
		b.InitialInterval = self.initialInterval
	}
	b.MaxElapsedTime = self.maxElapsedTime
	if self.maxInterval > 0 {
		b.MaxInterval = self.maxInterval
	}

	var policy backoff.BackOff = b
	if self.ctx != nil {
		policy = backoff.WithContext(policy, self.ctx)
	}
	if self.maxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, self.maxAttempts-1)
	}

	operation := func() error {
		start := time.Now()
		err := f()
		if err == nil {
			return nil
		}

		isDurationAcceptable := self.acceptableDuration <= 0 || time.Since(start) <= self.acceptableDuration
		if self.onError != nil {
			err = self.onError(err, isDurationAcceptable)
		}
		return err
	}

	return backoff.Retry(operation, policy)
}

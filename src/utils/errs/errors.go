package errs

import (
	"errors"
	"fmt"
)

// Kind classifies failures coming from external services so that workers can
// decide between retrying, substituting a fallback and giving up.
type Kind string

const (
	// Network problems, rate limits, 5xx. Retried with backoff, bounded by
	// the configured max attempts.
	KindTransient Kind = "transient"

	// The generation service rejected the prompt. Handled with one
	// fallback-prompt retry, permanent if it recurs.
	KindContentPolicy Kind = "content_policy"

	// Unrecoverable. The token is marked failed right away.
	KindPermanent Kind = "permanent"

	// RPC connectivity failure. Fatal to the current reveal or
	// reconciliation attempt, surfaced to the caller.
	KindChainConnection Kind = "chain_connection"
)

type ServiceError struct {
	Kind Kind
	err  error
}

func (self *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", self.Kind, self.err.Error())
}

func (self *ServiceError) Unwrap() error {
	return self.err
}

func Transient(err error) error {
	return &ServiceError{Kind: KindTransient, err: err}
}

func ContentPolicy(err error) error {
	return &ServiceError{Kind: KindContentPolicy, err: err}
}

func Permanent(err error) error {
	return &ServiceError{Kind: KindPermanent, err: err}
}

func ChainConnection(err error) error {
	return &ServiceError{Kind: KindChainConnection, err: err}
}

func KindOf(err error) Kind {
	var serviceError *ServiceError
	if errors.As(err, &serviceError) {
		return serviceError.Kind
	}

	// Unclassified errors are not retried
	return KindPermanent
}

func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

func IsContentPolicy(err error) bool {
	return KindOf(err) == KindContentPolicy
}

func IsChainConnection(err error) bool {
	return KindOf(err) == KindChainConnection
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrInvalidContent = fmt.Errorf("content must be between 1 and %d characters", MaxContentLength)
	ErrQueueFull      = errors.New("queue is at capacity, try again later")
	ErrBatchEmpty     = errors.New("batch must contain at least one message")
	ErrBatchTooLarge  = errors.New("batch exceeds maximum of 100 messages")
	ErrNotReady       = errors.New("startup checks have not passed")
	ErrRateLimited    = errors.New("too many submissions, slow down")
)

// Kind classifies infrastructure failures so callers can pick a policy
// (fatal at startup, backoff in the ingestion loop) without string matching.
type Kind int

const (
	KindConnectivity Kind = iota + 1
	KindSchema
	KindTransientPersistence
	KindQueueTransport
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindSchema:
		return "schema"
	case KindTransientPersistence:
		return "transient_persistence"
	case KindQueueTransport:
		return "queue_transport"
	}
	return "unknown"
}

// Kind sentinels; errors.Is(err, ErrSchema) matches any *Error of that kind.
var (
	ErrConnectivity         = &Error{Kind: KindConnectivity}
	ErrSchema               = &Error{Kind: KindSchema}
	ErrTransientPersistence = &Error{Kind: KindTransientPersistence}
	ErrQueueTransport       = &Error{Kind: KindQueueTransport}
)

// Error is a classified infrastructure error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that failed.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so the package-level kind sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

package faucet

import (
	"errors"
	"fmt"

	"ledgerfaucet/internal/remote"
	"ledgerfaucet/internal/validate"
)

// ValidationError is a Failed cause detected locally. No remote call was made.
type ValidationError struct {
	Token TokenType
	Err   *validate.Error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Hint returns the corrective detail for the failure, empty when there is none.
func (e *ValidationError) Hint() string {
	return e.Err.Detail
}

// Reason returns the validation failure class.
func (e *ValidationError) Reason() validate.Reason {
	return e.Err.Reason
}

// ErrorKind classifies a failed remote call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindRejected
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

const fallbackDetail = "Please try again later."

// RemoteError is a Failed cause reported by, or on the way to, the backend.
type RemoteError struct {
	Kind   ErrorKind
	Token  TokenType
	Detail string
	Err    error
}

func (e *RemoteError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = fallbackDetail
	}
	return "Error: Failed to transfer tokens. " + detail
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// newRemoteError classifies err by the remote sentinels it wraps.
func newRemoteError(t TokenType, err error) *RemoteError {
	re := &RemoteError{Kind: KindUnknown, Token: t, Err: err}
	switch {
	case errors.Is(err, remote.ErrRejected):
		re.Kind = KindRejected
	case errors.Is(err, remote.ErrTransport):
		re.Kind = KindTransport
	case errors.Is(err, remote.ErrDecode):
		re.Kind = KindDecode
	}

	var rej *remote.RejectedError
	if errors.As(err, &rej) {
		re.Detail = rej.Message
	} else if err != nil {
		re.Detail = err.Error()
	}
	return re
}

// panicError converts a recovered panic value into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("remote client panicked: %w", err)
	}
	return fmt.Errorf("remote client panicked: %v", v)
}

package remote

import "errors"

// Failure classes of a remote call. Errors returned by clients wrap exactly
// one of these so callers can tell them apart with errors.Is.
var (
	// ErrTransport means the request never produced a response.
	ErrTransport = errors.New("transport failure")
	// ErrRejected means the faucet answered and refused the transfer.
	ErrRejected = errors.New("rejected by faucet")
	// ErrDecode means the response could not be decoded.
	ErrDecode = errors.New("undecodable response")
)

// RejectedError carries the faucet's own explanation of a refusal.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

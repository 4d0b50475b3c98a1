package newsapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed fetch. Network failures share KindStatus
// with non-2xx responses.
type ErrorKind int

const (
	KindStatus ErrorKind = iota + 1
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

var (
	// ErrTransport matches any status-kind FetchError via errors.Is.
	ErrTransport = errors.New("news api transport error")
	// ErrDecode matches any decode-kind FetchError via errors.Is.
	ErrDecode = errors.New("news api decode error")
)

// FetchError is returned by Client.Fetch for every failure.
type FetchError struct {
	Kind ErrorKind
	// Status is the HTTP status code, zero when no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindStatus && e.Status != 0:
		return fmt.Sprintf("news api returned status %d: %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("news api %s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("news api %s error", e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindStatus
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

func statusError(status int, err error) *FetchError {
	return &FetchError{Kind: KindStatus, Status: status, Err: err}
}

func decodeError(err error) *FetchError {
	return &FetchError{Kind: KindDecode, Err: err}
}

package syncer

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/wallet/walleterrors"
)

// Kind classifies the errors returned by Controller operations.
type Kind uint8

const (
	KindUnknown Kind = iota
	ProviderUnavailable
	UserRejected
	RemoteCallFailed
	NotConnected
	SubmissionInFlight
	InvalidDraft
	StorageFailed
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown error",
	ProviderUnavailable: "wallet provider unavailable",
	UserRejected:        "rejected by user",
	RemoteCallFailed:    "remote call failed",
	NotConnected:        "wallet not connected",
	SubmissionInFlight:  "a submission is already pending",
	InvalidDraft:        "invalid transfer",
	StorageFailed:       "local storage failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrProviderUnavailable = &Error{Kind: ProviderUnavailable}
	ErrUserRejected        = &Error{Kind: UserRejected}
	ErrRemoteCallFailed    = &Error{Kind: RemoteCallFailed}
	ErrNotConnected        = &Error{Kind: NotConnected}
	ErrSubmissionInFlight  = &Error{Kind: SubmissionInFlight}
	ErrInvalidDraft        = &Error{Kind: InvalidDraft}
	ErrStorageFailed       = &Error{Kind: StorageFailed}
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// classify maps a wallet error onto a kind. Anything the wallet does not
// name is a failed remote call.
func classify(err error) Kind {
	switch {
	case errors.Is(err, walleterrors.ErrUserRejected), errors.Is(err, walleterrors.ErrNoAccounts):
		return UserRejected
	case errors.Is(err, walleterrors.ErrProviderUnavailable):
		return ProviderUnavailable
	case errors.Is(err, walleterrors.ErrInvalidAddress):
		return InvalidDraft
	default:
		return RemoteCallFailed
	}
}

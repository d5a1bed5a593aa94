package walleterrors

import "errors"

var (
	ErrProviderUnavailable = errors.New("no wallet provider available")
	ErrUserRejected        = errors.New("the user rejected the request")
	ErrNoAccounts          = errors.New("the wallet returned no accounts")
	ErrLocked              = errors.New("the address is locked")
	ErrNotFind             = errors.New("not found the given address in any keystore file")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrDecryptKey          = errors.New("error decrypting key")
)

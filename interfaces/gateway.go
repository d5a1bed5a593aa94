package interfaces

import (
	"context"
	"math/big"

	"github.com/vitelabs/go-krypt/common/types"
)

// WalletGateway is the key-holding agent that authorizes accounts and
// broadcasts plain value transfers.
type WalletGateway interface {
	// IsAvailable reports whether a wallet capability is present at all.
	IsAvailable() bool

	// ActiveAccounts returns the accounts the user already authorized. It never
	// prompts and may return an empty slice.
	ActiveAccounts(ctx context.Context) ([]types.AccountId, error)

	// RequestAccounts asks the user to authorize an account and blocks until
	// they approve or reject.
	RequestAccounts(ctx context.Context) ([]types.AccountId, error)

	// SubmitValueTransfer broadcasts a transfer and returns without waiting for
	// it to be mined.
	SubmitValueTransfer(ctx context.Context, from, to types.AccountId, wei *big.Int) (types.TxHash, error)
}

// LedgerGateway is the remote contract that records transfer metadata.
type LedgerGateway interface {
	ReadAllTransfers(ctx context.Context) ([]types.RawTransfer, error)
	ReadTransferCount(ctx context.Context) (uint64, error)
	RecordTransfer(ctx context.Context, from, to types.AccountId, wei *big.Int, message, keyword string) (PendingWrite, error)
}

// PendingWrite is a ledger write that has been broadcast but may not be final.
type PendingWrite interface {
	Hash() types.TxHash

	// Wait blocks until the write is final or ctx is done.
	Wait(ctx context.Context) error
}

package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/interfaces"
)

// Wallet is a gateway that can also sign contract writes for the accounts it
// authorized.
type Wallet interface {
	interfaces.WalletGateway

	TransactOpts(ctx context.Context, from types.AccountId) (*bind.TransactOpts, error)
}

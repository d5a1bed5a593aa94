package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/wallet/keystore"
	"github.com/vitelabs/go-krypt/wallet/rpcwallet"
)

const (
	KindRPC      = "rpc"
	KindKeyStore = "keystore"
)

var ErrUnknownKind = errors.New("unknown wallet kind")

type Config struct {
	Kind string

	// rpc
	Client *rpc.Client

	// keystore
	KeyStoreDir string
	Backend     keystore.Backend
	ChainID     *big.Int
	Prompter    keystore.Prompter
	Account     types.AccountId
}

// Open builds the wallet binding named by cfg.Kind.
func Open(ctx context.Context, cfg Config) (Wallet, error) {
	switch cfg.Kind {
	case KindRPC:
		if cfg.Client == nil {
			return nil, errors.New("rpc wallet needs a client")
		}
		return rpcwallet.New(ctx, cfg.Client), nil
	case KindKeyStore:
		return keystore.Open(cfg.KeyStoreDir, keystore.Config{
			Backend:  cfg.Backend,
			ChainID:  cfg.ChainID,
			Prompter: cfg.Prompter,
			Account:  cfg.Account,
		}), nil
	default:
		return nil, errors.Wrap(ErrUnknownKind, cfg.Kind)
	}
}

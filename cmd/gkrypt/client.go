package main

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/cmd/utils"
	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/config"
	"github.com/vitelabs/go-krypt/contract"
	"github.com/vitelabs/go-krypt/store"
	"github.com/vitelabs/go-krypt/syncer"
	"github.com/vitelabs/go-krypt/wallet"
	"github.com/vitelabs/go-krypt/wallet/keystore"
)

// client wires the controller to the node, the wallet and the local store
// described by a config.
type client struct {
	rpc    *rpc.Client
	store  store.Store
	wallet wallet.Wallet
	ledger *contract.Ledger
	ctrl   *syncer.Controller
}

func newClient(ctx context.Context, cfg config.Config) (*client, error) {
	st, err := store.OpenBackend(cfg.Storage, cfg.StorageDir())
	if err != nil {
		return nil, errors.WithMessage(err, "open storage")
	}

	rc, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		st.Close()
		return nil, errors.WithMessagef(err, "dial %s", cfg.RPCURL)
	}
	eth := ethclient.NewClient(rc)

	var chainID *big.Int
	if cfg.ChainID != 0 {
		chainID = new(big.Int).SetUint64(cfg.ChainID)
	} else if cfg.Wallet == config.WalletKeyStore {
		if chainID, err = eth.ChainID(ctx); err != nil {
			log.Warn("cannot read the chain id", "err", err)
		}
	}

	w, err := wallet.Open(ctx, wallet.Config{
		Kind:        cfg.Wallet,
		Client:      rc,
		KeyStoreDir: cfg.KeyStorePath(),
		Backend:     eth,
		ChainID:     chainID,
		Prompter:    keystore.TerminalPrompter{},
		Account:     types.AccountId(cfg.Account),
	})
	if err != nil {
		rc.Close()
		st.Close()
		return nil, err
	}

	ledger, err := contract.NewLedger(common.HexToAddress(cfg.ContractAddress), eth, w)
	if err != nil {
		rc.Close()
		st.Close()
		return nil, err
	}

	return &client{
		rpc:    rc,
		store:  st,
		wallet: w,
		ledger: ledger,
		ctrl: syncer.New(syncer.Config{
			Wallet:     w,
			Ledger:     ledger,
			Store:      st,
			TimeFormat: cfg.TimeFormat,
		}),
	}, nil
}

func (c *client) Close() {
	c.rpc.Close()
	if err := c.store.Close(); err != nil {
		log.Warn("close storage", "err", err)
	}
}

// withClient runs fn against a fresh client whose notices are printed as they
// are emitted.
func withClient(fn func(ctx context.Context, c *client) error) error {
	ctx, cancel := utils.InterruptContext(context.Background())
	defer cancel()

	c, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	stop := printNotices(c.ctrl.Events())
	defer stop()

	return fn(ctx, c)
}

// connect makes sure the controller is connected, prompting the wallet when
// no account was authorized before.
func (c *client) connect(ctx context.Context) error {
	if err := c.ctrl.Initialize(ctx); err != nil {
		return err
	}
	if c.ctrl.Snapshot().Connection.Connected() {
		return nil
	}
	return c.ctrl.Connect(ctx)
}

// Package keystore is a wallet backed by encrypted key files on local disk.
// Authorizing an account means unlocking it with its passphrase.
package keystore

import (
	"context"
	"math/big"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/wallet/rpcwallet"
	"github.com/vitelabs/go-krypt/wallet/walleterrors"
)

// Backend is the part of a node client needed to broadcast a transfer.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

// Prompter asks the user for the passphrase of an account. Returning
// walleterrors.ErrUserRejected means the user declined.
type Prompter interface {
	PromptPassphrase(account types.AccountId) (string, error)
}

type Config struct {
	KeyStore *ethkeystore.KeyStore
	Backend  Backend
	ChainID  *big.Int
	Prompter Prompter

	// Account selects the account to unlock; the first one is used when empty.
	Account types.AccountId
}

type Wallet struct {
	ks       *ethkeystore.KeyStore
	backend  Backend
	chainID  *big.Int
	prompter Prompter
	account  types.AccountId

	unlocked mapset.Set

	log log15.Logger
}

func New(cfg Config) *Wallet {
	return &Wallet{
		ks:       cfg.KeyStore,
		backend:  cfg.Backend,
		chainID:  cfg.ChainID,
		prompter: cfg.Prompter,
		account:  cfg.Account,
		unlocked: mapset.NewSet(),
		log:      log15.New("module", "wallet/keystore"),
	}
}

// Open loads the key files in dir using the standard scrypt parameters.
func Open(dir string, cfg Config) *Wallet {
	cfg.KeyStore = ethkeystore.NewKeyStore(dir, ethkeystore.StandardScryptN, ethkeystore.StandardScryptP)
	return New(cfg)
}

func (w *Wallet) IsAvailable() bool {
	return w.ks != nil && len(w.ks.Accounts()) > 0
}

// ActiveAccounts returns the accounts unlocked by this process in key store
// order.
func (w *Wallet) ActiveAccounts(ctx context.Context) ([]types.AccountId, error) {
	if !w.IsAvailable() {
		return nil, walleterrors.ErrProviderUnavailable
	}
	var active []types.AccountId
	for _, a := range w.ks.Accounts() {
		if w.unlocked.Contains(a.Address) {
			active = append(active, types.AccountId(a.Address.Hex()))
		}
	}
	return active, nil
}

func (w *Wallet) RequestAccounts(ctx context.Context) ([]types.AccountId, error) {
	if !w.IsAvailable() {
		return nil, walleterrors.ErrProviderUnavailable
	}
	account, err := w.selectAccount()
	if err != nil {
		return nil, err
	}
	id := types.AccountId(account.Address.Hex())
	if w.unlocked.Contains(account.Address) {
		return []types.AccountId{id}, nil
	}
	if w.prompter == nil {
		return nil, walleterrors.ErrUserRejected
	}

	passphrase, err := w.prompter.PromptPassphrase(id)
	if err != nil {
		return nil, err
	}
	if passphrase == "" {
		return nil, walleterrors.ErrUserRejected
	}
	if err := w.ks.Unlock(account, passphrase); err != nil {
		if err == ethkeystore.ErrDecrypt {
			return nil, walleterrors.ErrDecryptKey
		}
		return nil, errors.Wrap(err, "unlock")
	}
	w.unlocked.Add(account.Address)
	w.log.Info("account unlocked", "account", account.Address)
	return []types.AccountId{id}, nil
}

func (w *Wallet) selectAccount() (accounts.Account, error) {
	if w.account == "" {
		return w.ks.Accounts()[0], nil
	}
	addr, err := rpcwallet.ToAddress(w.account)
	if err != nil {
		return accounts.Account{}, err
	}
	account, err := w.ks.Find(accounts.Account{Address: addr})
	if err != nil {
		return accounts.Account{}, errors.Wrap(walleterrors.ErrNotFind, addr.Hex())
	}
	return account, nil
}

func (w *Wallet) unlockedAccount(id types.AccountId) (accounts.Account, error) {
	addr, err := rpcwallet.ToAddress(id)
	if err != nil {
		return accounts.Account{}, err
	}
	if !w.unlocked.Contains(addr) {
		return accounts.Account{}, walleterrors.ErrLocked
	}
	return accounts.Account{Address: addr}, nil
}

func (w *Wallet) SubmitValueTransfer(ctx context.Context, from, to types.AccountId, wei *big.Int) (types.TxHash, error) {
	if !w.IsAvailable() {
		return "", walleterrors.ErrProviderUnavailable
	}
	account, err := w.unlockedAccount(from)
	if err != nil {
		return "", err
	}
	toAddr, err := rpcwallet.ToAddress(to)
	if err != nil {
		return "", err
	}

	nonce, err := w.backend.PendingNonceAt(ctx, account.Address)
	if err != nil {
		return "", errors.Wrap(err, "pending nonce")
	}
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", errors.Wrap(err, "gas price")
	}
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &toAddr,
		Value:    wei,
		Gas:      rpcwallet.TransferGas,
		GasPrice: gasPrice,
	})
	signed, err := w.ks.SignTx(account, tx, w.chainID)
	if err != nil {
		return "", errors.Wrap(err, "sign transfer")
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return "", errors.Wrap(err, "send transfer")
	}
	w.log.Info("value transfer sent", "from", account.Address, "to", toAddr, "wei", wei, "hash", signed.Hash())
	return types.TxHash(signed.Hash().Hex()), nil
}

func (w *Wallet) TransactOpts(ctx context.Context, from types.AccountId) (*bind.TransactOpts, error) {
	account, err := w.unlockedAccount(from)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyStoreTransactorWithChainID(w.ks, account, w.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

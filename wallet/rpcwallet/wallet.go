// Package rpcwallet talks to a wallet that manages its own keys behind a
// JSON-RPC endpoint, the way a browser extension or a development node does.
package rpcwallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/wallet/walleterrors"
)

// TransferGas is the gas limit of a plain value transfer.
const TransferGas = 0x5208

const (
	codeUserRejected   = 4001
	codeMethodNotFound = -32601
)

type Wallet struct {
	c         *rpc.Client
	chainID   *big.Int
	available bool

	log log15.Logger
}

// New wraps c and probes it once for the chain id. An endpoint that does not
// answer is not an error: the returned wallet reports itself unavailable.
func New(ctx context.Context, c *rpc.Client) *Wallet {
	w := &Wallet{
		c:   c,
		log: log15.New("module", "wallet/rpc"),
	}
	var id hexutil.Big
	if err := c.CallContext(ctx, &id, "eth_chainId"); err != nil {
		w.log.Warn("wallet endpoint did not answer", "err", err)
		return w
	}
	w.chainID = id.ToInt()
	w.available = true
	return w
}

// ChainID is nil when the wallet is unavailable.
func (w *Wallet) ChainID() *big.Int {
	if w.chainID == nil {
		return nil
	}
	return new(big.Int).Set(w.chainID)
}

func (w *Wallet) IsAvailable() bool {
	return w.available
}

func (w *Wallet) ActiveAccounts(ctx context.Context) ([]types.AccountId, error) {
	if !w.available {
		return nil, walleterrors.ErrProviderUnavailable
	}
	var addrs []common.Address
	if err := w.c.CallContext(ctx, &addrs, "eth_accounts"); err != nil {
		return nil, errors.Wrap(err, "eth_accounts")
	}
	return toAccounts(addrs), nil
}

func (w *Wallet) RequestAccounts(ctx context.Context) ([]types.AccountId, error) {
	if !w.available {
		return nil, walleterrors.ErrProviderUnavailable
	}
	var addrs []common.Address
	err := w.c.CallContext(ctx, &addrs, "eth_requestAccounts")
	if code, ok := errorCode(err); ok && code == codeMethodNotFound {
		// nodes without an authorization flow expose their accounts directly
		w.log.Debug("eth_requestAccounts not supported, using eth_accounts")
		return w.ActiveAccounts(ctx)
	}
	if err != nil {
		return nil, convertError(err, "eth_requestAccounts")
	}
	if len(addrs) == 0 {
		return nil, walleterrors.ErrNoAccounts
	}
	return toAccounts(addrs), nil
}

type sendTxArgs struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to,omitempty"`
	Gas                  *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	Value                *hexutil.Big    `json:"value,omitempty"`
	Nonce                *hexutil.Uint64 `json:"nonce,omitempty"`
	Data                 *hexutil.Bytes  `json:"data,omitempty"`
	ChainID              *hexutil.Big    `json:"chainId,omitempty"`
}

func (w *Wallet) SubmitValueTransfer(ctx context.Context, from, to types.AccountId, wei *big.Int) (types.TxHash, error) {
	if !w.available {
		return "", walleterrors.ErrProviderUnavailable
	}
	fromAddr, err := ToAddress(from)
	if err != nil {
		return "", err
	}
	toAddr, err := ToAddress(to)
	if err != nil {
		return "", err
	}
	gas := hexutil.Uint64(TransferGas)
	args := sendTxArgs{
		From:  fromAddr,
		To:    &toAddr,
		Gas:   &gas,
		Value: (*hexutil.Big)(wei),
	}

	var hash common.Hash
	if err := w.c.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return "", convertError(err, "eth_sendTransaction")
	}
	w.log.Info("value transfer sent", "from", fromAddr, "to", toAddr, "wei", wei, "hash", hash)
	return types.TxHash(hash.Hex()), nil
}

// TransactOpts returns options that let the wallet sign contract calls made
// on behalf of from.
func (w *Wallet) TransactOpts(ctx context.Context, from types.AccountId) (*bind.TransactOpts, error) {
	if !w.available {
		return nil, walleterrors.ErrProviderUnavailable
	}
	fromAddr, err := ToAddress(from)
	if err != nil {
		return nil, err
	}
	return &bind.TransactOpts{
		From:    fromAddr,
		Context: ctx,
		Signer: func(addr common.Address, tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
			if addr != fromAddr {
				return nil, bind.ErrNotAuthorized
			}
			return w.signTransaction(ctx, addr, tx)
		},
	}, nil
}

type signTxResult struct {
	Raw hexutil.Bytes `json:"raw"`
}

func (w *Wallet) signTransaction(ctx context.Context, from common.Address, tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	gas := hexutil.Uint64(tx.Gas())
	nonce := hexutil.Uint64(tx.Nonce())
	data := hexutil.Bytes(tx.Data())
	args := sendTxArgs{
		From:    from,
		To:      tx.To(),
		Gas:     &gas,
		Value:   (*hexutil.Big)(tx.Value()),
		Nonce:   &nonce,
		Data:    &data,
		ChainID: (*hexutil.Big)(w.chainID),
	}
	if tx.Type() == ethtypes.DynamicFeeTxType {
		args.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap())
		args.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap())
	} else {
		args.GasPrice = (*hexutil.Big)(tx.GasPrice())
	}

	var res signTxResult
	if err := w.c.CallContext(ctx, &res, "eth_signTransaction", args); err != nil {
		return nil, convertError(err, "eth_signTransaction")
	}
	signed := new(ethtypes.Transaction)
	if err := signed.UnmarshalBinary(res.Raw); err != nil {
		return nil, errors.Wrap(err, "decode signed transaction")
	}
	return signed, nil
}

// ToAddress converts an account id into an EVM address.
func ToAddress(a types.AccountId) (common.Address, error) {
	if !common.IsHexAddress(string(a)) {
		return common.Address{}, errors.Wrapf(walleterrors.ErrInvalidAddress, "%q", string(a))
	}
	return common.HexToAddress(string(a)), nil
}

func toAccounts(addrs []common.Address) []types.AccountId {
	accounts := make([]types.AccountId, 0, len(addrs))
	for _, a := range addrs {
		accounts = append(accounts, types.AccountId(a.Hex()))
	}
	return accounts
}

func errorCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if err != nil && errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

// convertError maps a rejection onto walleterrors.ErrUserRejected. Every
// other failure keeps its cause; unavailability is decided once by New.
func convertError(err error, method string) error {
	if code, ok := errorCode(err); ok && code == codeUserRejected {
		return errors.WithMessage(walleterrors.ErrUserRejected, method)
	}
	return errors.Wrap(err, method)
}

package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/interfaces"
	"github.com/vitelabs/go-krypt/wallet/rpcwallet"
)

var (
	ErrNoSigner      = errors.New("ledger has no signer")
	ErrWriteReverted = errors.New("ledger write reverted")
	ErrCountOverflow = errors.New("transfer count does not fit in 64 bits")
)

// Signer produces transaction options for contract calls made on behalf of
// an account. Both wallet bindings implement it.
type Signer interface {
	TransactOpts(ctx context.Context, from types.AccountId) (*bind.TransactOpts, error)
}

// Backend is a node connection able to call, transact and report receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Ledger records transfers through the Transactions contract.
type Ledger struct {
	address  common.Address
	contract *Transactions
	backend  Backend
	signer   Signer

	log log15.Logger
}

func NewLedger(address common.Address, backend Backend, signer Signer) (*Ledger, error) {
	contract, err := NewTransactions(address, backend)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		address:  address,
		contract: contract,
		backend:  backend,
		signer:   signer,
		log:      log15.New("module", "contract/ledger", "address", address),
	}, nil
}

func (l *Ledger) Address() common.Address {
	return l.address
}

func (l *Ledger) ReadAllTransfers(ctx context.Context) ([]types.RawTransfer, error) {
	list, err := l.contract.GetAllTransactions(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, errors.Wrap(err, "getAllTransactions")
	}
	return toRawTransfers(list), nil
}

func (l *Ledger) ReadTransferCount(ctx context.Context) (uint64, error) {
	n, err := l.contract.GetTransactionCount(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, errors.Wrap(err, "getTransactionCount")
	}
	if !n.IsUint64() {
		return 0, ErrCountOverflow
	}
	return n.Uint64(), nil
}

func (l *Ledger) RecordTransfer(ctx context.Context, from, to types.AccountId, wei *big.Int, message, keyword string) (interfaces.PendingWrite, error) {
	if l.signer == nil {
		return nil, ErrNoSigner
	}
	receiver, err := rpcwallet.ToAddress(to)
	if err != nil {
		return nil, err
	}
	opts, err := l.signer.TransactOpts(ctx, from)
	if err != nil {
		return nil, err
	}
	tx, err := l.contract.AddToBlockchain(opts, receiver, wei, message, keyword)
	if err != nil {
		return nil, errors.Wrap(err, "addToBlockchain")
	}
	l.log.Info("transfer record sent", "from", from, "to", receiver, "wei", wei, "hash", tx.Hash())
	return &pendingWrite{tx: tx, backend: l.backend, log: l.log}, nil
}

type pendingWrite struct {
	tx      *ethtypes.Transaction
	backend bind.DeployBackend
	log     log15.Logger
}

func (p *pendingWrite) Hash() types.TxHash {
	return types.TxHash(p.tx.Hash().Hex())
}

// Wait blocks until the write is mined. A mined but reverted write is an
// error.
func (p *pendingWrite) Wait(ctx context.Context) error {
	receipt, err := bind.WaitMined(ctx, p.backend, p.tx)
	if err != nil {
		return errors.Wrap(err, "wait mined")
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return errors.Wrap(ErrWriteReverted, p.tx.Hash().Hex())
	}
	p.log.Info("transfer record mined", "hash", p.tx.Hash(), "block", receipt.BlockNumber)
	return nil
}

func toRawTransfers(list []TransactionsTransferStruct) []types.RawTransfer {
	transfers := make([]types.RawTransfer, 0, len(list))
	for _, t := range list {
		raw := types.RawTransfer{
			From:      types.AccountId(t.Sender.Hex()),
			To:        types.AccountId(t.Receiver.Hex()),
			AmountWei: new(big.Int),
			Message:   t.Message,
			Keyword:   t.Keyword,
		}
		if t.Amount != nil {
			raw.AmountWei.Set(t.Amount)
		}
		if t.Timestamp != nil {
			raw.Timestamp = t.Timestamp.Int64()
		}
		transfers = append(transfers, raw)
	}
	return transfers
}

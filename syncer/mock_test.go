package syncer

import (
	"context"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/interfaces"
)

// recorder keeps the order of gateway calls shared by the fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

func (r *recorder) ledgerCalls() int {
	return r.count("ReadAllTransfers") + r.count("ReadTransferCount") + r.count("RecordTransfer") + r.count("Wait")
}

func (r *recorder) remoteCalls() int {
	return r.ledgerCalls() + r.count("ActiveAccounts") + r.count("RequestAccounts") + r.count("SubmitValueTransfer")
}

type valueTransfer struct {
	from, to types.AccountId
	wei      *big.Int
}

type fakeWallet struct {
	rec *recorder

	mu         sync.Mutex
	available  bool
	active     []types.AccountId
	authorize  []types.AccountId
	activeErr  error
	requestErr error
	submitErr  error
	transfers  []valueTransfer

	// when set, SubmitValueTransfer signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (w *fakeWallet) IsAvailable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.available
}

func (w *fakeWallet) ActiveAccounts(context.Context) ([]types.AccountId, error) {
	w.rec.record("ActiveAccounts")
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active, w.activeErr
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]types.AccountId, error) {
	w.rec.record("RequestAccounts")
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.requestErr != nil {
		return nil, w.requestErr
	}
	w.active = w.authorize
	return w.authorize, nil
}

func (w *fakeWallet) SubmitValueTransfer(ctx context.Context, from, to types.AccountId, wei *big.Int) (types.TxHash, error) {
	w.rec.record("SubmitValueTransfer")
	if w.entered != nil {
		close(w.entered)
		select {
		case <-w.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitErr != nil {
		return "", w.submitErr
	}
	w.transfers = append(w.transfers, valueTransfer{from: from, to: to, wei: new(big.Int).Set(wei)})
	return types.TxHash("0xfeed"), nil
}

// fakeLedger is an in-memory ledger where a record becomes visible once its
// write has been waited on.
type fakeLedger struct {
	rec *recorder

	mu        sync.Mutex
	now       int64
	records   []types.RawTransfer
	readErr   error
	countErr  error
	recordErr error
	waitErr   error

	// when set, Wait signals waitEntered and holds until waitRelease closes
	waitEntered chan struct{}
	waitRelease chan struct{}
}

func (l *fakeLedger) ReadAllTransfers(context.Context) ([]types.RawTransfer, error) {
	l.rec.record("ReadAllTransfers")
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return nil, l.readErr
	}
	return append([]types.RawTransfer{}, l.records...), nil
}

func (l *fakeLedger) ReadTransferCount(context.Context) (uint64, error) {
	l.rec.record("ReadTransferCount")
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.countErr != nil {
		return 0, l.countErr
	}
	return uint64(len(l.records)), nil
}

func (l *fakeLedger) RecordTransfer(_ context.Context, from, to types.AccountId, wei *big.Int, message, keyword string) (interfaces.PendingWrite, error) {
	l.rec.record("RecordTransfer")
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recordErr != nil {
		return nil, l.recordErr
	}
	return &fakeWrite{ledger: l, raw: types.RawTransfer{
		From:      from,
		To:        to,
		AmountWei: new(big.Int).Set(wei),
		Message:   message,
		Keyword:   keyword,
		Timestamp: l.now,
	}}, nil
}

func (l *fakeLedger) add(raw ...types.RawTransfer) {
	l.mu.Lock()
	l.records = append(l.records, raw...)
	l.mu.Unlock()
}

type fakeWrite struct {
	ledger *fakeLedger
	raw    types.RawTransfer
}

func (w *fakeWrite) Hash() types.TxHash {
	return "0xbeef"
}

func (w *fakeWrite) Wait(context.Context) error {
	w.ledger.rec.record("Wait")
	if w.ledger.waitEntered != nil {
		close(w.ledger.waitEntered)
		<-w.ledger.waitRelease
	}
	w.ledger.mu.Lock()
	defer w.ledger.mu.Unlock()
	if w.ledger.waitErr != nil {
		return w.ledger.waitErr
	}
	w.ledger.records = append(w.ledger.records, w.raw)
	return nil
}

var errBroken = errors.New("connection reset by peer")

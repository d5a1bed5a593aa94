// Package syncer keeps a local view of a wallet connection, the transfer in
// flight and the transfer history recorded on the ledger.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/olebedev/emitter"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/vitelabs/go-krypt/common"
	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/common/units"
	"github.com/vitelabs/go-krypt/interfaces"
	"github.com/vitelabs/go-krypt/store"
)

const (
	// TopicSnapshot carries a Snapshot after every state change.
	TopicSnapshot = "snapshot"
	// TopicNotice carries the *Error of every failure a user should see.
	TopicNotice = "notice"

	DefaultTimeFormat = "2006-01-02 15:04:05"

	eventCapacity = 16
)

type Config struct {
	Wallet interfaces.WalletGateway
	Ledger interfaces.LedgerGateway
	Store  store.Store

	// TimeFormat and Location control TransferRecord.DisplayTime.
	TimeFormat string
	Location   *time.Location

	Log log15.Logger
}

type Controller struct {
	wallet interfaces.WalletGateway
	ledger interfaces.LedgerGateway
	store  store.Store

	timeFormat string
	location   *time.Location

	mu             sync.Mutex
	available      bool
	connection     ConnectionState
	submission     SubmissionState
	history        []types.TransferRecord
	lastKnownCount uint64

	initialized *atomic.Bool
	inFlight    *atomic.Bool

	// held for writing from a ledger write's finality wait until the count
	// has been re-read, reads hold it shared
	ledgerMu sync.RWMutex

	events *emitter.Emitter
	log    log15.Logger
}

func New(cfg Config) *Controller {
	c := &Controller{
		wallet:      cfg.Wallet,
		ledger:      cfg.Ledger,
		store:       cfg.Store,
		timeFormat:  cfg.TimeFormat,
		location:    cfg.Location,
		initialized: atomic.NewBool(false),
		inFlight:    atomic.NewBool(false),
		events:      emitter.New(eventCapacity),
		log:         cfg.Log,
	}
	if c.timeFormat == "" {
		c.timeFormat = DefaultTimeFormat
	}
	if c.location == nil {
		c.location = time.Local
	}
	if c.log == nil {
		c.log = log15.New("module", "syncer")
	}
	// slow listeners drop events instead of stalling the controller
	c.events.Use("*", emitter.Skip)
	return c
}

// Events returns the emitter publishing TopicSnapshot and TopicNotice.
func (c *Controller) Events() *emitter.Emitter {
	return c.events
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	history := make([]types.TransferRecord, len(c.history))
	copy(history, c.history)
	return Snapshot{
		WalletAvailable: c.available,
		Connection:      c.connection,
		Submission:      c.submission,
		History:         history,
		LastKnownCount:  c.lastKnownCount,
	}
}

// update applies fn to the state and publishes the resulting snapshot.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	<-c.events.Emit(TopicSnapshot, snap)
}

// fail logs err, publishes it as a notice and returns it. Errors that already
// went through fail are passed along untouched.
func (c *Controller) fail(op string, kind Kind, err error) error {
	var surfaced *Error
	if errors.As(err, &surfaced) {
		return err
	}
	e := &Error{Kind: kind, Op: op, Err: err}
	c.log.Error(op+" failed", "kind", kind, "err", err)
	<-c.events.Emit(TopicNotice, e)
	return e
}

// Initialize loads the persisted count and reconnects silently to an account
// the wallet has already authorized. It does nothing after the first call.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.initialized.CAS(false, true) {
		return nil
	}
	log := c.log.New("method", "initialize")

	n, ok, err := store.LoadCount(c.store)
	if err != nil {
		return c.fail("initialize", StorageFailed, err)
	}
	if ok {
		c.update(func() { c.lastKnownCount = n })
		log.Info("loaded transfer count", "count", n)
	}

	if !c.wallet.IsAvailable() {
		c.update(func() { c.available = false })
		return c.fail("initialize", ProviderUnavailable, nil)
	}
	c.update(func() { c.available = true })

	accounts, err := c.wallet.ActiveAccounts(ctx)
	if err != nil {
		return c.fail("initialize", classify(err), err)
	}
	if len(accounts) == 0 {
		log.Info("no accounts found")
		// nothing was asked of the user yet, so a failed read stays in the log
		c.ledgerMu.RLock()
		_, err := c.storeCount(ctx)
		c.ledgerMu.RUnlock()
		if err != nil {
			log.Warn("cannot sync the transfer count", "err", err)
		}
		return nil
	}

	c.update(func() { c.connection = ConnectionState{Account: accounts[0]} })
	log.Info("reconnected", "account", accounts[0])
	return c.ResyncAll(ctx)
}

// Connect asks the wallet to authorize an account and loads the history on
// success. A failed request leaves the controller disconnected.
func (c *Controller) Connect(ctx context.Context) error {
	if !c.wallet.IsAvailable() {
		return c.fail("connect", ProviderUnavailable, nil)
	}
	c.update(func() { c.available = true })

	accounts, err := c.wallet.RequestAccounts(ctx)
	if err != nil {
		return c.fail("connect", classify(err), err)
	}
	if len(accounts) == 0 {
		return c.fail("connect", UserRejected, nil)
	}

	c.update(func() { c.connection = ConnectionState{Account: accounts[0]} })
	c.log.Info("connected", "account", accounts[0])
	return c.RefreshHistory(ctx)
}

// RefreshHistory replaces the cached history with the ledger's transfers. The
// cache is left as it was when the read fails.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	if !c.wallet.IsAvailable() {
		return c.fail("refresh history", ProviderUnavailable, nil)
	}

	c.ledgerMu.RLock()
	raw, err := c.ledger.ReadAllTransfers(ctx)
	c.ledgerMu.RUnlock()
	if err != nil {
		return c.fail("refresh history", RemoteCallFailed, err)
	}

	history := make([]types.TransferRecord, 0, len(raw))
	for _, r := range raw {
		history = append(history, c.toRecord(r))
	}
	c.update(func() { c.history = history })
	c.log.Debug("history refreshed", "len", len(history))
	return nil
}

func (c *Controller) toRecord(r types.RawTransfer) types.TransferRecord {
	return types.TransferRecord{
		From:        r.From,
		To:          r.To,
		AmountWei:   r.AmountWei,
		Amount:      units.FormatEther(r.AmountWei),
		Message:     r.Message,
		Keyword:     r.Keyword,
		Timestamp:   r.Timestamp,
		DisplayTime: time.Unix(r.Timestamp, 0).In(c.location).Format(c.timeFormat),
	}
}

// SyncCount reads the ledger's transfer count and persists it.
func (c *Controller) SyncCount(ctx context.Context) error {
	if !c.wallet.IsAvailable() {
		return c.fail("sync count", ProviderUnavailable, nil)
	}
	c.ledgerMu.RLock()
	defer c.ledgerMu.RUnlock()
	return c.syncCount(ctx, "sync count")
}

func (c *Controller) syncCount(ctx context.Context, op string) error {
	if kind, err := c.storeCount(ctx); err != nil {
		return c.fail(op, kind, err)
	}
	return nil
}

// storeCount reads the ledger's count and persists it. The returned kind
// tells which of the two steps failed.
func (c *Controller) storeCount(ctx context.Context) (Kind, error) {
	n, err := c.ledger.ReadTransferCount(ctx)
	if err != nil {
		return RemoteCallFailed, err
	}
	if err := store.SaveCount(c.store, n); err != nil {
		return StorageFailed, err
	}
	c.update(func() { c.lastKnownCount = n })
	return KindUnknown, nil
}

// SubmitTransfer sends the draft's value through the wallet, records it on
// the ledger and waits for the record to be final before resyncing. Only one
// submission may be pending at a time.
//
// The wallet transfer is not undone when a later step fails.
func (c *Controller) SubmitTransfer(ctx context.Context, draft types.DraftTransfer) error {
	const op = "submit transfer"
	if !c.inFlight.CAS(false, true) {
		return c.fail(op, SubmissionInFlight, nil)
	}
	defer c.inFlight.Store(false)

	c.mu.Lock()
	account := c.connection.Account
	c.mu.Unlock()
	if account == "" || !c.wallet.IsAvailable() {
		return c.fail(op, NotConnected, nil)
	}
	wei, err := draft.Wei()
	if err != nil {
		return c.fail(op, InvalidDraft, err)
	}

	log := c.log.New("method", "submit", "from", account, "to", draft.Recipient)
	pending := draft
	c.update(func() { c.submission = SubmissionState{Phase: Pending, Draft: &pending} })

	failed := func(kind Kind, err error) error {
		e := c.fail(op, kind, err)
		c.update(func() { c.submission = SubmissionState{Phase: Failed, Draft: &pending, Reason: e} })
		return e
	}

	hash, err := c.wallet.SubmitValueTransfer(ctx, account, draft.Recipient, wei)
	if err != nil {
		return failed(classify(err), err)
	}
	log.Info("value transfer submitted", "hash", hash)

	write, err := c.ledger.RecordTransfer(ctx, account, draft.Recipient, wei, draft.Message, draft.Keyword)
	if err != nil {
		return failed(RemoteCallFailed, err)
	}
	log.Info("ledger record submitted", "hash", write.Hash())

	c.ledgerMu.Lock()
	if err := write.Wait(ctx); err != nil {
		c.ledgerMu.Unlock()
		return failed(RemoteCallFailed, errors.WithMessage(err, "wait for "+write.Hash().String()))
	}
	err = c.syncCount(ctx, op)
	c.ledgerMu.Unlock()
	if err != nil {
		c.update(func() { c.submission = SubmissionState{Phase: Failed, Draft: &pending, Reason: err} })
		return err
	}
	log.Info("ledger record final", "hash", write.Hash())

	c.update(func() { c.submission = SubmissionState{} })
	return c.ResyncAll(ctx)
}

// ResyncAll rebuilds the history and the count from the ledger. The two reads
// run concurrently; the history error is reported first.
func (c *Controller) ResyncAll(ctx context.Context) error {
	var (
		wg                 sync.WaitGroup
		historyErr, cntErr error
	)
	wg.Add(2)
	common.Go("refresh history", func() {
		defer wg.Done()
		historyErr = c.RefreshHistory(ctx)
	})
	common.Go("sync count", func() {
		defer wg.Done()
		cntErr = c.SyncCount(ctx)
	})
	wg.Wait()

	if historyErr != nil {
		return historyErr
	}
	return cntErr
}

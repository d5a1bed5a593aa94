package syncer

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/olebedev/emitter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/store"
	"github.com/vitelabs/go-krypt/wallet/walleterrors"
)

type harness struct {
	rec     *recorder
	wallet  *fakeWallet
	ledger  *fakeLedger
	store   store.Store
	c       *Controller
	notices <-chan emitter.Event
}

func newHarness(t *testing.T) *harness {
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	rec := &recorder{}
	h := &harness{
		rec:    rec,
		wallet: &fakeWallet{rec: rec, available: true},
		ledger: &fakeLedger{rec: rec, now: 1700000000},
		store:  s,
	}
	h.c = New(Config{
		Wallet:   h.wallet,
		Ledger:   h.ledger,
		Store:    s,
		Location: time.UTC,
	})
	h.notices = h.c.Events().On(TopicNotice)
	return h
}

func (h *harness) noticeCount() int {
	return len(h.notices)
}

func wei(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return n
}

func TestInitialize_NoAuthorization(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.c.Initialize(context.Background()))

	snap := h.c.Snapshot()
	assert.False(t, snap.Connection.Connected())
	assert.Empty(t, snap.History)
	assert.True(t, snap.WalletAvailable)
	assert.Equal(t, 0, h.noticeCount())
	assert.Equal(t, 0, h.rec.count("RequestAccounts"))
	assert.Equal(t, 0, h.rec.count("ReadAllTransfers"))
}

func TestInitialize_NoAuthorizationCountFails(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, store.SaveCount(h.store, 4))
	h.ledger.countErr = errBroken

	require.NoError(t, h.c.Initialize(context.Background()))

	snap := h.c.Snapshot()
	assert.False(t, snap.Connection.Connected())
	assert.Equal(t, uint64(4), snap.LastKnownCount)
	assert.Equal(t, 1, h.rec.count("ReadTransferCount"))
	assert.Equal(t, 0, h.noticeCount())
}

func TestInitialize_Reconnect(t *testing.T) {
	h := newHarness(t)
	h.wallet.active = []types.AccountId{"0x123"}
	h.ledger.add(
		types.RawTransfer{From: "0x123", To: "0xabc", AmountWei: wei("1000000000000000000"), Timestamp: 1},
		types.RawTransfer{From: "0xabc", To: "0x123", AmountWei: wei("250000000000000000"), Timestamp: 2},
	)

	require.NoError(t, h.c.Initialize(context.Background()))

	snap := h.c.Snapshot()
	assert.Equal(t, types.AccountId("0x123"), snap.Connection.Account)
	require.Len(t, snap.History, 2)
	assert.Equal(t, "1", snap.History[0].Amount)
	assert.Equal(t, "0.25", snap.History[1].Amount)
	assert.Equal(t, uint64(2), snap.LastKnownCount)

	n, ok, err := store.LoadCount(h.store)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), n)

	// only once
	require.NoError(t, h.c.Initialize(context.Background()))
	assert.Equal(t, 1, h.rec.count("ActiveAccounts"))
}

func TestInitialize_Unavailable(t *testing.T) {
	h := newHarness(t)
	h.wallet.available = false
	require.NoError(t, store.SaveCount(h.store, 7))

	err := h.c.Initialize(context.Background())
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
	assert.Equal(t, ProviderUnavailable, KindOf(err))

	snap := h.c.Snapshot()
	assert.False(t, snap.WalletAvailable)
	assert.False(t, snap.Connection.Connected())
	assert.Empty(t, snap.History)
	assert.Equal(t, uint64(7), snap.LastKnownCount)
	assert.Equal(t, 1, h.noticeCount())
	assert.Equal(t, 0, h.rec.remoteCalls())
}

func TestInitialize_CorruptCount(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Put(store.CountKey, "many"))

	err := h.c.Initialize(context.Background())
	assert.Equal(t, StorageFailed, KindOf(err))
	assert.Equal(t, 0, h.rec.remoteCalls())
}

func TestConnect(t *testing.T) {
	h := newHarness(t)
	h.wallet.authorize = []types.AccountId{"0x123", "0x456"}

	require.NoError(t, h.c.Connect(context.Background()))

	snap := h.c.Snapshot()
	assert.Equal(t, ConnectionState{Account: "0x123"}, snap.Connection)
	assert.Equal(t, 1, h.rec.count("RequestAccounts"))
	assert.Equal(t, 1, h.rec.count("ReadAllTransfers"))
	assert.Equal(t, 0, h.noticeCount())
}

func TestConnect_Rejected(t *testing.T) {
	h := newHarness(t)
	h.wallet.requestErr = errors.Wrap(walleterrors.ErrUserRejected, "eth_requestAccounts")

	err := h.c.Connect(context.Background())
	assert.True(t, errors.Is(err, ErrUserRejected), "%v", err)
	assert.False(t, h.c.Snapshot().Connection.Connected())
	assert.Equal(t, 1, h.noticeCount())
	assert.Equal(t, 0, h.rec.ledgerCalls())
}

func TestConnect_Failed(t *testing.T) {
	h := newHarness(t)
	h.wallet.requestErr = errBroken

	err := h.c.Connect(context.Background())
	assert.Equal(t, RemoteCallFailed, KindOf(err))
	assert.True(t, errors.Is(err, errBroken))
	assert.False(t, h.c.Snapshot().Connection.Connected())
}

func TestConnect_NoAccounts(t *testing.T) {
	h := newHarness(t)

	err := h.c.Connect(context.Background())
	assert.Equal(t, UserRejected, KindOf(err))
	assert.False(t, h.c.Snapshot().Connection.Connected())
}

func TestConnect_EmptyAuthorization(t *testing.T) {
	h := newHarness(t)
	h.wallet.requestErr = walleterrors.ErrNoAccounts

	err := h.c.Connect(context.Background())
	assert.Equal(t, UserRejected, KindOf(err))
	assert.True(t, errors.Is(err, walleterrors.ErrNoAccounts))
	assert.False(t, h.c.Snapshot().Connection.Connected())
	assert.Equal(t, 1, h.noticeCount())
}

func TestConnect_Unavailable(t *testing.T) {
	h := newHarness(t)
	h.wallet.available = false
	before := h.c.Snapshot()

	err := h.c.Connect(context.Background())
	assert.Equal(t, ProviderUnavailable, KindOf(err))
	assert.Equal(t, before, h.c.Snapshot())
	assert.Equal(t, 1, h.noticeCount())
	assert.Equal(t, 0, h.rec.ledgerCalls())
	assert.Equal(t, 0, h.rec.count("RequestAccounts"))
}

func TestRefreshHistory_Mapping(t *testing.T) {
	h := newHarness(t)
	h.ledger.add(types.RawTransfer{
		From:      "0x123",
		To:        "0xabc",
		AmountWei: wei("1500000000000000001"),
		Message:   "hi",
		Keyword:   "gift",
		Timestamp: 1700000000,
	})

	require.NoError(t, h.c.RefreshHistory(context.Background()))

	history := h.c.Snapshot().History
	require.Len(t, history, 1)
	assert.Equal(t, types.TransferRecord{
		From:        "0x123",
		To:          "0xabc",
		AmountWei:   wei("1500000000000000001"),
		Amount:      "1.500000000000000001",
		Message:     "hi",
		Keyword:     "gift",
		Timestamp:   1700000000,
		DisplayTime: "2023-11-14 22:13:20",
	}, history[0])
}

func TestRefreshHistory_FailureKeepsCache(t *testing.T) {
	h := newHarness(t)
	h.ledger.add(types.RawTransfer{From: "0x1", To: "0x2", AmountWei: wei("1"), Timestamp: 5})
	require.NoError(t, h.c.RefreshHistory(context.Background()))
	before := h.c.Snapshot().History

	h.ledger.add(types.RawTransfer{From: "0x2", To: "0x1", AmountWei: wei("2"), Timestamp: 6})
	h.ledger.readErr = errBroken

	err := h.c.RefreshHistory(context.Background())
	assert.Equal(t, RemoteCallFailed, KindOf(err))
	assert.Equal(t, before, h.c.Snapshot().History)
	assert.Equal(t, 1, h.noticeCount())
}

func TestSyncCount(t *testing.T) {
	h := newHarness(t)
	h.ledger.add(types.RawTransfer{AmountWei: wei("1")}, types.RawTransfer{AmountWei: wei("2")})

	require.NoError(t, h.c.SyncCount(context.Background()))
	assert.Equal(t, uint64(2), h.c.Snapshot().LastKnownCount)
	v, ok, err := h.store.Get(store.CountKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	h.ledger.countErr = errBroken
	err = h.c.SyncCount(context.Background())
	assert.Equal(t, RemoteCallFailed, KindOf(err))
	assert.Equal(t, uint64(2), h.c.Snapshot().LastKnownCount)
}

func TestSyncCount_StoreClosed(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Close())

	err := h.c.SyncCount(context.Background())
	assert.Equal(t, StorageFailed, KindOf(err))
}

func connected(t *testing.T, account types.AccountId) *harness {
	h := newHarness(t)
	h.wallet.authorize = []types.AccountId{account}
	require.NoError(t, h.c.Connect(context.Background()))
	h.rec.calls = nil
	return h
}

func TestSubmitTransfer(t *testing.T) {
	h := connected(t, "0x123")
	draft := types.DraftTransfer{Recipient: "0xABC", Amount: "0.5", Keyword: "gift", Message: "hi"}

	require.NoError(t, h.c.SubmitTransfer(context.Background(), draft))

	require.Len(t, h.wallet.transfers, 1)
	assert.Equal(t, types.AccountId("0x123"), h.wallet.transfers[0].from)
	assert.Equal(t, types.AccountId("0xABC"), h.wallet.transfers[0].to)
	assert.Equal(t, wei("500000000000000000"), h.wallet.transfers[0].wei)

	all, err := h.ledger.ReadAllTransfers(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, types.AccountId("0x123"), all[0].From)
	assert.Equal(t, types.AccountId("0xABC"), all[0].To)
	assert.Equal(t, wei("500000000000000000"), all[0].AmountWei)
	assert.Equal(t, "gift", all[0].Keyword)
	assert.Equal(t, "hi", all[0].Message)

	snap := h.c.Snapshot()
	assert.Equal(t, Idle, snap.Submission.Phase)
	assert.Equal(t, uint64(1), snap.LastKnownCount)
	require.Len(t, snap.History, 1)
	assert.Equal(t, "0.5", snap.History[0].Amount)
	assert.Equal(t, 0, h.noticeCount())

	n, _, err := store.LoadCount(h.store)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestSubmitTransfer_Order(t *testing.T) {
	h := connected(t, "0x123")

	require.NoError(t, h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xabc", Amount: "1"}))

	calls := h.rec.all()
	require.True(t, len(calls) >= 4)
	assert.Equal(t, []string{"SubmitValueTransfer", "RecordTransfer", "Wait", "ReadTransferCount"}, calls[:4])
	// resync
	assert.Equal(t, 1, h.rec.count("ReadAllTransfers"))
	assert.Equal(t, 2, h.rec.count("ReadTransferCount"))
}

func TestSubmitTransfer_ExactAmount(t *testing.T) {
	h := connected(t, "0x123")

	require.NoError(t, h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xabc", Amount: "1.000000000000000001"}))

	history := h.c.Snapshot().History
	require.Len(t, history, 1)
	assert.Equal(t, wei("1000000000000000001"), history[0].AmountWei)
}

func TestSubmitTransfer_NotConnected(t *testing.T) {
	h := newHarness(t)

	err := h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xabc", Amount: "1"})
	assert.True(t, errors.Is(err, ErrNotConnected))
	assert.Equal(t, 0, h.rec.remoteCalls())
	assert.Equal(t, Idle, h.c.Snapshot().Submission.Phase)

	h = connected(t, "0x123")
	h.wallet.available = false
	err = h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xabc", Amount: "1"})
	assert.Equal(t, NotConnected, KindOf(err))
	assert.Equal(t, 0, h.rec.remoteCalls())
}

func TestSubmitTransfer_InvalidDraft(t *testing.T) {
	h := connected(t, "0x123")

	for _, d := range []types.DraftTransfer{
		{Recipient: "", Amount: "1"},
		{Recipient: "0xabc", Amount: ""},
		{Recipient: "0xabc", Amount: "-1"},
		{Recipient: "0xabc", Amount: "abc"},
		{Recipient: "0xabc", Amount: "0.0000000000000000001"},
	} {
		err := h.c.SubmitTransfer(context.Background(), d)
		assert.Equal(t, InvalidDraft, KindOf(err), "%+v", d)
	}
	assert.Equal(t, 0, h.rec.remoteCalls())
}

func TestSubmitTransfer_InFlight(t *testing.T) {
	h := connected(t, "0x123")
	h.wallet.entered = make(chan struct{})
	h.wallet.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xabc", Amount: "1"})
	}()
	<-h.wallet.entered

	snap := h.c.Snapshot()
	assert.Equal(t, Pending, snap.Submission.Phase)
	assert.Equal(t, "0xabc", snap.Submission.Draft.Recipient.String())

	before := len(h.rec.all())
	err := h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xdef", Amount: "2"})
	assert.True(t, errors.Is(err, ErrSubmissionInFlight))
	assert.Equal(t, before, len(h.rec.all()))

	close(h.wallet.release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, h.c.Snapshot().Submission.Phase)
	require.Len(t, h.wallet.transfers, 1)
}

func TestSubmitTransfer_WalletFails(t *testing.T) {
	h := connected(t, "0x123")
	h.wallet.submitErr = walleterrors.ErrUserRejected

	err := h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xabc", Amount: "1"})
	assert.Equal(t, UserRejected, KindOf(err))
	assert.Equal(t, 0, h.rec.count("RecordTransfer"))

	snap := h.c.Snapshot()
	assert.Equal(t, Failed, snap.Submission.Phase)
	assert.Equal(t, err, snap.Submission.Reason)
	assert.Equal(t, 1, h.noticeCount())
}

func TestSubmitTransfer_LedgerFails(t *testing.T) {
	h := connected(t, "0x123")
	h.ledger.recordErr = errBroken
	draft := types.DraftTransfer{Recipient: "0xabc", Amount: "1", Keyword: "k", Message: "m"}

	err := h.c.SubmitTransfer(context.Background(), draft)
	assert.Equal(t, RemoteCallFailed, KindOf(err))
	// the value transfer already went out
	assert.Len(t, h.wallet.transfers, 1)
	assert.Equal(t, 0, h.rec.count("Wait"))

	snap := h.c.Snapshot()
	assert.Equal(t, Failed, snap.Submission.Phase)
	assert.Equal(t, draft, *snap.Submission.Draft)
	assert.Empty(t, snap.History)

	// a failed submission can be retried
	h.ledger.recordErr = nil
	require.NoError(t, h.c.SubmitTransfer(context.Background(), draft))
	assert.Equal(t, Idle, h.c.Snapshot().Submission.Phase)
	assert.Len(t, h.c.Snapshot().History, 1)
}

func TestSubmitTransfer_WaitFails(t *testing.T) {
	h := connected(t, "0x123")
	h.ledger.waitErr = errBroken

	err := h.c.SubmitTransfer(context.Background(), types.DraftTransfer{Recipient: "0xabc", Amount: "1"})
	assert.Equal(t, RemoteCallFailed, KindOf(err))
	assert.Equal(t, 0, h.rec.count("ReadTransferCount"))
	assert.Equal(t, Failed, h.c.Snapshot().Submission.Phase)
}

func TestSubmitTransfer_ReadsWaitForFinality(t *testing.T) {
	h := connected(t, "0x123")
	h.ledger.waitEntered = make(chan struct{})
	h.ledger.waitRelease = make(chan struct{})
	ctx := context.Background()

	submitted := make(chan error, 1)
	go func() {
		submitted <- h.c.SubmitTransfer(ctx, types.DraftTransfer{Recipient: "0xabc", Amount: "1"})
	}()
	<-h.ledger.waitEntered

	refreshed := make(chan error, 1)
	counted := make(chan error, 1)
	go func() { refreshed <- h.c.RefreshHistory(ctx) }()
	go func() { counted <- h.c.SyncCount(ctx) }()

	select {
	case <-refreshed:
		t.Fatal("history refreshed during the finality wait")
	case <-counted:
		t.Fatal("count synced during the finality wait")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 0, h.rec.count("ReadAllTransfers"))
	assert.Equal(t, 0, h.rec.count("ReadTransferCount"))

	close(h.ledger.waitRelease)
	require.NoError(t, <-refreshed)
	require.NoError(t, <-counted)
	require.NoError(t, <-submitted)

	// every read came after the record was final
	calls := h.rec.all()
	wait := -1
	for i, c := range calls {
		switch c {
		case "Wait":
			wait = i
		case "ReadAllTransfers", "ReadTransferCount":
			assert.True(t, wait >= 0 && i > wait, "%s at %d before Wait", c, i)
		}
	}
	snap := h.c.Snapshot()
	require.Len(t, snap.History, 1)
	assert.Equal(t, "1", snap.History[0].Amount)
	assert.Equal(t, uint64(1), snap.LastKnownCount)
}

func TestResyncAll(t *testing.T) {
	h := connected(t, "0x123")
	h.ledger.add(types.RawTransfer{From: "0x1", To: "0x2", AmountWei: wei("3")})

	require.NoError(t, h.c.ResyncAll(context.Background()))
	snap := h.c.Snapshot()
	assert.Len(t, snap.History, 1)
	assert.Equal(t, uint64(1), snap.LastKnownCount)

	h.ledger.readErr = errBroken
	err := h.c.ResyncAll(context.Background())
	assert.Equal(t, RemoteCallFailed, KindOf(err))
	assert.Equal(t, 2, h.rec.count("ReadAllTransfers"))
}

func TestSnapshotEvents(t *testing.T) {
	h := newHarness(t)
	h.wallet.authorize = []types.AccountId{"0x123"}
	snaps := h.c.Events().On(TopicSnapshot)
	defer h.c.Events().Off(TopicSnapshot, snaps)

	require.NoError(t, h.c.Connect(context.Background()))

	var last Snapshot
	n := len(snaps)
	require.True(t, n > 0)
	for i := 0; i < n; i++ {
		ev := <-snaps
		last = ev.Args[0].(Snapshot)
	}
	assert.Equal(t, types.AccountId("0x123"), last.Connection.Account)
}

func TestErrorKinds(t *testing.T) {
	err := &Error{Kind: RemoteCallFailed, Op: "sync count", Err: errBroken}
	assert.Equal(t, "sync count: remote call failed: connection reset by peer", err.Error())
	assert.True(t, errors.Is(err, ErrRemoteCallFailed))
	assert.False(t, errors.Is(err, ErrNotConnected))
	assert.True(t, errors.Is(err, errBroken))
	assert.Equal(t, RemoteCallFailed, KindOf(errors.WithMessage(err, "outer")))
	assert.Equal(t, KindUnknown, KindOf(errBroken))

	assert.Equal(t, UserRejected, classify(walleterrors.ErrUserRejected))
	assert.Equal(t, ProviderUnavailable, classify(errors.WithMessage(walleterrors.ErrProviderUnavailable, "dial")))
	assert.Equal(t, InvalidDraft, classify(errors.Wrap(walleterrors.ErrInvalidAddress, "0xABC")))
	assert.Equal(t, RemoteCallFailed, classify(errBroken))
}

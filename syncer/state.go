package syncer

import (
	"github.com/vitelabs/go-krypt/common/types"
)

// ConnectionState is the account the controller currently acts for. The zero
// value is disconnected.
type ConnectionState struct {
	Account types.AccountId
}

func (c ConnectionState) Connected() bool {
	return c.Account != ""
}

func (c ConnectionState) String() string {
	if !c.Connected() {
		return "disconnected"
	}
	return "connected(" + c.Account.String() + ")"
}

type Phase uint8

const (
	Idle Phase = iota
	Pending
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// SubmissionState tracks the single transfer a controller may have in flight.
// Draft is set while Pending, Reason while Failed.
type SubmissionState struct {
	Phase  Phase
	Draft  *types.DraftTransfer
	Reason error
}

func (s SubmissionState) String() string {
	switch s.Phase {
	case Pending:
		return "pending(" + s.Draft.Recipient.String() + " " + s.Draft.Amount + ")"
	case Failed:
		return "failed(" + s.Reason.Error() + ")"
	}
	return s.Phase.String()
}

// Snapshot is a copy of the controller state. History records are shared
// with the controller and must not be modified.
type Snapshot struct {
	WalletAvailable bool
	Connection      ConnectionState
	Submission      SubmissionState
	History         []types.TransferRecord
	LastKnownCount  uint64
}

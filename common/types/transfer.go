package types

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/vitelabs/go-krypt/common/units"
)

var (
	ErrEmptyRecipient = errors.New("recipient is empty")
	ErrEmptyAmount    = errors.New("amount is empty")
)

// AccountId names a wallet-held account. Bindings decide its encoding.
type AccountId string

func (a AccountId) String() string {
	return string(a)
}

// TxHash identifies a broadcast transaction.
type TxHash string

func (h TxHash) String() string {
	return string(h)
}

// DraftTransfer is the form a user fills before submitting a transfer.
type DraftTransfer struct {
	Recipient AccountId `json:"addressTo"`
	Amount    string    `json:"amount"`
	Keyword   string    `json:"keyword"`
	Message   string    `json:"message"`
}

func (d DraftTransfer) Validate() error {
	_, err := d.Wei()
	return err
}

// Wei returns the draft amount in base units.
func (d DraftTransfer) Wei() (*big.Int, error) {
	if strings.TrimSpace(string(d.Recipient)) == "" {
		return nil, ErrEmptyRecipient
	}
	if strings.TrimSpace(d.Amount) == "" {
		return nil, ErrEmptyAmount
	}
	return units.ParseEther(d.Amount)
}

// RawTransfer is a transfer exactly as the ledger returns it.
type RawTransfer struct {
	From      AccountId
	To        AccountId
	AmountWei *big.Int
	Message   string
	Keyword   string
	Timestamp int64
}

// TransferRecord is a ledger transfer prepared for display. Records are never
// mutated once built.
type TransferRecord struct {
	From        AccountId `json:"addressFrom"`
	To          AccountId `json:"addressTo"`
	AmountWei   *big.Int  `json:"amountWei"`
	Amount      string    `json:"amount"`
	Message     string    `json:"message"`
	Keyword     string    `json:"keyword"`
	Timestamp   int64     `json:"timestamp"`
	DisplayTime string    `json:"displayTime"`
}

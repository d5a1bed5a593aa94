package keystore

import (
	"fmt"
	"io"

	"github.com/peterh/liner"

	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/wallet/walleterrors"
)

// TerminalPrompter reads passphrases from the controlling terminal without
// echo. Ctrl-C and Ctrl-D decline the request.
type TerminalPrompter struct{}

func (TerminalPrompter) PromptPassphrase(account types.AccountId) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	passphrase, err := line.PasswordPrompt(fmt.Sprintf("Passphrase for %s: ", account))
	if err == liner.ErrPromptAborted || err == io.EOF {
		return "", walleterrors.ErrUserRejected
	}
	return passphrase, err
}

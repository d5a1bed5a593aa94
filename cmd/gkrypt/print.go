package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/olebedev/emitter"

	"github.com/vitelabs/go-krypt/common"
	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/syncer"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func printError(err error) {
	fmt.Fprintln(color.Error, red("error:"), err)
}

// printNotices prints every notice of the controller until the returned
// function is called.
func printNotices(events *emitter.Emitter) func() {
	notices := events.On(syncer.TopicNotice)
	done := make(chan struct{})
	common.Go("print notices", func() {
		defer close(done)
		for ev := range notices {
			if len(ev.Args) == 0 {
				continue
			}
			if err, ok := ev.Args[0].(error); ok {
				printError(err)
			}
		}
	})
	return func() {
		events.Off(syncer.TopicNotice, notices)
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func printSubmission(snapshots <-chan emitter.Event) {
	last := syncer.Idle
	for ev := range snapshots {
		snap, ok := ev.Args[0].(syncer.Snapshot)
		if !ok || snap.Submission.Phase == last {
			continue
		}
		last = snap.Submission.Phase
		if last == syncer.Pending {
			fmt.Fprintln(color.Output, yellow("pending"), "waiting for the ledger record to be mined")
		}
	}
}

func printStatus(snap syncer.Snapshot, contract string) {
	wallet := red("unavailable")
	if snap.WalletAvailable {
		wallet = green("available")
	}
	conn := yellow(snap.Connection.String())
	if snap.Connection.Connected() {
		conn = green(snap.Connection.String())
	}
	fmt.Fprintln(color.Output, "wallet:     ", wallet)
	fmt.Fprintln(color.Output, "connection: ", conn)
	fmt.Fprintln(color.Output, "contract:   ", contract)
	fmt.Fprintln(color.Output, "transfers:  ", snap.LastKnownCount)
	fmt.Fprintln(color.Output, "submission: ", snap.Submission)
}

func printConnected(account types.AccountId) {
	fmt.Fprintln(color.Output, green("connected"), account)
}

func printHistory(list []types.TransferRecord) {
	if len(list) == 0 {
		fmt.Fprintln(color.Output, faint("no transfers"))
		return
	}
	w := tabwriter.NewWriter(color.Output, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tFROM\tTO\tAMOUNT (ETH)\tKEYWORD\tMESSAGE")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.DisplayTime, shorten(r.From), shorten(r.To), green(r.Amount), r.Keyword, r.Message)
	}
	w.Flush()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// shorten abbreviates an address to 0x1234...abcd.
func shorten(a types.AccountId) string {
	s := a.String()
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"gopkg.in/urfave/cli.v1"

	"github.com/vitelabs/go-krypt/cmd/params"
	"github.com/vitelabs/go-krypt/cmd/utils"
	"github.com/vitelabs/go-krypt/common/types"
	"github.com/vitelabs/go-krypt/syncer"
)

var (
	statusCommand = cli.Command{
		Action: status,
		Name:   "status",
		Usage:  "Show the wallet connection and the last known transfer count",
	}

	connectCommand = cli.Command{
		Action: connect,
		Name:   "connect",
		Usage:  "Authorize a wallet account and load the transfer history",
		Description: `
For an rpc wallet the node is asked to authorize an account. For a keystore
wallet the passphrase of the configured account is prompted for.`,
	}

	sendCommand = cli.Command{
		Action:    send,
		Name:      "send",
		Usage:     "Send ether and record the transfer on the ledger",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			utils.ToFlag,
			utils.AmountFlag,
			utils.KeywordFlag,
			utils.MessageFlag,
		},
		Description: `
The value is sent by the wallet first, then the transfer is recorded through
the contract. The command returns once the record is mined.`,
	}

	historyCommand = cli.Command{
		Action: history,
		Name:   "history",
		Usage:  "List the transfers recorded on the ledger",
		Flags: []cli.Flag{
			utils.JSONFlag,
		},
	}

	countCommand = cli.Command{
		Action: count,
		Name:   "count",
		Usage:  "Sync and print the number of recorded transfers",
	}

	watchCommand = cli.Command{
		Action: watch,
		Name:   "watch",
		Usage:  "Resync on a schedule and print new transfers",
		Flags: []cli.Flag{
			utils.WatchSpecFlag,
		},
	}

	versionCommand = cli.Command{
		Action:    version,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
	}
)

func status(ctx *cli.Context) error {
	return withClient(func(cctx context.Context, c *client) error {
		err := c.ctrl.Initialize(cctx)
		printStatus(c.ctrl.Snapshot(), c.ledger.Address().Hex())
		return err
	})
}

func connect(ctx *cli.Context) error {
	return withClient(func(cctx context.Context, c *client) error {
		if err := c.connect(cctx); err != nil {
			return err
		}
		snap := c.ctrl.Snapshot()
		printConnected(snap.Connection.Account)
		printHistory(snap.History)
		return nil
	})
}

func send(ctx *cli.Context) error {
	draft := types.DraftTransfer{
		Recipient: types.AccountId(ctx.String(utils.ToFlag.Name)),
		Amount:    ctx.String(utils.AmountFlag.Name),
		Keyword:   ctx.String(utils.KeywordFlag.Name),
		Message:   ctx.String(utils.MessageFlag.Name),
	}
	if err := draft.Validate(); err != nil {
		return errors.WithMessage(err, "send")
	}
	return withClient(func(cctx context.Context, c *client) error {
		if err := c.connect(cctx); err != nil {
			return err
		}
		events := c.ctrl.Events().On(syncer.TopicSnapshot)
		go printSubmission(events)
		defer c.ctrl.Events().Off(syncer.TopicSnapshot, events)

		if err := c.ctrl.SubmitTransfer(cctx, draft); err != nil {
			return err
		}
		printHistory(c.ctrl.Snapshot().History)
		return nil
	})
}

func history(ctx *cli.Context) error {
	return withClient(func(cctx context.Context, c *client) error {
		if err := c.ctrl.Initialize(cctx); err != nil {
			return err
		}
		// a reconnect already loaded it
		if !c.ctrl.Snapshot().Connection.Connected() {
			if err := c.ctrl.RefreshHistory(cctx); err != nil {
				return err
			}
		}
		list := c.ctrl.Snapshot().History
		if ctx.Bool(utils.JSONFlag.Name) {
			return printJSON(list)
		}
		printHistory(list)
		return nil
	})
}

func count(ctx *cli.Context) error {
	return withClient(func(cctx context.Context, c *client) error {
		err := c.ctrl.Initialize(cctx)
		if err != nil && syncer.KindOf(err) != syncer.ProviderUnavailable {
			return err
		}
		// without a wallet this is the count stored by an earlier run
		fmt.Println(c.ctrl.Snapshot().LastKnownCount)
		return err
	})
}

func watch(ctx *cli.Context) error {
	spec := cfg.WatchSpec
	if ctx.IsSet(utils.WatchSpecFlag.Name) {
		spec = ctx.String(utils.WatchSpecFlag.Name)
	}
	return withClient(func(cctx context.Context, c *client) error {
		if err := c.ctrl.Initialize(cctx); err != nil {
			return err
		}
		seen := len(c.ctrl.Snapshot().History)
		printHistory(c.ctrl.Snapshot().History)

		// cron starts every run in its own goroutine
		var mu sync.Mutex
		sched := cron.New()
		err := sched.AddFunc(spec, func() {
			mu.Lock()
			defer mu.Unlock()
			if err := c.ctrl.ResyncAll(cctx); err != nil {
				return
			}
			list := c.ctrl.Snapshot().History
			if len(list) > seen {
				printHistory(list[seen:])
			}
			seen = len(list)
		})
		if err != nil {
			return errors.Wrapf(err, "schedule %q", spec)
		}
		sched.Start()
		defer sched.Stop()

		log.Info("watching", "spec", spec)
		<-cctx.Done()
		return nil
	})
}

func version(ctx *cli.Context) error {
	fmt.Println(app.Name)
	fmt.Println("Version:", params.VersionWithCommit())
	return nil
}

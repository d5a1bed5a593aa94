package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/inconshreveable/log15"
	"gopkg.in/urfave/cli.v1"

	"github.com/vitelabs/go-krypt/cmd/params"
	"github.com/vitelabs/go-krypt/cmd/utils"
	"github.com/vitelabs/go-krypt/common"
	"github.com/vitelabs/go-krypt/config"
	"github.com/vitelabs/go-krypt/syncer"
)

// gkrypt is the command-line client of the Transactions ledger

var (
	log = log15.New("module", "gkrypt/main")

	app = cli.NewApp()

	// loaded in beforeAction
	cfg config.Config

	configFlags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.EnvFileFlag,
	}
	generalFlags = []cli.Flag{
		utils.DataDirFlag,
		utils.LogLevelFlag,
		utils.StorageFlag,
	}
	ledgerFlags = []cli.Flag{
		utils.RPCURLFlag,
		utils.ContractFlag,
		utils.ChainIDFlag,
	}
	walletFlags = []cli.Flag{
		utils.WalletFlag,
		utils.KeyStoreDirFlag,
		utils.AccountFlag,
	}
)

func init() {
	app.Name = filepath.Base(os.Args[0])
	app.HideVersion = false
	app.Version = params.VersionWithCommit()
	app.Compiled = time.Now()
	app.Usage = "send transfers and read the transfer history recorded on the ledger"

	app.Commands = []cli.Command{
		statusCommand,
		connectCommand,
		sendCommand,
		historyCommand,
		countCommand,
		watchCommand,
		versionCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = utils.MergeFlags(configFlags, generalFlags, ledgerFlags, walletFlags)

	app.Before = beforeAction
}

func main() {
	if err := app.Run(os.Args); err != nil {
		// controller errors were already printed as notices
		if syncer.KindOf(err) == syncer.KindUnknown {
			printError(err)
		}
		os.Exit(1)
	}
}

func beforeAction(ctx *cli.Context) error {
	switch ctx.Args().First() {
	case "", "help", "h", versionCommand.Name:
		return nil
	}
	c, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	cfg = c

	stderrLvl := "warn"
	if ctx.GlobalIsSet(utils.LogLevelFlag.Name) {
		stderrLvl = cfg.LogLevel
	}
	handlers := []log15.Handler{common.TerminalHandler(os.Stderr, stderrLvl)}
	if fileName, err := cfg.NewRunLogDirFile(); err == nil {
		handlers = append(handlers, common.LogHandler(cfg.RunLogDir(), filepath.Base(fileName), cfg.LogLevel))
	} else {
		fmt.Fprintln(os.Stderr, "cannot create the log dir:", err)
	}
	log15.Root().SetHandler(log15.MultiHandler(handlers...))
	return nil
}

// makeConfig layers defaults, the config file, the environment and the flags.
func makeConfig(ctx *cli.Context) (config.Config, error) {
	c := config.DefaultConfig()

	// 1: Load config file.
	if file := ctx.GlobalString(utils.ConfigFileFlag.Name); file != "" {
		if err := c.LoadFile(file); err != nil {
			return c, err
		}
	}

	// 2: Environment and .env
	env, err := config.ReadEnv(ctx.GlobalString(utils.EnvFileFlag.Name))
	if err != nil {
		return c, err
	}
	if err := c.ApplyEnv(env); err != nil {
		return c, err
	}

	// 3: Apply flags, Overwrite the configuration file configuration
	mappingConfig(ctx, &c)

	return c, c.Validate()
}

func mappingConfig(ctx *cli.Context, c *config.Config) {
	if dataDir := ctx.GlobalString(utils.DataDirFlag.Name); len(dataDir) > 0 {
		c.DataDir = dataDir
	}
	if ctx.GlobalIsSet(utils.LogLevelFlag.Name) {
		c.LogLevel = ctx.GlobalString(utils.LogLevelFlag.Name)
	}
	if ctx.GlobalIsSet(utils.StorageFlag.Name) {
		c.Storage = ctx.GlobalString(utils.StorageFlag.Name)
	}
	if ctx.GlobalIsSet(utils.RPCURLFlag.Name) {
		c.RPCURL = ctx.GlobalString(utils.RPCURLFlag.Name)
	}
	if ctx.GlobalIsSet(utils.ContractFlag.Name) {
		c.ContractAddress = ctx.GlobalString(utils.ContractFlag.Name)
	}
	if ctx.GlobalIsSet(utils.ChainIDFlag.Name) {
		c.ChainID = ctx.GlobalUint64(utils.ChainIDFlag.Name)
	}
	if ctx.GlobalIsSet(utils.WalletFlag.Name) {
		c.Wallet = ctx.GlobalString(utils.WalletFlag.Name)
	}
	if keyStoreDir := ctx.GlobalString(utils.KeyStoreDirFlag.Name); len(keyStoreDir) > 0 {
		c.KeyStoreDir = keyStoreDir
	}
	if ctx.GlobalIsSet(utils.AccountFlag.Name) {
		c.Account = ctx.GlobalString(utils.AccountFlag.Name)
	}
}

package utils

import (
	"gopkg.in/urfave/cli.v1"
)

var (
	// Config settings
	ConfigFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "Json configuration file",
	}
	EnvFileFlag = cli.StringFlag{
		Name:  "envfile",
		Usage: "Dotenv file read for API_URL, CONTRACT_ADDRESS and friends",
		Value: ".env",
	}

	// General settings
	DataDirFlag = DirectoryFlag{
		Name:  "datadir",
		Usage: "use for store all files",
	}
	LogLevelFlag = cli.StringFlag{
		Name:  "loglevel",
		Usage: "Log level (crit, error, warn, info, debug)",
	}

	// Ledger settings
	RPCURLFlag = cli.StringFlag{
		Name:  "rpc",
		Usage: "JSON-RPC endpoint of the node",
	}
	ContractFlag = cli.StringFlag{
		Name:  "contract",
		Usage: "Address of the Transactions contract",
	}
	ChainIDFlag = cli.Uint64Flag{
		Name:  "chainid",
		Usage: "Chain id used for signing (asked from the node when unset)",
	}

	// Wallet settings
	WalletFlag = cli.StringFlag{
		Name:  "wallet",
		Usage: "Wallet kind: rpc (node managed accounts) or keystore (local key files)",
	}
	KeyStoreDirFlag = DirectoryFlag{
		Name:  "keystore",
		Usage: "Directory for the keystore (default = inside the datadir)",
	}
	AccountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "Keystore account to unlock (default = first account)",
	}

	// Storage settings
	StorageFlag = cli.StringFlag{
		Name:  "storage",
		Usage: "Local storage backend: leveldb or bolt",
	}

	// Command settings
	ToFlag = cli.StringFlag{
		Name:  "to",
		Usage: "Recipient address",
	}
	AmountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "Amount in ether, e.g. 0.5",
	}
	KeywordFlag = cli.StringFlag{
		Name:  "keyword",
		Usage: "Keyword stored with the transfer",
	}
	MessageFlag = cli.StringFlag{
		Name:  "message",
		Usage: "Message stored with the transfer",
	}
	JSONFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "Print json instead of a table",
	}
	WatchSpecFlag = cli.StringFlag{
		Name:  "every",
		Usage: "Cron spec of the resync schedule, e.g. \"@every 1m\"",
	}
)

// MergeFlags merges the given flag slices.
func MergeFlags(flagsSet ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, flags := range flagsSet {
		ret = append(ret, flags...)
	}
	return ret
}

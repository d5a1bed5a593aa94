// Package config holds the settings of the gkrypt client. Values are layered:
// defaults, then a json or yaml file, then the environment (and a .env file), then
// command line flags.
package config

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/inconshreveable/log15"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"gopkg.in/yaml.v3"

	kcommon "github.com/vitelabs/go-krypt/common"
)

const (
	WalletRPC      = "rpc"
	WalletKeyStore = "keystore"
)

// Environment keys read by ApplyEnv.
const (
	EnvRPCURL      = "API_URL"
	EnvContract    = "CONTRACT_ADDRESS"
	EnvKeyStoreDir = "KEYSTORE_DIR"
	EnvChainID     = "CHAIN_ID"
	EnvWallet      = "WALLET"
	EnvAccount     = "ACCOUNT"
)

var envKeys = []string{EnvRPCURL, EnvContract, EnvKeyStoreDir, EnvChainID, EnvWallet, EnvAccount}

var (
	ErrNoRPCURL        = errors.New("no rpc url configured")
	ErrInvalidContract = errors.New("contract address is not a hex address")
	ErrUnknownWallet   = errors.New("unknown wallet kind")
	ErrUnknownStorage  = errors.New("unknown storage backend")
)

type Config struct {
	DataDir string `json:"DataDir" yaml:"DataDir"`

	RPCURL          string `json:"RPCURL" yaml:"RPCURL"`
	ContractAddress string `json:"ContractAddress" yaml:"ContractAddress"`
	// ChainID is asked from the node when zero.
	ChainID uint64 `json:"ChainID" yaml:"ChainID"`

	Wallet      string `json:"Wallet" yaml:"Wallet"`
	KeyStoreDir string `json:"KeyStoreDir" yaml:"KeyStoreDir"`
	Account     string `json:"Account" yaml:"Account"`

	Storage string `json:"Storage" yaml:"Storage"`

	LogLevel   string `json:"LogLevel" yaml:"LogLevel"`
	TimeFormat string `json:"TimeFormat" yaml:"TimeFormat"`
	WatchSpec  string `json:"WatchSpec" yaml:"WatchSpec"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:    kcommon.DefaultDataDir(),
		RPCURL:     kcommon.DefaultRPCURL,
		Wallet:     kcommon.DefaultWalletKind,
		Storage:    kcommon.DefaultStorage,
		LogLevel:   "info",
		TimeFormat: "2006-01-02 15:04:05",
		WatchSpec:  kcommon.DefaultWatchSpec,
	}
}

// LoadFile overlays the file at path onto c. Files ending in .yaml or .yml are
// read as yaml, anything else as json. Keys missing from the file keep their
// current value.
func (c *Config) LoadFile(path string) error {
	text, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(text, c)
	default:
		err = json.Unmarshal(text, c)
	}
	if err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

// ReadEnv collects the keys ApplyEnv understands from the dotenv file (when it
// exists) and the process environment. The process environment wins.
func ReadEnv(dotenv string) (map[string]string, error) {
	env := make(map[string]string)
	if dotenv != "" {
		if _, err := os.Stat(dotenv); err == nil {
			fileEnv, err := godotenv.Read(dotenv)
			if err != nil {
				return nil, errors.Wrapf(err, "parse %s", dotenv)
			}
			for k, v := range fileEnv {
				env[k] = v
			}
		}
	}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) ApplyEnv(env map[string]string) error {
	if v := env[EnvRPCURL]; v != "" {
		c.RPCURL = v
	}
	if v := env[EnvContract]; v != "" {
		c.ContractAddress = v
	}
	if v := env[EnvKeyStoreDir]; v != "" {
		c.KeyStoreDir = v
	}
	if v := env[EnvWallet]; v != "" {
		c.Wallet = v
	}
	if v := env[EnvAccount]; v != "" {
		c.Account = v
	}
	if v := env[EnvChainID]; v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "%s=%q", EnvChainID, v)
		}
		c.ChainID = id
	}
	return nil
}

func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return ErrNoRPCURL
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return errors.Wrapf(ErrInvalidContract, "%q", c.ContractAddress)
	}
	switch c.Wallet {
	case WalletRPC, WalletKeyStore:
	default:
		return errors.Wrap(ErrUnknownWallet, c.Wallet)
	}
	if c.Account != "" && !common.IsHexAddress(c.Account) {
		return errors.Errorf("account %q is not a hex address", c.Account)
	}
	switch c.Storage {
	case "", "leveldb", "bolt":
	default:
		return errors.Wrap(ErrUnknownStorage, c.Storage)
	}
	if _, err := log15.LvlFromString(c.LogLevel); err != nil {
		return err
	}
	if c.WatchSpec != "" {
		if _, err := cron.Parse(c.WatchSpec); err != nil {
			return errors.Wrapf(err, "watch spec %q", c.WatchSpec)
		}
	}
	return nil
}

func (c *Config) KeyStorePath() string {
	if c.KeyStoreDir != "" {
		return c.KeyStoreDir
	}
	return filepath.Join(c.DataDir, "keystore")
}

func (c *Config) StorageDir() string {
	return filepath.Join(c.DataDir, "storage")
}

func (c *Config) RunLogDir() string {
	return filepath.Join(c.DataDir, "runlog")
}

func (c *Config) NewRunLogDirFile() (string, error) {
	filename := time.Now().Format("2006-01-02") + ".log"
	if err := os.MkdirAll(c.RunLogDir(), 0777); err != nil {
		return "", err
	}
	return filepath.Join(c.RunLogDir(), filename), nil
}

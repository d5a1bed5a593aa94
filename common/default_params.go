package common

import (
	"os"
	"os/user"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultRPCURL     = "http://localhost:8545"
	DefaultWatchSpec  = "@every 30s"
	DefaultStorage    = "leveldb"
	DefaultWalletKind = "rpc"
)

// DefaultDataDir is  $HOME/.gkrypt/
func DefaultDataDir() string {
	home := HomeDir()
	if home != "" {
		return filepath.Join(home, ".gkrypt")
	}
	return ""
}

func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func MakeDefaultLogger(absFilePath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   absFilePath,
		MaxSize:    100,
		MaxBackups: 14,
		MaxAge:     14,
		Compress:   true,
		LocalTime:  true,
	}
}

// Package store keeps the few values the client persists between runs.
package store

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// CountKey holds the last known number of transfers recorded on the ledger.
const CountKey = "transactionCount"

var (
	ErrClosed       = errors.New("store is closed")
	ErrUnknownStore = errors.New("unknown storage backend")
)

// Store is a string keyed durable map.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Put(key, value string) error
	Close() error
}

// OpenBackend opens the backend named by kind ("leveldb" or "bolt") under dir.
func OpenBackend(kind, dir string) (Store, error) {
	switch kind {
	case "", "leveldb":
		s, err := Open(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "bolt":
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
		s, err := OpenBolt(boltPath(dir))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.Wrap(ErrUnknownStore, kind)
	}
}

// LoadCount returns the persisted transfer count. ok is false when nothing has
// been stored yet.
func LoadCount(s Store) (n uint64, ok bool, err error) {
	v, ok, err := s.Get(CountKey)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err = strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parse %s %q", CountKey, v)
	}
	return n, true, nil
}

func SaveCount(s Store, n uint64) error {
	return s.Put(CountKey, strconv.FormatUint(n, 10))
}

package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

type LevelStore struct {
	db *leveldb.DB
}

func Open(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

// OpenMemory returns a store that lives as long as the process.
func OpenMemory() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Get(key string) (string, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return "", false, nil
		}
		if err == leveldb.ErrClosed {
			return "", false, ErrClosed
		}
		return "", false, err
	}
	return string(value), true, nil
}

func (s *LevelStore) Put(key, value string) error {
	if err := s.db.Put([]byte(key), []byte(value), nil); err != nil {
		if err == leveldb.ErrClosed {
			return ErrClosed
		}
		return err
	}
	return nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}

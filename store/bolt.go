package store

import (
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var bucketName = []byte("krypt")

func boltPath(dir string) string {
	return filepath.Join(dir, "krypt.bolt")
}

type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(key string) (value string, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	if err == bolt.ErrDatabaseNotOpen {
		err = ErrClosed
	}
	return value, ok, err
}

func (s *BoltStore) Put(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err == bolt.ErrDatabaseNotOpen {
		return ErrClosed
	}
	return err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

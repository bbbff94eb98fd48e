package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var translationsBucket = []byte("translations")

// TranslationCache persists finished translations in a bolt file so a restart
// does not pay for the same text twice.
type TranslationCache struct {
	db *bolt.DB
}

// OpenTranslationCache opens (creating if needed) the bolt file at path.
func OpenTranslationCache(path string) (*TranslationCache, error) {
	if path == "" {
		return nil, errors.New("translation cache path is empty")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(translationsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create translations bucket: %w", err)
	}

	return &TranslationCache{db: db}, nil
}

// Get returns the cached translation for key.
func (c *TranslationCache) Get(key string) (string, bool, error) {
	var (
		val   string
		found bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(translationsBucket)
		if b == nil {
			return nil
		}
		if raw := b.Get([]byte(key)); raw != nil {
			val = string(raw)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("read translation: %w", err)
	}
	return val, found, nil
}

// Put stores value under key, replacing any previous entry.
func (c *TranslationCache) Put(key, value string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(translationsBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("write translation: %w", err)
	}
	return nil
}

// Len returns the number of cached translations.
func (c *TranslationCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(translationsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *TranslationCache) Close() error {
	return c.db.Close()
}

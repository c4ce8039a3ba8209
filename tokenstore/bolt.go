package tokenstore

import (
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltBucketSession = "session"           // key: tokenKey -> token
	tokenKey          = "github_user_token" // same key the browser dashboard used in local storage
)

// TokenStore persist the Github token between two runs
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
	Close() error
}

type Bolt struct {
	db *bbolt.DB
}

// Open create the database file when it doesn't exist
func Open(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketSession))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Load return an empty token when none was saved
func (b *Bolt) Load() (string, error) {
	var token string

	err := b.db.View(func(tx *bbolt.Tx) error {
		if value := tx.Bucket([]byte(boltBucketSession)).Get([]byte(tokenKey)); value != nil {
			token = string(value)
		}

		return nil
	})

	return token, err
}

func (b *Bolt) Save(token string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketSession)).Put([]byte(tokenKey), []byte(token))
	})
}

func (b *Bolt) Clear() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketSession)).Delete([]byte(tokenKey))
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

// Package history keeps a local record of every settled transfer.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/transfer"
	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"
)

var bucketTransfers = []byte("transfers")

// keyTimeFormat is fixed width so keys sort chronologically.
const keyTimeFormat = "2006-01-02T15:04:05.000000000Z"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history store closed")

// Record is one settled transfer.
type Record struct {
	Recipient string    `json:"recipient"`
	Amount    string    `json:"amount"`
	Outcome   string    `json:"outcome"`
	Status    string    `json:"status"`
	TxHash    string    `json:"txHash,omitempty"`
	Network   string    `json:"network"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromResult builds a record for a transfer that reached an outcome.
func FromResult(res transfer.Result, network string) Record {
	r := Record{
		Recipient: res.Request.Recipient,
		Amount:    res.Request.Amount,
		Outcome:   res.Outcome.String(),
		Status:    res.Status,
		Network:   network,
		CreatedAt: time.Now().UTC(),
	}
	if res.TxHash != (common.Hash{}) {
		r.TxHash = res.TxHash.Hex()
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	return r
}

// Store is a bbolt-backed transfer log.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketTransfers)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Put appends a record.
func (s *Store) Put(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key := []byte(r.CreatedAt.UTC().Format(keyTimeFormat) + "/" + r.TxHash)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransfers).Put(key, data)
	})
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTransfers).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding record %s: %w", k, err)
			}
			out = append(out, r)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

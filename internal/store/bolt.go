package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/chandrakumar-sys/bank-support-bot/internal/ticket"
)

var (
	ticketsBucket   = []byte("tickets")
	processedBucket = []byte("processed")
)

// BoltStore is a bbolt-backed ticket.Store. Records survive restarts, so a
// redeploy does not lose the customer→ticket associations.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(ticketsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(processedBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(owner ticket.Identity) (ticket.Record, bool, error) {
	var rec ticket.Record
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(ticketsBucket).Get([]byte(owner))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return ticket.Record{}, false, err
	}
	return rec, found, nil
}

func (s *BoltStore) Put(rec ticket.Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(ticketsBucket).Put([]byte(rec.Owner), data)
	})
}

func (s *BoltStore) Delete(owner ticket.Identity) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ticketsBucket).Delete([]byte(owner))
	})
}

func (s *BoltStore) SeenMessage(messageID string) (ticket.Outcome, bool, error) {
	var out ticket.Outcome
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(processedBucket).Get([]byte(messageID))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		return ticket.Outcome{}, false, err
	}
	return out, found, nil
}

func (s *BoltStore) MarkMessage(messageID string, out ticket.Outcome) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		return tx.Bucket(processedBucket).Put([]byte(messageID), data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

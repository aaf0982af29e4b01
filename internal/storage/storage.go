package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var entityBucket = []byte("entities")

// EntityRecord is the slice of entity state worth keeping across
// restarts: the device does not always report these, so the bridge
// would otherwise come back up with defaults.
type EntityRecord struct {
	Mode              string `json:"mode"`
	LastKnownFanSpeed int    `json:"last_known_fan_speed"`
}

// Storage persists per-entity records using bbolt
type Storage struct {
	db *bbolt.DB
}

// New opens or creates the database at path
func New(path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entityBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Storage{db: db}, nil
}

// Get retrieves the record for an entity ID; ok is false when none is
// stored yet
func (s *Storage) Get(id string) (EntityRecord, bool, error) {
	var record EntityRecord
	var found bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(entityBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &record)
	})

	return record, found, err
}

// Put stores the record for an entity ID
func (s *Storage) Put(id string, record EntityRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return tx.Bucket(entityBucket).Put([]byte(id), data)
	})
}

// Delete removes the record for an entity ID
func (s *Storage) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(entityBucket).Delete([]byte(id))
	})
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

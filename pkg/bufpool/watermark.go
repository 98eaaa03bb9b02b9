package bufpool

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketWatermark = []byte("bufpool_watermark")
	keyHighWater    = []byte("high_water")
)

// WatermarkStore persists a Pool's high-water mark across restarts, in the
// same one-file, one-bucket, upsert-by-key shape pkg/storage.BoltStore uses
// for cluster state. It exists so an operator can see peak buffer demand
// survive a process restart; it plays no part in admission decisions.
type WatermarkStore struct {
	db *bolt.DB
}

// OpenWatermarkStore opens (creating if absent) a bbolt file under dataDir.
func OpenWatermarkStore(dataDir string) (*WatermarkStore, error) {
	path := filepath.Join(dataDir, "bufpool_watermark.db")
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open watermark store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketWatermark)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init watermark bucket: %w", err)
	}

	return &WatermarkStore{db: db}, nil
}

// Close closes the underlying bbolt file.
func (w *WatermarkStore) Close() error {
	return w.db.Close()
}

// Save persists the given high-water mark, overwriting any prior value.
func (w *WatermarkStore) Save(highWater int) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWatermark)
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(highWater))
		return b.Put(keyHighWater, buf)
	})
}

// Load returns the last persisted high-water mark, or 0 if none was saved.
func (w *WatermarkStore) Load() (int, error) {
	var highWater int
	err := w.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWatermark)
		data := b.Get(keyHighWater)
		if data == nil {
			return nil
		}
		highWater = int(binary.BigEndian.Uint64(data))
		return nil
	})
	return highWater, err
}

package registry

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"docqa/internal/domain"
)

var (
	bucketDocuments = []byte("documents")    // content hash -> DocumentRecord JSON
	bucketOrder     = []byte("ingest_order") // insertion sequence -> content hash
)

// Bolt is the durable document registry. Records are keyed by the SHA-256
// of the file bytes; at most one record exists per hash. The path of the
// most recently added record is mirrored into a small pointer file so it
// survives restarts independently of any in-memory state.
type Bolt struct {
	db          *bbolt.DB
	pointerPath string
	log         *zap.Logger
}

// Open opens (creating if needed) the registry database at dbPath and
// binds the last-ingested pointer file at pointerPath.
func Open(dbPath, pointerPath string, log *zap.Logger) (*Bolt, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocuments, bucketOrder} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db, pointerPath: pointerPath, log: log}, nil
}

// Hash returns the content hash used as the document's natural key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsProcessed reports whether a byte-identical file has been registered.
func (r *Bolt) IsProcessed(data []byte) (bool, error) {
	hash := Hash(data)
	var found bool
	err := r.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketDocuments).Get([]byte(hash)) != nil
		return nil
	})
	return found, err
}

// Add registers a new document. Adding a hash that is already present is
// a warned no-op, never a uniqueness violation: the check and the insert
// run inside one write transaction.
func (r *Bolt) Add(data []byte, sourcePath, displayName string) error {
	hash := Hash(data)
	record := domain.DocumentRecord{
		ContentHash: hash,
		SourcePath:  sourcePath,
		DisplayName: displayName,
		IngestedAt:  time.Now().UTC(),
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocuments)
		if docs.Get([]byte(hash)) != nil {
			r.log.Warn("document already registered",
				zap.String("display_name", displayName),
				zap.String("content_hash", hash))
			return nil
		}

		value, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := docs.Put([]byte(hash), value); err != nil {
			return err
		}

		order := tx.Bucket(bucketOrder)
		seq, err := order.NextSequence()
		if err != nil {
			return err
		}
		return order.Put(orderKey(seq), []byte(hash))
	})
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	// Pointer file written only after the record is durable.
	if err := os.WriteFile(r.pointerPath, []byte(sourcePath), 0644); err != nil {
		return fmt.Errorf("failed to write last-ingested pointer: %w", err)
	}
	return nil
}

// ListNames returns the display names of all registered documents in
// insertion order.
func (r *Bolt) ListNames() ([]string, error) {
	var names []string
	err := r.db.View(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocuments)
		return tx.Bucket(bucketOrder).ForEach(func(k, hash []byte) error {
			value := docs.Get(hash)
			if value == nil {
				return nil
			}
			var record domain.DocumentRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return err
			}
			names = append(names, record.DisplayName)
			return nil
		})
	})
	return names, err
}

// Count returns the number of registered documents.
func (r *Bolt) Count() (int, error) {
	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDocuments).Stats().KeyN
		return nil
	})
	return n, err
}

// LastIngested returns the source path of the most recently added record,
// or "" when nothing has been ingested yet.
func (r *Bolt) LastIngested() (string, error) {
	data, err := os.ReadFile(r.pointerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read last-ingested pointer: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Remove deletes a record by content hash. This is an explicit admin
// operation, not part of normal ingestion flow; removing an unknown hash
// is a no-op.
func (r *Bolt) Remove(hash string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketDocuments).Delete([]byte(hash)); err != nil {
			return err
		}
		order := tx.Bucket(bucketOrder)
		var stale [][]byte
		err := order.ForEach(func(k, v []byte) error {
			if string(v) == hash {
				key := make([]byte, len(k))
				copy(key, k)
				stale = append(stale, key)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := order.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (r *Bolt) Close() error {
	return r.db.Close()
}

func orderKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	sqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tsawler/scribe/model"
)

const (
	blobPrefix  = "blob/"
	modelPrefix = "model/"

	defaultLockWait = 5 * time.Second
)

// Options configures a Store. Dir is required; the rest have defaults.
type Options struct {
	Dir         string
	MaxBlobSize int64 // 0 disables the size check
	LockWait    time.Duration
	Logger      *zap.Logger
}

// Store is the versioned document store. Open it explicitly with Open;
// there is no lazy initialization.
type Store struct {
	blobs   *badger.DB
	records *gorm.DB
	locks   *lockTable
	maxSize int64
	log     *zap.Logger
}

// Open initializes both backends under opts.Dir and migrates the record
// schema. The returned store must be closed.
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, &ValidationError{Field: "dir", Reason: "must not be empty"}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaultLockWait
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, storageErr("open", err)
	}

	blobOpts := badger.DefaultOptions(filepath.Join(opts.Dir, "blobs")).
		WithLogger(nil)
	blobs, err := badger.Open(blobOpts)
	if err != nil {
		return nil, storageErr("open blobs", err)
	}

	dsn := filepath.Join(opts.Dir, "scribe.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		blobs.Close()
		return nil, storageErr("open records", err)
	}
	records, err := gorm.Open(sqlite.Dialector{Conn: conn}, &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		blobs.Close()
		conn.Close()
		return nil, storageErr("open records", err)
	}
	if err := records.AutoMigrate(&DocumentRecord{}); err != nil {
		blobs.Close()
		conn.Close()
		return nil, storageErr("migrate", err)
	}

	opts.Logger.Info("store opened",
		zap.String("dir", opts.Dir),
		zap.Duration("lock_wait", opts.LockWait))

	return &Store{
		blobs:   blobs,
		records: records,
		locks:   newLockTable(opts.LockWait),
		maxSize: opts.MaxBlobSize,
		log:     opts.Logger,
	}, nil
}

// Ping verifies both backends are reachable.
func (s *Store) Ping() error {
	db, err := s.records.DB()
	if err != nil {
		return storageErr("ping", err)
	}
	if err := db.Ping(); err != nil {
		return storageErr("ping", err)
	}
	return s.blobs.View(func(txn *badger.Txn) error { return nil })
}

// Close releases both backends.
func (s *Store) Close() error {
	db, err := s.records.DB()
	if err == nil {
		db.Close()
	}
	return s.blobs.Close()
}

// Store writes a new document and returns its generated id. An empty
// owner leaves the document untagged.
func (s *Store) Store(filename string, data []byte, contentType, owner string) (string, error) {
	if filename == "" {
		return "", &ValidationError{Field: "filename", Reason: "must not be empty"}
	}
	if len(data) == 0 {
		return "", &ValidationError{Field: "data", Reason: "must not be empty"}
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", &ValidationError{Field: "data", Reason: fmt.Sprintf("%d bytes exceeds limit of %d", len(data), s.maxSize)}
	}

	docID := uuid.NewString()
	blobKey := blobPrefix + uuid.NewString()

	if err := s.putBlob(blobKey, data); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	rec := DocumentRecord{
		DocumentID:  docID,
		Filename:    filename,
		ContentType: contentType,
		OwnerID:     owner,
		BlobKey:     blobKey,
		Size:        int64(len(data)),
		Status:      StatusUploaded,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	if err := s.records.Create(&rec).Error; err != nil {
		s.deleteBlob(blobKey) // best effort, the record is the source of truth
		return "", storageErr("create record", err)
	}

	s.log.Info("document stored",
		zap.String("document_id", docID),
		zap.String("filename", filename),
		zap.Int("size", len(data)))
	return docID, nil
}

// Retrieve returns the current blob and record for a document. The bytes
// are an independent copy. Record and blob are read without the writer
// lock, so a concurrent ReplaceBlob can delete the blob between the two
// reads; a missing blob re-reads the record and follows the new key.
func (s *Store) Retrieve(docID string) ([]byte, *DocumentRecord, error) {
	for attempt := 0; ; attempt++ {
		rec, err := s.Record(docID)
		if err != nil {
			return nil, nil, err
		}
		data, err := s.getBlob(rec.BlobKey)
		if err == nil {
			return data, rec, nil
		}
		if !errors.Is(err, ErrNotFound) || attempt >= 3 {
			return nil, nil, err
		}
	}
}

// Record returns the metadata row for a document.
func (s *Store) Record(docID string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := s.records.First(&rec, "document_id = ?", docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", docID, ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("load record", err)
	}
	return &rec, nil
}

// ReplaceBlob swaps in a new version of the document content. The new
// blob is written first, then the record is repointed, then the old blob
// is removed; a crash between steps leaves at worst an orphan blob,
// never a record pointing at missing content.
func (s *Store) ReplaceBlob(docID string, data []byte) error {
	if len(data) == 0 {
		return &ValidationError{Field: "data", Reason: "must not be empty"}
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return &ValidationError{Field: "data", Reason: fmt.Sprintf("%d bytes exceeds limit of %d", len(data), s.maxSize)}
	}

	if err := s.locks.acquire(docID); err != nil {
		return err
	}
	defer s.locks.release(docID)

	rec, err := s.Record(docID)
	if err != nil {
		return err
	}

	newKey := blobPrefix + uuid.NewString()
	if err := s.putBlob(newKey, data); err != nil {
		return err
	}

	oldKey := rec.BlobKey
	updates := map[string]any{
		"blob_key":   newKey,
		"size":       int64(len(data)),
		"status":     StatusUpdated,
		"updated_at": time.Now().UTC(),
	}
	if err := s.records.Model(&DocumentRecord{}).
		Where("document_id = ?", docID).
		Updates(updates).Error; err != nil {
		s.deleteBlob(newKey)
		return storageErr("repoint record", err)
	}

	if err := s.deleteBlob(oldKey); err != nil {
		// The swap already succeeded; an orphan blob is a cleanup
		// problem, not a data problem.
		s.log.Warn("old blob not deleted",
			zap.String("document_id", docID),
			zap.String("blob_key", oldKey),
			zap.Error(err))
	}

	s.log.Info("document replaced",
		zap.String("document_id", docID),
		zap.Int("size", len(data)))
	return nil
}

// StoreDocumentModel persists the structural snapshot and refreshes the
// record's derived counters. Upsert keyed on document id; a document
// never grows a second record. A non-empty owner retags the record; an
// empty one leaves the existing tag alone.
func (s *Store) StoreDocumentModel(docID string, doc *model.Document, owner string) error {
	if doc == nil {
		return &ValidationError{Field: "document", Reason: "must not be nil"}
	}
	if _, err := s.Record(docID); err != nil {
		return err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return storageErr("encode model", err)
	}
	if err := s.putBlob(modelPrefix+docID, payload); err != nil {
		return err
	}

	rec := DocumentRecord{
		DocumentID: docID,
		OwnerID:    owner,
		PageCount:  doc.PageCount,
		TextCount:  len(doc.TextElements),
		ImageCount: len(doc.Images),
		UpdatedAt:  time.Now().UTC(),
	}
	columns := []string{"page_count", "text_count", "image_count", "updated_at"}
	if owner != "" {
		columns = append(columns, "owner_id")
	}
	err = s.records.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&rec).Error
	if err != nil {
		return storageErr("upsert model counters", err)
	}
	return nil
}

// DocumentModel loads the persisted structural snapshot.
func (s *Store) DocumentModel(docID string) (*model.Document, error) {
	payload, err := s.getBlob(modelPrefix + docID)
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, storageErr("decode model", err)
	}
	// Rebuild the id index lost in serialization.
	if err := doc.Finalize(); err != nil {
		return nil, storageErr("decode model", err)
	}
	return &doc, nil
}

// Delete removes the record, the blob, and the stored model. When some
// pieces fail the rest are still removed and the error names what is
// left behind.
func (s *Store) Delete(docID string) error {
	if err := s.locks.acquire(docID); err != nil {
		return err
	}
	defer s.locks.release(docID)

	rec, err := s.Record(docID)
	if err != nil {
		return err
	}

	var leftovers []string
	if err := s.records.Delete(&DocumentRecord{}, "document_id = ?", docID).Error; err != nil {
		leftovers = append(leftovers, "record")
	}
	if err := s.deleteBlob(rec.BlobKey); err != nil {
		leftovers = append(leftovers, "blob")
	}
	if err := s.deleteBlob(modelPrefix + docID); err != nil {
		leftovers = append(leftovers, "model")
	}

	if len(leftovers) > 0 {
		return storageErr("delete", fmt.Errorf("document %s partially deleted, remaining: %v", docID, leftovers))
	}
	s.log.Info("document deleted", zap.String("document_id", docID))
	return nil
}

// List returns all records ordered by upload time, newest first.
func (s *Store) List() ([]DocumentRecord, error) {
	var recs []DocumentRecord
	if err := s.records.Order("uploaded_at desc").Find(&recs).Error; err != nil {
		return nil, storageErr("list", err)
	}
	return recs, nil
}

func (s *Store) putBlob(key string, data []byte) error {
	err := s.blobs.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return storageErr("write blob", err)
	}
	return nil
}

func (s *Store) getBlob(key string) ([]byte, error) {
	var data []byte
	err := s.blobs.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("blob %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("read blob", err)
	}
	return data, nil
}

func (s *Store) deleteBlob(key string) error {
	err := s.blobs.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return storageErr("delete blob", err)
	}
	return nil
}

package store

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/scribe/model"
)

func openTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	s, err := Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAndPing(t *testing.T) {
	s := openTestStore(t, Options{})
	assert.NoError(t, s.Ping())
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open(Options{Dir: ""})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "dir", vErr.Field)
}

func TestStoreAndRetrieve(t *testing.T) {
	s := openTestStore(t, Options{})

	data := []byte("%PDF-1.7 fake body")
	docID, err := s.Store("report.pdf", data, "application/pdf", "")
	require.NoError(t, err)
	require.NotEmpty(t, docID)

	got, rec, err := s.Retrieve(docID)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "report.pdf", rec.Filename)
	assert.Equal(t, "application/pdf", rec.ContentType)
	assert.Equal(t, int64(len(data)), rec.Size)
	assert.Equal(t, StatusUploaded, rec.Status)
}

func TestStoreOwnerTag(t *testing.T) {
	s := openTestStore(t, Options{})

	docID, err := s.Store("mine.pdf", []byte("body"), "application/pdf", "alice")
	require.NoError(t, err)

	rec, err := s.Record(docID)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.OwnerID)

	// An ownerless snapshot update keeps the existing tag.
	require.NoError(t, s.StoreDocumentModel(docID, sampleModel(docID), ""))
	rec, err = s.Record(docID)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.OwnerID)

	// A named owner retags.
	require.NoError(t, s.StoreDocumentModel(docID, sampleModel(docID), "bob"))
	rec, err = s.Record(docID)
	require.NoError(t, err)
	assert.Equal(t, "bob", rec.OwnerID)
}

func TestStoreWithoutOwner(t *testing.T) {
	s := openTestStore(t, Options{})
	docID, err := s.Store("anon.pdf", []byte("body"), "application/pdf", "")
	require.NoError(t, err)

	rec, err := s.Record(docID)
	require.NoError(t, err)
	assert.Empty(t, rec.OwnerID)
}

func TestStoreValidation(t *testing.T) {
	s := openTestStore(t, Options{MaxBlobSize: 8})

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"empty filename", "", []byte("x")},
		{"empty data", "a.pdf", nil},
		{"over size limit", "a.pdf", []byte("123456789")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Store(tt.filename, tt.data, "application/pdf", "")
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestRetrieveUnknownDocument(t *testing.T) {
	s := openTestStore(t, Options{})
	_, _, err := s.Retrieve("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceBlob(t *testing.T) {
	s := openTestStore(t, Options{})

	docID, err := s.Store("doc.pdf", []byte("version one"), "application/pdf", "")
	require.NoError(t, err)
	first, err := s.Record(docID)
	require.NoError(t, err)

	require.NoError(t, s.ReplaceBlob(docID, []byte("version two, longer")))

	data, rec, err := s.Retrieve(docID)
	require.NoError(t, err)
	assert.Equal(t, []byte("version two, longer"), data)
	assert.Equal(t, StatusUpdated, rec.Status)
	assert.Equal(t, int64(len("version two, longer")), rec.Size)
	assert.NotEqual(t, first.BlobKey, rec.BlobKey)

	// The superseded blob is gone.
	_, err = s.getBlob(first.BlobKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetrieveDuringReplace(t *testing.T) {
	s := openTestStore(t, Options{})

	docID, err := s.Store("doc.pdf", []byte("version 0"), "application/pdf", "")
	require.NoError(t, err)

	// A reader racing the blob swap must never see the document vanish.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 50; i++ {
			if err := s.ReplaceBlob(docID, []byte(fmt.Sprintf("version %d", i))); err != nil {
				t.Errorf("replace %d: %v", i, err)
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			data, _, err := s.Retrieve(docID)
			require.NoError(t, err)
			assert.Equal(t, []byte("version 50"), data)
			return
		default:
			data, _, err := s.Retrieve(docID)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("version ")))
		}
	}
}

func TestReplaceBlobUnknownDocument(t *testing.T) {
	s := openTestStore(t, Options{})
	err := s.ReplaceBlob("no-such-id", []byte("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func sampleModel(docID string) *model.Document {
	doc := &model.Document{
		DocumentID: docID,
		Filename:   "doc.pdf",
		PageCount:  2,
		Pages:      []model.PageSize{{Width: 612, Height: 792}, {Width: 612, Height: 792}},
		TextElements: []model.TextElement{
			{ID: "p0_b0_l0_w0", Text: "Hello", Page: 0, FontName: "Helvetica", FontSize: 12},
			{ID: "p0_b0_l0_w1", Text: "World", Page: 0, FontName: "Helvetica", FontSize: 12},
			{ID: "p1_b0_l0_w0", Text: "Next", Page: 1, FontName: "Helvetica", FontSize: 10},
		},
	}
	if err := doc.Finalize(); err != nil {
		panic(err)
	}
	return doc
}

func TestStoreDocumentModelRoundTrip(t *testing.T) {
	s := openTestStore(t, Options{})

	docID, err := s.Store("doc.pdf", []byte("body"), "application/pdf", "")
	require.NoError(t, err)

	require.NoError(t, s.StoreDocumentModel(docID, sampleModel(docID), ""))

	loaded, err := s.DocumentModel(docID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.PageCount)
	assert.Len(t, loaded.TextElements, 3)

	// The id index must survive the round trip.
	el, err := loaded.FindElement("p0_b0_l0_w1")
	require.NoError(t, err)
	assert.Equal(t, "World", el.Text)

	rec, err := s.Record(docID)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.PageCount)
	assert.Equal(t, 3, rec.TextCount)
	assert.Equal(t, 0, rec.ImageCount)
}

func TestStoreDocumentModelUpsert(t *testing.T) {
	s := openTestStore(t, Options{})

	docID, err := s.Store("doc.pdf", []byte("body"), "application/pdf", "")
	require.NoError(t, err)

	require.NoError(t, s.StoreDocumentModel(docID, sampleModel(docID), ""))

	smaller := sampleModel(docID)
	smaller.PageCount = 1
	smaller.TextElements = smaller.TextElements[:1]
	require.NoError(t, smaller.Finalize())
	require.NoError(t, s.StoreDocumentModel(docID, smaller, ""))

	// Still exactly one record, carrying the latest counters.
	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].PageCount)
	assert.Equal(t, 1, recs[0].TextCount)
}

func TestStoreDocumentModelRequiresRecord(t *testing.T) {
	s := openTestStore(t, Options{})
	err := s.StoreDocumentModel("no-such-id", sampleModel("no-such-id"), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t, Options{})

	docID, err := s.Store("doc.pdf", []byte("body"), "application/pdf", "")
	require.NoError(t, err)
	require.NoError(t, s.StoreDocumentModel(docID, sampleModel(docID), ""))

	require.NoError(t, s.Delete(docID))

	_, err = s.Record(docID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DocumentModel(docID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownDocument(t *testing.T) {
	s := openTestStore(t, Options{})
	assert.ErrorIs(t, s.Delete("no-such-id"), ErrNotFound)
}

func TestListOrdering(t *testing.T) {
	s := openTestStore(t, Options{})

	firstID, err := s.Store("first.pdf", []byte("a"), "application/pdf", "")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	secondID, err := s.Store("second.pdf", []byte("b"), "application/pdf", "")
	require.NoError(t, err)

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, secondID, recs[0].DocumentID)
	assert.Equal(t, firstID, recs[1].DocumentID)
}

func TestConcurrentWriterBlocked(t *testing.T) {
	s := openTestStore(t, Options{LockWait: 50 * time.Millisecond})

	docID, err := s.Store("doc.pdf", []byte("body"), "application/pdf", "")
	require.NoError(t, err)

	// Hold the write slot directly; a second writer must time out.
	require.NoError(t, s.locks.acquire(docID))
	defer s.locks.release(docID)

	err = s.ReplaceBlob(docID, []byte("blocked"))
	assert.ErrorIs(t, err, ErrBusy)
}

func TestStorageErrorUnwraps(t *testing.T) {
	inner := errors.New("disk on fire")
	err := storageErr("write blob", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "write blob")
}

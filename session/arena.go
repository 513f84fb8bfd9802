package session

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tsawler/scribe/edit"
	"github.com/tsawler/scribe/extract"
	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/ocr"
	"github.com/tsawler/scribe/reader"
	"github.com/tsawler/scribe/render"
	"github.com/tsawler/scribe/store"
)

// Arena is the working set of loaded documents.
type Arena struct {
	mu      sync.Mutex
	store   *store.Store
	log     *zap.Logger
	size    int
	entries map[string]*entry
	order   *list.List // front = most recently used
}

type entry struct {
	docID string
	data  []byte
	rdr   *reader.Reader
	doc   *model.Document
	elem  *list.Element
}

// New creates an arena holding at most size documents.
func New(st *store.Store, size int, log *zap.Logger) *Arena {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Arena{
		store:   st,
		log:     log,
		size:    size,
		entries: make(map[string]*entry),
		order:   list.New(),
	}
}

// Upload validates and stores a new PDF, extracts its snapshot, and
// loads it into the arena. Returns the generated document id. An empty
// owner leaves the document untagged.
func (a *Arena) Upload(filename string, data []byte, owner string) (string, *model.Document, error) {
	if format.DetectFromMagic(data) != format.PDF {
		return "", nil, &store.ValidationError{Field: "data", Reason: "not a PDF (magic bytes)"}
	}

	// Parse before persisting so a broken file never gets a record.
	rdr, err := reader.New(data)
	if err != nil {
		return "", nil, err
	}

	docID, err := a.store.Store(filename, data, format.PDF.ContentType(), owner)
	if err != nil {
		return "", nil, err
	}

	doc, err := extract.Build(rdr, docID, filename)
	if err == nil {
		err = a.store.StoreDocumentModel(docID, doc, owner)
	}
	if err != nil {
		// The bytes are already persisted but no snapshot exists; a
		// half-created document must not survive.
		if derr := a.store.Delete(docID); derr != nil {
			a.log.Warn("orphaned upload not cleaned up",
				zap.String("document_id", docID),
				zap.Error(derr))
		}
		return "", nil, err
	}

	a.mu.Lock()
	a.insert(&entry{docID: docID, data: data, rdr: rdr, doc: doc})
	a.mu.Unlock()

	a.log.Info("document uploaded",
		zap.String("document_id", docID),
		zap.String("filename", filename),
		zap.Int("pages", doc.PageCount))
	return docID, doc, nil
}

// Load returns the snapshot for a document, fetching and parsing it if
// it is not resident.
func (a *Arena) Load(docID string) (*model.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.resident(docID)
	if err != nil {
		return nil, err
	}
	return e.doc, nil
}

// Summary returns the derived overview for a document.
func (a *Arena) Summary(docID string) (model.Summary, error) {
	doc, err := a.Load(docID)
	if err != nil {
		return model.Summary{}, err
	}
	return doc.Summary(), nil
}

// UpdateElement replaces the text of one element and persists the new
// version. The returned snapshot is freshly derived from the persisted
// bytes.
func (a *Arena) UpdateElement(docID, elementID, text string, opts edit.Options) (*model.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.resident(docID)
	if err != nil {
		return nil, err
	}

	res, err := edit.UpdateElement(e.rdr, e.doc, elementID, text, opts)
	if err != nil {
		return nil, err
	}
	return a.commit(e, res.PDF)
}

// SearchReplace substitutes term inside every element containing it
// and persists the result. A zero count means nothing matched and no
// new version was written.
func (a *Arena) SearchReplace(docID, term, replacement string) (int, *model.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.resident(docID)
	if err != nil {
		return 0, nil, err
	}

	res, err := edit.SearchReplace(e.rdr, e.doc, term, replacement)
	if err != nil {
		return 0, nil, err
	}
	if res.Changed == 0 {
		return 0, e.doc, nil
	}
	doc, err := a.commit(e, res.PDF)
	if err != nil {
		return 0, nil, err
	}
	return res.Changed, doc, nil
}

// AddText draws new text on a page and persists the result. The re-
// derived snapshot makes the added run addressable like any other
// element.
func (a *Arena) AddText(docID string, page int, x, y float64, text string, size float64, color model.Color) (*model.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.resident(docID)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= e.doc.PageCount {
		return nil, fmt.Errorf("page %d out of range (document has %d)", page, e.doc.PageCount)
	}

	res, err := edit.AddText(e.rdr, page, x, y, text, size, color)
	if err != nil {
		return nil, err
	}
	return a.commit(e, res.PDF)
}

// RenderPage rasterizes a page of the current version to PNG bytes.
func (a *Arena) RenderPage(docID string, page int, zoom float64) ([]byte, error) {
	doc, err := a.Load(docID)
	if err != nil {
		return nil, err
	}
	return render.Page(doc, page, zoom)
}

// OCRImages recognizes text in the document's image elements. The
// snapshot is not mutated and no writer lock is taken.
func (a *Arena) OCRImages(ctx context.Context, docID string, rec ocr.Recognizer) ([]ocr.ImageText, error) {
	doc, err := a.Load(docID)
	if err != nil {
		return nil, err
	}
	return ocr.Run(ctx, rec, doc.Images)
}

// Forget drops a document from the arena without touching the store.
// Call it after deleting the document.
func (a *Arena) Forget(docID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[docID]; ok {
		a.order.Remove(e.elem)
		delete(a.entries, docID)
	}
}

// resident returns the entry for docID, loading it on a miss. Caller
// holds a.mu.
func (a *Arena) resident(docID string) (*entry, error) {
	if e, ok := a.entries[docID]; ok {
		a.order.MoveToFront(e.elem)
		return e, nil
	}

	data, rec, err := a.store.Retrieve(docID)
	if err != nil {
		return nil, err
	}
	rdr, err := reader.New(data)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Build(rdr, docID, rec.Filename)
	if err != nil {
		return nil, err
	}

	e := &entry{docID: docID, data: data, rdr: rdr, doc: doc}
	a.insert(e)
	return e, nil
}

// commit persists new bytes for an entry and re-derives its snapshot.
// Caller holds a.mu.
func (a *Arena) commit(e *entry, pdf []byte) (*model.Document, error) {
	if err := a.store.ReplaceBlob(e.docID, pdf); err != nil {
		return nil, err
	}

	rdr, err := reader.New(pdf)
	if err != nil {
		return nil, fmt.Errorf("reparse after edit: %w", err)
	}
	doc, err := extract.Build(rdr, e.docID, e.doc.Filename)
	if err != nil {
		return nil, fmt.Errorf("re-extract after edit: %w", err)
	}
	if err := a.store.StoreDocumentModel(e.docID, doc, ""); err != nil {
		return nil, err
	}

	e.data = pdf
	e.rdr = rdr
	e.doc = doc
	a.order.MoveToFront(e.elem)
	return doc, nil
}

// insert adds an entry, evicting the least recently used one when the
// arena is full. Caller holds a.mu.
func (a *Arena) insert(e *entry) {
	for len(a.entries) >= a.size {
		back := a.order.Back()
		if back == nil {
			break
		}
		victim := back.Value.(*entry)
		a.order.Remove(back)
		delete(a.entries, victim.docID)
		a.log.Debug("arena eviction", zap.String("document_id", victim.docID))
	}
	e.elem = a.order.PushFront(e)
	a.entries[e.docID] = e
}

// Package services – Catalog
//
// This file implements Catalog, the application-level component that owns the
// lifecycle of stored hymnal documents. It validates and parses uploads,
// keeps one serialized search index per document in sync with its source, and
// answers search, category and selection requests against the parsed model.
//
// Parsed documents and decoded indexes are cached by source fingerprint, so a
// replaced document never serves stale data and an unchanged one is parsed
// once per process.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include document identifiers and query parameters where applicable.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hymnal-backend/internal/category"
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
	"github.com/tbourn/go-hymnal-backend/internal/repo"
	"github.com/tbourn/go-hymnal-backend/internal/search"
	"github.com/tbourn/go-hymnal-backend/internal/selection"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SearchContext is the selection context of search result lists.
const SearchContext = "search"

// Store is the key/blob persistence contract the catalog needs. Missing keys
// are reported as repo.ErrNotFound.
type Store interface {
	// Get returns the raw source stored under id.
	Get(ctx context.Context, id string) ([]byte, error)
	// Put stores raw under id, replacing any previous source.
	Put(ctx context.Context, id string, raw []byte) error
	// Delete removes id along with its index and selections.
	Delete(ctx context.Context, id string) error
	// GetIndex returns the serialized index of id.
	GetIndex(ctx context.Context, id string) ([]byte, error)
	// PutIndex stores the serialized index of id.
	PutIndex(ctx context.Context, id string, blob []byte) error
	// List returns every stored id, ascending.
	List(ctx context.Context) ([]string, error)
}

// SelectionStore persists one selection per (document, context).
type SelectionStore interface {
	GetSelection(ctx context.Context, docID, scope string) (selection.Selection, error)
	PutSelection(ctx context.Context, docID, scope string, s selection.Selection) error
}

// statsStore is implemented by stores that can cheaply report aggregate
// metadata for conditional responses.
type statsStore interface {
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// CatalogOptions tunes a Catalog.
type CatalogOptions struct {
	// ParseCacheEntries caps the number of parsed documents and decoded
	// indexes kept in memory; <= 0 disables caching.
	ParseCacheEntries int64
	// WarmupWorkers bounds Warmup concurrency; <= 0 means 4.
	WarmupWorkers int
	// MaxDocumentBytes rejects larger sources; <= 0 means unlimited.
	MaxDocumentBytes int64
	// SkipDeletedVerses and SkipDeletedEntries leave deleted content out of
	// search indexes. Skipped entries are also absent from match-all results.
	SkipDeletedVerses  bool
	SkipDeletedEntries bool
}

// Catalog coordinates storage, parsing, indexing and the query engines.
type Catalog struct {
	Store      Store
	Selections SelectionStore
	opts       CatalogOptions

	docs    *ristretto.Cache[string, *hymnal.Document]
	indexes *ristretto.Cache[string, *search.Index]
}

// NewCatalog builds a Catalog. sels may be nil when the store also
// implements SelectionStore.
func NewCatalog(store Store, sels SelectionStore, opts CatalogOptions) (*Catalog, error) {
	if sels == nil {
		s, ok := store.(SelectionStore)
		if !ok {
			return nil, errors.New("services: store does not persist selections and none was given")
		}
		sels = s
	}
	if opts.WarmupWorkers <= 0 {
		opts.WarmupWorkers = 4
	}
	c := &Catalog{Store: store, Selections: sels, opts: opts}

	if n := opts.ParseCacheEntries; n > 0 {
		var err error
		c.docs, err = ristretto.NewCache(&ristretto.Config[string, *hymnal.Document]{
			NumCounters: n * 10,
			MaxCost:     n,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("services: parse cache: %w", err)
		}
		c.indexes, err = ristretto.NewCache(&ristretto.Config[string, *search.Index]{
			NumCounters: n * 10,
			MaxCost:     n,
			BufferItems: 64,
		})
		if err != nil {
			c.docs.Close()
			return nil, fmt.Errorf("services: index cache: %w", err)
		}
	}
	return c, nil
}

// Close releases the caches.
func (c *Catalog) Close() {
	if c.docs != nil {
		c.docs.Close()
		c.indexes.Close()
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("services/Catalog").Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// PutDocument validates raw, stores it under id and rebuilds its index.
// The root id of the markup must equal id.
func (c *Catalog) PutDocument(ctx context.Context, id string, raw []byte) (doc *hymnal.Document, err error) {
	ctx, span := startSpan(ctx, "PutDocument",
		attribute.String("document.id", id),
		attribute.Int("document.bytes", len(raw)),
	)
	defer func() { endSpan(span, err) }()

	if c.opts.MaxDocumentBytes > 0 && int64(len(raw)) > c.opts.MaxDocumentBytes {
		return nil, ErrDocumentTooLarge
	}
	fp := hymnal.Fingerprint(raw)
	doc, err = c.parse(raw, fp)
	if err != nil {
		return nil, err
	}
	if doc.ID != id {
		return nil, fmt.Errorf("%w: %q vs %q", ErrIDMismatch, id, doc.ID)
	}
	if err = c.Store.Put(ctx, id, raw); err != nil {
		return nil, err
	}
	if _, err = c.rebuild(ctx, doc, fp, "put"); err != nil {
		return nil, err
	}
	log.Info().Str("document_id", id).Int("entries", doc.Len()).Msg("document stored")
	return doc, nil
}

// GetDocument returns the parsed model of document id.
func (c *Catalog) GetDocument(ctx context.Context, id string) (doc *hymnal.Document, err error) {
	ctx, span := startSpan(ctx, "GetDocument", attribute.String("document.id", id))
	defer func() { endSpan(span, err) }()

	doc, _, err = c.load(ctx, id)
	return doc, err
}

// DeleteDocument removes document id and everything derived from it.
func (c *Catalog) DeleteDocument(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "DeleteDocument", attribute.String("document.id", id))
	defer func() { endSpan(span, err) }()

	if err = c.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}

// ListDocuments returns the ids of all stored documents.
func (c *Catalog) ListDocuments(ctx context.Context) ([]string, error) {
	return c.Store.List(ctx)
}

// Stats reports the document count and last update time when the store
// supports it; ok is false otherwise.
func (c *Catalog) Stats(ctx context.Context) (count int64, updated *time.Time, ok bool, err error) {
	s, ok := c.Store.(statsStore)
	if !ok {
		return 0, nil, false, nil
	}
	count, updated, err = s.Stats(ctx)
	return count, updated, err == nil, err
}

// Entry returns one entry of document id.
func (c *Catalog) Entry(ctx context.Context, id, entryID string) (*hymnal.Entry, error) {
	doc, err := c.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	e, ok := doc.Entry(entryID)
	if !ok {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// Index returns the search index of document id together with the document.
// The stored index is reused when it decodes under the current format and
// was built from the current source; otherwise it is rebuilt and stored.
func (c *Catalog) Index(ctx context.Context, id string) (idx *search.Index, doc *hymnal.Document, err error) {
	ctx, span := startSpan(ctx, "Index", attribute.String("document.id", id))
	defer func() { endSpan(span, err) }()

	doc, fp, err := c.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	key := c.indexKey(fp)
	if c.indexes != nil {
		idx, ok := c.indexes.Get(key)
		observeCache("index", ok)
		if ok {
			return idx, doc, nil
		}
	}

	reason := ""
	blob, err := c.Store.GetIndex(ctx, id)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		reason = "missing"
	case err != nil:
		return nil, nil, err
	default:
		idx, err = search.Decode(blob)
		switch {
		case errors.Is(err, search.ErrIndexVersion):
			reason = "version"
		case err != nil:
			reason = "corrupt"
		case idx.Fingerprint() != key:
			reason = "stale"
		}
	}
	if reason == "" {
		c.cacheIndex(key, idx)
		return idx, doc, nil
	}

	span.SetAttributes(attribute.String("index.rebuild", reason))
	idx, err = c.rebuild(ctx, doc, fp, reason)
	if err != nil {
		return nil, nil, err
	}
	return idx, doc, nil
}

// Search runs q against document id.
func (c *Catalog) Search(ctx context.Context, id, q string) (res []search.Result, err error) {
	ctx, span := startSpan(ctx, "Search",
		attribute.String("document.id", id),
		attribute.String("query", q),
	)
	defer func() { endSpan(span, err) }()

	idx, doc, err := c.Index(ctx, id)
	if err != nil {
		return nil, err
	}
	queries.WithLabelValues("search").Inc()
	res = search.Search(idx, doc, q)
	span.SetAttributes(attribute.Int("results", len(res)))
	return res, nil
}

// Categories groups the entries of document id by facet. A non-blank q
// restricts the grouping to the entries it matches.
func (c *Catalog) Categories(ctx context.Context, id, facet, q string, mode category.SortMode) (cs []category.Category, err error) {
	ctx, span := startSpan(ctx, "Categories",
		attribute.String("document.id", id),
		attribute.String("facet", facet),
		attribute.String("sort", string(mode)),
	)
	defer func() { endSpan(span, err) }()

	ft, ok := hymnal.ParseFacetType(facet)
	if !ok {
		return nil, ErrUnknownFacet
	}
	queries.WithLabelValues("categories").Inc()

	if strings.TrimSpace(q) == "" {
		doc, err := c.GetDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		return category.Categorize(doc, ft, doc.Entries(), mode), nil
	}
	idx, doc, err := c.Index(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := search.EntryIDs(search.Search(idx, doc, q))
	return category.CategorizeIDs(doc, ft, ids, mode), nil
}

// Selection returns the stored selection of scope in document id, or All
// when none was stored yet.
func (c *Catalog) Selection(ctx context.Context, id, scope string) (sel selection.Selection, err error) {
	ctx, span := startSpan(ctx, "Selection",
		attribute.String("document.id", id),
		attribute.String("selection.context", scope),
	)
	defer func() { endSpan(span, err) }()

	if err = validScope(scope); err != nil {
		return selection.Selection{}, err
	}
	if _, _, err = c.load(ctx, id); err != nil {
		return selection.Selection{}, err
	}
	return c.currentSelection(ctx, id, scope)
}

// ApplySelection applies op with targets to the stored selection of scope
// and persists the result. The id universe is the current category list of
// the facet (or the search result list for SearchContext) for query q.
func (c *Catalog) ApplySelection(ctx context.Context, id, scope string, op selection.Op, targets selection.Selection, q string) (sel selection.Selection, err error) {
	ctx, span := startSpan(ctx, "ApplySelection",
		attribute.String("document.id", id),
		attribute.String("selection.context", scope),
		attribute.String("selection.op", string(op)),
	)
	defer func() { endSpan(span, err) }()

	if err = validScope(scope); err != nil {
		return selection.Selection{}, err
	}
	var allIDs []string
	if scope == SearchContext {
		res, err := c.Search(ctx, id, q)
		if err != nil {
			return selection.Selection{}, err
		}
		allIDs = search.EntryIDs(res)
	} else {
		cs, err := c.Categories(ctx, id, scope, q, category.SortDefault)
		if err != nil {
			return selection.Selection{}, err
		}
		allIDs = category.IDs(cs)
	}

	cur, err := c.currentSelection(ctx, id, scope)
	if err != nil {
		return selection.Selection{}, err
	}
	queries.WithLabelValues("selection").Inc()
	sel = selection.Apply(cur, allIDs, op, targets)
	if err = c.Selections.PutSelection(ctx, id, scope, sel); err != nil {
		return selection.Selection{}, err
	}
	return sel, nil
}

func (c *Catalog) currentSelection(ctx context.Context, id, scope string) (selection.Selection, error) {
	sel, err := c.Selections.GetSelection(ctx, id, scope)
	if errors.Is(err, repo.ErrNotFound) {
		return selection.All(), nil
	}
	return sel, err
}

func validScope(scope string) error {
	if scope == SearchContext {
		return nil
	}
	if _, ok := hymnal.ParseFacetType(scope); !ok {
		return ErrUnknownContext
	}
	return nil
}

// load fetches and parses document id, returning its source fingerprint.
func (c *Catalog) load(ctx context.Context, id string) (*hymnal.Document, string, error) {
	raw, err := c.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", err
	}
	fp := hymnal.Fingerprint(raw)
	doc, err := c.parse(raw, fp)
	if err != nil {
		return nil, "", err
	}
	return doc, fp, nil
}

// parse parses raw through the document cache.
func (c *Catalog) parse(raw []byte, fp string) (*hymnal.Document, error) {
	if c.docs != nil {
		doc, ok := c.docs.Get(fp)
		observeCache("document", ok)
		if ok {
			return doc, nil
		}
	}
	start := time.Now()
	doc, err := hymnal.Parse(raw)
	parseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if c.docs != nil {
		c.docs.Set(fp, doc, 1)
		c.docs.Wait()
	}
	return doc, nil
}

// indexKey identifies the index built from the source with fingerprint fp
// under the current build options, so changing the options makes stored
// indexes stale.
func (c *Catalog) indexKey(fp string) string {
	switch {
	case c.opts.SkipDeletedVerses && c.opts.SkipDeletedEntries:
		return fp + "+dv+de"
	case c.opts.SkipDeletedVerses:
		return fp + "+dv"
	case c.opts.SkipDeletedEntries:
		return fp + "+de"
	}
	return fp
}

func (c *Catalog) rebuild(ctx context.Context, doc *hymnal.Document, fp, reason string) (*search.Index, error) {
	key := c.indexKey(fp)
	idx := search.Build(doc,
		search.WithFingerprint(key),
		search.WithSkipDeletedVerses(c.opts.SkipDeletedVerses),
		search.WithSkipDeletedEntries(c.opts.SkipDeletedEntries),
	)
	indexBuilds.WithLabelValues(reason).Inc()

	blob, err := search.Encode(idx)
	if err != nil {
		return nil, err
	}
	if err := c.Store.PutIndex(ctx, doc.ID, blob); err != nil {
		return nil, err
	}
	log.Debug().
		Str("document_id", doc.ID).
		Str("reason", reason).
		Int("records", idx.Len()).
		Int("bytes", len(blob)).
		Msg("search index rebuilt")
	c.cacheIndex(key, idx)
	return idx, nil
}

func (c *Catalog) cacheIndex(fp string, idx *search.Index) {
	if c.indexes != nil {
		c.indexes.Set(fp, idx, 1)
		c.indexes.Wait()
	}
}

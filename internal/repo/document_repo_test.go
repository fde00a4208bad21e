package repo

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-hymnal-backend/internal/domain"
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
)

func migrated(t *testing.T) *Store {
	t.Helper()
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return NewStore(db)
}

func TestPutDocument_Error_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	d, err := PutDocument(context.Background(), db, "hb", []byte("x"))
	if err == nil || d != nil {
		t.Fatalf("expected error without table, got d=%v err=%v", d, err)
	}
}

func TestPutDocument_InsertThenReplace(t *testing.T) {
	s := migrated(t)
	ctx := context.Background()

	first, err := PutDocument(ctx, s.DB, "hb", []byte("one"))
	if err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if first.Fingerprint != hymnal.Fingerprint([]byte("one")) || first.Size != 3 {
		t.Fatalf("unexpected derived columns: %+v", first)
	}

	if _, err := PutDocument(ctx, s.DB, "hb", []byte("second")); err != nil {
		t.Fatalf("PutDocument replace: %v", err)
	}
	got, err := GetDocument(ctx, s.DB, "hb")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if string(got.Raw) != "second" || got.Size != 6 || got.Fingerprint != hymnal.Fingerprint([]byte("second")) {
		t.Fatalf("replace not applied: %+v", got)
	}

	var n int64
	s.DB.Model(&domain.Document{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected one row after upsert, got %d", n)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	s := migrated(t)
	if _, err := GetDocument(context.Background(), s.DB, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDocuments_OrderedWithoutRaw(t *testing.T) {
	s := migrated(t)
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c"} {
		if _, err := PutDocument(ctx, s.DB, id, []byte("raw-"+id)); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	docs, err := ListDocuments(ctx, s.DB)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 3 || docs[0].ID != "a" || docs[2].ID != "c" {
		t.Fatalf("unexpected order: %+v", docs)
	}
	if docs[0].Raw != nil || docs[0].Size != 5 {
		t.Fatalf("listing should carry size but not raw: %+v", docs[0])
	}
}

func TestIndex_PutGetReplace(t *testing.T) {
	s := migrated(t)
	ctx := context.Background()

	if _, err := GetIndex(ctx, s.DB, "hb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before put, got %v", err)
	}
	if _, err := PutDocument(ctx, s.DB, "hb", []byte("x")); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if err := PutIndex(ctx, s.DB, "hb", []byte{1}); err != nil {
		t.Fatalf("PutIndex: %v", err)
	}
	if err := PutIndex(ctx, s.DB, "hb", []byte{2, 3}); err != nil {
		t.Fatalf("PutIndex replace: %v", err)
	}
	blob, err := GetIndex(ctx, s.DB, "hb")
	if err != nil || !bytes.Equal(blob, []byte{2, 3}) {
		t.Fatalf("GetIndex = %v, %v", blob, err)
	}
}

func TestDeleteDocument_RemovesDerivedRows(t *testing.T) {
	s := migrated(t)
	ctx := context.Background()

	if err := s.Put(ctx, "hb", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.PutIndex(ctx, "hb", []byte{1}); err != nil {
		t.Fatalf("PutIndex: %v", err)
	}
	if err := s.Delete(ctx, "hb"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "hb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("document still present: %v", err)
	}
	if _, err := s.GetIndex(ctx, "hb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("index still present: %v", err)
	}
	if err := s.Delete(ctx, "hb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListAndStats(t *testing.T) {
	s := migrated(t)
	ctx := context.Background()

	ids, err := s.List(ctx)
	if err != nil || len(ids) != 0 {
		t.Fatalf("empty List = %v, %v", ids, err)
	}
	_ = s.Put(ctx, "2", []byte("x"))
	_ = s.Put(ctx, "1", []byte("y"))

	ids, err = s.List(ctx)
	if err != nil || len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("List = %v, %v", ids, err)
	}
	n, ts, err := s.Stats(ctx)
	if err != nil || n != 2 || ts == nil {
		t.Fatalf("Stats = %d, %v, %v", n, ts, err)
	}
}

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tbourn/go-hymnal-backend/internal/config"
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
	"github.com/tbourn/go-hymnal-backend/internal/services"
)

const seedXML = `<hymnal id="hb" title="Hymns"><hymns>
  <hymn id="1"><verse><line>Amazing grace</line></verse></hymn>
</hymns></hymnal>`

func TestOpenStore_Backends(t *testing.T) {
	cases := []config.StoreConfig{
		{Backend: config.BackendBadger},
		{Backend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "hymnal.db")},
	}
	for _, sc := range cases {
		t.Run(sc.Backend, func(t *testing.T) {
			st, err := openStore(sc)
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			cat, err := services.NewCatalog(st, nil, services.CatalogOptions{MaxDocumentBytes: 1 << 20})
			if err != nil {
				t.Fatalf("catalog: %v", err)
			}

			path := filepath.Join(t.TempDir(), "seed.xml")
			if err := os.WriteFile(path, []byte(seedXML), 0o644); err != nil {
				t.Fatal(err)
			}
			id, err := seed(context.Background(), cat, path, 1<<20)
			if err != nil || id != "hb" {
				t.Fatalf("seed = %q, %v", id, err)
			}
			res, err := cat.Search(context.Background(), "hb", "grace")
			if err != nil || len(res) != 1 {
				t.Fatalf("search after seed = %v, %v", res, err)
			}

			cat.Close()
			if err := st.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
		})
	}
}

func TestOpenStore_Errors(t *testing.T) {
	if _, err := openStore(config.StoreConfig{Backend: "mongo"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	missing := filepath.Join(t.TempDir(), "nope", "hymnal.db")
	if _, err := openStore(config.StoreConfig{Backend: config.BackendSQLite, DBPath: missing}); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}

func TestSeed_Errors(t *testing.T) {
	st, err := openStore(config.StoreConfig{Backend: config.BackendBadger})
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.Close()
	cat, err := services.NewCatalog(st, nil, services.CatalogOptions{MaxDocumentBytes: 1 << 20})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	defer cat.Close()

	dir := t.TempDir()
	if _, err := seed(context.Background(), cat, filepath.Join(dir, "missing.xml"), 1<<20); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.xml")
	_ = os.WriteFile(bad, []byte("<hymnal>"), 0o644)
	if _, err := seed(context.Background(), cat, bad, 1<<20); !hymnal.IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}

	big := filepath.Join(dir, "big.xml")
	_ = os.WriteFile(big, []byte(seedXML), 0o644)
	if _, err := seed(context.Background(), cat, big, 8); !errors.Is(err, hymnal.ErrSourceTooLarge) {
		t.Fatalf("expected ErrSourceTooLarge, got %v", err)
	}
}

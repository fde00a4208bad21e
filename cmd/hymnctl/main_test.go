package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cliXML = `<hymnal id="hb" title="Hymns" language="en">
  <topics><topic id="A" name="Grace"/><topic id="B" name="Praise"/></topics>
  <hymns>
    <hymn id="1"><topic ref="A"/><verse><line>Amazing grace</line></verse></hymn>
    <hymn id="2"><topic ref="B"/><verse deleted="yes"><line>Glory and grace</line></verse></hymn>
    <hymn id="3"><verse><line>Holy</line></verse></hymn>
  </hymns>
</hymnal>`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hymns.xml")
	if err := os.WriteFile(path, []byte(cliXML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"hymnctl"}, args...))
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := runCLI(t, "parse", "--file", writeFixture(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var got struct {
		ID          string `json:"id"`
		Fingerprint string `json:"fingerprint"`
		Topics      []struct {
			ID string `json:"id"`
		} `json:"topics"`
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.ID != "hb" || len(got.Fingerprint) == 0 || len(got.Topics) != 2 || len(got.Entries) != 3 {
		t.Fatalf("unexpected parse output: %+v", got)
	}
}

func TestSearchCommand(t *testing.T) {
	path := writeFixture(t)

	out, err := runCLI(t, "search", "-f", path, "-q", "grace")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if strings.TrimSpace(out) != `[{"id":"1","lines":["Amazing grace"]},{"id":"2","lines":["Glory and grace"]}]` {
		t.Fatalf("unexpected search output: %s", out)
	}

	out, err = runCLI(t, "search", "-f", path, "-q", "grace", "--skip-deleted-verses")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if strings.TrimSpace(out) != `[{"id":"1","lines":["Amazing grace"]}]` {
		t.Fatalf("deleted verse should not be indexed: %s", out)
	}

	out, _ = runCLI(t, "search", "-f", path, "-q", "zzz")
	if strings.TrimSpace(out) != `[]` {
		t.Fatalf("no hits should print an empty array: %s", out)
	}
}

func TestCategoriesCommand(t *testing.T) {
	path := writeFixture(t)

	out, err := runCLI(t, "categories", "-f", path, "--sort", "name")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	var cs []struct {
		ID      string   `json:"id"`
		Kind    string   `json:"kind"`
		Members []string `json:"members"`
	}
	if err := json.Unmarshal([]byte(out), &cs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(cs) != 3 {
		t.Fatalf("expected Grace, Praise and uncategorized, got %+v", cs)
	}

	out, err = runCLI(t, "--pretty", "categories", "-f", path, "-q", "amazing")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !strings.Contains(out, "\n  {") || !strings.Contains(out, `"A"`) || strings.Contains(out, `"B"`) {
		t.Fatalf("expected indented output restricted to topic A: %s", out)
	}
}

func TestCommands_Errors(t *testing.T) {
	path := writeFixture(t)
	if _, err := runCLI(t, "categories", "-f", path, "--facet", "mood"); err == nil {
		t.Fatalf("expected unknown facet error")
	}
	if _, err := runCLI(t, "categories", "-f", path, "--sort", "random"); err == nil {
		t.Fatalf("expected bad sort error")
	}
	if _, err := runCLI(t, "parse", "-f", filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Fatalf("expected missing file error")
	}
	if _, err := runCLI(t, "parse", "-f", path, "--max-bytes", "10"); err == nil {
		t.Fatalf("expected size limit error")
	}
}

package hymnal

import (
	"encoding/json"
	"reflect"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<hymnal id="hb" title="Hymn Book" year="1986" language="fi" publisher="Church Press">
  <languages>
    <language id="fi" name="Finnish"/>
    <language id="en" name="English"/>
  </languages>
  <contributors>
    <contributor id="c1" name="John Newton"/>
    <contributor id="c2"/>
  </contributors>
  <topics>
    <topic id="A" name="Grace"/>
    <topic id="B" name="Praise"/>
    <topic id="A" name="Amazing Grace"/>
  </topics>
  <tunes><tune id="t1" name="New Britain"/></tunes>
  <days><day id="d1" name="Easter"/></days>
  <origins><origin id="o1" name="England"/></origins>
  <indexes>
    <index type="topic" name="Topics" has-default-sort="yes"/>
    <index type="tune" name="Tunes" has-default-sort="no"/>
  </indexes>
  <hymns>
    <hymn id="1" language="en" origin="o1">
      <title> Amazing Grace </title>
      <author ref="c1" year="1779"/>
      <translator year="1990" note="anon."/>
      <topic ref="A"/>
      <topic ref="Z"/>
      <topic ref="A"/>
      <tune ref="t1"/>
      <verse>
        <line>Amazing grace</line>
      </verse>
      <verse deleted="yes">
        <line>  How sweet the sound </line>
      </verse>
      <refrain><line>Glory</line></refrain>
    </hymn>
    <hymn id="2" deleted="yes" restricted="true">
      <verse>
        <line>Sing</line>
        <repeat times="3" before="Oh," after="!"><line>Glory</line></repeat>
        <repeat times="x"><line>a</line><line>b</line></repeat>
        <repeat><line>c</line></repeat>
        <unknown>ignored</unknown>
      </verse>
      <chorus><line>Hallelujah</line></chorus>
    </hymn>
  </hymns>
</hymnal>`

func mustParse(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return doc
}

func mustEntry(t *testing.T, doc *Document, id string) *Entry {
	t.Helper()
	e, ok := doc.Entry(id)
	if !ok {
		t.Fatalf("Entry(%q) not found", id)
	}
	return e
}

func TestParse_RootAndTables(t *testing.T) {
	doc := mustParse(t, sampleXML)

	if doc.ID != "hb" || doc.Title != "Hymn Book" || doc.Year != "1986" ||
		doc.Language != "fi" || doc.Publisher != "Church Press" || doc.Subtitle != "" {
		t.Fatalf("root attributes unexpected: %+v", doc)
	}

	// duplicate id keeps its first position, last name wins
	want := []Facet{{ID: "A", Name: "Amazing Grace"}, {ID: "B", Name: "Praise"}}
	if got := doc.Topics.Facets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Topics.Facets() = %+v; want %+v", got, want)
	}
	if name, ok := doc.Contributors.Name("c2"); !ok || name != "" {
		t.Fatalf("Contributors.Name(c2) = %q, %v; want \"\", true", name, ok)
	}

	if len(doc.Indexes) != 2 {
		t.Fatalf("Indexes len = %d; want 2", len(doc.Indexes))
	}
	if !doc.HasDefaultSort(FacetTopic) {
		t.Fatalf("HasDefaultSort(topic) = false; want true")
	}
	if doc.HasDefaultSort(FacetTune) {
		t.Fatalf("HasDefaultSort(tune) = true; want false")
	}
	if !doc.HasDefaultSort(FacetDay) {
		t.Fatalf("undeclared facets should keep table order")
	}
}

func TestParse_Entries(t *testing.T) {
	doc := mustParse(t, sampleXML)
	if got := doc.EntryIDs(); doc.Len() != 2 || !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("EntryIDs() = %v (len %d); want [1 2]", got, doc.Len())
	}

	e1 := mustEntry(t, doc, "1")
	if e1.Title != "Amazing Grace" || e1.Language != "en" || e1.Deleted || e1.Origin != "o1" {
		t.Fatalf("entry 1 unexpected: %+v", e1)
	}
	if !reflect.DeepEqual(e1.Topics, []string{"A", "Z", "A"}) {
		t.Fatalf("Topics = %v", e1.Topics)
	}
	if got := e1.FacetRefs(FacetTopic); !reflect.DeepEqual(got, []string{"A", "Z"}) {
		t.Fatalf("FacetRefs(topic) = %v; want [A Z]", got)
	}
	wantContrib := []ContributorRef{
		{Type: Author, ID: "c1", Year: "1779"},
		{Type: Translator, Year: "1990", Note: "anon."},
	}
	if !reflect.DeepEqual(e1.Contributors, wantContrib) {
		t.Fatalf("Contributors = %+v; want %+v", e1.Contributors, wantContrib)
	}
	if got := e1.FacetRefs(FacetAuthor); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Fatalf("FacetRefs(author) = %v; want [c1]", got)
	}
	if got := e1.FacetRefs(FacetTranslator); len(got) != 0 {
		t.Fatalf("FacetRefs(translator) = %v; want empty", got)
	}

	if len(e1.Verses) != 2 || !e1.Verses[1].Deleted {
		t.Fatalf("verses unexpected: %+v", e1.Verses)
	}
	// lines are verbatim
	if got := e1.Verses[1].Lines; !reflect.DeepEqual(got, []LineNode{Line{Text: "  How sweet the sound "}}) {
		t.Fatalf("verse 2 lines = %#v", got)
	}
	if e1.Refrain == nil || e1.Chorus != nil || e1.HasRepeat() {
		t.Fatalf("entry 1 refrain/chorus/repeat unexpected")
	}

	e2 := mustEntry(t, doc, "2")
	if e2.Title != "" {
		t.Fatalf("entry 2 title = %q; want empty", e2.Title)
	}
	if e2.Language != "fi" {
		t.Fatalf("entry 2 language = %q; want inherited fi", e2.Language)
	}
	if !e2.Deleted || e2.Restricted {
		t.Fatalf("entry 2 flags: deleted=%v restricted=%v; only 'yes' is truthy", e2.Deleted, e2.Restricted)
	}
	if !e2.HasRepeat() {
		t.Fatalf("entry 2 HasRepeat() = false")
	}

	lines := e2.Verses[0].Lines
	if len(lines) != 4 {
		t.Fatalf("entry 2 verse lines = %d; want 4", len(lines))
	}
	if lines[0] != (Line{Text: "Sing"}) {
		t.Fatalf("lines[0] = %#v", lines[0])
	}
	wantRepeat := RepeatLines{Times: 3, Before: "Oh,", After: "!", Lines: []Line{{Text: "Glory"}}}
	if !reflect.DeepEqual(lines[1], wantRepeat) {
		t.Fatalf("lines[1] = %#v; want %#v", lines[1], wantRepeat)
	}
	if lines[2].(RepeatLines).Times != 2 || lines[3].(RepeatLines).Times != 2 {
		t.Fatalf("invalid or missing times should default to 2")
	}
}

func TestParse_InlineMarkupKeepsText(t *testing.T) {
	doc := mustParse(t, `<hymnal id="x" title="y"><hymns>
<hymn id="1"><title>Hark <i>the</i> Herald</title><verse>
<line>Hark <em>the</em> herald</line>
<repeat times="2"><line>Glory <b>to</b> <i>the</i> King</line></repeat>
</verse></hymn></hymns></hymnal>`)
	e := mustEntry(t, doc, "1")

	if e.Title != "Hark the Herald" {
		t.Fatalf("Title = %q; want %q", e.Title, "Hark the Herald")
	}
	lines := e.Verses[0].Lines
	if len(lines) != 2 {
		t.Fatalf("lines = %#v; want 2 nodes", lines)
	}
	if lines[0] != (Line{Text: "Hark the herald"}) {
		t.Fatalf("lines[0] = %#v; want %q", lines[0], "Hark the herald")
	}
	r := lines[1].(RepeatLines)
	if len(r.Lines) != 1 || r.Lines[0].Text != "Glory to the King" {
		t.Fatalf("repeat lines = %#v; want %q", r.Lines, "Glory to the King")
	}
}

func TestParse_LegacyEncoding(t *testing.T) {
	raw := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<hymnal id=\"x\" title=\"Caf\xe9\"><hymns><hymn id=\"1\"><verse><line>No\xebl</line></verse></hymn></hymns></hymnal>")
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Title != "Café" {
		t.Fatalf("Title = %q; want %q", doc.Title, "Café")
	}
	if got := mustEntry(t, doc, "1").Verses[0].Lines[0]; got != (Line{Text: "Noël"}) {
		t.Fatalf("line = %#v; want %q", got, "Noël")
	}

	_, err = Parse([]byte(`<?xml version="1.0" encoding="no-such-charset"?><hymnal id="x" title="y"/>`))
	if !IsParseError(err) {
		t.Fatalf("unknown charset: got %v; want ParseError", err)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":             "   ",
		"malformed":         `<hymnal id="x" title="y"><hymns>`,
		"truncated trailer": `<hymnal id="x" title="y"></hymnal><oops`,
		"second root":       `<hymnal id="x" title="y"/><hymnal id="z" title="w"/>`,
		"trailing text":     `<hymnal id="x" title="y"/> stray`,
		"stray end tag":     `<hymnal id="x" title="y"/></hymns>`,
		"wrong root":        `<songbook id="x" title="y"/>`,
		"missing id":        `<hymnal title="y"/>`,
		"missing title":     `<hymnal id="x"/>`,
		"blank title":       `<hymnal id="x" title="  "/>`,
		"hymn no id":        `<hymnal id="x" title="y"><hymns><hymn/></hymns></hymnal>`,
		"duplicate hymn":    `<hymnal id="x" title="y"><hymns><hymn id="1"/><hymn id="1"/></hymns></hymnal>`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(raw))
			if err == nil {
				t.Fatalf("Parse(%q) = nil error; want ParseError", raw)
			}
			if doc != nil {
				t.Fatalf("Parse(%q) returned a document alongside %v", raw, err)
			}
			if !IsParseError(err) {
				t.Fatalf("got %T; want *ParseError", err)
			}
		})
	}
}

func TestParse_TrailingMiscAllowed(t *testing.T) {
	doc := mustParse(t, "<hymnal id=\"x\" title=\"y\"/>\n<!-- end -->\n<?pi data?>\n  ")
	if doc.ID != "x" {
		t.Fatalf("ID = %q; want x", doc.ID)
	}
}

func TestParse_MinimalDocumentDegrades(t *testing.T) {
	doc := mustParse(t, `<hymnal id="x" title="y"><hymns><hymn id="7"><verse/></hymn></hymns></hymnal>`)
	if doc.Year != "" || doc.Language != "" {
		t.Fatalf("optional root attributes should be empty: %+v", doc)
	}
	e := mustEntry(t, doc, "7")
	if e.Language != "" {
		t.Fatalf("Language = %q; want empty", e.Language)
	}
	if len(e.Verses) != 1 || len(e.Verses[0].Lines) != 0 {
		t.Fatalf("verses = %+v; want one empty verse", e.Verses)
	}
}

func TestLineNodeJSON(t *testing.T) {
	v := Verse{Lines: []LineNode{
		Line{Text: "a"},
		RepeatLines{Times: 2, Lines: []Line{{Text: "b"}}},
	}}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"lines":[{"kind":"line","text":"a"},{"kind":"repeat","times":2,"lines":["b"]}]}`
	if string(b) != want {
		t.Fatalf("Marshal = %s; want %s", b, want)
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint([]byte(sampleXML))
	if len(a) != 64 {
		t.Fatalf("Fingerprint len = %d; want 64", len(a))
	}
	if a != Fingerprint([]byte(sampleXML)) {
		t.Fatalf("Fingerprint not stable")
	}
	if a == Fingerprint([]byte(sampleXML+" ")) {
		t.Fatalf("Fingerprint ignored a byte change")
	}
}

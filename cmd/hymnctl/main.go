// Command hymnctl inspects a hymnal XML file from the command line: it prints
// the parsed document, search results or a categorized view as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tbourn/go-hymnal-backend/internal/category"
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
	"github.com/tbourn/go-hymnal-backend/internal/search"
	"github.com/tbourn/go-hymnal-backend/internal/sysutil"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("hymnctl")
	}
}

func newApp(out io.Writer) *cli.App {
	fileFlag := &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to the hymnal XML file",
		Required: true,
		EnvVars:  []string{"HYMNAL_FILE"},
	}
	maxBytesFlag := &cli.Int64Flag{
		Name:  "max-bytes",
		Usage: "Refuse files larger than this many bytes",
		Value: 16 << 20,
	}
	queryFlag := &cli.StringFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   `Query, e.g. "grace #lang=en"`,
	}

	return &cli.App{
		Name:      "hymnctl",
		Usage:     "Inspect hymnal documents",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.BoolFlag{
				Name:    "pretty",
				Usage:   "Indent JSON output",
				EnvVars: []string{"HYMNCTL_PRETTY"},
			},
		},
		Before: func(c *cli.Context) error {
			sysutil.SetupLogger(os.Stderr, c.String("log-level"), true, "hymnctl")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "parse",
				Usage:  "Parse a document and print its metadata and entries",
				Flags:  []cli.Flag{fileFlag, maxBytesFlag},
				Action: parseCommand,
			},
			{
				Name:  "search",
				Usage: "Search a document",
				Flags: []cli.Flag{
					fileFlag, maxBytesFlag, queryFlag,
					&cli.BoolFlag{Name: "skip-deleted-verses", Usage: "Do not index verses marked deleted"},
					&cli.BoolFlag{Name: "skip-deleted-entries", Usage: "Do not index or list entries marked deleted"},
				},
				Action: searchCommand,
			},
			{
				Name:  "categories",
				Usage: "Group entries by a facet",
				Flags: []cli.Flag{
					fileFlag, maxBytesFlag, queryFlag,
					&cli.StringFlag{
						Name:  "facet",
						Usage: "Facet type (topic, tune, day, origin, language, author, translator, contributor)",
						Value: string(hymnal.FacetTopic),
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort mode (default, name, count)",
						Value: string(category.SortDefault),
					},
				},
				Action: categoriesCommand,
			},
		},
	}
}

func load(c *cli.Context) (*hymnal.Document, error) {
	path := c.String("file")
	raw, err := hymnal.ReadSourceFile(path, c.Int64("max-bytes"))
	if err != nil {
		return nil, err
	}
	doc, err := hymnal.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("document_id", doc.ID).Int("entries", doc.Len()).Msg("parsed")
	return doc, nil
}

func emit(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

type parseOutput struct {
	*hymnal.Document
	Fingerprint string          `json:"fingerprint"`
	Entries     []*hymnal.Entry `json:"entries"`
}

func parseCommand(c *cli.Context) error {
	raw, err := hymnal.ReadSourceFile(c.String("file"), c.Int64("max-bytes"))
	if err != nil {
		return err
	}
	doc, err := hymnal.Parse(raw)
	if err != nil {
		return err
	}
	return emit(c, parseOutput{Document: doc, Fingerprint: hymnal.Fingerprint(raw), Entries: doc.Entries()})
}

func searchCommand(c *cli.Context) error {
	doc, err := load(c)
	if err != nil {
		return err
	}
	idx := search.Build(doc,
		search.WithSkipDeletedVerses(c.Bool("skip-deleted-verses")),
		search.WithSkipDeletedEntries(c.Bool("skip-deleted-entries")),
	)
	res := search.Search(idx, doc, c.String("query"))
	if res == nil {
		res = []search.Result{}
	}
	return emit(c, res)
}

func categoriesCommand(c *cli.Context) error {
	ft, ok := hymnal.ParseFacetType(c.String("facet"))
	if !ok {
		return fmt.Errorf("unknown facet %q", c.String("facet"))
	}
	mode, err := category.ParseSortMode(c.String("sort"))
	if err != nil {
		return err
	}
	doc, err := load(c)
	if err != nil {
		return err
	}

	var cs []category.Category
	if q := c.String("query"); q != "" {
		ids := search.EntryIDs(search.Search(search.Build(doc), doc, q))
		cs = category.CategorizeIDs(doc, ft, ids, mode)
	} else {
		cs = category.Categorize(doc, ft, doc.Entries(), mode)
	}
	if cs == nil {
		cs = []category.Category{}
	}
	return emit(c, cs)
}

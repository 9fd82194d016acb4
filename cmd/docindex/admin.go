package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poiesic/docindex"
	"github.com/poiesic/docindex/reindex"
	"github.com/poiesic/docindex/search"
	"github.com/urfave/cli/v2"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find the chunks most similar to a query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"k"},
				Usage:   "Number of results",
				Value:   5,
			},
			&cli.StringSliceFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Additional query; repeat to search several at once",
			},
		},
		Action: func(c *cli.Context) error {
			queries := c.StringSlice("query")
			if query := strings.Join(c.Args().Slice(), " "); strings.TrimSpace(query) != "" {
				queries = append([]string{query}, queries...)
			}
			if len(queries) == 0 {
				return fmt.Errorf("search requires a query")
			}
			cfg, err := configFrom(c)
			if err != nil {
				return err
			}

			sys, err := docindex.Open(c.Context, cfg)
			if err != nil {
				return err
			}
			defer sys.Close()

			searcher, err := sys.NewSearcher(c.Context)
			if err != nil {
				return err
			}
			if len(queries) == 1 {
				results, err := searcher.Search(c.Context, queries[0], c.Int("limit"))
				if err != nil {
					return err
				}
				printResults(c.App.Writer, results)
				return nil
			}

			all, err := searcher.SearchMany(c.Context, queries, c.Int("limit"))
			if err != nil {
				return err
			}
			for i, results := range all {
				fmt.Fprintf(c.App.Writer, "== %s\n", queries[i])
				printResults(c.App.Writer, results)
			}
			return nil
		},
	}
}

func printResults(w io.Writer, results []*search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no matches")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s (score %.3f)\n", i+1, r.Record.ChunkID, r.Score)
		fmt.Fprintf(w, "   %s\n", preview(r.Record.Text, 160))
	}
}

func preview(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func reindexCommand() *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "Republish an ingestion event for every stored document",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "report-interval",
				Usage: "Log progress every N documents",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Publish attempts per document",
				Value: 3,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Base delay for exponential backoff",
				Value: 1 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := configFrom(c)
			if err != nil {
				return err
			}

			sys, err := docindex.Open(c.Context, cfg)
			if err != nil {
				return err
			}
			defer sys.Close()

			reindexer, err := sys.NewReindexer(&reindex.Config{
				ReportInterval: c.Int("report-interval"),
				MaxRetries:     c.Int("max-retries"),
				RetryDelay:     c.Duration("retry-delay"),
			})
			if err != nil {
				return err
			}
			result, err := reindexer.Run(c.Context)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "published %d of %d documents\n", result.Published, result.Total)
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d documents failed: %s", len(result.Failed), strings.Join(result.Failed, ", "))
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the last ingestion outcome for a document",
		ArgsUsage: "<document-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("status requires exactly one document id")
			}
			cfg, err := configFrom(c)
			if err != nil {
				return err
			}

			sys, err := docindex.Open(c.Context, cfg)
			if err != nil {
				return err
			}
			defer sys.Close()

			id := c.Args().First()
			repo, err := sys.StatusRepository()
			if err != nil {
				return err
			}
			st, err := repo.LoadStatus(c.Context, id)
			if err != nil {
				return err
			}
			index, err := sys.Index(c.Context)
			if err != nil {
				return err
			}
			stored, err := index.CountByDocument(c.Context, id)
			if err != nil {
				return err
			}

			if st == nil {
				fmt.Fprintf(c.App.Writer, "%s: no ingestion recorded (%d chunks in index)\n", id, stored)
				return nil
			}
			fmt.Fprintf(c.App.Writer, "%s: %s (chunks %d, indexed %d, skipped %d, %d in index) at %s\n",
				st.DocumentID, st.State, st.Chunks, st.Indexed, st.Skipped, stored,
				st.UpdatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

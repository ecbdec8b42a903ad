package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/index"
	"github.com/poiesic/pathway/recommend"
	"github.com/urfave/cli/v2"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:   "import",
		Usage:  "Import catalog programs from a JSON or CSV file",
		Action: importAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "catalog",
				Usage:    "Path to a .json array or .csv file of programs",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "Replace the stored catalog instead of merging into it",
			},
			&cli.BoolFlag{
				Name:  "reindex",
				Usage: "Rebuild the index after importing",
			},
		},
	}
}

func importAction(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)

	items, err := readCatalog(c.String("catalog"))
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	if c.Bool("replace") {
		err = engine.Replace(ctx, items)
	} else {
		err = engine.Import(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "Imported %d programs into %s\n", len(items), cfg.Database.Path)

	if c.Bool("reindex") {
		manifest, err := engine.Reindex(ctx, index.WithProgress(c.App.ErrWriter))
		if err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}
		printManifest(c.App.ErrWriter, manifest)
	}
	return nil
}

func reindexCommand() *cli.Command {
	return &cli.Command{
		Name:   "reindex",
		Usage:  "Embed the stored catalog and record an index manifest",
		Action: reindexAction,
	}
}

func reindexAction(c *cli.Context) error {
	cfg := configFrom(c)
	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", engine.Model())
	fmt.Fprintln(c.App.ErrWriter)

	manifest, err := engine.Reindex(c.Context, index.WithProgress(c.App.ErrWriter))
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	printManifest(c.App.ErrWriter, manifest)
	return nil
}

func printManifest(w io.Writer, m *core.IndexManifest) {
	fmt.Fprintf(w, "Indexed %d programs (%d dimensions, fingerprint %016x)\n", m.Items, m.Dimensions, uint64(m.Fingerprint))
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:   "recommend",
		Usage:  "Recommend programs for a student profile",
		Action: recommendAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "profile",
				Aliases:  []string{"p"},
				Usage:    "Path to a profile JSON file, or - for stdin",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "top-n",
				Usage: "Number of programs to return",
			},
			&cli.Float64Flag{
				Name:  "alpha",
				Usage: "Semantic share of the text score",
			},
			&cli.Float64Flag{
				Name:  "beta",
				Usage: "Grade match share of the final score",
			},
			&cli.Float64Flag{
				Name:  "gamma",
				Usage: "Weight of automation risk and study duration",
			},
			&cli.BoolFlag{
				Name:  "explain",
				Usage: "Print every score component",
			},
		},
	}
}

// requestOptions applies the configured defaults, then any flags the user set.
func requestOptions(c *cli.Context, defaults recommend.Params) []recommend.RequestOption {
	opts := []recommend.RequestOption{recommend.WithParams(defaults)}
	if c.IsSet("top-n") {
		opts = append(opts, recommend.WithTopN(c.Int("top-n")))
	}
	if c.IsSet("alpha") {
		opts = append(opts, recommend.WithAlpha(c.Float64("alpha")))
	}
	if c.IsSet("beta") {
		opts = append(opts, recommend.WithBeta(c.Float64("beta")))
	}
	if c.IsSet("gamma") {
		opts = append(opts, recommend.WithGamma(c.Float64("gamma")))
	}
	return opts
}

// explanation is one ranked program with its score components.
type explanation struct {
	Rank int    `json:"rank"`
	ID   string `json:"id"`
	Name string `json:"name"`
	core.ScoredCandidate
}

func explain(candidates []core.ScoredCandidate) []explanation {
	out := make([]explanation, len(candidates))
	for i, c := range candidates {
		out[i] = explanation{
			Rank:            i + 1,
			ID:              c.Item.ID,
			Name:            c.Item.Name,
			ScoredCandidate: c,
		}
	}
	return out
}

func recommendAction(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)

	profile, err := readProfile(c.String("profile"), os.Stdin)
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	// Catalog vectors come from the embedding cache, so this only embeds
	// programs imported since the last reindex.
	if _, err := engine.Reindex(ctx); err != nil {
		return fmt.Errorf("loading index failed: %w", err)
	}

	opts := requestOptions(c, cfg.Params())
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")

	if c.Bool("explain") {
		candidates, err := engine.Score(ctx, profile, opts...)
		if err != nil {
			return err
		}
		return enc.Encode(explain(candidates))
	}

	recs, err := engine.Recommend(ctx, profile, opts...)
	if err != nil {
		return err
	}
	return enc.Encode(recs)
}

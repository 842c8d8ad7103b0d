// Command cide is a development harness over the cide library packages:
// ingest a codebase, render its directory tree, retrieve transitive
// context around an identifier, and run lexical search over it.
// Grounded on the teacher's cmd/lci/main.go urfave/cli/v2 command
// structure and its loadConfigWithOverrides pattern.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/cide/internal/codemodel"
	cideconfig "github.com/standardbeagle/cide/internal/config"
	ctxretrieval "github.com/standardbeagle/cide/internal/context"
	"github.com/standardbeagle/cide/internal/interfaces"
	"github.com/standardbeagle/cide/internal/orchestrator"
	"github.com/standardbeagle/cide/internal/parser"
	"github.com/standardbeagle/cide/internal/persistence"
	"github.com/standardbeagle/cide/internal/search"
	"github.com/standardbeagle/cide/pkg/pathutil"
)

// loadConfigWithOverrides loads the project config from --root (or the
// cwd) and applies any CLI flag overrides on top of it.
func loadConfigWithOverrides(c *cli.Context) (*cideconfig.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	cfg, err := cideconfig.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", absRoot, err)
	}
	cfg.Root = absRoot

	if storage := c.String("storage"); storage != "" {
		cfg.StoragePath = storage
	}
	return cfg, nil
}

func ingestBase(cfg *cideconfig.Config) (*codemodel.CodeBase, error) {
	fs := interfaces.OSFileSystem{}
	registry := parser.NewRegistry()
	opts := orchestrator.Options{
		Root:               cfg.Root,
		ExtraExcludes:      cfg.ExtraExcludes,
		RespectGitignore:   cfg.RespectGitignore,
		MaxConcurrentTasks: cfg.MaxConcurrentTasks,
		BatchSize:          cfg.BatchSize,
	}
	return orchestrator.Ingest(context.Background(), fs, registry, opts)
}

func ingestCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	base, err := ingestBase(cfg)
	if err != nil {
		return err
	}
	cwd, _ := os.Getwd()
	fmt.Printf("ingested %d files under %s\n", len(base.Root), pathutil.ToRelative(cfg.Root, cwd))
	return persistence.Serialize(base, cfg.StoragePath, cfg.IncludeCachedIDs)
}

func treeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	base, err := ingestBase(cfg)
	if err != nil {
		return err
	}
	idx := codemodel.NewIndex(base)
	fmt.Print(idx.GetTreeView(codemodel.TreeViewOptions{
		IncludeModules: c.Bool("modules"),
		IncludeTypes:   c.Bool("types"),
	}))
	return nil
}

func contextCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	base, err := ingestBase(cfg)
	if err != nil {
		return err
	}
	idx := codemodel.NewIndex(base)
	ids := c.StringSlice("id")
	if len(ids) == 0 {
		return fmt.Errorf("at least one --id is required")
	}
	result := ctxretrieval.Get(idx, ids, c.Int("depth"), nil)
	fmt.Print(result.AsString())
	return nil
}

func searchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	base, err := ingestBase(cfg)
	if err != nil {
		return err
	}
	idx := codemodel.NewIndex(base)

	docs := make(map[string]string)
	for _, id := range idx.AllIDs() {
		el, ok := idx.Get(id)
		if !ok {
			continue
		}
		docs[id] = el.ElementRaw()
	}

	sidx := search.NewIndex()
	if err := sidx.Build(context.Background(), docs); err != nil {
		return err
	}

	query := c.Args().First()
	if query == "" {
		return fmt.Errorf("a search query argument is required")
	}

	var results []search.Result
	if c.Bool("smart") {
		results, err = sidx.SmartSearch(context.Background(), query, search.SmartSearchOptions{TopK: c.Int("top")})
	} else {
		results, err = sidx.Query(context.Background(), query, c.Int("top"))
	}
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-40s %.4f\n", r.Key, r.Score)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "cide",
		Usage: "index, retrieve context from, and search a codebase",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root directory", Value: "."},
			&cli.StringFlag{Name: "storage", Aliases: []string{"s"}, Usage: "serialized codebase storage path (overrides config)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "parse and resolve the project, then serialize the codebase",
				Action: ingestCommand,
			},
			{
				Name:  "tree",
				Usage: "render the directory tree",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "modules", Usage: "include top-level element names"},
					&cli.BoolFlag{Name: "types", Usage: "prefix elements with their type code"},
				},
				Action: treeCommand,
			},
			{
				Name:  "context",
				Usage: "retrieve transitive context around one or more identifiers",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "id", Usage: "identifier to retrieve context for (repeatable)"},
					&cli.IntFlag{Name: "depth", Usage: "reference-walk depth", Value: 1},
				},
				Action: contextCommand,
			},
			{
				Name:  "search",
				Usage: "run a lexical (optionally smart) search query over the project",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top", Usage: "number of results to return", Value: 10},
					&cli.BoolFlag{Name: "smart", Usage: "use the smart-search query-variation/fuzzy pipeline"},
				},
				Action: searchCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

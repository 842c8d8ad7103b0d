// Package orchestrator fans file-discovery output out to per-language
// parsers under a bounded concurrent task pool, then runs the dependency
// resolver over the accumulated codebase, grounded on the teacher's lazy
// per-language parser initialization and bounded-pool batching idiom in
// internal/parser/parser.go.
package orchestrator

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/standardbeagle/cide/internal/codemodel"
	"github.com/standardbeagle/cide/internal/discovery"
	cideerrors "github.com/standardbeagle/cide/internal/errors"
	"github.com/standardbeagle/cide/internal/interfaces"
	"github.com/standardbeagle/cide/internal/parser"
	"github.com/standardbeagle/cide/internal/persistence"
	"github.com/standardbeagle/cide/internal/resolver"
)

const (
	// DefaultMaxConcurrentTasks caps the number of files open for parsing
	// at once, mirroring original_source's DEFAULT_MAX_CONCURRENT_TASKS.
	DefaultMaxConcurrentTasks = 50
	// DefaultBatchSize governs how many parse results are drained per
	// round, mirroring original_source's DEFAULT_BATCH_SIZE.
	DefaultBatchSize = 128
)

// Options configures a single Ingest call.
type Options struct {
	Root                string
	Languages           []discovery.Language
	ExtraExcludes       []string
	RespectGitignore    bool
	MaxConcurrentTasks  int
	BatchSize           int
}

func (o Options) normalized() Options {
	if o.MaxConcurrentTasks <= 0 {
		o.MaxConcurrentTasks = DefaultMaxConcurrentTasks
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if !o.RespectGitignore {
		o.RespectGitignore = true
	}
	return o
}

// parseResult pairs a parsed file with its failure, matching the
// "(CodeFile, error) pairs" per-file failure capture in spec.md §4.3
// rather than aborting the whole run on one bad file.
type parseResult struct {
	file *codemodel.CodeFile
	err  error
}

// Ingest walks root, parses every discovered file under a bounded
// concurrent pool, and returns a fully dependency-resolved CodeBase.
// Per-file parse failures are logged and skipped; the pipeline always
// completes with whatever files succeeded.
func Ingest(ctx context.Context, fs interfaces.FileSystem, registry *parser.Registry, opts Options) (*codemodel.CodeBase, error) {
	opts = opts.normalized()

	files, err := fs.Walk(discovery.Options{
		Root:             opts.Root,
		IncludeLangs:     opts.Languages,
		ExtraExcludes:    opts.ExtraExcludes,
		RespectGitignore: opts.RespectGitignore,
	})
	if err != nil {
		return nil, cideerrors.IO("walk", err).WithPath(opts.Root)
	}

	base := &codemodel.CodeBase{}
	if len(files) == 0 {
		return base, nil
	}

	sem := semaphore.NewWeighted(int64(opts.MaxConcurrentTasks))
	results := make(chan parseResult, opts.BatchSize)

	go func() {
		var wg sync.WaitGroup
		// results is closed only after every in-flight parse has sent.
		defer close(results)
		defer wg.Wait()
		for _, f := range files {
			f := f
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- parseResult{err: err}
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				results <- parseOne(fs, registry, f, opts.Root)
			}()
		}
	}()

	for r := range drainInBatches(results, opts.BatchSize) {
		if r.err != nil {
			log.Printf("cide: skipping file: %v", r.err)
			continue
		}
		if r.file != nil {
			base.Root = append(base.Root, r.file)
		}
	}

	resolver.ResolveIntraFile(base)
	idx := codemodel.NewIndex(base)
	resolver.ResolveInterFiles(base, idx)

	return base, nil
}

func parseOne(fs interfaces.FileSystem, registry *parser.Registry, f discovery.File, root string) parseResult {
	p, ok := registry.Get(f.Language)
	if !ok {
		return parseResult{}
	}
	text, err := fs.ReadFile(f.AbsPath)
	if err != nil {
		return parseResult{err: cideerrors.IO("read_file", err).WithPath(f.Path)}
	}
	cf, err := p.ParseFile(f.Path, text)
	if err != nil {
		return parseResult{err: cideerrors.Parse("parse_file", err).WithPath(f.Path)}
	}
	cf.ContentHash = persistence.Fingerprint(text)
	return parseResult{file: cf}
}

// drainInBatches forwards results as they arrive; batching here governs
// back-pressure between the fan-out goroutine and the accumulating
// caller, per spec.md §5's batch_size back-pressure policy, without
// forcing the caller to block until a full batch_size worth of results
// exists (a partial final batch still drains promptly).
func drainInBatches(in <-chan parseResult, batchSize int) <-chan parseResult {
	out := make(chan parseResult, batchSize)
	go func() {
		defer close(out)
		for r := range in {
			out <- r
		}
	}()
	return out
}

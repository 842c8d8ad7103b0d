// Package search implements a BM25+TF-IDF hybrid lexical index over a
// map of document key to content, grounded on the teacher's Engine/
// search_coordinator split: a scoring core (this file) plus a
// preprocessing/fusion wrapper (smart_search.go) that layers stemming and
// fuzzy boosting on top, the way engine.go layers semantic scoring on top
// of a plain grep match.
package search

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	cideerrors "github.com/standardbeagle/cide/internal/errors"
)

const (
	// k1 and b are BM25's standard tuning constants.
	k1 = 1.5
	b  = 0.75

	// parallelScoreThreshold is the candidate-count above which query
	// scoring is chunked across goroutines instead of run sequentially.
	parallelScoreThreshold = 20
)

var tokenRe = regexp.MustCompile(`\b\w+\b`)

// tokenize case-folds and splits s into \b\w+\b tokens.
func tokenize(s string) []string {
	return tokenRe.FindAllString(strings.ToLower(s), -1)
}

// Result is one scored document returned from a query.
type Result struct {
	Key   string
	Score float64
}

// docStats holds everything the index tracks per document. content is
// kept verbatim (not just tokenized) so ExactSubstring can match
// punctuation and whitespace a token-boundary tokenizer would discard.
type docStats struct {
	content    string
	tokens     []string
	length     int
	termCounts map[string]int
}

// Index is a BM25+TF-IDF hybrid lexical index. All mutating operations
// serialize on mu; queries take a read lock, admitting unlimited
// concurrent readers per the concurrency model.
type Index struct {
	mu sync.RWMutex

	docs          map[string]*docStats
	termDocFreq   map[string]int
	invertedIndex map[string]map[string]bool
	idf           map[string]float64
	avgDocLength  float64

	built bool
}

// NewIndex returns an empty, unbuilt Index.
func NewIndex() *Index {
	return &Index{
		docs:          make(map[string]*docStats),
		termDocFreq:   make(map[string]int),
		invertedIndex: make(map[string]map[string]bool),
		idf:           make(map[string]float64),
	}
}

// Build tokenizes every document in docs, partitioning the work across
// goroutines via golang.org/x/sync/errgroup, then merges per-chunk output
// into the shared structures and computes IDF/avg-doc-length.
func (idx *Index) Build(ctx context.Context, docs map[string]string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	workers := chunkCount(len(keys))
	chunks := chunkKeys(keys, workers)

	type chunkResult struct {
		stats  map[string]*docStats
		dfDiff map[string]int
	}
	results := make([]chunkResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			stats := make(map[string]*docStats, len(chunk))
			df := make(map[string]int)
			seen := make(map[string]bool)
			for _, key := range chunk {
				tokens := tokenize(docs[key])
				counts := make(map[string]int, len(tokens))
				for _, t := range tokens {
					counts[t]++
				}
				stats[key] = &docStats{content: docs[key], tokens: tokens, length: len(tokens), termCounts: counts}
				for t := range counts {
					if !seen[t] {
						seen[t] = true
					}
					df[t]++
				}
			}
			results[i] = chunkResult{stats: stats, dfDiff: df}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cideerrors.IndexWrite("build", err)
	}

	idx.docs = make(map[string]*docStats, len(keys))
	idx.termDocFreq = make(map[string]int)
	idx.invertedIndex = make(map[string]map[string]bool)

	var totalLength int
	for _, r := range results {
		for key, st := range r.stats {
			idx.docs[key] = st
			totalLength += st.length
			for t := range st.termCounts {
				if idx.invertedIndex[t] == nil {
					idx.invertedIndex[t] = make(map[string]bool)
				}
				idx.invertedIndex[t][key] = true
			}
		}
	}
	for t, set := range idx.invertedIndex {
		idx.termDocFreq[t] = len(set)
	}

	idx.recomputeIDFLocked()
	if len(idx.docs) > 0 {
		idx.avgDocLength = float64(totalLength) / float64(len(idx.docs))
	}
	idx.built = true
	return nil
}

func chunkCount(n int) int {
	if n <= 1 {
		return 1
	}
	workers := n / 50
	if workers < 1 {
		workers = 1
	}
	if workers > 8 {
		workers = 8
	}
	return workers
}

func chunkKeys(keys []string, workers int) [][]string {
	if workers <= 1 || len(keys) == 0 {
		return [][]string{keys}
	}
	size := (len(keys) + workers - 1) / workers
	var chunks [][]string
	for i := 0; i < len(keys); i += size {
		end := i + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[i:end])
	}
	return chunks
}

// recomputeIDFLocked rebuilds idf from the current term_doc_freq and
// document count. Callers must hold mu.
func (idx *Index) recomputeIDFLocked() {
	n := float64(len(idx.docs))
	idx.idf = make(map[string]float64, len(idx.termDocFreq))
	if n == 0 {
		return
	}
	for t, df := range idx.termDocFreq {
		if df == 0 {
			continue
		}
		idx.idf[t] = math.Log(n / float64(df))
	}
}

// IncrementalRebuild recomputes every IDF from the current inverted index
// sizes, correcting the drift update_document's amortized bookkeeping can
// introduce over many mutations.
func (idx *Index) IncrementalRebuild() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for t, set := range idx.invertedIndex {
		idx.termDocFreq[t] = len(set)
	}
	idx.recomputeIDFLocked()
}

// UpdateDocument inserts or replaces the document at key, purging any
// prior contribution first.
func (idx *Index) UpdateDocument(key, content string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(key)

	tokens := tokenize(content)
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	idx.docs[key] = &docStats{content: content, tokens: tokens, length: len(tokens), termCounts: counts}

	for t := range counts {
		if idx.invertedIndex[t] == nil {
			idx.invertedIndex[t] = make(map[string]bool)
		}
		idx.invertedIndex[t][key] = true
		idx.termDocFreq[t] = len(idx.invertedIndex[t])
	}
	n := float64(len(idx.docs))
	for t := range counts {
		if n > 0 && idx.termDocFreq[t] > 0 {
			idx.idf[t] = math.Log(n / float64(idx.termDocFreq[t]))
		}
	}
	idx.recomputeAvgLocked()
	idx.built = true
}

// Remove purges a document's per-doc data and inverted-set membership.
func (idx *Index) Remove(key string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(key)
	idx.recomputeAvgLocked()
}

func (idx *Index) removeLocked(key string) {
	old, ok := idx.docs[key]
	if !ok {
		return
	}
	for t := range old.termCounts {
		if set, ok := idx.invertedIndex[t]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(idx.invertedIndex, t)
				delete(idx.termDocFreq, t)
			} else {
				idx.termDocFreq[t] = len(set)
			}
		}
	}
	delete(idx.docs, key)
}

func (idx *Index) recomputeAvgLocked() {
	if len(idx.docs) == 0 {
		idx.avgDocLength = 0
		return
	}
	var total int
	for _, st := range idx.docs {
		total += st.length
	}
	idx.avgDocLength = float64(total) / float64(len(idx.docs))
}

// Query tokenizes q, collects candidates via the inverted index, and
// returns the top-k BM25+TF-IDF blended results, descending by score.
// Once the candidate set exceeds parallelScoreThreshold, scoring runs in
// goroutines over chunkCount chunks (one per 50 candidates, at most 8), so
// fewer than 100 candidates still score in a single chunk.
func (idx *Index) Query(ctx context.Context, q string, topK int) ([]Result, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.built {
		return nil, cideerrors.IndexNotReady("query")
	}

	terms := tokenize(q)
	if len(terms) == 0 {
		return nil, nil
	}

	qtc := make(map[string]int, len(terms))
	for _, t := range terms {
		qtc[t]++
	}

	candidateSet := make(map[string]bool)
	for t := range qtc {
		for key := range idx.invertedIndex[t] {
			candidateSet[key] = true
		}
	}
	if len(candidateSet) == 0 {
		return nil, nil
	}
	candidates := make([]string, 0, len(candidateSet))
	for key := range candidateSet {
		candidates = append(candidates, key)
	}
	sort.Strings(candidates)

	var results []Result
	if len(candidates) > parallelScoreThreshold {
		results = idx.scoreParallel(ctx, candidates, qtc)
	} else {
		results = make([]Result, 0, len(candidates))
		for _, key := range candidates {
			results = append(results, Result{Key: key, Score: idx.scoreDoc(key, qtc)})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (idx *Index) scoreParallel(ctx context.Context, candidates []string, qtc map[string]int) []Result {
	workers := chunkCount(len(candidates))
	chunks := chunkKeys(candidates, workers)
	out := make([][]Result, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		i, chunk := i, chunk
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]Result, 0, len(chunk))
			for _, key := range chunk {
				local = append(local, Result{Key: key, Score: idx.scoreDoc(key, qtc)})
			}
			out[i] = local
		}()
	}
	wg.Wait()

	var results []Result
	for _, chunk := range out {
		results = append(results, chunk...)
	}
	return results
}

// scoreDoc blends BM25 and TF-IDF for one candidate document against the
// query term counts, per spec.md §4.7's 0.7/0.3 weighting. Caller must
// hold at least a read lock.
func (idx *Index) scoreDoc(key string, qtc map[string]int) float64 {
	st := idx.docs[key]
	if st == nil {
		return 0
	}
	var bm25, tfidf float64
	for t, qc := range qtc {
		idf, ok := idx.idf[t]
		if !ok {
			continue
		}
		tfRaw := float64(st.termCounts[t])
		if tfRaw == 0 {
			continue
		}
		denom := tfRaw + k1*(1-b+b*float64(st.length)/nonZero(idx.avgDocLength))
		bm25 += idf * (tfRaw * (k1 + 1)) / denom

		tf := tfRaw / float64(st.length)
		tfidf += tf * idf * float64(qc)
	}
	return 0.7*bm25 + 0.3*tfidf
}

func nonZero(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// ExactSubstring performs a case-folded substring count search across
// every document, scoring count/(len+1), returning the top-k results.
func (idx *Index) ExactSubstring(ctx context.Context, q string, topK int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	needle := strings.ToLower(q)
	if needle == "" {
		return nil
	}

	var results []Result
	for key, st := range idx.docs {
		haystack := strings.ToLower(st.content)
		count := strings.Count(haystack, needle)
		if count == 0 {
			continue
		}
		score := float64(count) / float64(st.length+1)
		results = append(results, Result{Key: key, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

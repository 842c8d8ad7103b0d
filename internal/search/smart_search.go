package search

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	edlib "github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// abbreviations expands a fixed table of common code shorthand so a query
// for "cfg" also tries "config", grounded on the teacher's semantic
// fuzzy-matching layer over plain grep results.
var abbreviations = map[string]string{
	"cfg":  "config",
	"ctx":  "context",
	"db":   "database",
	"env":  "environment",
	"err":  "error",
	"fn":   "function",
	"impl": "implementation",
	"init": "initialize",
	"mgr":  "manager",
	"msg":  "message",
	"pkg":  "package",
	"ref":  "reference",
	"req":  "request",
	"res":  "response",
	"svc":  "service",
	"util": "utility",
	"var":  "variable",
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "in": true,
	"and": true, "or": true, "is": true, "it": true, "for": true, "on": true,
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// splitCamelCase inserts a space at every lower-to-upper transition.
func splitCamelCase(s string) string {
	return camelBoundary.ReplaceAllString(s, "$1 $2")
}

// splitSnakeKebab replaces underscores and hyphens with spaces.
func splitSnakeKebab(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return s
}

// stemWords applies Porter2 stemming to every space-separated word in s.
func stemWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = porter2.Stem(w)
	}
	return strings.Join(words, " ")
}

// dropStopWords removes stop words from a space-separated string.
func dropStopWords(s string) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !stopWords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// expandAbbreviations appends the expansion of any recognized abbreviated
// word alongside the original, rather than replacing it.
func expandAbbreviations(s string) string {
	words := strings.Fields(s)
	var out []string
	for _, w := range words {
		out = append(out, w)
		if full, ok := abbreviations[strings.ToLower(w)]; ok {
			out = append(out, full)
		}
	}
	return strings.Join(out, " ")
}

// queryVariations produces the preprocessing variations smart search runs
// concurrently: the raw query, camelCase-split, snake/kebab-split,
// abbreviation-expanded, stemmed, and stop-word-dropped forms. Duplicate
// variations collapse to preserve weight semantics (1/(i+1) per distinct
// variation).
func queryVariations(raw string) []string {
	candidates := []string{
		raw,
		splitCamelCase(raw),
		splitSnakeKebab(raw),
		expandAbbreviations(raw),
		stemWords(raw),
		dropStopWords(raw),
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// SmartSearchOptions configures SmartSearch's fusion step.
type SmartSearchOptions struct {
	TopK          int
	ExactBoost    float64 // defaults to 1.0 when zero
	FuzzyBoost    float64 // defaults to 0.1 when zero; supplements, never replaces, BM25/TF-IDF
}

// SmartSearch runs the preprocessing variations concurrently, fuses their
// scores with 1/(i+1) positional weighting, adds an exact-substring boost,
// and nudges results whose key fuzzy-matches the raw query via
// Jaro-Winkler similarity. A blank query, or one made only of stop words,
// returns nil, per spec.md §4.7's "only stop words or no tokens" failure
// mode.
func (idx *Index) SmartSearch(ctx context.Context, rawQuery string, opts SmartSearchOptions) ([]Result, error) {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	if opts.ExactBoost == 0 {
		opts.ExactBoost = 1.0
	}
	if opts.FuzzyBoost == 0 {
		opts.FuzzyBoost = 0.1
	}

	if strings.TrimSpace(dropStopWords(rawQuery)) == "" {
		return nil, nil
	}
	variations := queryVariations(rawQuery)
	if len(variations) == 0 {
		return nil, nil
	}

	type variationResult struct {
		weight  float64
		results []Result
	}
	varResults := make([]variationResult, len(variations))

	var wg sync.WaitGroup
	for i, v := range variations {
		i, v := i, v
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := idx.Query(ctx, v, 0)
			if err != nil {
				return
			}
			varResults[i] = variationResult{weight: 1.0 / float64(i+1), results: res}
		}()
	}
	wg.Wait()

	fused := make(map[string]float64)
	appearances := make(map[string]int)
	for _, vr := range varResults {
		for _, r := range vr.results {
			fused[r.Key] += r.Score * vr.weight
			appearances[r.Key]++
		}
	}
	for key := range fused {
		if n := appearances[key]; n > 0 {
			fused[key] /= float64(n)
		}
	}

	for _, r := range idx.ExactSubstring(ctx, rawQuery, 0) {
		fused[r.Key] += r.Score * opts.ExactBoost
	}

	lowerQuery := strings.ToLower(rawQuery)
	for key, score := range fused {
		similarity, err := edlib.StringsSimilarity(strings.ToLower(key), lowerQuery, edlib.JaroWinkler)
		if err == nil && similarity > 0 {
			fused[key] = score + float64(similarity)*opts.FuzzyBoost
		}
	}

	out := make([]Result, 0, len(fused))
	for key, score := range fused {
		out = append(out, Result{Key: key, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > opts.TopK {
		out = out[:opts.TopK]
	}
	return out, nil
}

// Package index implements the read-only lexical document index.
// The index is built once from the corpus at process start and is
// immutable afterwards, so concurrent searches need no locking.
// Scoring is TF-IDF with cosine similarity; for a fixed corpus and
// query the ranking is fully deterministic.
package index

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// DefaultMinScore is the relevance threshold below which documents
// are dropped from search results.
const DefaultMinScore = 0.05

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokenize lowercases text and splits it on non-alphanumeric
// boundaries. The section selector uses the same rules so heading
// matching and index scoring agree on what a token is.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Options configures index construction.
type Options struct {
	// MinScore is the relevance threshold. Zero means DefaultMinScore.
	MinScore float64
}

type indexedDoc struct {
	id    string
	title string
	tags  map[string]struct{}
	vec   map[int]float64 // L2-normalised sparse TF-IDF
}

// Index is the immutable lexical search structure.
type Index struct {
	vocab    map[string]int
	idf      []float64
	docs     []indexedDoc // sorted by ascending document id
	minScore float64
}

// Build constructs an index over the given documents. Document text is
// the title plus every section heading and body.
func Build(docs []domain.Document, opts Options) *Index {
	minScore := opts.MinScore
	if minScore == 0 {
		minScore = DefaultMinScore
	}

	// Document frequencies over the whole corpus.
	texts := make([]string, len(docs))
	df := make(map[string]int)
	for i := range docs {
		texts[i] = documentText(&docs[i])
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(texts[i]) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable vocabulary ordering keeps vectors reproducible.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	ix := &Index{
		vocab:    make(map[string]int, len(terms)),
		idf:      make([]float64, len(terms)),
		minScore: minScore,
	}
	n := float64(len(docs))
	for i, term := range terms {
		ix.vocab[term] = i
		// Smoothed IDF.
		ix.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	ix.docs = make([]indexedDoc, 0, len(docs))
	for i := range docs {
		tags := make(map[string]struct{}, len(docs[i].Tags))
		for _, t := range docs[i].Tags {
			tags[t] = struct{}{}
		}
		ix.docs = append(ix.docs, indexedDoc{
			id:    docs[i].ID,
			title: docs[i].Title,
			tags:  tags,
			vec:   ix.vectorise(texts[i]),
		})
	}
	sort.Slice(ix.docs, func(a, b int) bool { return ix.docs[a].id < ix.docs[b].id })

	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Search returns up to topK documents whose tags intersect allowedTags,
// ranked by relevance. Documents below the relevance threshold are
// dropped; an empty result is a normal outcome. Ties are broken by
// ascending document id.
func (ix *Index) Search(query string, allowedTags []string, topK int) []domain.DocumentHit {
	if topK <= 0 {
		return nil
	}
	qvec := ix.vectorise(query)
	if len(qvec) == 0 {
		return nil
	}

	hits := make([]domain.DocumentHit, 0, topK)
	for i := range ix.docs {
		doc := &ix.docs[i]
		if !intersects(doc.tags, allowedTags) {
			continue
		}
		score := dot(qvec, doc.vec)
		if score < ix.minScore {
			continue
		}
		hits = append(hits, domain.DocumentHit{DocID: doc.id, Title: doc.title, Score: score})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].DocID < hits[b].DocID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// vectorise computes the L2-normalised sparse TF-IDF vector of text.
// Terms outside the corpus vocabulary are ignored.
func (ix *Index) vectorise(text string) map[int]float64 {
	tf := make(map[int]int)
	total := 0
	for _, tok := range Tokenize(text) {
		if idx, ok := ix.vocab[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	vec := make(map[int]float64, len(tf))
	norm := 0.0
	for idx, count := range tf {
		v := float64(count) / float64(total) * ix.idf[idx]
		vec[idx] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func documentText(doc *domain.Document) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	for i := range doc.Sections {
		b.WriteByte('\n')
		b.WriteString(doc.Sections[i].Heading)
		b.WriteByte('\n')
		b.WriteString(doc.Sections[i].Body)
	}
	return b.String()
}

func intersects(have map[string]struct{}, want []string) bool {
	for _, t := range want {
		if _, ok := have[t]; ok {
			return true
		}
	}
	return false
}

func dot(a, b map[int]float64) float64 {
	// Iterate the smaller map.
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for idx, v := range a {
		if w, ok := b[idx]; ok {
			sum += v * w
		}
	}
	return sum
}

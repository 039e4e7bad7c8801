// File path: internal/retriever/retriever.go
package retriever

import (
	"math"
	"sort"
	"strings"
)

// DefaultLimit is how many files a selection returns.
const DefaultLimit = 5

// File is one stored file record projected into the scoring domain.
type File struct {
	ID      int64
	Name    string
	Summary string
	Source  string
	Vector  []float32
}

// Match pairs a file with its selection score. Keyword scores are
// accumulated weights; semantic scores are cosine similarities in [-1, 1]
// with -1 marking files whose vector is missing or the wrong length.
type Match struct {
	File  File
	Score float64
}

// Keyword scoring weights. The whole question matching a field counts more
// than individual tokens.
const (
	weightNameQuestion    = 5
	weightNameToken       = 2
	weightSummaryQuestion = 3
	weightSummaryToken    = 1
	weightSourceQuestion  = 2
	weightSourceToken     = 0.5
)

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "before": {}, "being": {},
	"could": {}, "does": {}, "doing": {}, "each": {}, "file": {}, "from": {},
	"have": {}, "here": {}, "into": {}, "just": {}, "like": {}, "more": {},
	"only": {}, "other": {}, "should": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "very": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "will": {}, "with": {}, "would": {}, "your": {},
}

// Tokenize splits a question into lowercase words longer than three
// characters, excluding stopwords.
func Tokenize(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '_')
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 3 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// KeywordSearch scores every file against the question by substring presence
// of the whole question and of individual tokens in its name, summary and
// source. Files with zero score are dropped; ties keep fetch order.
func KeywordSearch(files []File, question string, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}
	whole := strings.ToLower(strings.TrimSpace(question))
	tokens := Tokenize(question)
	matches := make([]Match, 0, len(files))
	for _, f := range files {
		score := keywordScore(f, whole, tokens)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{File: f, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func keywordScore(f File, whole string, tokens []string) float64 {
	name := strings.ToLower(f.Name)
	summary := strings.ToLower(f.Summary)
	source := strings.ToLower(f.Source)

	var score float64
	if whole != "" {
		if strings.Contains(name, whole) {
			score += weightNameQuestion
		}
		if strings.Contains(summary, whole) {
			score += weightSummaryQuestion
		}
		if strings.Contains(source, whole) {
			score += weightSourceQuestion
		}
	}
	for _, token := range tokens {
		if strings.Contains(name, token) {
			score += weightNameToken
		}
		if strings.Contains(summary, token) {
			score += weightSummaryToken
		}
		if strings.Contains(source, token) {
			score += weightSourceToken
		}
	}
	return score
}

// SemanticSearch ranks files by cosine similarity against the question
// vector. Files with a missing or wrong-length vector score -1 and therefore
// sort below every file with a valid vector.
func SemanticSearch(files []File, queryVec []float32, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}
	matches := make([]Match, 0, len(files))
	for _, f := range files {
		score := -1.0
		if len(queryVec) > 0 && len(f.Vector) == len(queryVec) {
			score = CosineSimilarity(f.Vector, queryVec)
		}
		matches = append(matches, Match{File: f, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|), or -1 when either vector
// has zero magnitude and the angle is undefined.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return -1
	}
	sim := dot / denom
	// Guard against float drift outside [-1, 1].
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}

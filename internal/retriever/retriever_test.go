// File path: internal/retriever/retriever_test.go
package retriever

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeDropsShortWordsAndStopwords(t *testing.T) {
	tokens := Tokenize("What does the auth_handler do with these sessions?")
	require.Equal(t, []string{"auth_handler", "sessions"}, tokens)
}

func TestKeywordSearchWeightsFilenameHighest(t *testing.T) {
	files := []File{
		{ID: 1, Name: "docs/notes.md", Summary: "mentions database twice", Source: "database database"},
		{ID: 2, Name: "internal/database.go", Summary: "nothing relevant", Source: "package internal"},
	}
	matches := KeywordSearch(files, "database", 5)
	require.Len(t, matches, 2)
	// Whole question + token in the name scores 7, beating the summary
	// and source hits combined at 6.5.
	require.Equal(t, int64(2), matches[0].File.ID)
	require.Equal(t, int64(1), matches[1].File.ID)
}

func TestKeywordSearchDropsZeroScores(t *testing.T) {
	files := []File{
		{ID: 1, Name: "main.go", Summary: "entrypoint", Source: "package main"},
		{ID: 2, Name: "store.go", Summary: "sqlite access", Source: "package store"},
	}
	matches := KeywordSearch(files, "sqlite", 5)
	require.Len(t, matches, 1)
	require.Equal(t, int64(2), matches[0].File.ID)
}

func TestKeywordSearchMatchesSourceOnly(t *testing.T) {
	files := []File{
		{ID: 1, Name: "util.go", Summary: "helpers", Source: "func normalizeVector(v []float32) {}"},
		{ID: 2, Name: "other.go", Summary: "helpers", Source: "package other"},
	}
	matches := KeywordSearch(files, "normalizevector", 5)
	require.Len(t, matches, 1)
	require.Equal(t, int64(1), matches[0].File.ID)
	// Whole question + token in source only.
	require.InDelta(t, 2.5, matches[0].Score, 1e-9)
}

func TestKeywordSearchCapsAtLimit(t *testing.T) {
	var files []File
	for i := 0; i < 12; i++ {
		files = append(files, File{
			ID:      int64(i + 1),
			Name:    fmt.Sprintf("pkg/handler_%d.go", i),
			Summary: "handler logic",
			Source:  "func handler() {}",
		})
	}
	matches := KeywordSearch(files, "handler", 0)
	require.Len(t, matches, DefaultLimit)
}

func TestKeywordSearchTiesKeepFetchOrder(t *testing.T) {
	files := []File{
		{ID: 10, Name: "a/worker.go", Summary: "", Source: ""},
		{ID: 20, Name: "b/worker.go", Summary: "", Source: ""},
	}
	matches := KeywordSearch(files, "worker", 5)
	require.Len(t, matches, 2)
	require.Equal(t, int64(10), matches[0].File.ID)
	require.Equal(t, int64(20), matches[1].File.ID)
}

func TestSemanticSearchRanksMissingVectorsLast(t *testing.T) {
	query := []float32{1, 0, 0}
	files := []File{
		{ID: 1, Name: "missing.go"},
		{ID: 2, Name: "aligned.go", Vector: []float32{1, 0, 0}},
		{ID: 3, Name: "short.go", Vector: []float32{1, 0}},
		{ID: 4, Name: "opposite.go", Vector: []float32{-1, 0, 0}},
	}
	matches := SemanticSearch(files, query, 5)
	require.Len(t, matches, 4)
	require.Equal(t, int64(2), matches[0].File.ID)
	require.InDelta(t, 1.0, matches[0].Score, 1e-9)
	for _, m := range matches[1:] {
		require.LessOrEqual(t, m.Score, matches[0].Score)
	}
	// Missing and wrong-length vectors share the -1 floor with the
	// opposite vector; all of them rank below the aligned file.
	require.Equal(t, -1.0, matches[1].Score)
}

func TestCosineSimilarityBounds(t *testing.T) {
	require.Equal(t, -1.0, CosineSimilarity(nil, nil))
	require.Equal(t, -1.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	require.Equal(t, -1.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	require.InDelta(t, 1.0, CosineSimilarity([]float32{3, 4}, []float32{3, 4}), 1e-9)
	require.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestMatchLinesAreOneIndexed(t *testing.T) {
	f := File{
		Name:   "auth.go",
		Source: "package auth\n\nfunc Login() {}\n\nfunc Logout() {}",
	}
	lines := MatchLines(f, "login")
	require.Len(t, lines, 1)
	require.Equal(t, 3, lines[0].Line)
	require.Equal(t, "func Login() {}", lines[0].Text)
}

func TestMatchLinesEmptyQuestion(t *testing.T) {
	f := File{Name: "auth.go", Source: "package auth"}
	require.Nil(t, MatchLines(f, "   "))
}

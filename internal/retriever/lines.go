// File path: internal/retriever/lines.go
package retriever

import "strings"

// LineMatch locates one matching source line, 1-indexed.
type LineMatch struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// MatchLines returns the source lines of a file that contain the whole
// question or any of its tokens. Used to build the non-AI fallback answer
// when generation is exhausted.
func MatchLines(f File, question string) []LineMatch {
	whole := strings.ToLower(strings.TrimSpace(question))
	tokens := Tokenize(question)
	if whole == "" && len(tokens) == 0 {
		return nil
	}
	var matches []LineMatch
	for i, line := range strings.Split(f.Source, "\n") {
		lower := strings.ToLower(line)
		hit := whole != "" && strings.Contains(lower, whole)
		if !hit {
			for _, token := range tokens {
				if strings.Contains(lower, token) {
					hit = true
					break
				}
			}
		}
		if hit {
			matches = append(matches, LineMatch{Line: i + 1, Text: strings.TrimSpace(line)})
		}
	}
	return matches
}

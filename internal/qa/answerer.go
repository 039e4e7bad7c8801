// File path: internal/qa/answerer.go
package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/llm"
	"github.com/repobrief/repobrief/internal/retriever"
)

// Mode selects how stored files are matched against a question.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
)

// ParseMode maps a request string onto a mode, defaulting to keyword.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeSemantic)) {
		return ModeSemantic
	}
	return ModeKeyword
}

const (
	// FallbackAnswer is the fixed apology returned when generation is
	// exhausted and no keyword fallback can be built. The caller always
	// receives a displayable answer.
	FallbackAnswer = "I'm sorry, I wasn't able to generate an answer for this question right now. Please try again in a few minutes."

	noContextSentence = "No context is available for this project. Answer from general knowledge and say that no repository files were found."

	fileDelimiter = "\n\n----------\n\n"
)

// Reference describes one file the answer drew on.
type Reference struct {
	FileName string                `json:"file_name"`
	Summary  string                `json:"summary"`
	Lines    []retriever.LineMatch `json:"lines,omitempty"`
}

// Result is the displayable outcome of answering a question.
type Result struct {
	Answer     string      `json:"answer"`
	Mode       Mode        `json:"mode"`
	References []Reference `json:"references"`
}

// Answerer selects the most relevant stored files for a question, assembles
// a prompt from them and runs a single generation.
type Answerer struct {
	llm *llm.Client
}

func New(client *llm.Client) *Answerer {
	return &Answerer{llm: client}
}

// Answer never fails: generation errors degrade first to a keyword-matched
// excerpt answer with line annotations, then to the fixed apology.
func (a *Answerer) Answer(ctx context.Context, question string, files []retriever.File, mode Mode, stream llm.StreamFunc) Result {
	logger := common.Logger()
	var matches []retriever.Match
	switch mode {
	case ModeSemantic:
		queryVec := a.llm.Embed(ctx, question)
		matches = retriever.SemanticSearch(files, queryVec, retriever.DefaultLimit)
	default:
		mode = ModeKeyword
		matches = retriever.KeywordSearch(files, question, retriever.DefaultLimit)
	}

	prompt := buildPrompt(question, matches)
	var answer string
	var err error
	if stream != nil {
		answer, err = a.llm.AnswerStream(ctx, prompt, stream)
	} else {
		answer, err = a.llm.Answer(ctx, prompt)
	}
	if err != nil {
		logger.Warn("qa: generation failed, building fallback answer", "mode", mode, "error", err)
		return a.fallback(question, files, mode, stream)
	}
	return Result{Answer: answer, Mode: mode, References: references(matches)}
}

// fallback builds a non-AI answer from keyword-matched lines; when even
// keyword matching finds nothing, the fixed apology is returned.
func (a *Answerer) fallback(question string, files []retriever.File, mode Mode, stream llm.StreamFunc) Result {
	matches := retriever.KeywordSearch(files, question, retriever.DefaultLimit)
	var refs []Reference
	var builder strings.Builder
	builder.WriteString("The answer generator is temporarily unavailable. These files match your question:\n")
	for _, m := range matches {
		lines := retriever.MatchLines(m.File, question)
		if len(lines) == 0 {
			continue
		}
		refs = append(refs, Reference{FileName: m.File.Name, Summary: m.File.Summary, Lines: lines})
		builder.WriteString(fmt.Sprintf("\n%s:\n", m.File.Name))
		for _, line := range lines {
			builder.WriteString(fmt.Sprintf("  line %d: %s\n", line.Line, line.Text))
		}
	}
	answer := FallbackAnswer
	if len(refs) > 0 {
		answer = builder.String()
	}
	if stream != nil {
		stream(answer)
	}
	return Result{Answer: answer, Mode: mode, References: refs}
}

func buildPrompt(question string, matches []retriever.Match) string {
	var builder strings.Builder
	builder.WriteString("Context:\n")
	if len(matches) == 0 {
		builder.WriteString(noContextSentence)
	} else {
		blocks := make([]string, 0, len(matches))
		for _, m := range matches {
			blocks = append(blocks, fmt.Sprintf(
				"File: %s\nSummary: %s\nSource:\n%s",
				m.File.Name, m.File.Summary, m.File.Source,
			))
		}
		builder.WriteString(strings.Join(blocks, fileDelimiter))
	}
	builder.WriteString("\n\nQuestion: ")
	builder.WriteString(strings.TrimSpace(question))
	return builder.String()
}

func references(matches []retriever.Match) []Reference {
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{FileName: m.File.Name, Summary: m.File.Summary})
	}
	return refs
}

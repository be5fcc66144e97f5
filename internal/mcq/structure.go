// Package mcq parses and validates multiple-choice guided-reading items.
// Parsing is layered: explicit labels first, a trailing-choice-block heuristic
// second, and a structured LLM parse only as the last resort.
package mcq

import (
	"context"
	"regexp"
	"strings"
)

// Structure is a multiple-choice item split into its parts. Passage is
// optional; Choices are stored without their labels.
type Structure struct {
	Passage      string   `json:"passage,omitempty"`
	Question     string   `json:"question"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
}

// ParseMethod records which layer produced the structure.
type ParseMethod string

const (
	MethodLabeled  ParseMethod = "labeled"
	MethodTrailing ParseMethod = "trailing_block"
	MethodLLM      ParseMethod = "llm_parse"
)

// StructureParser is the last-resort structured parse, backed by the text
// generation capability. Nil is valid: parsing then stops after the
// heuristic layers.
type StructureParser interface {
	ParseStructure(ctx context.Context, source string) (Structure, error)
}

var (
	labelLine  = regexp.MustCompile(`(?i)^(passage|question|answer|choices?|選択肢|問題|答え?)\s*[:：]\s*(.*)$`)
	choiceLine = regexp.MustCompile(`^\s*(?:([A-Fa-f])[).．）]|\(([A-Fa-f])\)|([1-6])[).．）])\s*(.+)$`)
	answerRef  = regexp.MustCompile(`(?i)^\(?([A-Fa-f1-6])\)?\.?$`)
)

// Parse splits raw source text into a Structure. Layers are tried in order;
// the first that yields at least two choices wins.
func Parse(ctx context.Context, source string, last StructureParser) (Structure, ParseMethod, error) {
	if s, ok := parseLabeled(source); ok {
		return s, MethodLabeled, nil
	}
	if s, ok := parseTrailingBlock(source); ok {
		return s, MethodTrailing, nil
	}
	if last != nil {
		s, err := last.ParseStructure(ctx, source)
		if err != nil {
			return Structure{}, "", &ParseError{Message: "structured parse failed", Cause: err}
		}
		if len(s.Choices) < 2 {
			return Structure{}, "", &ParseError{Message: "structured parse returned fewer than two choices"}
		}
		return s, MethodLLM, nil
	}
	return Structure{}, "", &ParseError{Message: "no choice block found"}
}

// parseLabeled handles explicitly labeled sections such as "Question:" and
// "Answer: B". Choice lines may appear labeled or bare below a Choices label.
func parseLabeled(source string) (Structure, bool) {
	var s Structure
	var passage []string
	section := "passage"
	sawLabel := false

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := labelLine.FindStringSubmatch(trimmed); m != nil {
			sawLabel = true
			label := strings.ToLower(m[1])
			rest := strings.TrimSpace(m[2])
			switch {
			case label == "passage":
				section = "passage"
				if rest != "" {
					passage = append(passage, rest)
				}
			case label == "question" || label == "問題":
				section = "question"
				s.Question = rest
			case strings.HasPrefix(label, "choice") || label == "選択肢":
				section = "choices"
				if rest != "" {
					appendChoice(&s, rest)
				}
			case label == "answer" || label == "答" || label == "答え":
				section = "answer"
				if idx, ok := resolveAnswer(rest, s.Choices); ok {
					s.CorrectIndex = idx
				}
			}
			continue
		}

		if m := choiceLine.FindStringSubmatch(trimmed); m != nil && (section == "choices" || section == "question" || section == "answer") {
			s.Choices = append(s.Choices, strings.TrimSpace(m[4]))
			section = "choices"
			continue
		}

		switch section {
		case "passage":
			passage = append(passage, trimmed)
		case "question":
			s.Question = strings.TrimSpace(s.Question + " " + trimmed)
		case "choices":
			appendChoice(&s, trimmed)
		}
	}

	s.Passage = strings.Join(passage, "\n")
	if !sawLabel || s.Question == "" || len(s.Choices) < 2 {
		return Structure{}, false
	}
	return s, true
}

// parseTrailingBlock handles the common unlabeled shape: prose, then a final
// run of marker-prefixed lines. The line directly above the block is the
// question; everything before that is passage.
func parseTrailingBlock(source string) (Structure, bool) {
	lines := strings.Split(strings.TrimSpace(source), "\n")

	var choices []string
	end := len(lines)
	for end > 0 {
		m := choiceLine.FindStringSubmatch(strings.TrimSpace(lines[end-1]))
		if m == nil {
			break
		}
		choices = append([]string{strings.TrimSpace(m[4])}, choices...)
		end--
	}
	if len(choices) < 2 || end == 0 {
		return Structure{}, false
	}

	question := strings.TrimSpace(lines[end-1])
	passage := strings.TrimSpace(strings.Join(lines[:end-1], "\n"))
	if question == "" {
		return Structure{}, false
	}

	return Structure{
		Passage:  passage,
		Question: question,
		Choices:  choices,
	}, true
}

func appendChoice(s *Structure, line string) {
	if m := choiceLine.FindStringSubmatch(line); m != nil {
		s.Choices = append(s.Choices, strings.TrimSpace(m[4]))
		return
	}
	s.Choices = append(s.Choices, line)
}

// resolveAnswer maps an answer reference ("B", "(c)", "2") or a verbatim
// choice string onto a choice index.
func resolveAnswer(ref string, choices []string) (int, bool) {
	if m := answerRef.FindStringSubmatch(strings.TrimSpace(ref)); m != nil {
		c := strings.ToLower(m[1])
		if c[0] >= 'a' && c[0] <= 'f' {
			return int(c[0] - 'a'), true
		}
		return int(c[0] - '1'), true
	}
	for i, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(ref), choice) {
			return i, true
		}
	}
	return 0, false
}

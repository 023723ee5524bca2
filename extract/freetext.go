package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/taskpilot/taskpilot/plan"
)

// indicatorPhrases are fixed word sequences that commonly precede a literal
// command in conversational model output.
var indicatorPhrases = [][]string{
	{"use", "the", "command"},
	{"use", "this", "command"},
	{"run", "the", "command"},
	{"execute", "the", "command"},
	{"try", "the", "following"},
	{"you", "can", "run"},
	{"try", "running"},
}

// codeBlockCommand takes the first fenced code block not tagged as structured
// data and treats its content as the command.
func codeBlockCommand(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	content, ok := firstCodeBlock(text)
	if !ok {
		return nil, plan.ExtractionMetadata{}, false
	}
	content = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content), "$ "))
	if content == "" {
		return nil, plan.ExtractionMetadata{}, false
	}
	p := plan.NewPlan("command recovered from code block", commandStep(content))
	return p, plan.NewMetadata(plan.SourceCodeBlock, 0), true
}

// indicatorPhraseCommand scans token windows for indicator phrase sequences
// and takes the token(s) after, honoring quoted and backticked spans. Spans
// are returned verbatim: nested quoting inside them is never re-escaped.
func indicatorPhraseCommand(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	tokens := tokenize(text)
	for i := range tokens {
		for _, phrase := range indicatorPhrases {
			if !matchPhrase(tokens, i, phrase) {
				continue
			}
			cmd := commandAfter(tokens, i+len(phrase))
			if cmd == "" {
				continue
			}
			p := plan.NewPlan("command recovered from indicator phrase", commandStep(cmd))
			return p, plan.NewMetadata(plan.SourcePhrase, 0), true
		}
	}
	return nil, plan.ExtractionMetadata{}, false
}

func matchPhrase(tokens []token, start int, phrase []string) bool {
	if start+len(phrase) > len(tokens) {
		return false
	}
	for j, word := range phrase {
		t := tokens[start+j]
		if t.span || !strings.EqualFold(t.text, word) {
			return false
		}
	}
	return true
}

// commandAfter returns the command following a matched phrase: a single
// quoted/backticked span if one comes next, otherwise the plain tokens up to
// the end of the sentence.
func commandAfter(tokens []token, start int) string {
	if start >= len(tokens) {
		return ""
	}
	if tokens[start].span {
		return tokens[start].text
	}
	var words []string
	for _, t := range tokens[start:] {
		if t.span {
			break
		}
		words = append(words, t.text)
		if t.sentenceEnd {
			break
		}
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// token is one tokenizer unit: either a whitespace-delimited word or a
// quoted/backticked span kept intact.
type token struct {
	text        string
	span        bool
	sentenceEnd bool
}

// tokenize splits text into words and spans. Backtick and double-quote pairs
// form spans; trailing sentence punctuation is stripped off words and flagged.
func tokenize(text string) []token {
	var tokens []token
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		if unicode.IsSpace(r) {
			i++
			continue
		}
		if r == '`' || r == '"' {
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j < len(runes) {
				tokens = append(tokens, token{text: string(runes[i+1 : j]), span: true})
				i = j + 1
				continue
			}
			// Unterminated span: fall through and treat as a word.
		}
		j := i
		for j < len(runes) && !unicode.IsSpace(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		trimmed := strings.TrimRight(word, ".,!?;:")
		tokens = append(tokens, token{
			text:        trimmed,
			sentenceEnd: strings.ContainsAny(word[len(trimmed):], ".!?"),
		})
		i = j
	}
	return tokens
}

// firstCodeBlock returns the first fenced block whose info string is not
// "json" (structured blocks belong to the structured stage).
func firstCodeBlock(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	inBlock := false
	skip := false
	var buf []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				if !skip {
					return strings.Join(buf, "\n"), true
				}
				inBlock = false
				buf = nil
				continue
			}
			inBlock = true
			info := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
			skip = info == "json"
			continue
		}
		if inBlock {
			buf = append(buf, line)
		}
	}
	return "", false
}

// verbRule maps localized action verbs onto a canonical file operation.
type verbRule struct {
	verbs     []string
	operation string
	wantsName bool
}

// Cyrillic-script verb rules. Order matters: listing is checked before
// reading because "покажи" alone is ambiguous.
var cyrillicRules = []verbRule{
	{verbs: []string{"перечисли", "список", "покажи файлы"}, operation: "list_dir"},
	{verbs: []string{"создай", "создать", "сделай"}, operation: "create_file", wantsName: true},
	{verbs: []string{"допиши", "добавь"}, operation: "append_file", wantsName: true},
	{verbs: []string{"удали", "сотри"}, operation: "delete_file", wantsName: true},
	{verbs: []string{"прочитай", "прочти", "открой", "покажи"}, operation: "read_file", wantsName: true},
}

var cyrillicContentMarkers = []string{"с текстом", "с содержимым"}

// verbMatchCommand synthesizes a canonical file operation from non-Latin
// script input by detecting action verbs plus companion filename/content
// markers. Currently covers Cyrillic.
func verbMatchCommand(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	if !hasScript(text, unicode.Cyrillic) {
		return nil, plan.ExtractionMetadata{}, false
	}
	lower := strings.ToLower(text)

	for _, rule := range cyrillicRules {
		if !containsAnyWord(lower, rule.verbs) {
			continue
		}
		params := map[string]any{}
		if rule.operation == "list_dir" {
			if !strings.Contains(lower, "файл") && !strings.Contains(lower, "папк") && !strings.Contains(lower, "директор") {
				continue
			}
			params["path"] = "."
		} else {
			name := extractFilename(text, lower)
			if rule.wantsName && name == "" {
				continue
			}
			params["filename"] = name
			if content, ok := extractContent(text, lower); ok {
				params["content"] = content
			}
		}
		step := plan.NewStep("file_operations", rule.operation, params)
		step.Description = "file operation synthesized from localized phrasing"
		p := plan.NewPlan(step.Description, step)
		md := plan.NewMetadata(plan.SourceVerbMatch, 0)
		md.Language = language.Russian
		return p, md, true
	}
	return nil, plan.ExtractionMetadata{}, false
}

func hasScript(text string, table *unicode.RangeTable) bool {
	for _, r := range text {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

func containsAnyWord(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// extractFilename prefers a quoted/backticked span, then any token carrying a
// file extension, then the token following a "файл" marker.
func extractFilename(text, lower string) string {
	for _, t := range tokenize(text) {
		if t.span && t.text != "" {
			return t.text
		}
	}
	for _, t := range tokenize(text) {
		if !t.span && strings.Contains(t.text, ".") && !strings.HasSuffix(t.text, ".") {
			return t.text
		}
	}
	fields := strings.Fields(lower)
	orig := strings.Fields(text)
	for i, f := range fields {
		if strings.HasPrefix(f, "файл") && i+1 < len(orig) {
			return strings.Trim(orig[i+1], "\"'`.,!?")
		}
	}
	return ""
}

// extractContent returns the text following a content marker phrase.
func extractContent(text, lower string) (string, bool) {
	for _, marker := range cyrillicContentMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		content := strings.TrimSpace(text[idx+len(marker):])
		content = strings.Trim(content, "\"'`")
		if content != "" {
			return content, true
		}
	}
	return "", false
}

package planner

import (
	"embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/taskpilot/taskpilot/plan"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Pattern maps a set of localized phrases onto one tool action. Patterns are
// matched by case-insensitive substring scan; the first match in table order
// wins, so broader phrases (e.g. listing) must precede narrower ones.
type Pattern struct {
	Tool           string   `yaml:"tool"`
	Action         string   `yaml:"action"`
	Capture        string   `yaml:"capture"` // "filename", "path", "text" or empty
	ContentMarkers []string `yaml:"content_markers"`
	Phrases        []string `yaml:"phrases"`
}

// LocaleTable is a loadable phrase->tool table for one locale. New languages
// and dialects are added as data files, not code changes.
type LocaleTable struct {
	Locale   string    `yaml:"locale"`
	Patterns []Pattern `yaml:"patterns"`

	tag language.Tag
}

// Tag returns the language tag this table covers.
func (t *LocaleTable) Tag() language.Tag { return t.tag }

// LoadLocaleTable parses one YAML table.
func LoadLocaleTable(data []byte) (*LocaleTable, error) {
	var table LocaleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse locale table: %w", err)
	}
	if table.Locale == "" {
		return nil, fmt.Errorf("locale table missing locale field")
	}
	table.tag = language.Make(table.Locale)
	return &table, nil
}

// builtinLocales loads the embedded tables. The embedded data is validated by
// tests, so a parse failure here is a programming error.
func builtinLocales() []*LocaleTable {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		panic(fmt.Sprintf("planner: read embedded locales: %v", err))
	}
	tables := make([]*LocaleTable, 0, len(entries))
	for _, entry := range entries {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			panic(fmt.Sprintf("planner: read embedded locale %s: %v", entry.Name(), err))
		}
		table, err := LoadLocaleTable(data)
		if err != nil {
			panic(fmt.Sprintf("planner: %s: %v", entry.Name(), err))
		}
		tables = append(tables, table)
	}
	return tables
}

// match scans the table for the first phrase contained in the command and
// builds the corresponding step.
func (t *LocaleTable) match(command string) (plan.PlanStep, bool) {
	lower := strings.ToLower(command)
	for _, pattern := range t.Patterns {
		for _, phrase := range pattern.Phrases {
			idx := strings.Index(lower, phrase)
			if idx < 0 {
				continue
			}
			params := capturePattern(command, lower, idx+len(phrase), pattern)
			return plan.NewStep(pattern.Tool, pattern.Action, params), true
		}
	}
	return plan.PlanStep{}, false
}

// capturePattern extracts the salient argument following the matched phrase.
func capturePattern(command, lower string, restIdx int, pattern Pattern) map[string]any {
	params := map[string]any{}
	rest := command[restIdx:]
	restLower := lower[restIdx:]

	// Split off trailing content after a marker ("with content ...").
	content := ""
	for _, marker := range pattern.ContentMarkers {
		if mi := strings.Index(restLower, marker); mi >= 0 {
			content = strings.Trim(strings.TrimSpace(rest[mi+len(marker):]), "\"'`")
			rest = rest[:mi]
			break
		}
	}

	switch pattern.Capture {
	case "filename":
		params["filename"] = captureArgument(rest)
		if content != "" {
			params["content"] = content
		}
	case "path":
		path := captureArgument(rest)
		if path == "" {
			path = "."
		}
		params["path"] = path
	case "text":
		text, ok := firstSpan(command)
		if !ok {
			text = strings.TrimSpace(strings.Trim(rest, ".,!?"))
		}
		if text != "" {
			params["text"] = text
		}
	}
	return params
}

// captureArgument prefers a quoted/backticked span inside the segment after
// the phrase, then its first token stripped of punctuation.
func captureArgument(rest string) string {
	if span, ok := firstSpan(rest); ok {
		return span
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], "\"'`.,!?;:")
}

// firstSpan returns the content of the first backtick or double-quote pair.
func firstSpan(s string) (string, bool) {
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '`' && runes[i] != '"' {
			continue
		}
		quote := runes[i]
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == quote {
				return string(runes[i+1 : j]), true
			}
		}
		return "", false
	}
	return "", false
}

// Stopword hints for Latin-script language detection. Deliberately small:
// the goal is table ordering, not proper language identification.
var (
	spanishHints = []string{"archivo", "crea ", "elimina", "pantalla", "portapapeles", "qué ", "hora"}
	germanHints  = []string{"datei", "erstelle", "lösche", "zwischenablage", "bildschirm", "uhrzeit"}
)

// detectLanguage guesses the command language so its locale table is scanned
// first. Cyrillic script maps to Russian; Latin script falls back to
// stopword hints, defaulting to English.
func detectLanguage(text string) language.Tag {
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			return language.Russian
		}
	}
	lower := strings.ToLower(text)
	for _, hint := range germanHints {
		if strings.Contains(lower, hint) {
			return language.German
		}
	}
	for _, hint := range spanishHints {
		if strings.Contains(lower, hint) {
			return language.Spanish
		}
	}
	return language.English
}

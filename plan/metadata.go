package plan

import "golang.org/x/text/language"

// Extraction source names shared by the extractor and planner tiers.
const (
	SourcePlanArray    = "plan_array"
	SourceCommandField = "command_field"
	SourceCommandList  = "command_list"
	SourceCodeBlock    = "code_block"
	SourcePhrase       = "indicator_phrase"
	SourceVerbMatch    = "verb_match"
	SourceAppControl   = "app_control_rule"
	SourceLocaleRule   = "locale_rule"
	SourceTemplate     = "template"
	SourceRemote       = "remote_planner"
	SourceKeyword      = "keyword_router"
	SourceEcho         = "echo_fallback"
)

// DefaultConfidence is assigned when the producing source carries no
// confidence signal of its own. Confidence is advisory metadata only.
const DefaultConfidence = 0.9

// ExtractionMetadata records how a plan was produced. It travels alongside
// the plan so callers can render provenance, but the engine ignores it.
type ExtractionMetadata struct {
	Source       string         `json:"source"`
	Confidence   float64        `json:"confidence"`
	IsError      bool           `json:"is_error,omitempty"`
	Message      string         `json:"message,omitempty"`
	Language     language.Tag   `json:"language,omitempty"`
	Alternatives []string       `json:"alternatives,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
}

// NewMetadata builds metadata for a successful extraction, clamping
// confidence into [0,1] and substituting the default when none is given.
func NewMetadata(source string, confidence float64) ExtractionMetadata {
	if confidence <= 0 {
		confidence = DefaultConfidence
	}
	if confidence > 1 {
		confidence = 1
	}
	return ExtractionMetadata{Source: source, Confidence: confidence, Language: language.Und}
}

// ErrorMetadata builds metadata describing a failed extraction.
func ErrorMetadata(source, message string) ExtractionMetadata {
	return ExtractionMetadata{Source: source, IsError: true, Message: message, Language: language.Und}
}

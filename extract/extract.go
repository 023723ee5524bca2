// Package extract converts raw model-generated text into a validated
// MultiStepPlan. Model output is unreliable: it may wrap structured data in
// prose or code fences, describe a command in free text, answer in another
// language, or refuse outright. The extractor runs a cascade of fallback
// strategies, structured payloads first and free-text recovery second, and
// never raises on malformed input: every path returns a tagged error with a
// readable message.
package extract

import (
	"strings"

	"github.com/taskpilot/taskpilot/logging"
	"github.com/taskpilot/taskpilot/plan"
)

// defaultRefusalPhrases is the fixed refusal/error-phrase list scanned before
// any parsing. A hit short-circuits the cascade.
var defaultRefusalPhrases = []string{
	"i can't",
	"i cannot",
	"i'm sorry",
	"i am sorry",
	"i won't",
	"i will not",
	"i'm unable",
	"i am unable",
	"as an ai",
	"cannot assist",
	"can't help with",
	"against my guidelines",
	"я не могу",
	"не могу помочь",
	"no puedo",
	"lo siento",
	"ich kann nicht",
	"es tut mir leid",
}

// Options configures Extractor construction.
type Options struct {
	// Logger receives per-strategy debug events.
	Logger logging.Logger
	// RefusalPhrases overrides the built-in refusal list when non-empty.
	RefusalPhrases []string
}

// strategy is one free-text fallback: pure text in, optional plan out.
// Adding a strategy is an append to the cascade, never a rewrite.
type strategy struct {
	name string
	fn   func(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool)
}

// Extractor turns arbitrary text into a plan plus extraction metadata.
// It is stateless and safe for concurrent use.
type Extractor struct {
	logger         logging.Logger
	refusalPhrases []string
	fallbacks      []strategy
}

// New constructs an Extractor with the default strategy cascade.
func New(optFns ...func(o *Options)) *Extractor {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	phrases := opts.RefusalPhrases
	if len(phrases) == 0 {
		phrases = defaultRefusalPhrases
	}
	e := &Extractor{logger: opts.Logger, refusalPhrases: phrases}
	e.fallbacks = []strategy{
		{name: plan.SourceCodeBlock, fn: codeBlockCommand},
		{name: plan.SourcePhrase, fn: indicatorPhraseCommand},
		{name: plan.SourceVerbMatch, fn: verbMatchCommand},
	}
	return e
}

// Extract runs the cascade against raw text. First success wins:
//
//  1. empty/whitespace input -> StructuralError
//  2. refusal phrase scan    -> RefusalError
//  3. structured payloads (fenced json blocks, then brace-balanced scan);
//     the first candidate that parses is normalized; a parsed payload of
//     unrecognized shape is a StructuralError
//  4. free-text fallbacks (code block, indicator phrases, non-Latin verbs)
//  5. nothing matched        -> StructuralError; nothing is guessed
//
// Identical input always yields identical output; there is no hidden
// randomness beyond freshly assigned plan/step IDs.
func (e *Extractor) Extract(raw string) (*plan.MultiStepPlan, plan.ExtractionMetadata, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		err := &StructuralError{Reason: "empty response"}
		return nil, plan.ErrorMetadata("", err.Reason), err
	}

	if line, ok := e.scanRefusal(text); ok {
		err := &RefusalError{Line: line}
		md := plan.ErrorMetadata("refusal", line)
		return nil, md, err
	}

	p, md, found, err := extractStructured(text)
	if err != nil {
		e.logger.Debug("extract.structured.rejected", "reason", err.Error())
		return nil, plan.ErrorMetadata("structured", err.Error()), err
	}
	if found {
		e.logger.Debug("extract.structured.hit", "source", md.Source, "steps", len(p.Steps))
		return p, md, nil
	}

	for _, s := range e.fallbacks {
		p, md, ok := s.fn(text)
		if !ok {
			continue
		}
		e.logger.Debug("extract.fallback.hit", "strategy", s.name, "steps", len(p.Steps))
		return p, md, nil
	}

	serr := &StructuralError{Reason: "no command found in response"}
	return nil, plan.ErrorMetadata("", serr.Reason), serr
}

// scanRefusal performs a case-insensitive scan for refusal phrases, returning
// the first offending line.
func (e *Extractor) scanRefusal(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, phrase := range e.refusalPhrases {
			if strings.Contains(lower, phrase) {
				return strings.TrimSpace(line), true
			}
		}
	}
	return "", false
}

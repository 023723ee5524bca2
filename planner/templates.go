package planner

import (
	"strings"

	"github.com/taskpilot/taskpilot/plan"
)

// planTemplate expands one pre-programmed compound utterance into a fixed
// multi-step plan. Templates are hand-written; general multi-step
// decomposition from free text is out of scope for the local tiers.
type planTemplate struct {
	name  string
	build func(req Request) (*plan.MultiStepPlan, bool)
}

func defaultTemplates() []planTemplate {
	return []planTemplate{
		{name: "create_and_read_file", build: createAndReadFile},
		{name: "read_followup", build: readFollowUp},
	}
}

// createAndReadFile handles "create ... and read it back" compounds across
// the supported locales: a create_file step followed by a read_file step on
// the same filename.
func createAndReadFile(req Request) (*plan.MultiStepPlan, bool) {
	lower := strings.ToLower(req.Text)

	createPhrases := []string{"create file", "create a file", "crea un archivo", "erstelle eine datei", "создай файл"}
	readPhrases := []string{"and read", "then read", "and show", "y léelo", "y lee", "und lies", "и прочитай", "и покажи"}

	createIdx := -1
	var createPhrase string
	for _, phrase := range createPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			createIdx = idx + len(phrase)
			createPhrase = phrase
			break
		}
	}
	if createIdx < 0 {
		return nil, false
	}
	readIdx := -1
	for _, phrase := range readPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			readIdx = idx
			break
		}
	}
	if readIdx < 0 || readIdx <= createIdx-len(createPhrase) {
		return nil, false
	}

	// Capture filename/content from the span between the two phrases.
	segment := req.Text[createIdx:readIdx]
	segmentLower := lower[createIdx:readIdx]
	content := ""
	for _, marker := range []string{"with content", "con contenido", "mit inhalt", "с текстом"} {
		if mi := strings.Index(segmentLower, marker); mi >= 0 {
			content = strings.Trim(strings.TrimSpace(segment[mi+len(marker):]), "\"'`")
			segment = segment[:mi]
			break
		}
	}
	filename := captureArgument(segment)
	if filename == "" {
		return nil, false
	}

	createParams := map[string]any{"filename": filename}
	if content != "" {
		createParams["content"] = content
	}
	createStep := plan.NewStep("file_operations", "create_file", createParams)
	createStep.Description = "create the requested file"
	readStep := plan.NewStep("file_operations", "read_file", map[string]any{"filename": filename})
	readStep.Description = "read the file back"

	return plan.NewPlan("create a file and read it back", createStep, readStep), true
}

// followUpPhrases resolve a bare "read it" against the previous assistant
// utterance, which names the file from the prior turn.
var followUpPhrases = []string{"read it", "open it", "show it", "léelo", "ábrelo", "lies sie", "öffne sie", "прочитай его", "открой его"}

func readFollowUp(req Request) (*plan.MultiStepPlan, bool) {
	if req.PreviousUtterance == "" {
		return nil, false
	}
	lower := strings.ToLower(strings.TrimSpace(req.Text))
	matched := false
	for _, phrase := range followUpPhrases {
		if strings.HasPrefix(lower, phrase) || lower == phrase {
			matched = true
			break
		}
	}
	if !matched {
		return nil, false
	}
	filename, ok := firstSpan(req.PreviousUtterance)
	if !ok || filename == "" {
		return nil, false
	}
	step := plan.NewStep("file_operations", "read_file", map[string]any{"filename": filename})
	step.Description = "read the file from the previous turn"
	return plan.NewPlan("follow-up read of the previous file", step), true
}

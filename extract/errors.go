package extract

import "fmt"

// StructuralError reports that the input text yielded no candidate plan:
// empty input, an unusable payload shape, or no strategy matched. It is the
// "nothing there" outcome, distinct from an explicit refusal.
type StructuralError struct {
	Reason string `json:"reason"`
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("no plan extracted: %s", e.Reason)
}

// RefusalError reports that the model text explicitly declined the request.
// It carries the offending line so callers can render differentiated
// messaging; no command is ever synthesized from refusing text.
type RefusalError struct {
	Line string `json:"line"`
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("model refused: %s", e.Line)
}

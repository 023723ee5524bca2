package extract

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/taskpilot/taskpilot/plan"
)

// structuredConfidence is assumed for well-formed payloads that carry no
// confidence of their own.
const structuredConfidence = 0.95

// extractStructured locates and normalizes a structured payload. Candidates
// are gathered from fenced blocks tagged as json first, then from a
// brace-depth-balanced scan of the raw text. The first candidate that parses
// as a JSON object is used; candidates that fail to parse fall through
// silently. A parsed payload of unrecognized shape is a terminal
// StructuralError, never a guess.
func extractStructured(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool, error) {
	candidates := fencedBlocks(text, "json")
	candidates = append(candidates, balancedObjects(text)...)

	for _, candidate := range candidates {
		if !gjson.Valid(candidate) {
			continue
		}
		parsed := gjson.Parse(candidate)
		if !parsed.IsObject() {
			continue
		}
		p, md, err := normalizePayload(parsed)
		if err != nil {
			return nil, plan.ExtractionMetadata{}, false, err
		}
		return p, md, true, nil
	}
	return nil, plan.ExtractionMetadata{}, false, nil
}

// normalizePayload converts a parsed object into a plan:
//
//	{"plan": [...]}      -> one step per entry, order preserved
//	{"command": "..."}   -> a single system_command step
//	{"commands": [...]}  -> one step per entry
//
// Any other shape is a structural error.
func normalizePayload(parsed gjson.Result) (*plan.MultiStepPlan, plan.ExtractionMetadata, error) {
	raw, _ := parsed.Value().(map[string]any)

	if arr := parsed.Get("plan"); arr.IsArray() {
		steps, confidence := stepsFromEntries(arr.Array())
		if len(steps) == 0 {
			return nil, plan.ExtractionMetadata{}, &StructuralError{Reason: "plan array contains no usable steps"}
		}
		p := plan.NewPlan(payloadDescription(parsed), steps...)
		md := plan.NewMetadata(plan.SourcePlanArray, pickConfidence(parsed, confidence))
		md.Raw = raw
		return p, md, nil
	}

	if cmd := parsed.Get("command"); cmd.Type == gjson.String && strings.TrimSpace(cmd.String()) != "" {
		step := commandStep(strings.TrimSpace(cmd.String()))
		p := plan.NewPlan(payloadDescription(parsed), step)
		md := plan.NewMetadata(plan.SourceCommandField, pickConfidence(parsed, 0))
		md.Raw = raw
		return p, md, nil
	}

	if arr := parsed.Get("commands"); arr.IsArray() {
		steps, confidence := stepsFromEntries(arr.Array())
		if len(steps) == 0 {
			return nil, plan.ExtractionMetadata{}, &StructuralError{Reason: "commands array contains no usable entries"}
		}
		p := plan.NewPlan(payloadDescription(parsed), steps...)
		md := plan.NewMetadata(plan.SourceCommandList, pickConfidence(parsed, confidence))
		md.Raw = raw
		return p, md, nil
	}

	return nil, plan.ExtractionMetadata{}, &StructuralError{Reason: "structured payload has no plan, command or commands field"}
}

// stepsFromEntries converts array entries to steps, returning the first
// per-step confidence seen (0 when none).
func stepsFromEntries(entries []gjson.Result) ([]plan.PlanStep, float64) {
	steps := make([]plan.PlanStep, 0, len(entries))
	confidence := 0.0
	for _, entry := range entries {
		step, conf, ok := stepFromEntry(entry)
		if !ok {
			continue
		}
		steps = append(steps, step)
		if confidence == 0 && conf > 0 {
			confidence = conf
		}
	}
	return steps, confidence
}

func stepFromEntry(entry gjson.Result) (plan.PlanStep, float64, bool) {
	if entry.Type == gjson.String {
		cmd := strings.TrimSpace(entry.String())
		if cmd == "" {
			return plan.PlanStep{}, 0, false
		}
		return commandStep(cmd), 0, true
	}
	if !entry.IsObject() {
		return plan.PlanStep{}, 0, false
	}

	toolField := strings.TrimSpace(entry.Get("tool").String())
	opField := strings.TrimSpace(entry.Get("operation").String())
	actionField := strings.TrimSpace(entry.Get("action").String())

	var toolName, operation string
	switch {
	case toolField != "":
		toolName = toolField
		operation = actionField
		if operation == "" {
			operation = opField
		}
	case opField != "":
		// Wire format used by remote planners: "operation" names the tool.
		toolName = opField
		operation = actionField
	case actionField != "":
		toolName = actionField
	case strings.TrimSpace(entry.Get("command").String()) != "":
		step := commandStep(strings.TrimSpace(entry.Get("command").String()))
		step.Description = entry.Get("description").String()
		return step, entry.Get("confidence").Float(), true
	default:
		return plan.PlanStep{}, 0, false
	}

	params := map[string]any{}
	for _, key := range []string{"parameters", "params"} {
		if m, ok := entry.Get(key).Value().(map[string]any); ok {
			params = m
			break
		}
	}

	// A bare tool name with command-shaped parameters is a shell invocation.
	if operation == "" {
		if _, hasCommand := params["command"]; hasCommand || toolName == "system_command" {
			operation = "run"
		}
	}

	step := plan.NewStep(toolName, operation, params)
	step.Description = entry.Get("description").String()
	step.Expected = entry.Get("expected").String()
	if cond := entry.Get("condition"); cond.IsObject() {
		key := cond.Get("key").String()
		if key != "" {
			step.Condition = &plan.StepCondition{Key: key, Equals: cond.Get("equals").Value()}
		}
	}
	return step, entry.Get("confidence").Float(), true
}

// commandStep wraps a literal command line as a system_command step. Nested
// quoting inside the command is preserved as-is, never re-escaped.
func commandStep(command string) plan.PlanStep {
	return plan.NewStep("system_command", "run", map[string]any{"command": command})
}

func payloadDescription(parsed gjson.Result) string {
	if d := strings.TrimSpace(parsed.Get("description").String()); d != "" {
		return d
	}
	return "plan extracted from model response"
}

func pickConfidence(parsed gjson.Result, stepConfidence float64) float64 {
	if c := parsed.Get("confidence").Float(); c > 0 {
		return c
	}
	if stepConfidence > 0 {
		return stepConfidence
	}
	return structuredConfidence
}

// fencedBlocks returns the contents of ``` fenced blocks whose info string
// matches tag (case-insensitive). An empty tag matches any block.
func fencedBlocks(text, tag string) []string {
	var blocks []string
	lines := strings.Split(text, "\n")
	inBlock := false
	matches := false
	var buf []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				if matches && len(buf) > 0 {
					blocks = append(blocks, strings.Join(buf, "\n"))
				}
				inBlock = false
				buf = nil
				continue
			}
			inBlock = true
			info := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
			matches = tag == "" || info == strings.ToLower(tag)
			continue
		}
		if inBlock {
			buf = append(buf, line)
		}
	}
	return blocks
}

// balancedObjects scans raw text for brace-depth-balanced {...} fragments,
// string- and escape-aware, so an object can be isolated even without fences.
// Fragments are returned in order of appearance.
func balancedObjects(text string) []string {
	var objects []string
	start := -1
	depth := 0
	inString := false
	escape := false
	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
				inString = false
				escape = false
			}
			continue
		}
		if inString {
			if escape {
				escape = false
				continue
			}
			switch r {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				objects = append(objects, strings.TrimSpace(text[start:i+1]))
				start = -1
			}
		}
	}
	return objects
}

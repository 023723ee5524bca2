// Package planner converts a natural-language command into a MultiStepPlan,
// independent of whether the text came from a user directly or from the
// response extractor. Planning is a deterministic, stateless cascade of
// tiers; the first tier that matches wins and the final tier always matches,
// so the planner always produces a plan:
//
//  1. application-lifecycle verbs (open/close/focus/minimize/maximize)
//  2. pre-programmed compound templates
//  3. localized phrase->tool tables (external data, keyed by locale)
//  4. remote planning call (bounded wait; failures fall through)
//  5. coarse keyword router (low-confidence guess)
//  6. literal echo of the original text
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/taskpilot/taskpilot/extract"
	"github.com/taskpilot/taskpilot/logging"
	"github.com/taskpilot/taskpilot/model"
	"github.com/taskpilot/taskpilot/plan"
	"github.com/taskpilot/taskpilot/tool"
)

// Per-tier confidence defaults. Confidence is advisory metadata, never
// learned; the remote tier echoes the payload's own value when present.
const (
	appControlConfidence = 0.9
	templateConfidence   = 0.85
	localeConfidence     = 0.85
	keywordConfidence    = 0.3
	echoConfidence       = 0.1
)

// DefaultRemoteTimeout bounds the remote planning call so a slow backend
// never stalls the pipeline.
const DefaultRemoteTimeout = 15 * time.Second

// Request is one planning input: the command text plus, for localized
// multi-turn phrasing, the previous assistant utterance.
type Request struct {
	Text              string
	PreviousUtterance string
}

// Options configures Planner construction.
type Options struct {
	// Model enables the remote planning tier when non-nil.
	Model model.Model
	// Extractor parses remote responses. A default extractor is built when
	// nil and a model is configured.
	Extractor *extract.Extractor
	// RemoteTimeout bounds the remote call; defaults to DefaultRemoteTimeout.
	RemoteTimeout time.Duration
	// Locales overrides the embedded phrase tables when non-empty.
	Locales []*LocaleTable
	// Logger receives per-tier debug events.
	Logger logging.Logger
}

// Planner chooses a tool/action/parameters for a natural-language command.
// It is stateless and safe for concurrent use.
type Planner struct {
	registry      *tool.Registry
	remote        model.Model
	extractor     *extract.Extractor
	remoteTimeout time.Duration
	locales       []*LocaleTable
	templates     []planTemplate
	logger        logging.Logger
}

// New constructs a Planner over the given registry.
func New(registry *tool.Registry, optFns ...func(o *Options)) *Planner {
	opts := Options{Logger: logging.NoOpLogger{}, RemoteTimeout: DefaultRemoteTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = DefaultRemoteTimeout
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = extract.New()
	}
	locales := opts.Locales
	if len(locales) == 0 {
		locales = builtinLocales()
	}
	return &Planner{
		registry:      registry,
		remote:        opts.Model,
		extractor:     extractor,
		remoteTimeout: opts.RemoteTimeout,
		locales:       locales,
		templates:     defaultTemplates(),
		logger:        opts.Logger,
	}
}

// Plan runs the tier cascade. It always returns a plan; re-planning the same
// request yields the same tool/action/parameter shape.
func (p *Planner) Plan(ctx context.Context, req Request) (*plan.MultiStepPlan, plan.ExtractionMetadata) {
	text := strings.TrimSpace(req.Text)
	req.Text = text

	if pl, md, ok := p.appControlTier(text); ok {
		p.logger.Debug("planner.tier.matched", "tier", "app_control")
		return pl, md
	}
	if pl, md, ok := p.templateTier(req); ok {
		p.logger.Debug("planner.tier.matched", "tier", "template")
		return pl, md
	}
	if pl, md, ok := p.localeTier(text); ok {
		p.logger.Debug("planner.tier.matched", "tier", "locale")
		return pl, md
	}
	if pl, md, ok := p.remoteTier(ctx, req); ok {
		p.logger.Debug("planner.tier.matched", "tier", "remote")
		return pl, md
	}
	if pl, md, ok := p.keywordTier(text); ok {
		p.logger.Debug("planner.tier.matched", "tier", "keyword")
		return pl, md
	}
	p.logger.Debug("planner.tier.matched", "tier", "echo")
	return p.echoTier(text)
}

// appVerbs maps lifecycle verbs onto canonical app_control operations.
var appVerbs = []struct {
	verb string
	op   string
}{
	{"open", "open"},
	{"launch", "open"},
	{"start", "open"},
	{"close", "close"},
	{"quit", "close"},
	{"exit", "close"},
	{"switch to", "focus"},
	{"focus", "focus"},
	{"minimize", "minimize"},
	{"maximize", "maximize"},
}

// appControlTier matches fixed high-priority application-lifecycle verbs at
// the start of the command. Targets that look like filenames fall through to
// the file-oriented tiers.
func (p *Planner) appControlTier(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	lower := strings.ToLower(text)
	for _, v := range appVerbs {
		if !strings.HasPrefix(lower, v.verb+" ") {
			continue
		}
		target := strings.TrimSpace(text[len(v.verb):])
		target = strings.Trim(target, ".,!?")
		if rest := strings.TrimPrefix(strings.ToLower(target), "the "); rest != strings.ToLower(target) {
			target = strings.TrimSpace(target[len(target)-len(rest):])
		}
		if target == "" || looksLikeFilename(target) {
			return nil, plan.ExtractionMetadata{}, false
		}
		step := plan.NewStep("app_control", v.op, map[string]any{"target": target})
		step.Description = fmt.Sprintf("%s application %q", v.op, target)
		pl := plan.NewPlan(step.Description, step)
		md := plan.NewMetadata(plan.SourceAppControl, appControlConfidence)
		return pl, md, true
	}
	return nil, plan.ExtractionMetadata{}, false
}

func looksLikeFilename(target string) bool {
	first := strings.Fields(target)
	if len(first) == 0 {
		return false
	}
	if strings.EqualFold(first[0], "file") {
		return true
	}
	return strings.Contains(first[0], ".") || strings.Contains(first[0], "/")
}

func (p *Planner) templateTier(req Request) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	for _, t := range p.templates {
		pl, ok := t.build(req)
		if !ok {
			continue
		}
		md := plan.NewMetadata(plan.SourceTemplate, templateConfidence)
		md.Language = detectLanguage(req.Text)
		return pl, md, true
	}
	return nil, plan.ExtractionMetadata{}, false
}

// localeTier scans the phrase tables, detected language first, so
// equivalent phrasings across languages resolve to the same canonical
// tool/action/parameter shape.
func (p *Planner) localeTier(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	detected := detectLanguage(text)
	for _, table := range p.orderedLocales(detected) {
		step, ok := table.match(text)
		if !ok {
			continue
		}
		pl := plan.NewPlan(fmt.Sprintf("%s via localized rule", step.Operation), step)
		md := plan.NewMetadata(plan.SourceLocaleRule, localeConfidence)
		md.Language = table.Tag()
		return pl, md, true
	}
	return nil, plan.ExtractionMetadata{}, false
}

func (p *Planner) orderedLocales(detected language.Tag) []*LocaleTable {
	ordered := make([]*LocaleTable, 0, len(p.locales))
	for _, t := range p.locales {
		if t.Tag() == detected {
			ordered = append(ordered, t)
		}
	}
	for _, t := range p.locales {
		if t.Tag() != detected {
			ordered = append(ordered, t)
		}
	}
	return ordered
}

// remoteTier delegates to the configured model with a bounded wait. Any
// transport failure, refusal or unusable payload falls through to the lower
// tiers rather than stalling the pipeline.
func (p *Planner) remoteTier(ctx context.Context, req Request) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	if p.remote == nil {
		return nil, plan.ExtractionMetadata{}, false
	}
	rctx, cancel := context.WithTimeout(ctx, p.remoteTimeout)
	defer cancel()

	resp, err := p.remote.Generate(rctx, model.Request{
		System: p.renderSystemPrompt(),
		Prompt: renderUserPrompt(req),
	})
	if err != nil {
		p.logger.Warn("planner.remote.failed", "error", err.Error())
		return nil, plan.ExtractionMetadata{}, false
	}
	pl, md, err := p.extractor.Extract(resp.Text)
	if err != nil {
		p.logger.Warn("planner.remote.unusable", "error", err.Error())
		return nil, plan.ExtractionMetadata{}, false
	}
	md.Source = plan.SourceRemote
	return pl, md, true
}

// renderSystemPrompt lists the live tool inventory so the model plans against
// tools that actually exist.
func (p *Planner) renderSystemPrompt() string {
	caps := p.registry.Capabilities()
	names := make([]string, 0, len(caps))
	for name := range caps {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("You convert user commands into tool invocation plans.\n")
	sb.WriteString("Available tools:\n")
	for _, name := range names {
		c := caps[name]
		sb.WriteString(fmt.Sprintf("- %s: %s (actions: %s)\n", name, c.Description, strings.Join(c.Actions, ", ")))
	}
	sb.WriteString("\nRespond with JSON only: ")
	sb.WriteString(`{"plan":[{"tool":"<tool>","action":"<action>","parameters":{...},"confidence":0.0}]}`)
	return sb.String()
}

func renderUserPrompt(req Request) string {
	if req.PreviousUtterance == "" {
		return req.Text
	}
	return fmt.Sprintf("Previous assistant reply: %s\n\nCommand: %s", req.PreviousUtterance, req.Text)
}

// keywordRoutes back the coarse last-resort router.
var keywordRoutes = []struct {
	keywords []string
	tool     string
	action   string
}{
	{[]string{"cpu", "memory", "ram", "disk", "uptime", "system"}, "system_info", "overview"},
	{[]string{"file", "folder", "directory", "файл", "archivo", "datei"}, "file_operations", "list_dir"},
	{[]string{"time", "date", "today", "clock"}, "datetime", "current_time"},
	{[]string{"weather", "forecast", "погода"}, "weather", "current"},
	{[]string{"calculate", "math", "sum of", "plus", "minus"}, "calculator", "evaluate"},
}

// keywordTier assigns a low-confidence guess from coarse keyword buckets.
func (p *Planner) keywordTier(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata, bool) {
	lower := strings.ToLower(text)
	for _, route := range keywordRoutes {
		for _, kw := range route.keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			params := map[string]any{"query": text}
			if route.action == "list_dir" {
				params = map[string]any{"path": "."}
			}
			step := plan.NewStep(route.tool, route.action, params)
			step.Description = fmt.Sprintf("keyword-routed guess (%s)", kw)
			pl := plan.NewPlan(step.Description, step)
			md := plan.NewMetadata(plan.SourceKeyword, keywordConfidence)
			return pl, md, true
		}
	}
	return nil, plan.ExtractionMetadata{}, false
}

// echoTier is the unconditional default: a single-step literal echo carrying
// the original text, so the planner always produces a plan.
func (p *Planner) echoTier(text string) (*plan.MultiStepPlan, plan.ExtractionMetadata) {
	step := plan.NewStep("echo", "say", map[string]any{"text": text})
	step.Description = "echo the original command"
	pl := plan.NewPlan(step.Description, step)
	md := plan.NewMetadata(plan.SourceEcho, echoConfidence)
	return pl, md
}

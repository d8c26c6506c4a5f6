package rules

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"time"

	"example.com/mavgate/internal/dialect"
)

type Severity string

const (
	ERROR Severity = "ERROR"
	WARN  Severity = "WARN"
	INFO  Severity = "INFO"
)

// Rule names a single link-quality check. Check selects the registered
// CheckFunc implementation; Params tune its thresholds.
type Rule struct {
	RuleId   string         `json:"ruleId"`
	Name     string         `json:"name,omitempty"`
	Severity Severity       `json:"severity"`
	Check    string         `json:"checkFunction"`
	Refs     []string       `json:"refs,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	Message  string         `json:"message,omitempty"`
}

type RulePack struct {
	RulePackId string `json:"rulePackId"`
	Version    string `json:"version"`
	Rules      []Rule `json:"rules"`
}

// Diagnostic is a single finding against a parsed stream.
type Diagnostic struct {
	Ts           time.Time `json:"ts"`
	File         string    `json:"file,omitempty"`
	RuleId       string    `json:"ruleId"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	Refs         []string  `json:"refs,omitempty"`
	SystemId     int       `json:"systemId,omitempty"`
	ComponentId  int       `json:"componentId,omitempty"`
	MessageIndex int       `json:"messageIndex,omitempty"`
	MessageName  string    `json:"messageName,omitempty"`
}

// StreamStats aggregates the counters every report carries regardless of
// findings.
type StreamStats struct {
	Messages     int `json:"messages"`
	CRCFailures  int `json:"crcFailures"`
	UnknownIDs   int `json:"unknownIds"`
	SequenceGaps int `json:"sequenceGaps"`
}

type LinkReport struct {
	Summary struct {
		Total    int  `json:"total"`
		Errors   int  `json:"errors"`
		Warnings int  `json:"warnings"`
		Pass     bool `json:"pass"`
	} `json:"summary"`
	Stats    StreamStats  `json:"stats"`
	Findings []Diagnostic `json:"findings,omitempty"`
}

// Context carries the parsed stream a rule pack evaluates against.
type Context struct {
	InputFile string
	Dialect   string
	Messages  []dialect.ParsedMessage

	stats StreamStats
}

// CheckFunc evaluates one rule against the stream and returns its findings.
type CheckFunc func(ctx *Context, rule Rule) ([]Diagnostic, error)

type Engine struct {
	rulePack    RulePack
	registry    map[string]CheckFunc
	diagnostics []Diagnostic
	stats       StreamStats
}

func NewEngine(rp RulePack) *Engine {
	return &Engine{
		rulePack: rp,
		registry: make(map[string]CheckFunc),
	}
}

func (e *Engine) Register(name string, f CheckFunc) {
	e.registry[name] = f
}

// Eval runs every rule in the pack against the stream. Rules naming an
// unregistered check produce a WARN finding rather than failing the run.
func (e *Engine) Eval(ctx *Context) ([]Diagnostic, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	ctx.stats = baseStats(ctx.Messages)
	var diags []Diagnostic
	for _, r := range e.rulePack.Rules {
		if r.Check == "" {
			continue
		}
		fn, ok := e.registry[r.Check]
		if !ok {
			diags = append(diags, Diagnostic{
				Ts: time.Now(), File: ctx.InputFile, RuleId: r.RuleId, Severity: WARN,
				Message: "no function for rule", Refs: r.Refs,
			})
			continue
		}
		found, err := fn(ctx, r)
		if err != nil {
			diags = append(diags, Diagnostic{
				Ts: time.Now(), File: ctx.InputFile, RuleId: r.RuleId, Severity: ERROR,
				Message: "rule evaluation failed (" + err.Error() + ")", Refs: r.Refs,
			})
			continue
		}
		diags = append(diags, found...)
	}
	e.diagnostics = diags
	e.stats = ctx.stats
	return diags, nil
}

func baseStats(messages []dialect.ParsedMessage) StreamStats {
	stats := StreamStats{Messages: len(messages)}
	for _, m := range messages {
		if !m.CRCOK {
			stats.CRCFailures++
		}
		if isUnknown(m) {
			stats.UnknownIDs++
		}
	}
	return stats
}

func (e *Engine) WriteDiagnosticsNDJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()
	for _, d := range e.diagnostics {
		b, _ := json.Marshal(d)
		w.Write(b)
		w.WriteString("\n")
	}
	return nil
}

func (e *Engine) MakeLinkReport() LinkReport {
	var rep LinkReport
	var errs, warns int
	for _, d := range e.diagnostics {
		switch d.Severity {
		case ERROR:
			errs++
		case WARN:
			warns++
		}
	}
	rep.Summary.Total = len(e.diagnostics)
	rep.Summary.Errors = errs
	rep.Summary.Warnings = warns
	rep.Summary.Pass = errs == 0
	rep.Stats = e.stats
	rep.Findings = e.diagnostics
	return rep
}

func LoadRulePack(path string) (RulePack, error) {
	var rp RulePack
	b, err := os.ReadFile(path)
	if err != nil {
		return rp, err
	}
	err = json.Unmarshal(b, &rp)
	return rp, err
}

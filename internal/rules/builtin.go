package rules

import (
	"fmt"
	"strings"
	"time"

	"example.com/mavgate/internal/dialect"
)

func (e *Engine) RegisterBuiltins() {
	e.Register("CheckStreamNotEmpty", CheckStreamNotEmpty)
	e.Register("CheckCRCFailures", CheckCRCFailures)
	e.Register("CheckSequenceGaps", CheckSequenceGaps)
	e.Register("CheckUnknownIDs", CheckUnknownIDs)
	e.Register("CheckHeartbeatPresent", CheckHeartbeatPresent)
}

// DefaultPack returns the rule pack mavctl and mavd evaluate when none is
// supplied.
func DefaultPack() RulePack {
	return RulePack{
		RulePackId: "mavlink-link-quality",
		Version:    "1",
		Rules: []Rule{
			{RuleId: "LNK-001", Name: "Stream not empty", Severity: ERROR, Check: "CheckStreamNotEmpty"},
			{RuleId: "LNK-002", Name: "Checksum integrity", Severity: ERROR, Check: "CheckCRCFailures",
				Params: map[string]any{"maxRatio": 0.0}},
			{RuleId: "LNK-003", Name: "Sequence continuity", Severity: WARN, Check: "CheckSequenceGaps"},
			{RuleId: "LNK-004", Name: "Known message ids", Severity: WARN, Check: "CheckUnknownIDs",
				Params: map[string]any{"maxRatio": 0.1}},
			{RuleId: "LNK-005", Name: "Heartbeat present", Severity: WARN, Check: "CheckHeartbeatPresent"},
		},
	}
}

func isUnknown(m dialect.ParsedMessage) bool {
	return strings.HasPrefix(m.Name, "UNKNOWN_")
}

func ratioParam(rule Rule, key string, fallback float64) float64 {
	if rule.Params == nil {
		return fallback
	}
	switch v := rule.Params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// CheckStreamNotEmpty fails when the capture produced no messages at all.
func CheckStreamNotEmpty(ctx *Context, rule Rule) ([]Diagnostic, error) {
	if len(ctx.Messages) > 0 {
		return nil, nil
	}
	return []Diagnostic{{
		Ts: time.Now(), File: ctx.InputFile, RuleId: rule.RuleId, Severity: rule.Severity,
		Message: "no frames decoded from stream", Refs: rule.Refs,
	}}, nil
}

// CheckCRCFailures flags every message whose checksum failed, and fails the
// rule when the failure ratio exceeds maxRatio.
func CheckCRCFailures(ctx *Context, rule Rule) ([]Diagnostic, error) {
	if len(ctx.Messages) == 0 {
		return nil, nil
	}
	var diags []Diagnostic
	failures := 0
	for i, m := range ctx.Messages {
		if m.CRCOK {
			continue
		}
		failures++
		diags = append(diags, Diagnostic{
			Ts: time.Now(), File: ctx.InputFile, RuleId: rule.RuleId, Severity: rule.Severity,
			Message:      fmt.Sprintf("checksum mismatch on %s (seq %d)", m.Name, m.Sequence),
			Refs:         rule.Refs,
			SystemId:     int(m.SystemID),
			ComponentId:  int(m.ComponentID),
			MessageIndex: i,
			MessageName:  m.Name,
		})
	}
	maxRatio := ratioParam(rule, "maxRatio", 0)
	ratio := float64(failures) / float64(len(ctx.Messages))
	if failures > 0 && ratio <= maxRatio {
		// Within tolerance: downgrade the per-message findings.
		for i := range diags {
			diags[i].Severity = INFO
		}
	}
	return diags, nil
}

// CheckSequenceGaps tracks the sequence counter per (system, component) pair
// and reports every discontinuity modulo 256.
func CheckSequenceGaps(ctx *Context, rule Rule) ([]Diagnostic, error) {
	type link struct {
		system    uint8
		component uint8
	}
	last := make(map[link]uint8)
	seen := make(map[link]bool)
	var diags []Diagnostic
	for i, m := range ctx.Messages {
		k := link{m.SystemID, m.ComponentID}
		if seen[k] {
			expected := last[k] + 1
			if m.Sequence != expected {
				gap := int(m.Sequence) - int(expected)
				if gap < 0 {
					gap += 256
				}
				ctx.stats.SequenceGaps++
				diags = append(diags, Diagnostic{
					Ts: time.Now(), File: ctx.InputFile, RuleId: rule.RuleId, Severity: rule.Severity,
					Message: fmt.Sprintf("sequence gap of %d before %s (expected %d, got %d)",
						gap, m.Name, expected, m.Sequence),
					Refs:         rule.Refs,
					SystemId:     int(m.SystemID),
					ComponentId:  int(m.ComponentID),
					MessageIndex: i,
					MessageName:  m.Name,
				})
			}
		}
		seen[k] = true
		last[k] = m.Sequence
	}
	return diags, nil
}

// CheckUnknownIDs warns when the share of messages with ids outside the
// catalog exceeds maxRatio.
func CheckUnknownIDs(ctx *Context, rule Rule) ([]Diagnostic, error) {
	if len(ctx.Messages) == 0 {
		return nil, nil
	}
	unknown := 0
	names := make(map[string]bool)
	for _, m := range ctx.Messages {
		if isUnknown(m) {
			unknown++
			names[m.Name] = true
		}
	}
	maxRatio := ratioParam(rule, "maxRatio", 0.1)
	ratio := float64(unknown) / float64(len(ctx.Messages))
	if unknown == 0 || ratio <= maxRatio {
		return nil, nil
	}
	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	return []Diagnostic{{
		Ts: time.Now(), File: ctx.InputFile, RuleId: rule.RuleId, Severity: rule.Severity,
		Message: fmt.Sprintf("%.0f%% of messages have ids outside the %s dialect: %s",
			ratio*100, ctx.Dialect, strings.Join(list, ", ")),
		Refs: rule.Refs,
	}}, nil
}

// CheckHeartbeatPresent warns when a stream carries traffic but no HEARTBEAT,
// which usually means the capture started mid-session or the dialect is
// wrong.
func CheckHeartbeatPresent(ctx *Context, rule Rule) ([]Diagnostic, error) {
	if len(ctx.Messages) == 0 {
		return nil, nil
	}
	for _, m := range ctx.Messages {
		if m.Name == "HEARTBEAT" {
			return nil, nil
		}
	}
	return []Diagnostic{{
		Ts: time.Now(), File: ctx.InputFile, RuleId: rule.RuleId, Severity: rule.Severity,
		Message: "stream contains no HEARTBEAT messages", Refs: rule.Refs,
	}}, nil
}

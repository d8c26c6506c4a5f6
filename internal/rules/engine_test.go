package rules

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/mavgate/internal/dialect"
)

func message(name string, system, component, seq uint8, crcOK bool) dialect.ParsedMessage {
	return dialect.ParsedMessage{
		Name:        name,
		SystemID:    system,
		ComponentID: component,
		Sequence:    seq,
		CRCOK:       crcOK,
	}
}

func cleanStream() []dialect.ParsedMessage {
	return []dialect.ParsedMessage{
		message("HEARTBEAT", 1, 1, 0, true),
		message("ATTITUDE", 1, 1, 1, true),
		message("ATTITUDE", 1, 1, 2, true),
	}
}

func evalDefault(t *testing.T, messages []dialect.ParsedMessage) (*Engine, []Diagnostic) {
	t.Helper()
	engine := NewEngine(DefaultPack())
	engine.RegisterBuiltins()
	diags, err := engine.Eval(&Context{InputFile: "test.mavlink", Dialect: "common", Messages: messages})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return engine, diags
}

func TestCleanStreamPasses(t *testing.T) {
	engine, diags := evalDefault(t, cleanStream())
	if len(diags) != 0 {
		t.Fatalf("clean stream produced findings: %+v", diags)
	}
	rep := engine.MakeLinkReport()
	if !rep.Summary.Pass {
		t.Fatalf("clean stream did not pass")
	}
	if rep.Stats.Messages != 3 || rep.Stats.CRCFailures != 0 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
}

func TestEmptyStreamFails(t *testing.T) {
	engine, diags := evalDefault(t, nil)
	if len(diags) != 1 || diags[0].RuleId != "LNK-001" {
		t.Fatalf("diags = %+v, want single LNK-001", diags)
	}
	if engine.MakeLinkReport().Summary.Pass {
		t.Fatalf("empty stream passed")
	}
}

func TestCRCFailureFailsStream(t *testing.T) {
	messages := cleanStream()
	messages[1].CRCOK = false
	engine, diags := evalDefault(t, messages)

	found := false
	for _, d := range diags {
		if d.RuleId == "LNK-002" && d.Severity == ERROR {
			found = true
			if d.MessageIndex != 1 {
				t.Fatalf("MessageIndex = %d, want 1", d.MessageIndex)
			}
		}
	}
	if !found {
		t.Fatalf("no LNK-002 ERROR finding in %+v", diags)
	}
	rep := engine.MakeLinkReport()
	if rep.Summary.Pass {
		t.Fatalf("stream with crc failure passed")
	}
	if rep.Stats.CRCFailures != 1 {
		t.Fatalf("CRCFailures = %d", rep.Stats.CRCFailures)
	}
}

func TestCRCFailureWithinToleranceDowngraded(t *testing.T) {
	pack := DefaultPack()
	for i := range pack.Rules {
		if pack.Rules[i].RuleId == "LNK-002" {
			pack.Rules[i].Params = map[string]any{"maxRatio": 0.5}
		}
	}
	engine := NewEngine(pack)
	engine.RegisterBuiltins()
	messages := cleanStream()
	messages[2].CRCOK = false
	diags, err := engine.Eval(&Context{Messages: messages})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	for _, d := range diags {
		if d.RuleId == "LNK-002" && d.Severity != INFO {
			t.Fatalf("within-tolerance finding severity = %s, want INFO", d.Severity)
		}
	}
	if !engine.MakeLinkReport().Summary.Pass {
		t.Fatalf("within-tolerance stream failed")
	}
}

func TestSequenceGapDetection(t *testing.T) {
	messages := []dialect.ParsedMessage{
		message("HEARTBEAT", 1, 1, 250, true),
		message("HEARTBEAT", 1, 1, 251, true),
		// Other link interleaved: its counter is tracked separately.
		message("HEARTBEAT", 2, 1, 7, true),
		message("HEARTBEAT", 1, 1, 254, true), // expected 252, so two frames lost
		message("HEARTBEAT", 2, 1, 8, true),
		message("HEARTBEAT", 1, 1, 255, true),
		message("HEARTBEAT", 1, 1, 0, true), // wrap, no gap
	}
	engine, diags := evalDefault(t, messages)

	var gaps []Diagnostic
	for _, d := range diags {
		if d.RuleId == "LNK-003" {
			gaps = append(gaps, d)
		}
	}
	if len(gaps) != 1 {
		t.Fatalf("gap findings = %+v, want exactly one", gaps)
	}
	if gaps[0].SystemId != 1 || !strings.Contains(gaps[0].Message, "gap of 2") {
		t.Fatalf("gap finding = %+v", gaps[0])
	}
	if engine.MakeLinkReport().Stats.SequenceGaps != 1 {
		t.Fatalf("SequenceGaps = %d", engine.MakeLinkReport().Stats.SequenceGaps)
	}
}

func TestUnknownIDRatio(t *testing.T) {
	messages := []dialect.ParsedMessage{
		message("HEARTBEAT", 1, 1, 0, true),
		message("UNKNOWN_200", 1, 1, 1, false),
		message("UNKNOWN_201", 1, 1, 2, false),
		message("UNKNOWN_200", 1, 1, 3, false),
	}
	_, diags := evalDefault(t, messages)
	found := false
	for _, d := range diags {
		if d.RuleId == "LNK-004" {
			found = true
			if !strings.Contains(d.Message, "UNKNOWN_200") {
				t.Fatalf("unknown-id finding lacks names: %q", d.Message)
			}
		}
	}
	if !found {
		t.Fatalf("no unknown-id finding in %+v", diags)
	}
}

func TestHeartbeatMissingWarns(t *testing.T) {
	messages := []dialect.ParsedMessage{
		message("ATTITUDE", 1, 1, 0, true),
		message("ATTITUDE", 1, 1, 1, true),
	}
	engine, diags := evalDefault(t, messages)
	found := false
	for _, d := range diags {
		if d.RuleId == "LNK-005" && d.Severity == WARN {
			found = true
		}
	}
	if !found {
		t.Fatalf("no heartbeat warning in %+v", diags)
	}
	// Warnings alone do not fail the stream.
	if !engine.MakeLinkReport().Summary.Pass {
		t.Fatalf("warnings failed the stream")
	}
}

func TestUnregisteredCheckWarns(t *testing.T) {
	engine := NewEngine(RulePack{Rules: []Rule{
		{RuleId: "X-001", Severity: ERROR, Check: "NoSuchCheck"},
	}})
	diags, err := engine.Eval(&Context{Messages: cleanStream()})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(diags) != 1 || diags[0].Severity != WARN {
		t.Fatalf("diags = %+v, want single WARN", diags)
	}
}

func TestWriteDiagnosticsNDJSON(t *testing.T) {
	messages := cleanStream()
	messages[0].CRCOK = false
	engine, _ := evalDefault(t, messages)

	path := filepath.Join(t.TempDir(), "diagnostics.jsonl")
	if err := engine.WriteDiagnosticsNDJSON(path); err != nil {
		t.Fatalf("WriteDiagnosticsNDJSON: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if !strings.Contains(scanner.Text(), "\"ruleId\"") {
			t.Fatalf("line missing ruleId: %q", scanner.Text())
		}
		lines++
	}
	if lines == 0 {
		t.Fatalf("no NDJSON lines written")
	}
}

func TestLoadRulePack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	doc := `{"rulePackId":"custom","version":"2","rules":[{"ruleId":"C-1","severity":"WARN","checkFunction":"CheckHeartbeatPresent"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rp, err := LoadRulePack(path)
	if err != nil {
		t.Fatalf("LoadRulePack: %v", err)
	}
	if rp.RulePackId != "custom" || len(rp.Rules) != 1 || rp.Rules[0].Check != "CheckHeartbeatPresent" {
		t.Fatalf("pack = %+v", rp)
	}
}

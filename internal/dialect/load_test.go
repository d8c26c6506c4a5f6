package dialect

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `dialect: testlink
messages:
  - id: 0
    name: HEARTBEAT
    crc_extra: 50
    fields:
      - name: type
        type: uint8_t
      - name: autopilot
        type: uint8_t
      - name: base_mode
        type: uint8_t
      - name: custom_mode
        type: uint32_t
      - name: system_status
        type: uint8_t
      - name: mavlink_version
        type: uint8_t
  - id: 147
    name: BATTERY_STATUS
    crc_extra: 154
    fields:
      - name: id
        type: uint8_t
      - name: voltages
        type: uint16_t
        array_length: 10
      - name: fault_bitmask
        type: uint32_t
        extension: true
`

func TestFromYAML(t *testing.T) {
	d, err := FromYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if d.Name() != "testlink" {
		t.Fatalf("Name = %q", d.Name())
	}
	hb, ok := d.MessageByName("HEARTBEAT")
	if !ok {
		t.Fatalf("HEARTBEAT missing")
	}
	if hb.PayloadSize() != 9 {
		t.Fatalf("HEARTBEAT payload size = %d, want 9", hb.PayloadSize())
	}
	bs, ok := d.MessageByID(147)
	if !ok {
		t.Fatalf("BATTERY_STATUS missing")
	}
	if bs.Fields[1].Count() != 10 {
		t.Fatalf("voltages count = %d, want 10", bs.Fields[1].Count())
	}
	if bs.CorePayloadSize() != 21 || bs.PayloadSize() != 25 {
		t.Fatalf("sizes = %d/%d, want 21/25", bs.CorePayloadSize(), bs.PayloadSize())
	}
	extra, ok := d.CRCExtra(147)
	if !ok || extra != 154 {
		t.Fatalf("CRCExtra = %d/%v", extra, ok)
	}
}

func TestFromYAMLRejectsUnnamedDialect(t *testing.T) {
	if _, err := FromYAML([]byte("messages: []")); err == nil {
		t.Fatalf("expected error for missing dialect name")
	}
}

func TestFromYAMLValidatesDefinitions(t *testing.T) {
	bad := `dialect: broken
messages:
  - id: 1
    name: A
    crc_extra: 1
    fields:
      - name: x
        type: not_a_type
`
	if _, err := FromYAML([]byte(bad)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testlink.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	d, err := EnsureLoaded(path)
	if err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	if !d.SupportsID(0) || !d.SupportsID(147) {
		t.Fatalf("loaded dialect missing messages")
	}
}

func TestEnsureLoadedRejectsDirectory(t *testing.T) {
	if _, err := EnsureLoaded(t.TempDir()); err == nil {
		t.Fatalf("expected error for directory path")
	}
	if _, err := EnsureLoaded("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mavctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[decode]
dialect = "minimal"
chunk_size = 8192
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Decode.Dialect != "minimal" || cfg.Decode.ChunkSize != 8192 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Decode.Dialect != "" || cfg.Decode.ChunkSize != 0 {
		t.Fatalf("empty path should yield zero config: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadChunkSize(t *testing.T) {
	path := writeConfig(t, `
[decode]
chunk_size = -1
`)
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for negative chunk size")
	}
}

func TestApplyDecodeDefaults(t *testing.T) {
	cfg := fileConfig{Decode: decodeConfig{Dialect: "minimal", ChunkSize: 1024}}

	dialectFlag := ""
	chunk := 4096
	cfg.applyDecodeDefaults(&dialectFlag, &chunk)
	if dialectFlag != "minimal" || chunk != 1024 {
		t.Fatalf("defaults not applied: %q %d", dialectFlag, chunk)
	}

	// Explicit flags always win over the file.
	dialectFlag = "common"
	chunk = 512
	cfg.applyDecodeDefaults(&dialectFlag, &chunk)
	if dialectFlag != "common" || chunk != 512 {
		t.Fatalf("flags overridden: %q %d", dialectFlag, chunk)
	}
}

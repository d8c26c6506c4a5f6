package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig holds per-user mavctl defaults. Flags set to a value other than
// their default win over the file.
type fileConfig struct {
	Decode decodeConfig `toml:"decode"`
}

type decodeConfig struct {
	Dialect   string `toml:"dialect"`
	ChunkSize int    `toml:"chunk_size"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("load mavctl config: %w", err)
	}
	if meta.IsDefined("decode", "chunk_size") && cfg.Decode.ChunkSize <= 0 {
		return fileConfig{}, fmt.Errorf("mavctl config: chunk_size must be positive")
	}
	return cfg, nil
}

// applyDecodeDefaults fills flag values still at their defaults (empty
// dialect, 4096-byte chunks). A flag passed explicitly with the default value
// cannot be told apart and is replaced by the file's value.
func (c fileConfig) applyDecodeDefaults(dialectFlag *string, chunkSize *int) {
	if *dialectFlag == "" && c.Decode.Dialect != "" {
		*dialectFlag = c.Decode.Dialect
	}
	if *chunkSize == 4096 && c.Decode.ChunkSize > 0 {
		*chunkSize = c.Decode.ChunkSize
	}
}

package dialect

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"example.com/mavgate/internal/mav"
)

// YAMLFile is the on-disk catalog layout emitted by definition generators.
type YAMLFile struct {
	Dialect  string        `yaml:"dialect"`
	Messages []YAMLMessage `yaml:"messages"`
}

type YAMLMessage struct {
	ID       uint32      `yaml:"id"`
	Name     string      `yaml:"name"`
	CRCExtra uint8       `yaml:"crc_extra"`
	Fields   []YAMLField `yaml:"fields"`
}

type YAMLField struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	ArrayLength int    `yaml:"array_length,omitempty"`
	Extension   bool   `yaml:"extension,omitempty"`
}

// FromYAML builds a catalog from generator output. The data passes through
// the same validating constructor as compiled-in catalogs.
func FromYAML(data []byte) (*Dialect, error) {
	var file YAMLFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dialect yaml: %w", err)
	}
	if strings.TrimSpace(file.Dialect) == "" {
		return nil, fmt.Errorf("%w: dialect has no name", ErrBadDefinition)
	}
	messages := make([]Message, 0, len(file.Messages))
	crcExtras := make(map[uint32]uint8, len(file.Messages))
	for _, m := range file.Messages {
		fields := make([]mav.FieldDef, 0, len(m.Fields))
		for _, f := range m.Fields {
			fields = append(fields, mav.FieldDef{
				Name:        f.Name,
				Type:        f.Type,
				ArrayLength: f.ArrayLength,
				Extension:   f.Extension,
			})
		}
		messages = append(messages, Message{ID: m.ID, Name: m.Name, Fields: fields})
		crcExtras[m.ID] = m.CRCExtra
	}
	return New(file.Dialect, messages, crcExtras)
}

// Load reads a catalog definition file from path.
func Load(path string) (*Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// EnsureLoaded loads the catalog at path after basic sanity checks on the
// location.
func EnsureLoaded(path string) (*Dialect, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("empty dialect path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("dialect path %s is a directory", path)
	}
	return Load(path)
}

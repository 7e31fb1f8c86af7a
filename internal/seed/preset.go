package seed

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"

	"truthfeed/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFS embed.FS

// Preset describes a study to seed.
type Preset struct {
	Name         string                       `yaml:"name"`
	Admin        AdminPreset                  `yaml:"admin"`
	Open         bool                         `yaml:"open"`
	UI           models.StudyUISettings       `yaml:"ui"`
	Basic        models.StudyBasicSettings    `yaml:"basic"`
	Advanced     models.StudyAdvancedSettings `yaml:"advanced"`
	Pages        *models.StudyPagesSettings   `yaml:"pages"`
	Sources      []SourcePreset               `yaml:"sources"`
	FakeSources  int                          `yaml:"fake_sources"`
	Participants ParticipantPreset            `yaml:"participants"`
}

type AdminPreset struct {
	AccessRight int `yaml:"access_right"`
}

type SourcePreset struct {
	Name               string `yaml:"name"`
	Style              string `yaml:"style"`
	MaxPosts           int    `yaml:"max_posts"`
	TruePostPercentage int    `yaml:"true_post_percentage"`
	Avatar             string `yaml:"avatar"`
}

type ParticipantPreset struct {
	Count              int `yaml:"count"`
	InitialFollowers   int `yaml:"initial_followers"`
	InitialCredibility int `yaml:"initial_credibility"`
}

// Validate checks the preset before anything is written.
func (p *Preset) Validate() error {
	if p.Basic.Name == "" {
		return fmt.Errorf("preset %q: basic.name is required", p.Name)
	}
	for i, s := range p.Sources {
		if s.Name == "" {
			return fmt.Errorf("preset %q: source %d has no name", p.Name, i)
		}
		if s.TruePostPercentage < 0 || s.TruePostPercentage > 100 {
			return fmt.Errorf("preset %q: source %q true_post_percentage must be between 0 and 100", p.Name, s.Name)
		}
	}
	if p.FakeSources < 0 || p.Participants.Count < 0 {
		return fmt.Errorf("preset %q: counts must not be negative", p.Name)
	}
	return nil
}

// ParsePreset decodes a YAML preset. Unknown keys are rejected.
func ParsePreset(r io.Reader) (*Preset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Preset
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPreset returns a built-in preset by name.
func LoadPreset(name string) (*Preset, error) {
	raw, err := presetFS.ReadFile("presets/" + name + ".yml")
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return ParsePreset(bytes.NewReader(raw))
}

// LoadPresetFile reads a preset from disk.
func LoadPresetFile(path string) (*Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePreset(f)
}

// DefaultPreset is the example study.
func DefaultPreset() (*Preset, error) {
	return LoadPreset("example")
}

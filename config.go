package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Placement of a compressed run relative to the preceding direct-copy
// segment.
const (
	ModeAppend    = "append"    // written after it; overlap with the next segment is reported
	ModeOverwrite = "overwrite" // written over it; must fit its original length
)

// SlotConfig describes one reservation slot: a Z80 run anchored at the
// given address, compressed with the given codec, its measured size
// published to the sidecar under the given constant name.
type SlotConfig struct {
	Anchor   uint32 `yaml:"anchor"`
	Codec    string `yaml:"codec"`
	Constant string `yaml:"constant"`
	Mode     string `yaml:"mode"`
	// Fatal controls the reservation-overflow policy for this slot:
	// abort the conversion, or warn and keep going. The mode-dependent
	// defaults of the older tools are deliberately not inferred here.
	Fatal bool `yaml:"fatal"`
}

type Config struct {
	Padding byte   `yaml:"padding"`
	Sidecar string `yaml:"sidecar"`
	// Compatibility forces overwrite placement on every slot, matching
	// builds whose ROM layout reserves the driver space in the source.
	Compatibility bool         `yaml:"compatibility"`
	Slots         []SlotConfig `yaml:"slots"`
}

func DefaultConfig() *Config {
	return &Config{
		Slots: []SlotConfig{{
			Anchor:   0,
			Codec:    "kosinski",
			Constant: "comp_z80_size",
			Mode:     ModeAppend,
		}},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Slots) == 0 {
		return fmt.Errorf("no reservation slots configured")
	}
	if len(c.Slots) > 2 {
		return fmt.Errorf("at most two reservation slots are supported, got %d", len(c.Slots))
	}
	seen := make(map[uint32]bool)
	for i := range c.Slots {
		s := &c.Slots[i]
		if seen[s.Anchor] {
			return fmt.Errorf("duplicate slot anchor 0x%X", s.Anchor)
		}
		seen[s.Anchor] = true
		if s.Anchor >= z80RAMSize {
			return fmt.Errorf("slot anchor 0x%X is outside Z80 RAM (ends at 0x%X)",
				s.Anchor, z80RAMSize)
		}
		if s.Constant == "" {
			s.Constant = "comp_z80_size"
		}
		if s.Codec == "" {
			s.Codec = "kosinski"
		}
		if s.Mode == "" {
			s.Mode = ModeAppend
		}
		if s.Mode != ModeAppend && s.Mode != ModeOverwrite {
			return fmt.Errorf("slot 0x%X: unknown placement mode %q", s.Anchor, s.Mode)
		}
		if _, err := NewCodec(s.Codec); err != nil {
			return fmt.Errorf("slot 0x%X: %w", s.Anchor, err)
		}
	}
	return nil
}

// EffectiveMode resolves a slot's placement mode against the
// compatibility toggle.
func (c *Config) EffectiveMode(s *SlotConfig) string {
	if c.Compatibility {
		return ModeOverwrite
	}
	return s.Mode
}

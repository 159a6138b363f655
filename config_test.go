package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segbin.yaml")
	text := `
padding: 0xff
compatibility: true
sidecar: z80size.asm
slots:
  - anchor: 0x0
    codec: saxman
    constant: comp_z80_size
    mode: overwrite
  - anchor: 0x1300
    codec: kosinski
    constant: comp_z80_size2
    mode: append
    fatal: true
`
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.Padding != 0xff {
		t.Errorf("padding: got 0x%X, want 0xFF", cfg.Padding)
	}
	if cfg.Sidecar != "z80size.asm" {
		t.Errorf("sidecar: got %q", cfg.Sidecar)
	}
	if len(cfg.Slots) != 2 {
		t.Fatalf("slots: got %d, want 2", len(cfg.Slots))
	}
	if cfg.Slots[1].Anchor != 0x1300 || !cfg.Slots[1].Fatal {
		t.Errorf("second slot parsed wrong: %+v", cfg.Slots[1])
	}
	// Compatibility forces overwrite placement everywhere.
	if cfg.EffectiveMode(&cfg.Slots[1]) != ModeOverwrite {
		t.Error("compatibility toggle did not force overwrite placement")
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{Slots: []SlotConfig{{Anchor: 0}}}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	s := &cfg.Slots[0]
	if s.Codec != "kosinski" || s.Constant != "comp_z80_size" || s.Mode != ModeAppend {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestValidateRejects(t *testing.T) {
	var configs = []struct {
		name string
		cfg  Config
	}{
		{"no slots", Config{}},
		{"three slots", Config{Slots: []SlotConfig{{Anchor: 0}, {Anchor: 1}, {Anchor: 2}}}},
		{"duplicate anchors", Config{Slots: []SlotConfig{{Anchor: 5}, {Anchor: 5}}}},
		{"anchor outside RAM", Config{Slots: []SlotConfig{{Anchor: z80RAMSize}}}},
		{"bad mode", Config{Slots: []SlotConfig{{Anchor: 0, Mode: "sideways"}}}},
		{"bad codec", Config{Slots: []SlotConfig{{Anchor: 0, Codec: "lzma"}}}},
	}
	for _, tt := range configs {
		if err := tt.cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", tt.name)
		}
	}
}

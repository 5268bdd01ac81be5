package wbsconfig

import (
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.LMType != "NGrams" {
		t.Errorf("default LMType = %q; want NGrams", cfg.LMType)
	}
	if cfg.BeamWidth != 25 {
		t.Errorf("default BeamWidth = %d; want 25", cfg.BeamWidth)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	input := `
sample_dir = "fixtures"
lm_type = "Words"
beam_width = 10
smoothing = 0.25
seed = 7
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.SampleDir != "fixtures" || cfg.LMType != "Words" || cfg.BeamWidth != 10 || cfg.Smoothing != 0.25 || cfg.Seed != 7 {
		t.Errorf("Parse() = %+v; fields not overridden as expected", cfg)
	}
}

func TestRelToConfigResolvesRelativePaths(t *testing.T) {
	got := relToConfig("/etc/wbs/config.toml", "samples")
	if want := "/etc/wbs/samples"; got != want {
		t.Errorf("relToConfig() = %q; want %q", got, want)
	}
}

func TestRelToConfigLeavesAbsolutePaths(t *testing.T) {
	got := relToConfig("/etc/wbs/config.toml", "/data/samples")
	if want := "/data/samples"; got != want {
		t.Errorf("relToConfig() = %q; want %q", got, want)
	}
}

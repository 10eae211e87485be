package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.World.Width <= 0 || cfg.World.Height <= 0 {
		t.Fatalf("bad default dimensions %dx%d", cfg.World.Width, cfg.World.Height)
	}
	if want := int(float64(cfg.World.Height) * cfg.World.GroundLevel); cfg.Derived.GroundY != want {
		t.Errorf("GroundY = %d, want %d", cfg.Derived.GroundY, want)
	}
	if cfg.Diffusion.Mode != DiffusionContinuous {
		t.Errorf("expected continuous diffusion by default, got %q", cfg.Diffusion.Mode)
	}
	if cfg.BuildTime("leaf") != cfg.Build.Time["leaf"] {
		t.Errorf("BuildTime(leaf) = %d, want %d", cfg.BuildTime("leaf"), cfg.Build.Time["leaf"])
	}
}

func TestEmbeddedDefaultsMatchSchema(t *testing.T) {
	if err := Validate(defaultsYAML); err != nil {
		t.Fatalf("embedded defaults fail validation: %v", err)
	}
}

func TestBuildTimeNormalizesNames(t *testing.T) {
	cfg := Default()
	cfg.Build.Time = map[string]int{"Leaf": 3, "root": -2}
	cfg.computeDerived()

	if got := cfg.BuildTime(" LEAF "); got != 3 {
		t.Errorf("BuildTime(LEAF) = %d, want 3", got)
	}
	if got := cfg.BuildTime("root"); got != 0 {
		t.Errorf("negative build time should clamp to 0, got %d", got)
	}
	if got := cfg.BuildTime("unknown"); got != 0 {
		t.Errorf("unknown kinds mature immediately, got %d", got)
	}
}

func TestGroundYClamped(t *testing.T) {
	cfg := Default()
	cfg.World.Height = 10

	cfg.World.GroundLevel = 0
	cfg.computeDerived()
	if cfg.Derived.GroundY != 1 {
		t.Errorf("GroundY = %d, want 1", cfg.Derived.GroundY)
	}

	cfg.World.GroundLevel = 1
	cfg.computeDerived()
	if cfg.Derived.GroundY != 10 {
		t.Errorf("GroundY = %d, want 10", cfg.Derived.GroundY)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTemp(t, "world:\n  width: 12\ndiffusion:\n  mode: discrete\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width != 12 {
		t.Errorf("width = %d, want 12", cfg.World.Width)
	}
	if cfg.Diffusion.Mode != DiffusionDiscrete {
		t.Errorf("mode = %q, want discrete", cfg.Diffusion.Mode)
	}
	if cfg.World.Height != Default().World.Height {
		t.Errorf("unset fields should keep their defaults, height = %d", cfg.World.Height)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeTemp(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width != Default().World.Width {
		t.Errorf("empty file should leave defaults, width = %d", cfg.World.Width)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown section", "weather:\n  rain: 1\n"},
		{"unknown key", "world:\n  depth: 3\n"},
		{"wrong type", "world:\n  width: wide\n"},
		{"rate out of range", "diffusion:\n  tissue:\n    water: 1.5\n"},
		{"bad mode", "diffusion:\n  mode: turbulent\n"},
		{"fractional turns", "root:\n  cooldown: 2.5\n"},
		{"unknown build kind", "build:\n  time:\n    soil: 3\n"},
		{"zero capacity", "inventory:\n  tissue: 0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tc.body)); err == nil {
				t.Fatal("expected an error")
			} else if !strings.Contains(err.Error(), "validating config file") {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.World.Seed = 7
	cfg.Leaf.ReactionRate = 0.35
	cfg.Build.Time["fruit"] = 4

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.World.Seed != 7 || got.Leaf.ReactionRate != 0.35 || got.BuildTime("fruit") != 4 {
		t.Errorf("round trip lost values: seed=%d rate=%v fruit=%d",
			got.World.Seed, got.Leaf.ReactionRate, got.BuildTime("fruit"))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Build.Time["leaf"] = 99
	clone.computeDerived()

	if cfg.BuildTime("leaf") == 99 {
		t.Error("mutating the clone changed the original")
	}
}

func TestInitAndCfg(t *testing.T) {
	prev := global
	defer func() { global = prev }()

	global = nil
	func() {
		defer func() {
			if recover() == nil {
				t.Error("Cfg before Init should panic")
			}
		}()
		Cfg()
	}()

	MustInit("")
	if Cfg().World.Width != Default().World.Width {
		t.Error("Init with empty path should load defaults")
	}
}

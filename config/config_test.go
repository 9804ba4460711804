package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.Grid.Resolution != 32 {
		t.Errorf("resolution = %d, want 32", cfg.Grid.Resolution)
	}
	if cfg.Grid.PICFraction != 0.95 {
		t.Errorf("pic_fraction = %v, want 0.95", cfg.Grid.PICFraction)
	}
	if cfg.Physics.Integrator != IntegratorMidpoint {
		t.Errorf("integrator = %q, want midpoint", cfg.Physics.Integrator)
	}
	if cfg.Derived.ParticleCapacity != 64*64*64 {
		t.Errorf("particle capacity = %d, want 262144", cfg.Derived.ParticleCapacity)
	}
	if cfg.Derived.Workers < 1 {
		t.Errorf("derived workers = %d", cfg.Derived.Workers)
	}
	if cfg.Derived.DT32 != float32(cfg.Physics.DT) {
		t.Errorf("dt32 = %v, dt = %v", cfg.Derived.DT32, cfg.Physics.DT)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
grid:
  resolution: 16
  sand_min: [4, 8, 4]
  sand_max: [11, 13, 11]
physics:
  integrator: euler
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Grid.Resolution != 16 {
		t.Errorf("resolution = %d, want 16", cfg.Grid.Resolution)
	}
	if cfg.Physics.Integrator != IntegratorEuler {
		t.Errorf("integrator = %q, want euler", cfg.Physics.Integrator)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Physics.DT != 0.016 {
		t.Errorf("dt = %v, want default 0.016", cfg.Physics.DT)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"resolution too small", func(c *Config) { c.Grid.Resolution = 2 }},
		{"sand min above max", func(c *Config) { c.Grid.SandMin[1] = 20; c.Grid.SandMax[1] = 10 }},
		{"sand on shell", func(c *Config) { c.Grid.SandMin[0] = 0 }},
		{"sand past interior", func(c *Config) { c.Grid.SandMax[2] = 31 }},
		{"negative pic fraction", func(c *Config) { c.Grid.PICFraction = -0.1 }},
		{"pic fraction above one", func(c *Config) { c.Grid.PICFraction = 1.5 }},
		{"zero dt", func(c *Config) { c.Physics.DT = 0 }},
		{"unknown integrator", func(c *Config) { c.Physics.Integrator = "rk4" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Grid.Resolution = 24
	cfg.Grid.SandMax = [3]int{20, 20, 20}
	cfg.Grid.SandMin = [3]int{4, 4, 4}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if loaded.Grid.Resolution != 24 {
		t.Errorf("round-tripped resolution = %d, want 24", loaded.Grid.Resolution)
	}
}

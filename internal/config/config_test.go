package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "non positive drain budget",
			mutate: func(cfg *Config) {
				cfg.Remesh.DrainPerTick = 0
			},
			wantErr: "remesh.drainPerTick must be positive",
		},
		{
			name: "missing chase range",
			mutate: func(cfg *Config) {
				cfg.Agent.ChaseRange = 0
			},
			wantErr: "agent.chaseRange must be positive",
		},
		{
			name: "explode range beyond chase range",
			mutate: func(cfg *Config) {
				cfg.Agent.ExplodeRange = cfg.Agent.ChaseRange
			},
			wantErr: "agent.explodeRange must be positive and below agent.chaseRange",
		},
		{
			name: "chase slower than wander",
			mutate: func(cfg *Config) {
				cfg.Agent.ChaseSpeed = cfg.Agent.WanderSpeed
			},
			wantErr: "agent.chaseSpeed must exceed agent.wanderSpeed",
		},
		{
			name: "decay rate not below one",
			mutate: func(cfg *Config) {
				cfg.Agent.DecayRate = 1
			},
			wantErr: "agent.decayRate must be in [0, 1)",
		},
		{
			name: "inverted wander interval",
			mutate: func(cfg *Config) {
				cfg.Agent.WanderMax = Duration(time.Second)
			},
			wantErr: "agent.wanderMax must be >= agent.wanderMin > 0",
		},
		{
			name: "unknown corridor axis",
			mutate: func(cfg *Config) {
				cfg.Agent.Corridors[1].Axis = "y"
			},
			wantErr: "agent.corridors[1].axis must be x or z",
		},
		{
			name: "no respawn attempts",
			mutate: func(cfg *Config) {
				cfg.Agent.MaxRespawnAttempts = 0
			},
			wantErr: "agent.maxRespawnAttempts must be positive",
		},
		{
			name: "upward gravity",
			mutate: func(cfg *Config) {
				cfg.Motion.Gravity = 9.8
			},
			wantErr: "motion.gravity must be negative",
		},
		{
			name: "positive resting velocity",
			mutate: func(cfg *Config) {
				cfg.Motion.RestingVelocity = 0.5
			},
			wantErr: "motion.restingVelocity cannot be positive",
		},
		{
			name: "dead zone covers stick",
			mutate: func(cfg *Config) {
				cfg.Input.DeadZone = 1
			},
			wantErr: "input.deadZone must be in [0, 1)",
		},
		{
			name: "missing frame delta clamp",
			mutate: func(cfg *Config) {
				cfg.Loop.MaxFrameDelta = 0
			},
			wantErr: "loop.maxFrameDelta must be positive",
		},
		{
			name: "metrics without listen address",
			mutate: func(cfg *Config) {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Listen = ""
			},
			wantErr: "metrics.listen must be set when metrics are enabled",
		},
		{
			name: "unknown box block",
			mutate: func(cfg *Config) {
				cfg.Arena.Boxes[2].Block = "lava"
			},
			wantErr: `arena.boxes[2].block: unknown block type "lava"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.World.Seed = 99
	cfg.Remesh.DrainPerTick = 9
	cfg.Input.BreakInterval = Duration(400 * time.Millisecond)

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadYAMLMatchesJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Agent.BlastRadius = 6
	cfg.Loop.MaxFrames = 300

	jsonData, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	jsonPath := filepath.Join(dir, "config.json")
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(jsonPath, jsonData, 0o600); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := os.WriteFile(yamlPath, yamlData, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	fromJSON, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	fromYAML, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if !reflect.DeepEqual(fromJSON, fromYAML) {
		t.Fatalf("yaml and json disagree:\njson: %#v\nyaml: %#v", fromJSON, fromYAML)
	}
	if fromYAML.Agent.BlastRadius != 6 || fromYAML.Loop.MaxFrames != 300 {
		t.Fatalf("yaml overrides lost: %#v", fromYAML)
	}
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	payload := "remesh:\n  drainPerTick: 2\nmotion:\n  coyoteTime: 200ms\ninput:\n  breakInterval: 100000000\n"
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if cfg.Remesh.DrainPerTick != 2 {
		t.Fatalf("drainPerTick = %d", cfg.Remesh.DrainPerTick)
	}
	if got := cfg.Motion.CoyoteTime.Duration(); got != 200*time.Millisecond {
		t.Fatalf("coyoteTime = %v", got)
	}
	if got := cfg.Input.BreakInterval.Duration(); got != 100*time.Millisecond {
		t.Fatalf("breakInterval = %v", got)
	}
	if cfg.Agent.ChaseRange != Default().Agent.ChaseRange {
		t.Fatalf("unset fields should keep defaults")
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Remesh.DrainPerTick = -1

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: remesh.drainPerTick must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDurationUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{input: `"150ms"`, want: 150 * time.Millisecond},
		{input: `""`, want: 0},
		{input: `null`, want: 0},
		{input: `2000000`, want: 2 * time.Millisecond},
	}
	for _, tt := range tests {
		var d Duration
		if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.input, err)
		}
		if d.Duration() != tt.want {
			t.Fatalf("unmarshal %s = %v, want %v", tt.input, d.Duration(), tt.want)
		}
	}

	var d Duration
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

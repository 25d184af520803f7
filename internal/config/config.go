package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cityblast/internal/world"
	"gopkg.in/yaml.v3"
)

// Duration is a JSON and YAML friendly wrapper around time.Duration that
// accepts human readable strings such as "150ms" in configuration files while
// still allowing numeric nanosecond values.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML encodes the duration as its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected scalar at line %d", node.Line)
	}
	if node.Tag == "!!int" || node.Tag == "!!float" {
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("duration: decode number: %w", err)
		}
		*d = Duration(time.Duration(f))
		return nil
	}
	if node.Tag == "!!null" {
		*d = 0
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures the tunable parameters of a simulation session.
type Config struct {
	World   WorldConfig   `json:"world" yaml:"world"`
	Remesh  RemeshConfig  `json:"remesh" yaml:"remesh"`
	Agent   AgentConfig   `json:"agent" yaml:"agent"`
	Motion  MotionConfig  `json:"motion" yaml:"motion"`
	Input   InputConfig   `json:"input" yaml:"input"`
	Loop    LoopConfig    `json:"loop" yaml:"loop"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Arena   ArenaConfig   `json:"arena" yaml:"arena"`
}

type WorldConfig struct {
	Seed        int64  `json:"seed" yaml:"seed"`               // drives every random choice of the agent
	PreviewPath string `json:"previewPath" yaml:"previewPath"` // optional PNG written at shutdown
}

type RemeshConfig struct {
	DrainPerTick int `json:"drainPerTick" yaml:"drainPerTick"` // chunk rebuilds allowed per frame
}

type AgentConfig struct {
	ChaseRange         float32          `json:"chaseRange" yaml:"chaseRange"`
	ExplodeRange       float32          `json:"explodeRange" yaml:"explodeRange"`
	WanderSpeed        float32          `json:"wanderSpeed" yaml:"wanderSpeed"`
	ChaseSpeed         float32          `json:"chaseSpeed" yaml:"chaseSpeed"`
	FuseThreshold      float32          `json:"fuseThreshold" yaml:"fuseThreshold"` // seconds of contact
	DecayRate          float32          `json:"decayRate" yaml:"decayRate"`
	BlastRadius        float32          `json:"blastRadius" yaml:"blastRadius"`
	WanderMin          Duration         `json:"wanderMin" yaml:"wanderMin"`
	WanderMax          Duration         `json:"wanderMax" yaml:"wanderMax"`
	MaxRespawnAttempts int              `json:"maxRespawnAttempts" yaml:"maxRespawnAttempts"`
	Corridors          []CorridorConfig `json:"corridors" yaml:"corridors"`
	CorridorClearance  float32          `json:"corridorClearance" yaml:"corridorClearance"`
	MinRespawnDistance float32          `json:"minRespawnDistance" yaml:"minRespawnDistance"`
	RespawnMin         Vec2             `json:"respawnMin" yaml:"respawnMin"`
	RespawnMax         Vec2             `json:"respawnMax" yaml:"respawnMax"`
	RespawnHeight      float32          `json:"respawnHeight" yaml:"respawnHeight"`
	DefaultSpawn       Vec3             `json:"defaultSpawn" yaml:"defaultSpawn"`
	HalfWidth          float32          `json:"halfWidth" yaml:"halfWidth"`
	Height             float32          `json:"height" yaml:"height"`
}

type CorridorConfig struct {
	Axis      string  `json:"axis" yaml:"axis"` // "x" or "z"
	Coord     float32 `json:"coord" yaml:"coord"`
	HalfWidth float32 `json:"halfWidth" yaml:"halfWidth"`
}

type MotionConfig struct {
	MaxSpeed        float32  `json:"maxSpeed" yaml:"maxSpeed"`
	Acceleration    float32  `json:"acceleration" yaml:"acceleration"`
	Friction        float32  `json:"friction" yaml:"friction"`
	Gravity         float32  `json:"gravity" yaml:"gravity"`
	JumpSpeed       float32  `json:"jumpSpeed" yaml:"jumpSpeed"`
	CoyoteTime      Duration `json:"coyoteTime" yaml:"coyoteTime"`
	ProbeLift       float32  `json:"probeLift" yaml:"probeLift"`
	ProbeDepth      float32  `json:"probeDepth" yaml:"probeDepth"`
	RestingVelocity float32  `json:"restingVelocity" yaml:"restingVelocity"`
	LookSpeed       float32  `json:"lookSpeed" yaml:"lookSpeed"` // radians per second at full deflection
	HalfWidth       float32  `json:"halfWidth" yaml:"halfWidth"`
	Height          float32  `json:"height" yaml:"height"`
}

type InputConfig struct {
	DeadZone      float32  `json:"deadZone" yaml:"deadZone"`
	BreakInterval Duration `json:"breakInterval" yaml:"breakInterval"`
	Reach         float32  `json:"reach" yaml:"reach"`
	EyeHeight     float32  `json:"eyeHeight" yaml:"eyeHeight"`
}

type LoopConfig struct {
	FrameInterval Duration `json:"frameInterval" yaml:"frameInterval"` // e.g. "16ms"
	MaxFrameDelta Duration `json:"maxFrameDelta" yaml:"maxFrameDelta"` // clamp applied to every frame delta
	MaxFrames     int      `json:"maxFrames" yaml:"maxFrames"`         // zero runs until cancelled
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Listen  string `json:"listen" yaml:"listen"`
}

type ArenaConfig struct {
	HalfExtent  int         `json:"halfExtent" yaml:"halfExtent"` // slab spans [-halfExtent, halfExtent] on x and z
	Ground      string      `json:"ground" yaml:"ground"`
	Boxes       []BoxConfig `json:"boxes" yaml:"boxes"`
	PlayerSpawn Vec3        `json:"playerSpawn" yaml:"playerSpawn"`
	AgentSpawn  Vec3        `json:"agentSpawn" yaml:"agentSpawn"`
}

// BoxConfig fills the inclusive block box [Min, Max] with Block.
type BoxConfig struct {
	Min   BlockPos `json:"min" yaml:"min"`
	Max   BlockPos `json:"max" yaml:"max"`
	Block string   `json:"block" yaml:"block"`
}

type BlockPos struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

type Vec2 struct {
	X float32 `json:"x" yaml:"x"`
	Z float32 `json:"z" yaml:"z"`
}

type Vec3 struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
	Z float32 `json:"z" yaml:"z"`
}

// Load reads configuration from a JSON or YAML file, chosen by extension, on
// top of the defaults. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed: 1337,
		},
		Remesh: RemeshConfig{
			DrainPerTick: 4,
		},
		Agent: AgentConfig{
			ChaseRange:         12,
			ExplodeRange:       2.5,
			WanderSpeed:        1.5,
			ChaseSpeed:         3.5,
			FuseThreshold:      1.5,
			DecayRate:          0.5,
			BlastRadius:        4,
			WanderMin:          Duration(2 * time.Second),
			WanderMax:          Duration(5 * time.Second),
			MaxRespawnAttempts: 16,
			Corridors: []CorridorConfig{
				{Axis: "x", Coord: 0, HalfWidth: 3},
				{Axis: "z", Coord: 0, HalfWidth: 3},
			},
			CorridorClearance:  2,
			MinRespawnDistance: 16,
			RespawnMin:         Vec2{X: -40, Z: -40},
			RespawnMax:         Vec2{X: 40, Z: 40},
			RespawnHeight:      1,
			DefaultSpawn:       Vec3{X: 20.5, Y: 1, Z: 20.5},
			HalfWidth:          0.35,
			Height:             1.6,
		},
		Motion: MotionConfig{
			MaxSpeed:        6,
			Acceleration:    12,
			Friction:        20,
			Gravity:         -24,
			JumpSpeed:       8.5,
			CoyoteTime:      Duration(120 * time.Millisecond),
			ProbeLift:       0.05,
			ProbeDepth:      0.15,
			RestingVelocity: -1,
			LookSpeed:       2.5,
			HalfWidth:       0.3,
			Height:          1.8,
		},
		Input: InputConfig{
			DeadZone:      0.15,
			BreakInterval: Duration(250 * time.Millisecond),
			Reach:         5,
			EyeHeight:     1.6,
		},
		Loop: LoopConfig{
			FrameInterval: Duration(16 * time.Millisecond),
			MaxFrameDelta: Duration(50 * time.Millisecond),
			MaxFrames:     0,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9464",
		},
		Arena: ArenaConfig{
			HalfExtent: 48,
			Ground:     "road",
			Boxes: []BoxConfig{
				{Min: BlockPos{X: -44, Y: 0, Z: -44}, Max: BlockPos{X: -4, Y: 0, Z: -4}, Block: "sidewalk"},
				{Min: BlockPos{X: 6, Y: 1, Z: 6}, Max: BlockPos{X: 14, Y: 12, Z: 14}, Block: "building"},
				{Min: BlockPos{X: 6, Y: 13, Z: 6}, Max: BlockPos{X: 14, Y: 13, Z: 14}, Block: "roof"},
				{Min: BlockPos{X: -14, Y: 1, Z: 8}, Max: BlockPos{X: -8, Y: 8, Z: 16}, Block: "building"},
				{Min: BlockPos{X: 4, Y: 1, Z: -6}, Max: BlockPos{X: 5, Y: 2, Z: -5}, Block: "crate"},
			},
			PlayerSpawn: Vec3{X: 0.5, Y: 1, Z: -10.5},
			AgentSpawn:  Vec3{X: -20.5, Y: 1, Z: -20.5},
		},
	}
}

func (c *Config) Validate() error {
	if c.Remesh.DrainPerTick <= 0 {
		return errors.New("remesh.drainPerTick must be positive")
	}
	if err := c.Agent.validate(); err != nil {
		return err
	}
	if c.Motion.MaxSpeed <= 0 {
		return errors.New("motion.maxSpeed must be positive")
	}
	if c.Motion.Acceleration <= 0 || c.Motion.Friction <= 0 {
		return errors.New("motion.acceleration and motion.friction must be positive")
	}
	if c.Motion.Gravity >= 0 {
		return errors.New("motion.gravity must be negative")
	}
	if c.Motion.RestingVelocity > 0 {
		return errors.New("motion.restingVelocity cannot be positive")
	}
	if c.Motion.CoyoteTime < 0 {
		return errors.New("motion.coyoteTime cannot be negative")
	}
	if c.Motion.HalfWidth <= 0 || c.Motion.Height <= 0 {
		return errors.New("motion body dimensions must be positive")
	}
	if c.Input.DeadZone < 0 || c.Input.DeadZone >= 1 {
		return errors.New("input.deadZone must be in [0, 1)")
	}
	if c.Input.Reach <= 0 {
		return errors.New("input.reach must be positive")
	}
	if c.Loop.FrameInterval <= 0 {
		return errors.New("loop.frameInterval must be positive")
	}
	if c.Loop.MaxFrameDelta <= 0 {
		return errors.New("loop.maxFrameDelta must be positive")
	}
	if c.Loop.MaxFrames < 0 {
		return errors.New("loop.maxFrames cannot be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New("metrics.listen must be set when metrics are enabled")
	}
	return c.Arena.validate()
}

func (a *AgentConfig) validate() error {
	if a.ChaseRange <= 0 {
		return errors.New("agent.chaseRange must be positive")
	}
	if a.ExplodeRange <= 0 || a.ExplodeRange >= a.ChaseRange {
		return errors.New("agent.explodeRange must be positive and below agent.chaseRange")
	}
	if a.WanderSpeed < 0 || a.ChaseSpeed <= a.WanderSpeed {
		return errors.New("agent.chaseSpeed must exceed agent.wanderSpeed")
	}
	if a.FuseThreshold <= 0 {
		return errors.New("agent.fuseThreshold must be positive")
	}
	if a.DecayRate < 0 || a.DecayRate >= 1 {
		return errors.New("agent.decayRate must be in [0, 1)")
	}
	if a.BlastRadius < 0 {
		return errors.New("agent.blastRadius cannot be negative")
	}
	if a.WanderMin <= 0 || a.WanderMax < a.WanderMin {
		return errors.New("agent.wanderMax must be >= agent.wanderMin > 0")
	}
	if a.MaxRespawnAttempts <= 0 {
		return errors.New("agent.maxRespawnAttempts must be positive")
	}
	if a.RespawnMax.X < a.RespawnMin.X || a.RespawnMax.Z < a.RespawnMin.Z {
		return errors.New("agent.respawnMax must be >= agent.respawnMin")
	}
	for i, corridor := range a.Corridors {
		if corridor.Axis != "x" && corridor.Axis != "z" {
			return fmt.Errorf("agent.corridors[%d].axis must be x or z", i)
		}
		if corridor.HalfWidth < 0 {
			return fmt.Errorf("agent.corridors[%d].halfWidth cannot be negative", i)
		}
	}
	if a.HalfWidth <= 0 || a.Height <= 0 {
		return errors.New("agent body dimensions must be positive")
	}
	return nil
}

func (a *ArenaConfig) validate() error {
	if a.HalfExtent <= 0 {
		return errors.New("arena.halfExtent must be positive")
	}
	if _, err := world.ParseBlockType(a.Ground); err != nil {
		return fmt.Errorf("arena.ground: %w", err)
	}
	for i, box := range a.Boxes {
		if _, err := world.ParseBlockType(box.Block); err != nil {
			return fmt.Errorf("arena.boxes[%d].block: %w", i, err)
		}
	}
	return nil
}

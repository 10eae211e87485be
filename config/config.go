// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Diffusion modes for water transfer between neighboring ledgers.
const (
	DiffusionContinuous = "continuous"
	DiffusionDiscrete   = "discrete"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Inventory InventoryConfig `yaml:"inventory"`
	Diffusion DiffusionConfig `yaml:"diffusion"`
	Cell      CellConfig      `yaml:"cell"`
	Build     BuildConfig     `yaml:"build"`
	Leaf      LeafConfig      `yaml:"leaf"`
	Root      RootConfig      `yaml:"root"`
	Transport TransportConfig `yaml:"transport"`
	Fountain  FountainConfig  `yaml:"fountain"`
	Sunlight  SunlightConfig  `yaml:"sunlight"`
	CO2       CO2Config       `yaml:"co2"`
	Win       WinConfig       `yaml:"win"`
	Player    PlayerConfig    `yaml:"player"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and the RNG seed.
type WorldConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	GroundLevel float64 `yaml:"ground_level"` // Fraction of height where soil starts
	Seed        int64   `yaml:"seed"`
}

// TerrainConfig holds procedural terrain parameters.
type TerrainConfig struct {
	NoiseScale    float64 `yaml:"noise_scale"`
	RockThreshold float64 `yaml:"rock_threshold"` // Noise value above which soil becomes rock
	SoilWater     float64 `yaml:"soil_water"`     // Initial water per soil tile
	FountainCount int     `yaml:"fountain_count"`
	StartTissue   int     `yaml:"start_tissue"` // Tissue cells seeded in a column under the player
}

// InventoryConfig holds ledger capacities per owner type.
type InventoryConfig struct {
	Player    float64 `yaml:"player"`
	Soil      float64 `yaml:"soil"`
	Fountain  float64 `yaml:"fountain"`
	Tissue    float64 `yaml:"tissue"`
	Transport float64 `yaml:"transport"`
	Root      float64 `yaml:"root"`
	Fruit     float64 `yaml:"fruit"`
}

// Rates holds a water/sugar diffusion rate pair.
type Rates struct {
	Water float64 `yaml:"water"`
	Sugar float64 `yaml:"sugar"`
}

// DiffusionConfig holds per-tile-type diffusion rates.
type DiffusionConfig struct {
	Mode         string  `yaml:"mode"` // continuous | discrete (water only)
	Soil         Rates   `yaml:"soil"`
	Tissue       Rates   `yaml:"tissue"`
	Transport    Rates   `yaml:"transport"`
	Root         Rates   `yaml:"root"`
	GravityWater float64 `yaml:"gravity_water"` // Water sinking from the tile above each turn
}

// CellConfig holds living cell energy and structure parameters.
type CellConfig struct {
	EnergyMax         float64 `yaml:"energy_max"`
	EnergyPerSugar    float64 `yaml:"energy_per_sugar"`
	Decay             float64 `yaml:"decay"`              // Energy lost per turn
	EqualizeFraction  float64 `yaml:"equalize_fraction"`  // Max share of the energy gap given to a hungrier neighbor
	Droop             float64 `yaml:"droop"`              // Base droop accrual per turn
	LowEnergyFraction float64 `yaml:"low_energy_fraction"` // Below this fraction of max, droop accrues twice as fast
}

// BuildConfig holds construction costs and maturation times.
type BuildConfig struct {
	WaterCost float64        `yaml:"water_cost"`
	SugarCost float64        `yaml:"sugar_cost"`
	Time      map[string]int `yaml:"time"` // Turns spent as a growing cell, by cell kind name
}

// LeafConfig holds photosynthesis parameters.
type LeafConfig struct {
	ReactionRate float64 `yaml:"reaction_rate"`
}

// RootConfig holds water uptake parameters.
type RootConfig struct {
	Cooldown int `yaml:"cooldown"`
}

// TransportConfig holds conveyor parameters.
type TransportConfig struct {
	Cooldown int `yaml:"cooldown"`
}

// FountainConfig holds water source parameters.
type FountainConfig struct {
	Interval int     `yaml:"interval"`
	Water    float64 `yaml:"water"`
}

// SunlightConfig holds the light field parameters.
type SunlightConfig struct {
	Period   float64 `yaml:"period"`    // Turns for a full left-right-left sweep
	MinLight float64 `yaml:"min_light"` // Floor reintroduced on every row
}

// CO2Config holds the air CO2 field parameters.
type CO2Config struct {
	Base           float64 `yaml:"base"`
	DepthFactor    float64 `yaml:"depth_factor"` // Added per unit of normalized depth
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
	NoiseScale     float64 `yaml:"noise_scale"`
	TimeScale      float64 `yaml:"time_scale"`
}

// WinConfig holds the win condition.
type WinConfig struct {
	FruitSugar float64 `yaml:"fruit_sugar"`
}

// PlayerConfig holds the player's starting resources.
type PlayerConfig struct {
	StartWater float64 `yaml:"start_water"`
	StartSugar float64 `yaml:"start_sugar"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTurns         int `yaml:"window_turns"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GroundY   int            // First soil row
	BuildTime map[string]int // Normalized (lowercase) kind name -> build turns
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Validate(data); err != nil {
			return nil, fmt.Errorf("validating config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GroundY = int(float64(c.World.Height) * c.World.GroundLevel)
	if c.Derived.GroundY < 1 {
		c.Derived.GroundY = 1
	}
	if c.Derived.GroundY > c.World.Height {
		c.Derived.GroundY = c.World.Height
	}

	if c.Diffusion.Mode == "" {
		c.Diffusion.Mode = DiffusionContinuous
	}

	c.Derived.BuildTime = make(map[string]int, len(c.Build.Time))
	for name, turns := range c.Build.Time {
		if turns < 0 {
			turns = 0
		}
		c.Derived.BuildTime[normalizeKind(name)] = turns
	}
}

// BuildTime returns how many turns a freshly built cell of the named kind
// spends growing. Unknown kinds mature immediately.
func (c *Config) BuildTime(kind string) int {
	return c.Derived.BuildTime[normalizeKind(kind)]
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Build.Time = make(map[string]int, len(c.Build.Time))
	for k, v := range c.Build.Time {
		out.Build.Time[k] = v
	}
	out.computeDerived()
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func normalizeKind(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

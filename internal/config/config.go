// Package config provides Viper-based configuration loading for the combat simulator.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry tracing settings.
type TelemetryConfig struct {
	// Enabled turns span export on. Tracing is opt-in.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP/HTTP collector URL, e.g. "http://localhost:4318".
	Endpoint string `mapstructure:"endpoint"`
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `mapstructure:"service_name"`
}

// ContentConfig holds paths to the YAML content files.
type ContentConfig struct {
	Abilities    string `mapstructure:"abilities"`
	Weapons      string `mapstructure:"weapons"`
	Enemies      string `mapstructure:"enemies"`
	Difficulties string `mapstructure:"difficulties"`
	Party        string `mapstructure:"party"`
	// Items is a directory of loot item files; empty skips the item catalog.
	Items string `mapstructure:"items"`
}

// CombatConfig holds rules tunables that are not content.
type CombatConfig struct {
	// InitiativeTiebreak is the number of faces of the initiative tiebreak
	// roll. The roll is scaled into [0, 1) so it only orders equal bases.
	InitiativeTiebreak int `mapstructure:"initiative_tiebreak"`
	// SkillBaseXP is the base XP awarded per skill use before multipliers.
	SkillBaseXP int `mapstructure:"skill_base_xp"`
	// Seed seeds the deterministic random source; 0 selects the crypto source.
	Seed int64 `mapstructure:"seed"`
}

// DungeonConfig is the floor context handed to the enemy catalog and encounter scaler.
type DungeonConfig struct {
	Floor       int    `mapstructure:"floor"`
	Difficulty  string `mapstructure:"difficulty"`
	BossFloor   int    `mapstructure:"boss_floor"`
	ArenaWidth  int    `mapstructure:"arena_width"`
	ArenaHeight int    `mapstructure:"arena_height"`
}

// CurrentFloorNumber returns the configured dungeon floor.
func (d DungeonConfig) CurrentFloorNumber() int { return d.Floor }

// DifficultySetting returns the configured difficulty name.
func (d DungeonConfig) DifficultySetting() string { return d.Difficulty }

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Content   ContentConfig   `mapstructure:"content"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Dungeon   DungeonConfig   `mapstructure:"dungeon"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelemetry(c.Telemetry); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDungeon(c.Dungeon); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateTelemetry(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	var errs []string
	if t.Endpoint == "" {
		errs = append(errs, "telemetry.endpoint must not be empty when telemetry is enabled")
	}
	if t.ServiceName == "" {
		errs = append(errs, "telemetry.service_name must not be empty when telemetry is enabled")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Abilities == "" {
		errs = append(errs, "content.abilities must not be empty")
	}
	if c.Weapons == "" {
		errs = append(errs, "content.weapons must not be empty")
	}
	if c.Enemies == "" {
		errs = append(errs, "content.enemies must not be empty")
	}
	if c.Difficulties == "" {
		errs = append(errs, "content.difficulties must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.InitiativeTiebreak < 1 {
		errs = append(errs, fmt.Sprintf("combat.initiative_tiebreak must be >= 1, got %d", c.InitiativeTiebreak))
	}
	if c.SkillBaseXP < 1 {
		errs = append(errs, fmt.Sprintf("combat.skill_base_xp must be >= 1, got %d", c.SkillBaseXP))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDungeon(d DungeonConfig) error {
	var errs []string
	if d.Floor < 1 {
		errs = append(errs, fmt.Sprintf("dungeon.floor must be >= 1, got %d", d.Floor))
	}
	validDifficulties := map[string]bool{"easy": true, "normal": true, "hard": true, "nightmare": true}
	if !validDifficulties[d.Difficulty] {
		errs = append(errs, fmt.Sprintf("dungeon.difficulty must be one of [easy, normal, hard, nightmare], got %q", d.Difficulty))
	}
	if d.BossFloor < 1 {
		errs = append(errs, fmt.Sprintf("dungeon.boss_floor must be >= 1, got %d", d.BossFloor))
	}
	if d.ArenaWidth < 4 || d.ArenaHeight < 4 {
		errs = append(errs, fmt.Sprintf("dungeon arena must be at least 4x4, got %dx%d", d.ArenaWidth, d.ArenaHeight))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GAUNTLET_ prefix
	v.SetEnvPrefix("GAUNTLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance populated only with default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "gauntlet")

	v.SetDefault("content.abilities", "content/abilities.yaml")
	v.SetDefault("content.weapons", "content/weapons.yaml")
	v.SetDefault("content.enemies", "content/enemies.yaml")
	v.SetDefault("content.difficulties", "content/difficulties.yaml")
	v.SetDefault("content.party", "content/party.yaml")
	v.SetDefault("content.items", "content/items")

	v.SetDefault("combat.initiative_tiebreak", 20)
	v.SetDefault("combat.skill_base_xp", 10)
	v.SetDefault("combat.seed", 0)

	v.SetDefault("dungeon.floor", 1)
	v.SetDefault("dungeon.difficulty", "normal")
	v.SetDefault("dungeon.boss_floor", 10)
	v.SetDefault("dungeon.arena_width", 24)
	v.SetDefault("dungeon.arena_height", 16)
}

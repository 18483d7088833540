// Package config loads host configuration from a YAML file, MAGE_RULES_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/magefree/mage-rules-go/internal/game"
)

// Config is the complete host configuration.
type Config struct {
	Rules   RulesConfig   `mapstructure:"rules"`
	Logging LoggingConfig `mapstructure:"logging"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// RulesConfig holds the game options.
type RulesConfig struct {
	StartingLife        int   `mapstructure:"starting_life"`
	OpeningHand         int   `mapstructure:"opening_hand"`
	MaxHandSize         int   `mapstructure:"max_hand_size"`
	FirstPlayerSkipDraw bool  `mapstructure:"first_player_skips_draw"`
	MaxRejections       int   `mapstructure:"max_rejections"`
	ShuffleSeed         int64 `mapstructure:"shuffle_seed"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig says where card definitions come from. The built-in cards are
// always loaded; the other sources add to them.
type CatalogConfig struct {
	YAMLPath    string `mapstructure:"yaml_path"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// RemoteConfig configures the websocket listener players connect to.
type RemoteConfig struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// ReplayConfig says where finished games are journaled. Empty disables it.
type ReplayConfig struct {
	Directory string `mapstructure:"directory"`
}

func setDefaults(v *viper.Viper) {
	d := game.DefaultOptions()
	v.SetDefault("rules.starting_life", d.StartingLife)
	v.SetDefault("rules.opening_hand", d.OpeningHand)
	v.SetDefault("rules.max_hand_size", d.MaxHandSize)
	v.SetDefault("rules.first_player_skips_draw", d.FirstPlayerSkipsDraw)
	v.SetDefault("rules.max_rejections", d.MaxRejections)
	v.SetDefault("rules.shuffle_seed", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("catalog.yaml_path", "")
	v.SetDefault("catalog.sqlite_path", "")
	v.SetDefault("catalog.postgres_url", "")

	v.SetDefault("remote.listen_addr", ":8080")
	v.SetDefault("remote.read_timeout", 5*time.Minute)

	v.SetDefault("replay.directory", "")
}

// Load reads the file at path, if any, and applies environment overrides
// such as MAGE_RULES_RULES_STARTING_LIFE. A missing file is not an error when
// path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MAGE_RULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the engine cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Rules.StartingLife <= 0 {
		errs = append(errs, errors.New("rules.starting_life must be positive"))
	}
	if c.Rules.OpeningHand < 0 {
		errs = append(errs, errors.New("rules.opening_hand must not be negative"))
	}
	if c.Rules.MaxHandSize < 0 {
		errs = append(errs, errors.New("rules.max_hand_size must not be negative"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}
	if c.Remote.ReadTimeout < 0 {
		errs = append(errs, errors.New("remote.read_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// GameOptions converts the rules section into engine options.
func (c *Config) GameOptions() game.Options {
	o := game.DefaultOptions()
	o.StartingLife = c.Rules.StartingLife
	o.OpeningHand = c.Rules.OpeningHand
	o.MaxHandSize = c.Rules.MaxHandSize
	o.FirstPlayerSkipsDraw = c.Rules.FirstPlayerSkipDraw
	o.MaxRejections = c.Rules.MaxRejections
	o.ShuffleSeed = c.Rules.ShuffleSeed
	return o
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Server      ServerConfig      `mapstructure:"server"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// GameConfig holds match rules configuration
type GameConfig struct {
	Walls WallsConfig `mapstructure:"walls"`
	Bots  BotsConfig  `mapstructure:"bots"`
}

// WallsConfig holds the wall allowance per player for each mode
type WallsConfig struct {
	TwoPlayer  int `mapstructure:"two_player"`
	FourPlayer int `mapstructure:"four_player"`
}

// BotsConfig holds bot difficulty settings
type BotsConfig struct {
	DefaultLevel string                      `mapstructure:"default_level"`
	Profiles     map[string]BotProfileConfig `mapstructure:"profiles"`
}

// BotProfileConfig describes one difficulty level
type BotProfileConfig struct {
	ThinkingTimeMs int     `mapstructure:"thinking_time_ms"`
	MistakeChance  float64 `mapstructure:"mistake_chance"`
}

// ThinkingTime returns the profile delay as a duration
func (p BotProfileConfig) ThinkingTime() time.Duration {
	return time.Duration(p.ThinkingTimeMs) * time.Millisecond
}

// ServerConfig holds server configuration
type ServerConfig struct {
	MatchServer MatchServerConfig `mapstructure:"match_server"`
	Demo        DemoConfig        `mapstructure:"demo"`
}

// MatchServerConfig holds gRPC match server configuration
type MatchServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	LogFormat             string `mapstructure:"log_format"`
	MaxMatches            int    `mapstructure:"max_matches"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	CleanupInterval       int    `mapstructure:"cleanup_interval"`
	AbandonedMatchTimeout int    `mapstructure:"abandoned_match_timeout"`
	FinishedMatchTTL      int    `mapstructure:"finished_match_ttl"`
}

// DemoConfig holds bot self-play demo configuration
type DemoConfig struct {
	Mode       string `mapstructure:"mode"`
	Difficulty string `mapstructure:"difficulty"`
	MaxTurns   int    `mapstructure:"max_turns"`
	Seed       int64  `mapstructure:"seed"`
	Think      bool   `mapstructure:"think"`
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`
}

// DevelopmentConfig holds development/debug settings
type DevelopmentConfig struct {
	VerboseLogging bool `mapstructure:"verbose_logging"`
	LogEvents      bool `mapstructure:"log_events"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.walls.two_player", 10)
	v.SetDefault("game.walls.four_player", 5)

	v.SetDefault("game.bots.default_level", "medium")
	v.SetDefault("game.bots.profiles.easy.thinking_time_ms", 2000)
	v.SetDefault("game.bots.profiles.easy.mistake_chance", 0.4)
	v.SetDefault("game.bots.profiles.medium.thinking_time_ms", 1500)
	v.SetDefault("game.bots.profiles.medium.mistake_chance", 0.2)
	v.SetDefault("game.bots.profiles.hard.thinking_time_ms", 1000)
	v.SetDefault("game.bots.profiles.hard.mistake_chance", 0.1)
	v.SetDefault("game.bots.profiles.expert.thinking_time_ms", 500)
	v.SetDefault("game.bots.profiles.expert.mistake_chance", 0.0)

	v.SetDefault("server.match_server.host", "0.0.0.0")
	v.SetDefault("server.match_server.port", 50051)
	v.SetDefault("server.match_server.log_level", "info")
	v.SetDefault("server.match_server.log_format", "console")
	v.SetDefault("server.match_server.max_matches", 100)
	v.SetDefault("server.match_server.graceful_shutdown_delay", 5)
	v.SetDefault("server.match_server.cleanup_interval", 60)
	v.SetDefault("server.match_server.abandoned_match_timeout", 30)
	v.SetDefault("server.match_server.finished_match_ttl", 10)

	v.SetDefault("server.demo.mode", "two_player")
	v.SetDefault("server.demo.difficulty", "medium")
	v.SetDefault("server.demo.max_turns", 200)
	v.SetDefault("server.demo.seed", 0)
	v.SetDefault("server.demo.think", false)
	v.SetDefault("server.demo.log_level", "info")
	v.SetDefault("server.demo.log_format", "console")

	v.SetDefault("development.verbose_logging", false)
	v.SetDefault("development.log_events", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/quoridor")
	}

	v.SetEnvPrefix("QRD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath != "":
			return fmt.Errorf("error reading config file %s: %w", configPath, err)
		case errors.As(err, &notFound):
			// No config in the default locations
		default:
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates. The typed config is only replaced
// when the new values decode and validate.
func Set(key string, value interface{}) error {
	v.Set(key, value)

	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("set %s: unable to decode config: %w", key, err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cfg = next
	return nil
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. A reloaded file that
// fails validation is reported through onError and the previous values stay.
func WatchConfig(onChange func(), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := v.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}

// BotProfile returns the profile configured for level
func (c *Config) BotProfile(level string) (BotProfileConfig, bool) {
	p, ok := c.Game.Bots.Profiles[strings.ToLower(level)]
	return p, ok
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.Walls.TwoPlayer < 0 || c.Game.Walls.FourPlayer < 0 {
		return fmt.Errorf("game.walls allowances must be non-negative")
	}

	if len(c.Game.Bots.Profiles) == 0 {
		return fmt.Errorf("game.bots.profiles must define at least one level")
	}
	for level, p := range c.Game.Bots.Profiles {
		if p.MistakeChance < 0 || p.MistakeChance > 1 {
			return fmt.Errorf("game.bots.profiles.%s.mistake_chance must be between 0 and 1", level)
		}
		if p.ThinkingTimeMs < 0 {
			return fmt.Errorf("game.bots.profiles.%s.thinking_time_ms must be non-negative", level)
		}
	}
	if _, ok := c.BotProfile(c.Game.Bots.DefaultLevel); !ok {
		return fmt.Errorf("game.bots.default_level %q has no profile", c.Game.Bots.DefaultLevel)
	}

	ms := c.Server.MatchServer
	if ms.Port <= 0 || ms.Port > 65535 {
		return fmt.Errorf("server.match_server.port must be between 1 and 65535")
	}
	if ms.MaxMatches <= 0 {
		return fmt.Errorf("server.match_server.max_matches must be positive")
	}
	if ms.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.match_server.graceful_shutdown_delay must be non-negative")
	}
	if ms.CleanupInterval <= 0 {
		return fmt.Errorf("server.match_server.cleanup_interval must be positive")
	}
	if ms.AbandonedMatchTimeout <= 0 || ms.FinishedMatchTTL <= 0 {
		return fmt.Errorf("server.match_server match timeouts must be positive")
	}

	if c.Server.Demo.MaxTurns <= 0 {
		return fmt.Errorf("server.demo.max_turns must be positive")
	}
	switch c.Server.Demo.Mode {
	case "two_player", "four_player":
	default:
		return fmt.Errorf("server.demo.mode must be two_player or four_player")
	}

	return nil
}

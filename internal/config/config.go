// Package config loads the bot's settings from config.yaml and the environment.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"casino-table-bot/internal/chips"
)

// Config is the full set of process settings.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Log       LogConfig       `mapstructure:"log"`
	Engine    EngineConfig    `mapstructure:"engine"`
}

type BotConfig struct {
	Token        string        `mapstructure:"token"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// DatabaseConfig describes the postgres connection and pool.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// AdminConfig lists the user IDs allowed to run admin commands.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig lists the group chats the bot answers in.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// EngineConfig holds the game economy settings.
type EngineConfig struct {
	BetCap             []int64            `mapstructure:"bet_cap"`
	StartingChips      []int64            `mapstructure:"starting_chips"`
	ReshuffleThreshold int                `mapstructure:"reshuffle_threshold"`
	LockTimeout        time.Duration      `mapstructure:"lock_timeout"`
	Conversions        []ConversionConfig `mapstructure:"conversions"`
}

// ConversionConfig overrides one entry of the conversion table.
type ConversionConfig struct {
	Consumed []int64 `mapstructure:"consumed"`
	Produced []int64 `mapstructure:"produced"`
	Divisor  int64   `mapstructure:"divisor"`
}

// DSN formats d as a postgres URL.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads config.yaml from configPath, . or ./config, then applies
// environment overrides such as BOT_TOKEN or DATABASE_HOST.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// BOT_TOKEN, DATABASE_HOST, ENGINE_LOCK_TIMEOUT, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars can provide everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_interval", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tablebot")
	v.SetDefault("database.name", "tablebot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("log.level", "info")

	v.SetDefault("engine.bet_cap", chips.DefaultBetCap.Slice())
	v.SetDefault("engine.starting_chips", chips.Vector{}.Slice())
	v.SetDefault("engine.reshuffle_threshold", chips.DefaultReshuffleThreshold)
	v.SetDefault("engine.lock_timeout", "5s")
}

// Rules converts the engine section into the rules injected into services.
// An empty conversion list keeps the built-in table.
func (c *Config) Rules() (chips.Rules, error) {
	rules := chips.DefaultRules()

	var err error
	if rules.BetCap, err = chips.FromSlice(c.Engine.BetCap); err != nil {
		return rules, fmt.Errorf("invalid engine.bet_cap: %w", err)
	}
	if len(c.Engine.StartingChips) > 0 {
		if rules.StartingChips, err = chips.FromSlice(c.Engine.StartingChips); err != nil {
			return rules, fmt.Errorf("invalid engine.starting_chips: %w", err)
		}
	}
	rules.ReshuffleThreshold = c.Engine.ReshuffleThreshold

	if len(c.Engine.Conversions) > 0 {
		rules.Conversions = make([]chips.Conversion, len(c.Engine.Conversions))
		for i, cc := range c.Engine.Conversions {
			conv := chips.Conversion{Divisor: max(cc.Divisor, 1)}
			if conv.Consumed, err = chips.FromSlice(cc.Consumed); err != nil {
				return rules, fmt.Errorf("invalid engine.conversions[%d].consumed: %w", i, err)
			}
			if conv.Produced, err = chips.FromSlice(cc.Produced); err != nil {
				return rules, fmt.Errorf("invalid engine.conversions[%d].produced: %w", i, err)
			}
			rules.Conversions[i] = conv
		}
	}

	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid engine config: %w", err)
	}
	return rules, nil
}

// LogLevel parses log.level, falling back to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// IsAdmin reports whether userID may run admin commands.
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.Admin.IDs, userID)
}

// IsChatAllowed reports whether the bot answers in chatID. An empty
// whitelist allows every chat.
func (c *Config) IsChatAllowed(chatID int64) bool {
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	return slices.Contains(c.Whitelist.Chats, chatID)
}

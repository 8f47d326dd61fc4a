package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	API      API      `mapstructure:"api"`
	Session  Session  `mapstructure:"session"`
	Limits   Limits   `mapstructure:"limits"`
	Platform Platform `mapstructure:"platform"`
	Logger   Logger   `mapstructure:"logger"`
	Database Database `mapstructure:"database"`
}

// API holds the configuration for the DuckDice REST API.
type API struct {
	Key            string   `mapstructure:"key"`
	Mirrors        []string `mapstructure:"mirrors"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
}

// Session holds the configuration for a single betting session.
type Session struct {
	Currency       string            `mapstructure:"currency"`
	Strategy       string            `mapstructure:"strategy"`
	StrategyParams map[string]string `mapstructure:"strategy_params"`
	BetDelayMillis int               `mapstructure:"bet_delay_ms"`
	Faucet         bool              `mapstructure:"faucet"`
}

// Limits holds the externally configured stop conditions.
// Ratio fields are decimal strings; an empty string means unbounded.
// Count and duration fields use 0 for unbounded.
type Limits struct {
	StopLossRatio        string `mapstructure:"stop_loss_ratio"`
	TakeProfitRatio      string `mapstructure:"take_profit_ratio"`
	MaxBets              int    `mapstructure:"max_bets"`
	MaxConsecutiveLosses int    `mapstructure:"max_consecutive_losses"`
	MaxDurationSeconds   int    `mapstructure:"max_duration_seconds"`
}

// Platform holds the site's betting constraints as decimal strings.
type Platform struct {
	MinBet     string `mapstructure:"min_bet"`
	MinChance  string `mapstructure:"min_chance"`
	MaxChance  string `mapstructure:"max_chance"`
	PayoutBase string `mapstructure:"payout_base"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("api.mirrors", []string{"https://duckdice.io"})
	viper.SetDefault("api.timeout_seconds", 10)
	viper.SetDefault("api.rate_limit", 2) // requests per second
	viper.SetDefault("api.rate_limit_burst", 1)
	viper.SetDefault("session.currency", "btc")
	viper.SetDefault("session.strategy", "flat")
	viper.SetDefault("session.bet_delay_ms", 1000)
	viper.SetDefault("platform.min_bet", "0.00000001")
	viper.SetDefault("platform.min_chance", "1")
	viper.SetDefault("platform.max_chance", "98")
	viper.SetDefault("platform.payout_base", "99")
	viper.SetDefault("database.dsn", "bets.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

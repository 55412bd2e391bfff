package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath        string `long:"db-path" env:"DB_PATH" default:"./data/pitki.db" description:"SQLite database file"`
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for shared pending selections (in-memory when empty)"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int    `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`

	// Telegram
	TelegramToken    string `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token (bot disabled when empty)"`
	SelectionTimeout int    `long:"selection-timeout" env:"SELECTION_TIMEOUT" default:"60" description:"Seconds to wait for a category choice before filing as fallback"`
	FallbackCategory string `long:"fallback-category" env:"FALLBACK_CATEGORY" default:"Uncategorized" description:"Category used when no choice is made in time"`
	SeedFile         string `long:"seed-file" env:"SEED_FILE" description:"YAML file with the default categories created by /start"`

	// HTTP API
	Port   string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`
	WebDir string `long:"web-dir" env:"WEB_DIR" description:"Directory with a built web client to serve (optional)"`

	// Background work
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of workers handling bot updates"`
	QueueSize    int    `long:"queue-size" env:"QUEUE_SIZE" default:"300" description:"Maximum queued bot updates"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Seconds allowed for fetching link metadata"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"Pitki/1.0" description:"User agent string for HTTP requests"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for date filters without an offset (e.g., UTC, Europe/Helsinki)"`
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads .env (if present), then flags and environment variables.
// Returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: failed to load .env file: %v\n", err)
	}

	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return cfg, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.SelectionTimeout <= 0 {
		return nil, fmt.Errorf("selection timeout must be positive, got %d", raw.SelectionTimeout)
	}
	if raw.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", raw.WorkerCount)
	}

	categories, err := loadSeedCategories(raw.SeedFile, raw.FallbackCategory)
	if err != nil {
		return nil, err
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		RedisAddr:         raw.RedisAddr,
		RedisPassword:     raw.RedisPassword,
		RedisDB:           raw.RedisDB,
		TelegramToken:     raw.TelegramToken,
		SelectionTimeout:  time.Duration(raw.SelectionTimeout) * time.Second,
		FallbackCategory:  raw.FallbackCategory,
		DefaultCategories: categories,
		Port:              raw.Port,
		WebDir:            raw.WebDir,
		WorkerCount:       raw.WorkerCount,
		QueueSize:         raw.QueueSize,
		FetchTimeout:      time.Duration(raw.FetchTimeout) * time.Second,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		LogLevel:          raw.LogLevel,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}

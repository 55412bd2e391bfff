package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Telegram
	TelegramToken     string
	SelectionTimeout  time.Duration
	FallbackCategory  string
	DefaultCategories []string

	// HTTP API
	Port   string
	WebDir string

	// Background work
	WorkerCount  int
	QueueSize    int
	FetchTimeout time.Duration
	UserAgent    string

	// Application metadata
	Timezone string
	LogLevel string
	Debug    bool
	Version  string
}

func (c *Cfg) BotEnabled() bool {
	return c.TelegramToken != ""
}

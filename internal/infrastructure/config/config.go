// Package config loads the server configuration from flags, the environment and an optional .env file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the ledger server
type Config struct {
	Port                 int           `help:"Port to serve the HTTP API on." default:"8080" env:"LEDGER_PORT"`
	LogLevel             string        `help:"Minimum log level." default:"info" enum:"debug,info,warn,error" env:"LEDGER_LOG_LEVEL"`
	CacheTTL             time.Duration `name:"cache-ttl" help:"How long a looked-up transaction stays cached." default:"10m" env:"LEDGER_CACHE_TTL"`
	CacheCleanupInterval time.Duration `help:"How often expired cache entries are purged." default:"1m" env:"LEDGER_CACHE_CLEANUP_INTERVAL"`
	DefaultPageSize      int           `help:"Page size used when a list request omits size." default:"10" env:"LEDGER_DEFAULT_PAGE_SIZE"`
	StrictWithdrawals    bool          `help:"Serialize withdrawal validation and insertion to rule out concurrent overdrafts." env:"LEDGER_STRICT_WITHDRAWALS"`
	ShutdownTimeout      time.Duration `help:"Grace period for in-flight requests on shutdown." default:"10s" env:"LEDGER_SHUTDOWN_TIMEOUT"`
}

// Addr returns the listen address for the configured port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads envFile (".env" when empty, ignored when missing) into the
// process environment and then parses args. Flags win over the environment.
func Load(envFile string, args []string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	parser, err := kong.New(&cfg,
		kong.Name("ledger-server"),
		kong.Description("In-memory transaction ledger HTTP server."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build config parser: %w", err)
	}

	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DefaultPageSize < 1 {
		return nil, fmt.Errorf("default page size must be at least 1, got %d", cfg.DefaultPageSize)
	}

	return &cfg, nil
}

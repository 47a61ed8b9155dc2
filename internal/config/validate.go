package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the configuration required by the given command
// mode is present. Problems are collected so the operator sees every
// missing field at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	needDB := func() {
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	}

	switch mode {
	case "serve":
		needDB()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
		if c.Server.RateLimitRPS <= 0 {
			problems = append(problems, "server.rate_limit_rps must be > 0")
		}
		if c.Server.RateLimitBurst < 1 {
			problems = append(problems, "server.rate_limit_burst must be >= 1")
		}
	case "migrate":
		needDB()
	case "import":
		needDB()
		if c.Import.SQLitePath == "" {
			problems = append(problems, "import.sqlite_path is required")
		}
		if c.Import.BatchSize < 1 {
			problems = append(problems, "import.batch_size must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

package postgres

import (
	"fmt"
	"net/url"

	"github.com/devfolio/portfolio-api/config"
)

// DSN returns DATABASE_URL when set, otherwise a URL built from the DB_*
// settings.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

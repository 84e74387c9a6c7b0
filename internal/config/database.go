// internal/config/database.go
package config

import (
	"strings"
)

// ConnString returns the connection string for the configured store driver.
// Postgres accepts either a URL or a keyword/value DSN; sqlite accepts a
// file path or ":memory:".
func (s *StoreConfig) ConnString() string {
	if s.Driver == "sqlite" && s.DSN == "" {
		return "vibing.db"
	}
	return strings.TrimSpace(s.DSN)
}

// internal/config/database.go
package config

import (
	"fmt"
)

// DSN builds the postgres connection string. The session time zone is
// pinned to America/Sao_Paulo so timestamps match the locale the
// platform operates in.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=America/Sao_Paulo",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

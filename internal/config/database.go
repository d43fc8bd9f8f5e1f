// internal/config/database.go
package config

import (
	"fmt"
	"os"
)

// DSN prefers DATABASE_URL (the hosted database connection string) and falls
// back to the discrete DB_* settings.
func (d *DatabaseConfig) DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

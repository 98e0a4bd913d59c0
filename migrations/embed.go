// Package migrations embeds the CamLink schema migrations into the binary.
package migrations

import (
	"embed"

	"github.com/borncrazy123/CamLink/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

// Source returns the embedded migrations for database.DB.Migrate.
func Source() database.Source {
	return database.Source{FS: migrationsFS, Dir: "."}
}

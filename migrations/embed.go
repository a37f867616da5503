// Package migrations embeds the HomeGuard schema migrations into the binary
// and registers them with the database package on import.
package migrations

import (
	"embed"

	"github.com/nerrad567/homeguard-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.RegisterMigrations(files, ".")
}

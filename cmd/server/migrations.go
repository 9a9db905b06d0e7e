package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskhub/taskhub-api/internal/platform/postgres"
)

// handleMigrations executes the requested migration command against the
// embedded migration set. It is called from main() when the -migrate flag
// is set.
func handleMigrations(ctx context.Context, db *sql.DB, command string) error {
	switch command {
	case "up":
		return postgres.MigrateUp(ctx, db)
	case "down":
		return postgres.MigrateDown(ctx, db)
	case "status":
		return postgres.MigrationStatus(ctx, db)
	default:
		return fmt.Errorf("unknown migration command %q (expected up, down or status)", command)
	}
}

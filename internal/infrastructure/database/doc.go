// Package database provides SQLite connectivity for HomeGuard.
//
// It owns the connection lifecycle and a small forward-only migration
// runner. Repositories in the domain packages take the embedded *sql.DB
// and issue parameterised statements against it.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are registered by the migrations package, which embeds
// every YYYYMMDD_HHMMSS_name.up.sql / .down.sql pair at build time.
package database

package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nerrad567/homeguard-core/internal/infrastructure/config"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/database"
	_ "github.com/nerrad567/homeguard-core/migrations"
)

// testDB opens an in-memory SQLite database with the HomeGuard schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: database.InMemory})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db.DB
}

// createTestUser inserts a user with a pre-hashed password.
func createTestUser(t *testing.T, repo UserRepository, email string, role Role, password string) *User {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u := &User{Email: email, Name: "Test User", PasswordHash: hash, Role: role}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return u
}

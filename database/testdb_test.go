package database_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/models"
)

func openTestDB(t *testing.T) database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps every session on the same in-memory DB
	// and serializes the concurrent view-count test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return database.New(db)
}

func seedProject(t *testing.T, db database.Database, p models.Project) models.Project {
	t.Helper()
	if err := db.ProjectRepo().Add(&p); err != nil {
		t.Fatalf("failed to seed project %q: %v", p.Title, err)
	}
	return p
}

func seedPost(t *testing.T, db database.Database, p models.BlogPost) models.BlogPost {
	t.Helper()
	if err := db.BlogPostRepo().Add(&p); err != nil {
		t.Fatalf("failed to seed post %q: %v", p.Title, err)
	}
	return p
}

// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"paceline.app/community/internal/bootstrap"
	"paceline.app/community/internal/entity"
)

// NewDB opens a private in-memory SQLite database with the production schema.
// A single connection is kept so every statement sees the same memory DB;
// code under test must not use the root handle inside a transaction.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewSeededDB is NewDB plus the reference catalog.
func NewSeededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := NewDB(t)
	if err := bootstrap.SeedCatalog(db); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return db
}

// CreateUser inserts a user; mutate adjusts fields before insert.
func CreateUser(t *testing.T, db *gorm.DB, mutate func(u *entity.User)) *entity.User {
	t.Helper()
	u := &entity.User{ID: uuid.New()}
	u.Email = u.ID.String() + "@example.com"
	if mutate != nil {
		mutate(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Date parses YYYY-MM-DD at noon UTC.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d.Add(12 * time.Hour)
}

func Ptr[T any](v T) *T {
	return &v
}

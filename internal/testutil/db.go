// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"grimoire/internal/database"
	"grimoire/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%p?mode=memory&cache=private", t)
	db, err := database.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// GrimorioCatalog is the standard five-tier catalog used across tests.
func GrimorioCatalog() []models.Grimorio {
	return []models.Grimorio{
		{TipoTrebol: 1, Ponderacion: 60, Name: "Grimorio de un trébol"},
		{TipoTrebol: 2, Ponderacion: 25, Name: "Grimorio de dos tréboles"},
		{TipoTrebol: 3, Ponderacion: 10, Name: "Grimorio de tres tréboles"},
		{TipoTrebol: 4, Ponderacion: 4, Name: "Grimorio de cuatro tréboles"},
		{TipoTrebol: 5, Ponderacion: 1, Name: "Grimorio de cinco tréboles"},
	}
}

// SeedGrimorios inserts the catalog and returns the stored rows.
func SeedGrimorios(t testing.TB, db *gorm.DB) []models.Grimorio {
	t.Helper()
	rows := GrimorioCatalog()
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed grimorios: %v", err)
	}
	return rows
}

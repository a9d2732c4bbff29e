package database

import (
	"testing"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"go.uber.org/zap"
)

func TestInitMigratesSQLite(t *testing.T) {
	conf := config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file::memory:", LogLevel: "silent"}
	if err := Init(conf, zap.NewNop()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, table := range []interface{}{&models.SessionRecord{}, &models.ReportRecord{}} {
		if !DB.Migrator().HasTable(table) {
			t.Errorf("table for %T was not created", table)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop()); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

package database

import (
	"strings"
	"testing"
	"time"
)

func TestMigrations(t *testing.T) {
	files, err := Migrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		"migrations/001_create_serial_settings.sql",
		"migrations/002_create_serial_issue_log.sql",
	}
	if len(files) != len(expected) {
		t.Fatalf("expected %d migrations, got %v", len(expected), files)
	}
	for i, f := range expected {
		if files[i] != f {
			t.Errorf("migration %d: expected %s, got %s", i, f, files[i])
		}
	}
}

func TestMigrations_ActiveScopeIsUnique(t *testing.T) {
	sqlBytes, err := migrationsFS.ReadFile("migrations/001_create_serial_settings.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	sql := string(sqlBytes)
	if !strings.Contains(sql, "CREATE UNIQUE INDEX") || !strings.Contains(sql, "WHERE is_active") {
		t.Error("expected a partial unique index over active scopes")
	}
}

func TestConfig_ConnString(t *testing.T) {
	cfg := Config{
		Host:            "db",
		Port:            5432,
		Database:        "numeracion",
		User:            "app",
		Password:        "secret",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}

	got := cfg.ConnString()
	for _, part := range []string{"host=db", "port=5432", "dbname=numeracion", "sslmode=disable", "pool_max_conns=25", "pool_max_conn_lifetime=5m0s"} {
		if !strings.Contains(got, part) {
			t.Errorf("expected %q in %q", part, got)
		}
	}
}

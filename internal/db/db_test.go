package db

import (
	"strings"
	"testing"
)

func TestOptions_DSN(t *testing.T) {
	o := Options{Host: "localhost", Port: "5432", Name: "usersdb", User: "app", Password: "secret"}
	got := o.DSN()
	want := "host=localhost port=5432 dbname=usersdb user=app password=secret sslmode=disable"
	if got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}

func TestOptions_URL_EscapesPassword(t *testing.T) {
	o := Options{Host: "db", Port: "5432", Name: "usersdb", User: "app", Password: "p@ss/word"}
	got := o.URL()
	if !strings.HasPrefix(got, "postgres://app:") || !strings.HasSuffix(got, "@db:5432/usersdb?sslmode=disable") {
		t.Errorf("URL: unexpected %q", got)
	}
	if strings.Contains(got, "p@ss/word") {
		t.Errorf("URL: password not escaped in %q", got)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) < 4 {
		t.Errorf("expected up/down pairs for users and audit_log, got %d files", len(entries))
	}
}

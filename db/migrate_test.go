package db

import (
	"strings"
	"testing"
)

func TestUpSection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no markers", "CREATE TABLE a ();", "CREATE TABLE a ();"},
		{"up only", "-- +migrate Up\nCREATE TABLE a ();", "CREATE TABLE a ();"},
		{"up and down", "-- +migrate Up\nCREATE TABLE a ();\n-- +migrate Down\nDROP TABLE a;", "CREATE TABLE a ();"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.TrimSpace(upSection(tt.content)); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := migrationNames(migrationFiles)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 || names[0] != "001_init.sql" {
		t.Fatalf("unexpected migrations: %v", names)
	}
	content, err := migrationFiles.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatal(err)
	}
	up := upSection(string(content))
	for _, want := range []string{"day_entries_one_playing_per_day", "event_registrations_event_id_team_id_key", "event_days_event_id_day_date_key"} {
		if !strings.Contains(up, want) {
			t.Errorf("up migration is missing %s", want)
		}
	}
	if strings.Contains(up, "DROP TABLE") {
		t.Error("up section leaked the down migration")
	}
}

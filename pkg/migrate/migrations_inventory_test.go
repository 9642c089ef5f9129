package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulluproar/commerce-backend/pkg/migrate"
)

func TestGameInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_game_inventory.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS game_inventory",
		"FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"CHECK (reserved >= 0)",
		"CHECK (reserved <= quantity)",
		"DROP TABLE IF EXISTS game_inventory",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMerchInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_merch_inventory.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS merch_inventory",
		"PRIMARY KEY (merch_id, size)",
		"FOREIGN KEY (merch_id) REFERENCES merch_items(id) ON DELETE CASCADE",
		"CHECK (reserved <= quantity)",
		"DROP TABLE IF EXISTS merch_inventory",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationHasUnpublishedIndex(t *testing.T) {
	content := readMigration(t, "*_create_outbox_events.sql")
	if !strings.Contains(content, "WHERE published_at IS NULL") {
		t.Error("expected partial index on unpublished events")
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

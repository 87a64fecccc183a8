// Package testutil provides shared test helpers for setting up workspaces and catalogs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/gantt/internal/catalog"
	"github.com/starford/gantt/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gantt-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory with a storage.Provider.
func TestWorkspace(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content to rel below root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// PlanCSV is a three-row issue export; the third row has an unparseable due date.
const PlanCSV = `Summary,Issue Type,Created,Due Date,Status
Design schema,Task,01/Jan/24 09:00 AM,05/Jan/24 09:00 AM,Done
Fix login,Bug,03/Jan/24 09:00 AM,07/Jan/24 09:00 AM,Open
Write docs,Task,02/Jan/24 09:00 AM,someday,Open
`

// PlanConfig is a chart configuration reading csv/ and writing diagrams/.
const PlanConfig = `{
  "directories": {"csv": "csv", "target": "diagrams"},
  "fields": {"start_date": "Created", "end_date": "Due Date"},
  "visualization": {"colors": {"Fix login": "#1f77b4"}, "categories": {"Bug": {"color": "orange"}}},
  "milestones": [{"date": "2024-01-04", "name": "Review", "pos": 0.5}]
}`

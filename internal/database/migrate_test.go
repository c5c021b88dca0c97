package database

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// auditColumns must match the columns written by the audit repository.
var auditColumns = []string{
	"project_id", "client_id", "action", "target", "details", "remote_ip", "created_at",
}

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, project root is two dirs up.
	dir := filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// TestMigrations_UpDownPairs ensures every .up.sql has a matching .down.sql.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}
	if len(upFiles) == 0 {
		t.Fatal("no migration files found")
	}

	for _, up := range upFiles {
		down := strings.Replace(up, ".up.sql", ".down.sql", 1)
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}

// TestMigrations_SequentialVersions catches gaps and duplicate version
// prefixes, which golang-migrate refuses to apply.
func TestMigrations_SequentialVersions(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}
	sort.Strings(upFiles)

	for i, f := range upFiles {
		want := fmt.Sprintf("%06d_", i+1)
		if !strings.HasPrefix(filepath.Base(f), want) {
			t.Errorf("%s: expected version prefix %s", filepath.Base(f), want)
		}
	}
}

// TestMigrations_AuditLogColumns checks that the audit_log table defines
// every column the repository inserts.
func TestMigrations_AuditLogColumns(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}

	var schema strings.Builder
	for _, f := range upFiles {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}
		if strings.Contains(string(data), "audit_log") {
			schema.Write(data)
		}
	}
	if schema.Len() == 0 {
		t.Fatal("no migration defines audit_log")
	}

	for _, col := range auditColumns {
		if !strings.Contains(schema.String(), col+" ") {
			t.Errorf("audit_log migration is missing column %q", col)
		}
	}
}

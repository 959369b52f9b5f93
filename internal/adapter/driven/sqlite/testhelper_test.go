package sqlite

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/ericfisherdev/panelctl/internal/adapter/driven/secretbox"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() keeps tests isolated.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	safeName := url.PathEscape(t.Name())
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		safeName,
	)

	db, err := open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if _, err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func testBox(t *testing.T) *secretbox.Box {
	t.Helper()
	box, err := secretbox.New(bytes.Repeat([]byte{0x07}, secretbox.KeySize))
	if err != nil {
		t.Fatalf("create box: %v", err)
	}
	return box
}

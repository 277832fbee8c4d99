package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB opens a shared in-memory database, runs the migrations, and
// returns a DB ready for repo tests. The database is keyed by the test name
// so tests never see each other's rows; percent-encoding keeps the name safe
// inside the file: URI.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// In-memory databases ignore journal_mode, so the WAL pragma is omitted.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
		url.PathEscape(t.Name()),
	)

	db := &DB{
		Writer: openTestConn(t, dsn, 1),
		Reader: openTestConn(t, dsn, 4),
		path:   dsn,
	}

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}

func openTestConn(t *testing.T, dsn string, maxConns int) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	conn.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { _ = conn.Close() })

	if err := conn.PingContext(context.Background()); err != nil {
		t.Fatalf("ping test db: %v", err)
	}

	return conn
}

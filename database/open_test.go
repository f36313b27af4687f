package database

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
)

func TestOpenSQLite(t *testing.T) {
	db, err := Open(map[string]string{
		"DB_TYPE":     "sqlite",
		"SQLITE_PATH": "file:open_sqlite?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := New(db).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	if _, err := Open(map[string]string{"DB_TYPE": "oracle"}); err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("err = %v, want unsupported DB_TYPE", err)
	}
}

func TestPostgresRequiresURL(t *testing.T) {
	if _, err := dialectorFor("postgres", map[string]string{}); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}

	d, err := dialectorFor("postgres", map[string]string{"DATABASE_URL": "postgres://blog@localhost/blog"})
	if err != nil {
		t.Fatalf("dialectorFor: %v", err)
	}
	pg, ok := d.(*postgres.Dialector)
	if !ok {
		t.Fatalf("dialector = %T", d)
	}
	if pg.Config.DSN != "postgres://blog@localhost/blog" || !pg.Config.PreferSimpleProtocol {
		t.Fatalf("config = %+v", pg.Config)
	}
}

func TestSupabaseDSN(t *testing.T) {
	dsn := supabaseDSN(map[string]string{
		"SUPABASE_DB_HOST":     "db.example.supabase.co",
		"SUPABASE_DB_USER":     "postgres",
		"SUPABASE_DB_PASSWORD": "secret",
		"SUPABASE_DB_NAME":     "blog",
	})
	want := "host=db.example.supabase.co user=postgres password=secret dbname=blog port=5432 sslmode=require"
	if dsn != want {
		t.Fatalf("dsn = %q, want %q", dsn, want)
	}
}

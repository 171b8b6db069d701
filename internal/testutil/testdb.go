package testutil

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"pocketpoker/internal/config"
	"pocketpoker/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var testSchemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenTestStore opens a Postgres store in a throwaway schema with migrations applied.
// It skips the test when TEST_POSTGRES_DSN is unset.
func OpenTestStore(t *testing.T) (*store.Postgres, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil || cfg.TestPostgresDSN == "" {
		t.Skip("skip test db: TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	dsn := cfg.TestPostgresDSN
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	base, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open base db: %v", err)
	}
	createSchemaSQL, err := schemaDDL("CREATE SCHEMA %s", schema)
	if err != nil {
		base.Close()
		t.Fatalf("invalid schema name: %v", err)
	}
	if _, err := base.Exec(ctx, createSchemaSQL); err != nil {
		base.Close()
		t.Fatalf("create schema: %v", err)
	}
	base.Close()

	st, err := store.NewPostgres(ctx, withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		t.Fatalf("migrate: %v", err)
	}

	cleanup := func() {
		st.Close()
		base, err := pgxpool.New(context.Background(), dsn)
		if err == nil {
			if dropSchemaSQL, ddlErr := schemaDDL("DROP SCHEMA %s CASCADE", schema); ddlErr == nil {
				_, _ = base.Exec(context.Background(), dropSchemaSQL)
			}
			base.Close()
		}
	}
	return st, cleanup
}

// OpenTestRedis returns a Redis store with a per-test key prefix. It skips the test
// when TEST_REDIS_ADDR is unset.
func OpenTestRedis(t *testing.T) (*store.Redis, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil || cfg.TestRedisAddr == "" {
		t.Skip("skip test redis: TEST_REDIS_ADDR not set")
	}
	st := store.NewRedis(cfg.TestRedisAddr, "", 0)
	st.Prefix = fmt.Sprintf("test:%d:season:", time.Now().UnixNano())
	if err := st.Ping(context.Background()); err != nil {
		st.Close()
		t.Skipf("skip test redis: %v", err)
	}
	cleanup := func() {
		ctx := context.Background()
		iter := st.Client.Scan(ctx, 0, st.Prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			_ = st.Client.Del(ctx, iter.Val()).Err()
		}
		st.Close()
	}
	return st, cleanup
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}

func schemaDDL(format, schema string) (string, error) {
	if !testSchemaNamePattern.MatchString(schema) {
		return "", fmt.Errorf("schema %q does not match required pattern", schema)
	}
	return fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()), nil
}

package shared_test

import (
	"testing"
	"time"

	"review_mapper/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "SQLITE_PATH", "ROW_CACHE_TTL_SECONDS", "RATE_LIMIT_RPS", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}
	c := shared.Load()
	if c.DBDriver != "sqlite" || c.DSN() != "company.db" {
		t.Fatalf("unexpected db config: %+v", c)
	}
	if c.RowCacheTTL != 5*time.Minute || c.RateLimitRPS != 50 || c.RedisAddr != "" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")
	t.Setenv("ROW_CACHE_TTL_SECONDS", "60")
	t.Setenv("RATE_LIMIT_RPS", "nope")

	c := shared.Load()
	if c.DSN() != "u:p@tcp(db:3306)/x" {
		t.Fatalf("DSN = %q", c.DSN())
	}
	if c.RowCacheTTL != time.Minute {
		t.Fatalf("RowCacheTTL = %v", c.RowCacheTTL)
	}
	if c.RateLimitRPS != 50 {
		t.Fatalf("bad integer must fall back to default, got %d", c.RateLimitRPS)
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"review_mapper/internal/app"
	"review_mapper/internal/shared"
	"review_mapper/internal/storage/sqldb"
)

func testConfig(t *testing.T) shared.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company.db")
	db, _, err := sqldb.Open(context.Background(), "sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, job_title TEXT)`); err != nil {
		t.Fatalf("employees: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO employees (id, name, job_title) VALUES (1, 'Lee', 'Manager')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return shared.Config{DBDriver: "sqlite", SQLitePath: path}
}

func run(t *testing.T, cfg shared.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReviewctl_CRUD(t *testing.T) {
	cfg := testConfig(t)

	if out, err := run(t, cfg, "schema", "create"); err != nil || !strings.Contains(out, "ready") {
		t.Fatalf("schema create: %v %s", err, out)
	}

	out, err := run(t, cfg, "review", "create", "--year", "2023", "--summary", "Great performance", "--employee", "1")
	if err != nil {
		t.Fatalf("create: %v %s", err, out)
	}
	var v app.ReviewView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if v.ID != 1 || v.Year != 2023 || v.Summary != "Great performance" || v.EmployeeID != 1 {
		t.Fatalf("unexpected review: %+v", v)
	}

	if out, err = run(t, cfg, "review", "update", "1", "--summary", "  Even better "); err != nil {
		t.Fatalf("update: %v %s", err, out)
	}

	out, err = run(t, cfg, "--output", "yaml", "review", "get", "1")
	if err != nil {
		t.Fatalf("get: %v %s", err, out)
	}
	var got app.ReviewView
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode yaml %q: %v", out, err)
	}
	if got.Summary != "Even better" || got.Year != 2023 {
		t.Fatalf("unexpected review after update: %+v", got)
	}

	if out, err = run(t, cfg, "review", "delete", "1"); err != nil {
		t.Fatalf("delete: %v %s", err, out)
	}
	out, err = run(t, cfg, "review", "list")
	if err != nil {
		t.Fatalf("list: %v %s", err, out)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty list, got %q", out)
	}
}

func TestReviewctl_RejectsInvalidInput(t *testing.T) {
	cfg := testConfig(t)
	if _, err := run(t, cfg, "schema", "create"); err != nil {
		t.Fatalf("schema create: %v", err)
	}

	if _, err := run(t, cfg, "review", "create", "--year", "1999", "--summary", "ok", "--employee", "1"); err == nil {
		t.Fatalf("expected year validation error")
	}
	if _, err := run(t, cfg, "review", "create", "--year", "2020", "--summary", "ok", "--employee", "1", "--output", "xml"); err == nil {
		t.Fatalf("expected output format error")
	}
	if _, err := run(t, cfg, "review", "get", "abc"); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

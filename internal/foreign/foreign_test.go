package foreign

import (
	"context"
	"errors"
	"fmt"
	"jasper/internal/evaluator"
	"jasper/internal/object"
	"jasper/internal/sout"
	"jasper/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestEvaluator(t *testing.T, cfg util.Configuration) (*evaluator.Evaluator, *strings.Builder) {
	t.Helper()
	registry := NewRegistry(cfg)
	t.Cleanup(func() {
		if err := registry.Close(); err != nil {
			t.Errorf("registry close failed: %v", err)
		}
	})

	env := evaluator.NewEnvironment()
	registry.Install(env)
	var out strings.Builder
	return evaluator.New(env, sout.New(&out), registry.Lookup), &out
}

func run(t *testing.T, e *evaluator.Evaluator, program string) object.Value {
	t.Helper()
	val, err := e.Run(context.Background(), program)
	if err != nil {
		t.Fatalf("Run(%q) failed: %v", program, err)
	}
	return val
}

func TestMathNamespace(t *testing.T) {
	e, _ := newTestEvaluator(t, util.DefaultConfiguration())

	tests := []struct {
		input    string
		expected string
	}{
		{"(Math.sqrt 16)", "4"},
		{"(Math.pow 2 10)", "1024"},
		{"(Math.max 3 9)", "9"},
		{"(Math.floor 2.7)", "2"},
		{"(Math.abs -3)", "3"},
		{"(< (Math.random) 1)", "true"},
		{"(* Math.PI 0)", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := run(t, e, tt.input).Inspect(); got != tt.expected {
				t.Errorf("wrong result. got=%s, want=%s", got, tt.expected)
			}
		})
	}
}

func TestNamespaceAllowlist(t *testing.T) {
	cfg := util.DefaultConfiguration()
	cfg.Namespaces = []string{"Math", "os"}
	registry := NewRegistry(cfg)

	if got := registry.Namespaces(); len(got) != 1 || got[0] != "Math" {
		t.Fatalf("enabled namespaces wrong. got=%v", got)
	}
	if _, ok := registry.Lookup("Time", "now"); ok {
		t.Errorf("Time should not resolve when it is not allowlisted")
	}
	if _, ok := registry.Lookup("Math", "nope"); ok {
		t.Errorf("unknown member resolved")
	}

	e := evaluator.New(evaluator.NewEnvironment(), nil, registry.Lookup)
	_, err := e.Run(context.Background(), "(Time.now)")
	var unbound *object.UnboundSymbolError
	if !errors.As(err, &unbound) || unbound.Name != "Time.now" {
		t.Fatalf("expected unbound Time.now, got=%v", err)
	}
}

func TestTimeSleepOrdering(t *testing.T) {
	e, out := newTestEvaluator(t, util.DefaultConfiguration())

	val := run(t, e, "(print `a) (print (Time.sleep 20)) (print `b) (Time.sleep 1)")
	if val.Inspect() != "1" {
		t.Errorf("sleep should resolve to its duration. got=%s", val.Inspect())
	}
	if out.String() != "a\n20\nb\n" {
		t.Errorf("output order wrong. got=%q", out.String())
	}
}

func TestTimeSleepWithoutDelay(t *testing.T) {
	e, _ := newTestEvaluator(t, util.DefaultConfiguration())

	tests := []struct {
		input    string
		expected string
	}{
		{"(Time.sleep 0)", "0"},
		{"(Time.sleep -5)", "-5"},
		{"(+ (Time.sleep 0) 1)", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := run(t, e, tt.input).Inspect(); got != tt.expected {
				t.Errorf("wrong result. got=%s, want=%s", got, tt.expected)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "hello")
	}))
	defer server.Close()

	e, _ := newTestEvaluator(t, util.DefaultConfiguration())

	val := run(t, e, fmt.Sprintf("(def res (fetch `%s/greeting)) (list (car res) (cdr res))", server.URL))
	if val.Inspect() != "(200 hello)" {
		t.Errorf("fetch result wrong. got=%s", val.Inspect())
	}

	val = run(t, e, fmt.Sprintf("(car (fetch `%s/missing))", server.URL))
	if val.Inspect() != "404" {
		t.Errorf("status wrong. got=%s", val.Inspect())
	}

	_, err := e.Run(context.Background(), "(fetch `::not-a-url)")
	var badURL *object.HostError
	if !errors.As(err, &badURL) || badURL.Op != "fetch" {
		t.Fatalf("expected fetch HostError for a malformed url, got=%v", err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	_, err = e.Run(context.Background(), fmt.Sprintf("(fetch `%s)", url))
	var hostErr *object.HostError
	if !errors.As(err, &hostErr) || hostErr.Op != "fetch" {
		t.Fatalf("expected fetch HostError, got=%v", err)
	}
}

func dbConfig() util.Configuration {
	cfg := util.DefaultConfiguration()
	cfg.Namespaces = append(cfg.Namespaces, "db")
	cfg.Databases = map[string]util.DatabaseConfig{
		"local": {Driver: "sqlite3", DSN: ":memory:"},
	}
	cfg.Statements = map[string]string{
		"create-users": "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL)",
		"insert-user":  "INSERT INTO users (name, score) VALUES (?, ?)",
		"all-users":    "SELECT id, name, score FROM users ORDER BY id",
		"user-count":   "SELECT COUNT(*) FROM users",
	}
	return cfg
}

func TestDatabase(t *testing.T) {
	e, _ := newTestEvaluator(t, dbConfig())

	run(t, e, `
(def h (db.open `+"`"+`local))
(db.exec h `+"`"+`create-users)
(db.exec h `+"`"+`insert-user `+"`"+`ada 9.5)
(db.exec h `+"`"+`insert-user `+"`"+`grace 10)
`)

	val := run(t, e, "(db.query h `all-users)")
	if val.Inspect() != "((1 ada 9.5) (2 grace 10))" {
		t.Errorf("rows wrong. got=%s", val.Inspect())
	}

	val = run(t, e, "(head (tail (head (db.query h `all-users))))")
	if val.Inspect() != "ada" {
		t.Errorf("row access wrong. got=%s", val.Inspect())
	}

	// rolled back work is not visible
	run(t, e, "(db.begin h) (db.exec h `insert-user `linus 1) (db.rollback h)")
	val = run(t, e, "(head (head (db.query h `user-count)))")
	if val.Inspect() != "2" {
		t.Errorf("rollback did not discard the insert. got=%s", val.Inspect())
	}

	run(t, e, "(db.begin h) (db.exec h `insert-user `linus 1) (db.commit h)")
	val = run(t, e, "(head (head (db.query h `user-count)))")
	if val.Inspect() != "3" {
		t.Errorf("commit did not keep the insert. got=%s", val.Inspect())
	}

	val = run(t, e, "(list (db.close h) (db.close h))")
	if val.Inspect() != "(true false)" {
		t.Errorf("close results wrong. got=%s", val.Inspect())
	}
}

func TestDatabaseErrors(t *testing.T) {
	e, _ := newTestEvaluator(t, dbConfig())

	tests := []struct {
		input string
		op    string
	}{
		{"(db.open `nowhere)", "db.open"},
		{"(db.query 99 `all-users)", "db.query"},
		{"(db.commit (db.open `local))", "db.commit"},
		{"(db.exec (db.open `local) `no-such-statement)", "db.exec"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := e.Run(context.Background(), tt.input)
			var hostErr *object.HostError
			if !errors.As(err, &hostErr) {
				t.Fatalf("expected HostError, got=%T %v", err, err)
			}
			if hostErr.Op != tt.op {
				t.Errorf("wrong op. got=%q, want=%q", hostErr.Op, tt.op)
			}
		})
	}

	_, err := e.Run(context.Background(), "(db.query (db.open `local) `all-users (cons 1 2))")
	var typeErr *object.TypeError
	if !errors.As(err, &typeErr) || typeErr.Position != 3 {
		t.Fatalf("expected TypeError at position 3, got=%v", err)
	}
}

package foreign

import (
	"context"
	"database/sql"
	"fmt"
	"jasper/internal/object"
	"jasper/internal/util"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type dbConn struct {
	name string
	db   *sql.DB
	tx   *sql.Tx
}

// dbHandles maps the numeric handles seen by programs to open connections.
// Database work runs on future goroutines, hence the mutex.
type dbHandles struct {
	config util.Configuration

	mu    sync.Mutex
	next  int64
	conns map[int64]*dbConn
}

func newDBHandles(config util.Configuration) *dbHandles {
	return &dbHandles{config: config, conns: map[int64]*dbConn{}}
}

func (h *dbHandles) namespace() map[string]object.Value {
	return map[string]object.Value{
		"open":     h.fnOpen(),
		"query":    h.fnQuery(),
		"exec":     h.fnExec(),
		"begin":    h.fnTxControl("begin"),
		"commit":   h.fnTxControl("commit"),
		"rollback": h.fnTxControl("rollback"),
		"close":    h.fnClose(),
	}
}

// fnOpen connects to a database declared in the configuration and resolves to its handle.
func (h *dbHandles) fnOpen() *object.Builtin {
	return &object.Builtin{
		Name:  "db.open",
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			name, err := unpackString("db.open", 1, args[0])
			if err != nil {
				return nil, err
			}
			cfg, ok := h.config.Databases[name]
			if !ok {
				return nil, &object.HostError{Op: "db.open", Err: fmt.Errorf("no database named %q is configured", name)}
			}
			runCtx := ctx.Context()
			return object.NewPending("db.open "+name, func() (object.Value, error) {
				return h.open(runCtx, name, cfg)
			}), nil
		},
	}
}

func (h *dbHandles) open(ctx context.Context, name string, cfg util.DatabaseConfig) (object.Value, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, &object.HostError{Op: "db.open", Err: err}
	}
	if cfg.Driver == "sqlite3" {
		// every new sqlite connection to :memory: would see an empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &object.HostError{Op: "db.open", Err: fmt.Errorf("failed to ping database %q: %w", name, err)}
	}

	h.mu.Lock()
	h.next++
	id := h.next
	h.conns[id] = &dbConn{name: name, db: db}
	h.mu.Unlock()

	slog.Info("database opened", slog.String("name", name), slog.String("driver", cfg.Driver), slog.Int64("handle", id))
	return number(float64(id)), nil
}

// fnQuery resolves to a list of rows, each row a list of column values.
func (h *dbHandles) fnQuery() *object.Builtin {
	return &object.Builtin{
		Name:  "db.query",
		Arity: object.AtLeast(2),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			conn, query, params, err := h.statementArgs("db.query", args)
			if err != nil {
				return nil, err
			}
			runCtx := ctx.Context()
			return object.NewPending("db.query", func() (object.Value, error) {
				var rows *sql.Rows
				var err error
				if tx := h.currentTx(conn); tx != nil {
					rows, err = tx.QueryContext(runCtx, query, params...)
				} else {
					rows, err = conn.db.QueryContext(runCtx, query, params...)
				}
				if err != nil {
					return nil, &object.HostError{Op: "db.query", Err: err}
				}
				defer rows.Close()
				return renderRows(rows)
			}), nil
		},
	}
}

// fnExec resolves to the number of affected rows.
func (h *dbHandles) fnExec() *object.Builtin {
	return &object.Builtin{
		Name:  "db.exec",
		Arity: object.AtLeast(2),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			conn, query, params, err := h.statementArgs("db.exec", args)
			if err != nil {
				return nil, err
			}
			runCtx := ctx.Context()
			return object.NewPending("db.exec", func() (object.Value, error) {
				var result sql.Result
				var err error
				if tx := h.currentTx(conn); tx != nil {
					result, err = tx.ExecContext(runCtx, query, params...)
				} else {
					result, err = conn.db.ExecContext(runCtx, query, params...)
				}
				if err != nil {
					return nil, &object.HostError{Op: "db.exec", Err: err}
				}
				affected, _ := result.RowsAffected()
				return number(float64(affected)), nil
			}), nil
		},
	}
}

func (h *dbHandles) fnTxControl(op string) *object.Builtin {
	name := "db." + op
	return &object.Builtin{
		Name:  name,
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			conn, err := h.lookup(name, args[0])
			if err != nil {
				return nil, err
			}

			h.mu.Lock()
			defer h.mu.Unlock()
			switch op {
			case "begin":
				if conn.tx != nil {
					return nil, &object.HostError{Op: name, Err: fmt.Errorf("transaction already in progress")}
				}
				tx, err := conn.db.BeginTx(ctx.Context(), nil)
				if err != nil {
					return nil, &object.HostError{Op: name, Err: err}
				}
				conn.tx = tx
			case "commit", "rollback":
				if conn.tx == nil {
					return nil, &object.HostError{Op: name, Err: fmt.Errorf("no transaction in progress")}
				}
				var err error
				if op == "commit" {
					err = conn.tx.Commit()
				} else {
					err = conn.tx.Rollback()
				}
				conn.tx = nil
				if err != nil {
					return nil, &object.HostError{Op: name, Err: err}
				}
			}
			return args[0], nil
		},
	}
}

func (h *dbHandles) fnClose() *object.Builtin {
	return &object.Builtin{
		Name:  "db.close",
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			id, err := unpackHandle("db.close", 1, args[0])
			if err != nil {
				return nil, err
			}
			h.mu.Lock()
			conn, ok := h.conns[id]
			delete(h.conns, id)
			h.mu.Unlock()
			if !ok {
				return object.FALSE, nil
			}
			if err := conn.close(); err != nil {
				return nil, &object.HostError{Op: "db.close", Err: err}
			}
			return object.TRUE, nil
		},
	}
}

// statementArgs unpacks (handle stmt params...). stmt names a configured
// statement or is used as SQL text as is.
func (h *dbHandles) statementArgs(name string, args []object.Value) (*dbConn, string, []any, error) {
	conn, err := h.lookup(name, args[0])
	if err != nil {
		return nil, "", nil, err
	}
	stmt, err := unpackString(name, 2, args[1])
	if err != nil {
		return nil, "", nil, err
	}
	query, ok := h.config.Statements[stmt]
	if !ok {
		query = stmt
	}

	params := make([]any, len(args)-2)
	for i, arg := range args[2:] {
		p, err := toSQLParam(name, i+3, arg)
		if err != nil {
			return nil, "", nil, err
		}
		params[i] = p
	}
	return conn, query, params, nil
}

func (h *dbHandles) lookup(name string, arg object.Value) (*dbConn, error) {
	id, err := unpackHandle(name, 1, arg)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[id]
	if !ok {
		return nil, &object.HostError{Op: name, Err: fmt.Errorf("invalid connection handle %d", id)}
	}
	return conn, nil
}

func (h *dbHandles) currentTx(conn *dbConn) *sql.Tx {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.tx
}

func (h *dbHandles) closeAll() []error {
	h.mu.Lock()
	ids := make([]int64, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	conns := make([]*dbConn, len(ids))
	for i, id := range ids {
		conns[i] = h.conns[id]
		delete(h.conns, id)
	}
	h.mu.Unlock()

	var errs []error
	for _, conn := range conns {
		slog.Debug("closing leftover database handle", slog.String("name", conn.name))
		if err := conn.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (c *dbConn) close() error {
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	return c.db.Close()
}

func toSQLParam(name string, pos int, arg object.Value) (any, error) {
	switch v := arg.(type) {
	case *object.Number:
		if v.Value == math.Trunc(v.Value) && math.Abs(v.Value) < 1<<53 {
			return int64(v.Value), nil
		}
		return v.Value, nil
	case *object.String:
		return v.Value, nil
	case *object.Boolean:
		return v.Value, nil
	case *object.Undefined:
		return nil, nil
	default:
		return nil, &object.TypeError{Name: name, Position: pos, Want: "NUMBER, STRING, BOOLEAN or UNDEFINED", Got: arg}
	}
}

func renderRows(rows *sql.Rows) (object.Value, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, &object.HostError{Op: "db.query", Err: err}
	}

	var result []object.Value
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &object.HostError{Op: "db.query", Err: err}
		}
		row := make([]object.Value, len(columns))
		for i, v := range values {
			row[i] = mapValue(v)
		}
		result = append(result, &object.Compound{Items: row})
	}
	if err := rows.Err(); err != nil {
		return nil, &object.HostError{Op: "db.query", Err: err}
	}
	return &object.Compound{Items: result}, nil
}

func mapValue(v any) object.Value {
	switch x := v.(type) {
	case nil:
		return object.UNDEFINED
	case int64:
		return number(float64(x))
	case int32:
		return number(float64(x))
	case int:
		return number(float64(x))
	case float64:
		return number(x)
	case float32:
		return number(float64(x))
	case bool:
		return object.NativeBool(x)
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339Nano)}
	default:
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}

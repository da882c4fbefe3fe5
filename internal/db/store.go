package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/queryms/msconsole/internal/config"
	apperrors "github.com/queryms/msconsole/internal/errors"

	"github.com/go-sql-driver/mysql"
)

const refusalText = "Security error: only read-only queries are allowed.\n" +
	"Permitted: SELECT, SHOW, DESCRIBE, EXPLAIN\n" +
	"Blocked: INSERT, UPDATE, DELETE, CREATE, DROP, ALTER, and any other mutating statement."

// Store executes classified-safe statements and fixed introspection
// statements against MySQL and renders results as prose for the model.
//
// One lazily-opened handle, capped to a single pooled connection, is shared
// by all sessions of the process; the mutex serializes cross-session overlap
// since tool calls within a turn are already sequential.
type Store struct {
	mu  sync.Mutex
	cfg config.MySQLConfig
	db  *sql.DB
}

func NewStore(cfg config.MySQLConfig) *Store {
	return &Store{cfg: cfg}
}

// conn returns a live handle, opening or reopening as needed. Callers must
// hold s.mu. Failures here are hard faults, never tool-result text.
func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	if s.db != nil {
		if err := s.db.PingContext(ctx); err == nil {
			return s.db, nil
		}
		s.db.Close()
		s.db = nil
		slog.Warn("Database connection lost, reconnecting", "host", s.cfg.Host)
	}

	timeout, err := config.DurationOrDefault(s.cfg.ConnectTimeout, config.DefaultMySQLConnectTimeout)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid connect timeout")
	}

	dsnCfg := mysql.NewConfig()
	dsnCfg.User = s.cfg.Username
	dsnCfg.Passwd = s.cfg.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	dsnCfg.DBName = s.cfg.Database
	dsnCfg.Timeout = timeout
	dsnCfg.AllowNativePasswords = true

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql handle: %v: %w", err, apperrors.ErrConnection)
	}
	limitToSingleConn(db)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s: %v: %w", dsnCfg.Addr, err, apperrors.ErrConnection)
	}

	s.db = db
	slog.Info("Connected to MySQL", "addr", dsnCfg.Addr, "database", s.cfg.Database)
	return db, nil
}

// limitToSingleConn caps the pool at one connection. USE switches session
// state on the connection it runs on; with more than one pooled connection a
// later statement could land elsewhere and see the DSN default database.
func limitToSingleConn(db *sql.DB) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
}

// acquire pins the connection for one statement batch. On a pinned sql.Conn
// a mid-batch connection death surfaces as an error instead of database/sql
// silently retrying the statement on a fresh connection whose session state
// (the current database after USE) has reverted to the DSN default. Callers
// must hold s.mu and close the returned conn.
func (s *Store) acquire(ctx context.Context) (*sql.Conn, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	c, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %v: %w", err, apperrors.ErrConnection)
	}
	return c, nil
}

// Ping verifies the store can reach the database, connecting if necessary.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn(ctx)
	return err
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	slog.Info("Database connection closed")
	return err
}

// ListTables reports databases (no database given) or the full table/column/
// row-count structure of one database. Introspection failures after the
// connection is up come back as readable text, not errors.
func (s *Store) ListTables(ctx context.Context, database string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if database == "" {
		databases, err := queryStrings(ctx, c, "SHOW DATABASES")
		if err != nil {
			return fmt.Sprintf("Error listing databases: %v", err), nil
		}
		return renderDatabaseList(databases), nil
	}

	if _, err := c.ExecContext(ctx, "USE "+quoteIdent(database)); err != nil {
		return fmt.Sprintf("Error listing tables: %v", err), nil
	}

	tables, err := queryStrings(ctx, c, "SHOW TABLES")
	if err != nil {
		return fmt.Sprintf("Error listing tables: %v", err), nil
	}
	if len(tables) == 0 {
		return fmt.Sprintf("No tables found in database '%s'", database), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tables in '%s':\n", database)
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	for _, table := range tables {
		columns, err := describeTable(ctx, c, table)
		if err != nil {
			fmt.Fprintf(&b, "%s\nError describing table: %v\n\n", table, err)
			continue
		}

		// Row count is best-effort; a failed probe is omitted, not reported.
		count, haveCount := int64(0), false
		row := c.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table))
		if err := row.Scan(&count); err == nil {
			haveCount = true
		}

		b.WriteString(renderTableSection(table, columns, count, haveCount))
	}

	return b.String(), nil
}

// ExecuteQuery applies the read-only gate and runs the statement. Rejected
// statements never reach the database; they yield the fixed refusal text as
// a successful tool result. Execution failures likewise come back as text.
func (s *Store) ExecuteQuery(ctx context.Context, query, database string) (string, error) {
	if !IsReadOnly(query) {
		slog.Warn("Rejected non-read-only query", "query", truncate(query, 100))
		return refusalText, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if database != "" {
		if _, err := c.ExecContext(ctx, "USE "+quoteIdent(database)); err != nil {
			return queryErrorText(err), nil
		}
	}

	slog.Info("Executing query", "query", truncate(query, 100))

	rows, err := c.QueryContext(ctx, query)
	if err != nil {
		return queryErrorText(err), nil
	}
	defer rows.Close()

	columns, cells, err := fetchAll(rows)
	if err != nil {
		return queryErrorText(err), nil
	}

	if len(cells) == 0 {
		return "Query executed successfully.\nResult: no rows returned.", nil
	}

	return renderResultTable(columns, cells), nil
}

func describeTable(ctx context.Context, c *sql.Conn, table string) ([]Column, error) {
	rows, err := c.QueryContext(ctx, "DESCRIBE "+quoteIdent(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var field, typ, null, key, def, extra sql.NullString
		if err := rows.Scan(&field, &typ, &null, &key, &def, &extra); err != nil {
			return nil, err
		}
		columns = append(columns, Column{
			Field: field.String,
			Type:  typ.String,
			Null:  null.String,
			Key:   key.String,
		})
	}
	return columns, rows.Err()
}

// fetchAll drains a result set into stringified cells, rendering SQL NULL as
// the literal "NULL".
func fetchAll(rows *sql.Rows) ([]string, [][]string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}

		cells := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				cells[i] = v.String
			} else {
				cells[i] = "NULL"
			}
		}
		out = append(out, cells)
	}

	return columns, out, rows.Err()
}

func queryStrings(ctx context.Context, c *sql.Conn, statement string) ([]string, error) {
	rows, err := c.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func queryErrorText(err error) string {
	return fmt.Sprintf("Query error: %v\n\nTip: use list_tables to check available tables and columns.", err)
}

// quoteIdent wraps an identifier in backticks, escaping embedded backticks.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

//go:embed schema.sql
var schemaSQL string

// Store is a linkage store backed by a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time. One connection also keeps
	// a ":memory:" database alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Driver names the backend in logs and metrics.
func (s *Store) Driver() string { return "sqlite" }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Linkages returns the outgoing edges of sha in insertion order.
func (s *Store) Linkages(ctx context.Context, sha linkage.Sha) ([]linkage.Linkage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT target, kind FROM edges
		WHERE source = ?
		ORDER BY seq ASC
	`, string(sha))
	if err != nil {
		return nil, fmt.Errorf("query linkages: %w", err)
	}
	defer rows.Close()

	var out []linkage.Linkage
	for rows.Next() {
		var target string
		var kind uint8
		if err := rows.Scan(&target, &kind); err != nil {
			return nil, fmt.Errorf("scan linkage: %w", err)
		}
		out = append(out, linkage.Linkage{Target: linkage.Sha(target), Kind: linkage.Kind(kind)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linkages: %w", err)
	}
	return out, nil
}

// Put records e. Re-putting an existing pair updates its kind and keeps its
// position.
func (s *Store) Put(ctx context.Context, e linkage.Edge) error {
	return s.PutBatch(ctx, []linkage.Edge{e})
}

// PutBatch records edges in one transaction. Either all edges are stored or
// none are.
func (s *Store) PutBatch(ctx context.Context, edges []linkage.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	for _, e := range edges {
		if !e.Kind.Valid() {
			return fmt.Errorf("put %s -> %s: unknown kind %d", e.Source.Short(), e.Target.Short(), e.Kind)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (source, target, kind)
		VALUES (?, ?, ?)
		ON CONFLICT(source, target) DO UPDATE SET kind = excluded.kind
	`)
	if err != nil {
		return fmt.Errorf("prepare put: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, string(e.Source), string(e.Target), uint8(e.Kind)); err != nil {
			return fmt.Errorf("put %s -> %s: %w", e.Source.Short(), e.Target.Short(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE meta SET value = value + ? WHERE key = 'revision'`, len(edges)); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	return tx.Commit()
}

// Edges returns every edge in insertion order.
func (s *Store) Edges(ctx context.Context) ([]linkage.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, target, kind FROM edges ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var out []linkage.Edge
	for rows.Next() {
		var src, tgt string
		var kind uint8
		if err := rows.Scan(&src, &tgt, &kind); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, linkage.Edge{Source: linkage.Sha(src), Target: linkage.Sha(tgt), Kind: linkage.Kind(kind)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return out, nil
}

// Revision returns the number of edge writes the database has accepted.
func (s *Store) Revision(ctx context.Context) (string, error) {
	var rev int64
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'revision'`).Scan(&rev); err != nil {
		return "", fmt.Errorf("read revision: %w", err)
	}
	return "sqlite:" + strconv.FormatInt(rev, 10), nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables and indexes if they don't exist.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

var (
	_ linkage.ReadWriter  = (*Store)(nil)
	_ linkage.BatchWriter = (*Store)(nil)
	_ linkage.Revisioner  = (*Store)(nil)
	_ linkage.Dumper      = (*Store)(nil)
)

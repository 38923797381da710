// Package sqlite persists chunk records in a single SQLite file and ranks them
// with a cosine similarity function registered on the driver.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sqlite "modernc.org/sqlite"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

const cosineFunc = "vec_cosine"

// registrar runs a driver-wide registration once and remembers its outcome
// for every later Open.
type registrar struct {
	once sync.Once
	err  error
}

func (r *registrar) do(register func() error) error {
	r.once.Do(func() {
		if err := register(); err != nil {
			r.err = fmt.Errorf("registering %s: %w", cosineFunc, err)
		}
	})
	return r.err
}

var functions registrar

func registerCosine() error {
	return sqlite.RegisterDeterministicScalarFunction(cosineFunc, 2, cosineImpl)
}

// Storage is a SQLite-backed vector store.
type Storage struct {
	db         *sql.DB
	collection string
	dimension  int
}

// Open opens or creates the database file at path. The collection is not
// touched until OpenOrCreate.
func Open(path, collection string) (*Storage, error) {
	if err := functions.do(registerCosine); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Storage{db: db, collection: collection}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			dims INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL REFERENCES collections(name),
			text TEXT NOT NULL,
			vector BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
	`
	_, err := db.Exec(schema)
	return err
}

// OpenOrCreate records the collection's dimensionality on first use and
// verifies it on every later open.
func (s *Storage) OpenOrCreate(ctx context.Context, dims int) error {
	if dims <= 0 {
		return errors.New("invalid dimension")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx, `SELECT dims FROM collections WHERE name = ?`, s.collection).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `INSERT INTO collections (name, dims) VALUES (?, ?)`, s.collection, dims); err != nil {
			return fmt.Errorf("creating collection %s: %w", s.collection, err)
		}
	case err != nil:
		return fmt.Errorf("reading collection %s: %w", s.collection, err)
	case existing != dims:
		return fmt.Errorf("%w: collection %s has %d, requested %d", vectorstore.ErrDimensionMismatch, s.collection, existing, dims)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.dimension = dims
	return nil
}

// Append inserts chunks in order inside one transaction.
func (s *Storage) Append(ctx context.Context, chunks []domain.Chunk) error {
	if s.dimension == 0 {
		return vectorstore.ErrNotOpen
	}
	for _, c := range chunks {
		if err := vectorstore.Validate(c, s.dimension); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (collection, text, vector) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, s.collection, c.Text, vectorstore.EncodeVector(c.Vector)); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}
	return tx.Commit()
}

// ScanAll returns every record in insertion order. Blobs that cannot be
// decoded come back with a nil vector.
func (s *Storage) ScanAll(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text, vector FROM chunks WHERE collection = ? ORDER BY id`, s.collection)
	if err != nil {
		return nil, err
	}
	return scanChunks(rows)
}

// Nearest returns up to k records by descending cosine similarity. Records
// whose similarity is undefined sort last.
func (s *Storage) Nearest(ctx context.Context, query []float32, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		return []domain.Chunk{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT text, vector FROM chunks
		WHERE collection = ?
		ORDER BY `+cosineFunc+`(vector, ?) DESC, id
		LIMIT ?`,
		s.collection, vectorstore.EncodeVector(query), k)
	if err != nil {
		return nil, err
	}
	return scanChunks(rows)
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE collection = ?`, s.collection).Scan(&n)
	return n, err
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	defer rows.Close()
	out := []domain.Chunk{}
	for rows.Next() {
		var (
			text string
			blob []byte
		)
		if err := rows.Scan(&text, &blob); err != nil {
			return nil, err
		}
		vec, err := vectorstore.DecodeVector(blob)
		if err != nil {
			vec = nil
		}
		out = append(out, domain.Chunk{Vector: vec, Text: text})
	}
	return out, rows.Err()
}

func cosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", cosineFunc, len(args))
	}
	a, okA := args[0].([]byte)
	b, okB := args[1].([]byte)
	if !okA || !okB {
		return nil, nil
	}
	va, err := vectorstore.DecodeVector(a)
	if err != nil {
		return nil, nil
	}
	vb, err := vectorstore.DecodeVector(b)
	if err != nil {
		return nil, nil
	}
	sim, ok := vectorstore.CosineSimilarity(va, vb)
	if !ok {
		return nil, nil
	}
	return sim, nil
}

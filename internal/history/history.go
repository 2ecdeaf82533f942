// Package history keeps a small persisted log of past compilation runs,
// queryable via `luminac history`. It gives the teacher's database/sql
// stack (internal/database/database.go wires four live drivers) a grounded
// home in a one-shot compiler: one pure-Go driver, modernc.org/sqlite,
// against a local ~/.lumina/history.db, in the same database/sql +
// blank-import-driver idiom the teacher uses.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded compilation.
type Run struct {
	ID          string
	SourcePath  string
	OutputPath  string
	Diagnostics int
	ArtifactSize int64
	Duration    time.Duration
	CompiledAt  time.Time
}

// Store wraps the sqlite-backed history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.lumina/history.db, creating its parent directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".lumina")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	source_path   TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	diagnostics   INTEGER NOT NULL,
	artifact_size INTEGER NOT NULL,
	duration_ns   INTEGER NOT NULL,
	compiled_at   INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts one completed compilation run, assigning it a fresh UUID.
func (s *Store) Record(sourcePath, outputPath string, diagCount int, artifactSize int64, dur time.Duration) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, source_path, output_path, diagnostics, artifact_size, duration_ns, compiled_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, sourcePath, outputPath, diagCount, artifactSize, dur.Nanoseconds(), time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}

// Recent returns the last n runs, most recent first.
func (s *Store) Recent(n int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, source_path, output_path, diagnostics, artifact_size, duration_ns, compiled_at
		 FROM runs ORDER BY compiled_at DESC, rowid DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durNS, compiledAtUnix int64
		if err := rows.Scan(&r.ID, &r.SourcePath, &r.OutputPath, &r.Diagnostics, &r.ArtifactSize, &durNS, &compiledAtUnix); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.Duration = time.Duration(durNS)
		r.CompiledAt = time.Unix(compiledAtUnix, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FormatRow renders one run the way `luminac history` prints it: relative
// time and human-readable byte size, via dustin/go-humanize.
func FormatRow(r Run) string {
	status := "ok"
	if r.Diagnostics > 0 {
		status = fmt.Sprintf("%d diagnostic(s)", r.Diagnostics)
	}
	return fmt.Sprintf("%s  %-30s %8s  %-6s  %s  %s",
		r.ID[:8], r.SourcePath, humanize.Bytes(uint64(r.ArtifactSize)), status,
		humanize.Time(r.CompiledAt), r.Duration.Round(time.Millisecond))
}

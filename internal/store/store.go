// Package store provides the DuckDB-backed reference variant index.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rkty13/match-gennotes/internal/chrom"
	"github.com/rkty13/match-gennotes/internal/clinvar"
)

// Store manages the DuckDB index of reference variants.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// DuplicateIdentifierError reports a repeated non-null identifier during
// index construction. Inserts before the offending record remain in the
// index; there is no rollback.
type DuplicateIdentifierError struct {
	ID string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate variant identifier %q", e.ID)
}

// Open opens or creates a DuckDB index at the given path and ensures the
// schema exists. Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger for build progress messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clinvar (
			chrom INTEGER,
			pos BIGINT,
			id VARCHAR,
			ref VARCHAR,
			alt VARCHAR,
			full_data VARCHAR
		)`,
		`CREATE INDEX IF NOT EXISTS chrom_match ON clinvar (chrom, pos)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS id_match ON clinvar (id)`,
		`CREATE TABLE IF NOT EXISTS metadata (key VARCHAR PRIMARY KEY, value VARCHAR)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Built reports whether a completed index build is recorded. Callers decide
// between opening an existing index and building a new one from this flag
// rather than from file presence on disk.
func (s *Store) Built() (bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = 'index_built'`).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query metadata: %w", err)
	}
	return value == "true", nil
}

// markBuilt records a completed build.
func (s *Store) markBuilt() error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO metadata VALUES ('index_built', 'true')`)
	return err
}

// Clear removes all indexed records and the built marker, for a rebuild.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM clinvar`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM metadata WHERE key = 'index_built'`); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}
	return nil
}

// RecordSource yields reference records until it returns nil, nil.
type RecordSource interface {
	Next() (*clinvar.Record, error)
}

// Build consumes reference records and inserts each exactly once. Records are
// inserted as they arrive; a repeated non-null identifier fails with
// DuplicateIdentifierError and leaves prior inserts in place, so a failed
// build must be cleared before retrying. Chromosome names outside the
// supplied map are fatal: the index's integrity depends on every dump line
// being stored.
func (s *Store) Build(src RecordSource, cm *chrom.Map) error {
	count := 0
	for {
		rec, err := src.Next()
		if err != nil {
			return fmt.Errorf("read reference record: %w", err)
		}
		if rec == nil {
			break
		}

		if err := s.insert(rec, cm); err != nil {
			return err
		}

		count++
		if count%100000 == 0 {
			s.logger.Info("indexing reference variants", zap.Int("records", count))
		}
	}

	if err := s.markBuilt(); err != nil {
		return fmt.Errorf("mark index built: %w", err)
	}
	s.logger.Info("reference index built", zap.Int("records", count))
	return nil
}

func (s *Store) insert(rec *clinvar.Record, cm *chrom.Map) error {
	code, ok := cm.Code(rec.Chrom)
	if !ok {
		return fmt.Errorf("unknown chromosome %q at position %d", rec.Chrom, rec.Start)
	}

	alts, err := json.Marshal(rec.Alts)
	if err != nil {
		return fmt.Errorf("serialize alt alleles: %w", err)
	}
	doc, err := rec.Document()
	if err != nil {
		return fmt.Errorf("serialize annotation payload: %w", err)
	}

	var id interface{}
	if rec.ID != "" {
		id = rec.ID
	}

	_, err = s.db.Exec(
		`INSERT INTO clinvar VALUES (?, ?, ?, ?, ?, ?)`,
		code, rec.Start, id, rec.Ref, string(alts), string(doc),
	)
	if err != nil {
		if rec.ID != "" && isUniqueViolation(err) {
			return &DuplicateIdentifierError{ID: rec.ID}
		}
		return fmt.Errorf("insert reference record: %w", err)
	}
	return nil
}

// isUniqueViolation detects DuckDB's unique-constraint error without
// depending on a typed driver error.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Row is a stored reference variant returned by Lookup.
type Row struct {
	Code     int
	Pos      int64
	ID       string // empty when stored as null
	Ref      string
	Alts     []string
	Document json.RawMessage // full annotation payload
}

// Lookup returns every record where the (chromosome, position) matches and
// the alt-allele list contains the allele as a substring, OR the identifier
// matches exactly. The two predicates are independent: a record can match by
// shared identifier even when the coordinate disagrees, and vice versa. A
// placeholder allele matches any allele at the coordinate; an empty
// identifier matches nothing (stored nulls never collide).
func (s *Store) Lookup(code int, pos int64, alt, id string) ([]Row, error) {
	altPattern := "%" + alt + "%"
	if alt == "" || alt == "." {
		altPattern = "%"
	}
	var idParam interface{}
	if id != "" && id != "." {
		idParam = id
	}

	rows, err := s.db.Query(
		`SELECT chrom, pos, id, ref, alt, full_data FROM clinvar
		 WHERE (chrom = ? AND pos = ? AND alt LIKE ?) OR (id = ?)`,
		code, pos, altPattern, idParam,
	)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	var results []Row
	for rows.Next() {
		var (
			r       Row
			rowID   sql.NullString
			altJSON string
			doc     string
		)
		if err := rows.Scan(&r.Code, &r.Pos, &rowID, &r.Ref, &altJSON, &doc); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		if rowID.Valid {
			r.ID = rowID.String
		}
		if err := json.Unmarshal([]byte(altJSON), &r.Alts); err != nil {
			return nil, fmt.Errorf("decode alt alleles: %w", err)
		}
		r.Document = json.RawMessage(doc)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index rows: %w", err)
	}
	return results, nil
}

// Count returns the number of indexed records.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM clinvar`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count index rows: %w", err)
	}
	return n, nil
}

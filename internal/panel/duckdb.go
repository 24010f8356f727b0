package panel

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store provides access to panel entries kept in a DuckDB database,
// the mutable staging form behind the read-only binary panel file.
type Store struct {
	db   *sql.DB
	path string
}

// IsDuckDB checks whether a path names a DuckDB database file.
func IsDuckDB(path string) bool {
	return strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db")
}

// OpenStore opens (or creates) a DuckDB-backed panel store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the panel tables.
func (s *Store) CreateSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS panel_meta (
			version VARCHAR,
			build VARCHAR,
			sample_count INTEGER
		);

		CREATE TABLE IF NOT EXISTS panel_entries (
			chrom VARCHAR,
			pos BIGINT,
			ref VARCHAR,
			alt VARCHAR,
			genotypes VARCHAR,
			PRIMARY KEY (chrom, pos)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SetMeta records the panel identity. Called once when staging.
func (s *Store) SetMeta(version, build string, sampleCount int) error {
	if _, err := s.db.Exec("DELETE FROM panel_meta"); err != nil {
		return fmt.Errorf("reset panel meta: %w", err)
	}
	_, err := s.db.Exec(
		"INSERT INTO panel_meta (version, build, sample_count) VALUES (?, ?, ?)",
		version, build, sampleCount)
	if err != nil {
		return fmt.Errorf("insert panel meta: %w", err)
	}
	return nil
}

// InsertEntry stages one panel entry. Genotypes are stored as a
// comma-joined list in panel order.
func (s *Store) InsertEntry(e *Entry) error {
	_, err := s.db.Exec(`
		INSERT INTO panel_entries (chrom, pos, ref, alt, genotypes)
		VALUES (?, ?, ?, ?, ?)
	`, e.Chromosome, int64(e.Position), string(e.Ref), string(e.Alt),
		strings.Join(e.SampleGenotypes, ","))
	if err != nil {
		return fmt.Errorf("insert panel entry: %w", err)
	}
	return nil
}

// LoadAll reads the full store into an in-memory Panel.
func (s *Store) LoadAll() (*Panel, error) {
	var version, build string
	var sampleCount int
	err := s.db.QueryRow("SELECT version, build, sample_count FROM panel_meta").
		Scan(&version, &build, &sampleCount)
	if err != nil {
		return nil, fmt.Errorf("query panel meta: %w", err)
	}

	p := New(version, build, sampleCount)

	rows, err := s.db.Query(`
		SELECT chrom, pos, ref, alt, genotypes
		FROM panel_entries
		ORDER BY chrom, pos
	`)
	if err != nil {
		return nil, fmt.Errorf("query panel entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chrom, ref, alt, genotypes string
		var pos int64
		if err := rows.Scan(&chrom, &pos, &ref, &alt, &genotypes); err != nil {
			return nil, fmt.Errorf("scan panel entry: %w", err)
		}
		if len(ref) != 1 || len(alt) != 1 {
			return nil, fmt.Errorf("panel entry %s:%d: ref/alt must be single bases", chrom, pos)
		}
		e := &Entry{
			Chromosome:      chrom,
			Position:        uint64(pos),
			Ref:             ref[0],
			Alt:             alt[0],
			SampleGenotypes: strings.Split(genotypes, ","),
		}
		if err := p.Add(e); err != nil {
			return nil, err
		}
	}
	return p, rows.Err()
}

// EntryCount returns the number of staged entries.
func (s *Store) EntryCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM panel_entries").Scan(&count)
	return count, err
}

package trajectory

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// sqliteStore backs a container stored as a SQLite database with two
// tables:
//
//	datasets(name TEXT PRIMARY KEY, rows INTEGER, cols INTEGER, data BLOB)
//	attrs(name TEXT PRIMARY KEY, value REAL)
//
// data holds float64 values, little-endian, row-major; cols = 0 marks a
// 1-D dataset.
type sqliteStore struct {
	db   *sql.DB
	path string
}

func openSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	// Probe the schema now so an unreadable file surfaces at open time.
	if _, err := db.Exec(`SELECT 1 FROM datasets LIMIT 1`); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &sqliteStore{db: db, path: path}, nil
}

func (s *sqliteStore) lookup(name string) (rows, cols int, data []float64, err error) {
	var blob []byte
	row := s.db.QueryRow(`SELECT rows, cols, data FROM datasets WHERE name = ?`, name)
	if err := row.Scan(&rows, &cols, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, nil, fmt.Errorf("%w: %s", ErrMissingData, name)
		}
		return 0, 0, nil, fmt.Errorf("%w: %s: dataset %q: %v", ErrCorrupt, s.path, name, err)
	}
	if len(blob)%8 != 0 {
		return 0, 0, nil, fmt.Errorf("%w: %s: dataset %q blob not float64-aligned", ErrCorrupt, s.path, name)
	}
	data = make([]float64, len(blob)/8)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return rows, cols, data, nil
}

func (s *sqliteStore) Series(name string) ([]float64, error) {
	rows, cols, data, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if cols != 0 {
		return nil, fmt.Errorf("%w: %s: dataset %q is 2-D, want 1-D", ErrCorrupt, s.path, name)
	}
	if rows != len(data) {
		return nil, fmt.Errorf("%w: %s: dataset %q declares %d rows, blob has %d", ErrCorrupt, s.path, name, rows, len(data))
	}
	return data, nil
}

func (s *sqliteStore) Grid(name string) (Grid, error) {
	rows, cols, data, err := s.lookup(name)
	if err != nil {
		return Grid{}, err
	}
	if cols == 0 {
		return Grid{}, fmt.Errorf("%w: %s: dataset %q is 1-D, want 2-D", ErrCorrupt, s.path, name)
	}
	if rows*cols != len(data) {
		return Grid{}, fmt.Errorf("%w: %s: dataset %q declares %dx%d, blob has %d values", ErrCorrupt, s.path, name, rows, cols, len(data))
	}
	return Grid{Rows: rows, Cols: cols, Data: data}, nil
}

func (s *sqliteStore) Attr(name string) (float64, error) {
	var v float64
	err := s.db.QueryRow(`SELECT value FROM attrs WHERE name = ?`, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: attr %s", ErrMissingData, name)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: attr %q: %v", ErrCorrupt, s.path, name, err)
	}
	return v, nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

package trajectory

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Builder assembles a container in memory and writes it in either encoding.
// The analysis pipeline never writes containers; this exists for converting
// simulator output and for test fixtures.
type Builder struct {
	series map[string][]float64
	grids  map[string]Grid
	attrs  map[string]float64
}

func NewBuilder() *Builder {
	return &Builder{
		series: make(map[string][]float64),
		grids:  make(map[string]Grid),
		attrs:  make(map[string]float64),
	}
}

func (b *Builder) SetSeries(name string, values []float64) *Builder {
	b.series[name] = values
	return b
}

func (b *Builder) SetGrid(name string, g Grid) *Builder {
	b.grids[name] = g
	return b
}

// SetRows stores a 2-D dataset from row slices.
func (b *Builder) SetRows(name string, rows [][]float64) *Builder {
	g, err := gridFromRows(rows)
	if err != nil {
		panic(fmt.Sprintf("trajectory.Builder.SetRows(%s): %v", name, err))
	}
	b.grids[name] = g
	return b
}

func (b *Builder) SetAttr(name string, v float64) *Builder {
	b.attrs[name] = v
	return b
}

// WriteJSON writes the container as a single JSON document.
func (b *Builder) WriteJSON(path string) error {
	doc := struct {
		Datasets map[string]any     `json:"datasets"`
		Attrs    map[string]float64 `json:"attrs"`
	}{Datasets: make(map[string]any), Attrs: b.attrs}

	for name, v := range b.series {
		doc.Datasets[name] = v
	}
	for name, g := range b.grids {
		rows := make([][]float64, g.Rows)
		for r := 0; r < g.Rows; r++ {
			rows[r] = g.Data[r*g.Cols : (r+1)*g.Cols]
		}
		doc.Datasets[name] = rows
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode container: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// WriteSQLite writes the container as a SQLite database in the layout
// sqliteStore reads.
func (b *Builder) WriteSQLite(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open container db: %w", err)
	}
	defer db.Close()

	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		name TEXT PRIMARY KEY,
		rows INTEGER NOT NULL,
		cols INTEGER NOT NULL,
		data BLOB NOT NULL
	);
	CREATE TABLE IF NOT EXISTS attrs (
		name TEXT PRIMARY KEY,
		value REAL NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create container schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin container write: %w", err)
	}
	defer tx.Rollback()

	put := `INSERT OR REPLACE INTO datasets (name, rows, cols, data) VALUES (?, ?, ?, ?)`
	for name, v := range b.series {
		if _, err := tx.Exec(put, name, len(v), 0, packFloat64(v)); err != nil {
			return fmt.Errorf("write dataset %s: %w", name, err)
		}
	}
	for name, g := range b.grids {
		if _, err := tx.Exec(put, name, g.Rows, g.Cols, packFloat64(g.Data)); err != nil {
			return fmt.Errorf("write dataset %s: %w", name, err)
		}
	}
	for name, v := range b.attrs {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO attrs (name, value) VALUES (?, ?)`, name, v); err != nil {
			return fmt.Errorf("write attr %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func packFloat64(v []float64) []byte {
	out := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(f))
	}
	return out
}

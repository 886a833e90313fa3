package trajectory

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonStore backs a container stored as a single JSON document:
//
//	{"datasets": {"trajectories/time": [...], "trajectories/phi": [[...]]},
//	 "attrs": {"a": 1.0, "b": 0.87}}
//
// 1-D and 2-D datasets are distinguished by their JSON nesting.
type jsonStore struct {
	series map[string][]float64
	grids  map[string]Grid
	attrs  map[string]float64
}

type jsonDocument struct {
	Datasets map[string]json.RawMessage `json:"datasets"`
	Attrs    map[string]float64         `json:"attrs"`
}

func openJSON(path string) (Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	var doc jsonDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	st := &jsonStore{
		series: make(map[string][]float64),
		grids:  make(map[string]Grid),
		attrs:  doc.Attrs,
	}
	for name, payload := range doc.Datasets {
		var rows [][]float64
		if err := json.Unmarshal(payload, &rows); err == nil {
			grid, err := gridFromRows(rows)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: dataset %q: %v", ErrCorrupt, path, name, err)
			}
			st.grids[name] = grid
			continue
		}
		var flat []float64
		if err := json.Unmarshal(payload, &flat); err != nil {
			return nil, fmt.Errorf("%w: %s: dataset %q is neither 1-D nor 2-D", ErrCorrupt, path, name)
		}
		st.series[name] = flat
	}
	return st, nil
}

func gridFromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, fmt.Errorf("empty 2-D dataset")
	}
	cols := len(rows[0])
	g := Grid{Rows: len(rows), Cols: cols, Data: make([]float64, 0, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("ragged rows: row %d has %d values, want %d", i, len(row), cols)
		}
		g.Data = append(g.Data, row...)
	}
	return g, nil
}

func (s *jsonStore) Series(name string) ([]float64, error) {
	if v, ok := s.series[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingData, name)
}

func (s *jsonStore) Grid(name string) (Grid, error) {
	if g, ok := s.grids[name]; ok {
		return g, nil
	}
	return Grid{}, fmt.Errorf("%w: %s", ErrMissingData, name)
}

func (s *jsonStore) Attr(name string) (float64, error) {
	if v, ok := s.attrs[name]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: attr %s", ErrMissingData, name)
}

func (s *jsonStore) Close() error { return nil }

// Package trajectory reads per-run trajectory containers and exposes the
// time series with a single normalized orientation: 2-D datasets are always
// frame-major ([frame][particle]) after loading, regardless of how the
// producing simulator laid them out on disk.
package trajectory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dataset names expected inside a container.
const (
	DatasetTime      = "trajectories/time"
	DatasetPhi       = "trajectories/phi"
	DatasetPhiDot    = "trajectories/phidot"
	DatasetEnergy    = "conservation/energy"
	DatasetMomentumX = "conservation/momentum_x"
	DatasetMomentumY = "conservation/momentum_y"

	AttrSemiMajor = "a"
	AttrSemiMinor = "b"
)

// Container file names looked up inside a run directory.
const (
	jsonContainerName   = "trajectory.json"
	sqliteContainerName = "trajectory.db"
)

var (
	// ErrMissingData marks a dataset absent from an otherwise readable
	// container. The affected metrics become undefined; the run stays in
	// the campaign.
	ErrMissingData = errors.New("dataset missing")

	// ErrCorrupt marks a container that cannot be opened or whose contents
	// are inconsistent (e.g. no phi dimension matches the time axis). The
	// run is excluded entirely.
	ErrCorrupt = errors.New("corrupt trajectory container")
)

// Store is a read-only key/value time-series container.
type Store interface {
	// Series returns a 1-D dataset. ErrMissingData when absent.
	Series(name string) ([]float64, error)
	// Grid returns a 2-D dataset in its on-disk orientation.
	Grid(name string) (Grid, error)
	// Attr returns a scalar configuration attribute. ErrMissingData when
	// absent.
	Attr(name string) (float64, error)
	Close() error
}

// Grid is a dense 2-D dataset in row-major order.
type Grid struct {
	Rows, Cols int
	Data       []float64
}

// At returns the element at (row, col).
func (g Grid) At(row, col int) float64 { return g.Data[row*g.Cols+col] }

func (g Grid) transpose() Grid {
	out := Grid{Rows: g.Cols, Cols: g.Rows, Data: make([]float64, len(g.Data))}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			out.Data[c*out.Cols+r] = g.Data[r*g.Cols+c]
		}
	}
	return out
}

// Open locates and opens the trajectory container for a run artifact. The
// path may be a run directory (holding trajectory.json or trajectory.db) or
// the container file itself; the encoding is detected by name.
func Open(path string) (Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	file := path
	if info.IsDir() {
		for _, name := range []string{jsonContainerName, sqliteContainerName} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				file = candidate
				break
			}
		}
		if file == path {
			return nil, fmt.Errorf("%w: %s: no %s or %s", ErrCorrupt, path, jsonContainerName, sqliteContainerName)
		}
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return openJSON(file)
	case ".db", ".sqlite":
		return openSQLite(file)
	}
	return nil, fmt.Errorf("%w: %s: unknown container encoding", ErrCorrupt, file)
}

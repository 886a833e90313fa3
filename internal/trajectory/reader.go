package trajectory

import (
	"errors"
	"fmt"
)

// Trajectory is one run's normalized time series. Phi and PhiDot are
// frame-major: Phi[frame][particle], with len(Phi) == len(Time). Optional
// series are nil when the container carries no such dataset. Read-only
// after Load returns.
type Trajectory struct {
	Time      []float64
	Phi       [][]float64
	PhiDot    [][]float64
	Energy    []float64
	MomentumX []float64
	MomentumY []float64

	// SemiA and SemiB are the ellipse semi-axes from the container's
	// configuration attributes; HasAxes reports whether both were present.
	SemiA, SemiB float64
	HasAxes      bool
}

// Frames is the number of stored time samples.
func (tr *Trajectory) Frames() int { return len(tr.Time) }

// Particles is the particle count, or 0 when phi is absent.
func (tr *Trajectory) Particles() int {
	if len(tr.Phi) == 0 {
		return 0
	}
	return len(tr.Phi[0])
}

// FinalFrame returns the last phi snapshot, nil when phi is absent.
func (tr *Trajectory) FinalFrame() []float64 {
	if len(tr.Phi) == 0 {
		return nil
	}
	return tr.Phi[len(tr.Phi)-1]
}

// Load opens the run artifact at path and returns its normalized
// trajectory.
//
// Orientation is resolved once, here: a 2-D dataset whose row count matches
// len(time) is taken as frame-major; one whose column count matches is
// transposed. A square matrix (both dimensions equal to len(time)) is taken
// as frame-major. When neither dimension matches, Load fails with
// ErrCorrupt rather than guessing.
//
// A missing conservation or phidot dataset leaves the field nil; a missing
// or non-monotonic time axis is ErrCorrupt.
func Load(path string) (*Trajectory, error) {
	st, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return load(st, path)
}

func load(st Store, path string) (*Trajectory, error) {
	time, err := st.Series(DatasetTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: no time axis", ErrCorrupt, path)
	}
	if len(time) == 0 {
		return nil, fmt.Errorf("%w: %s: empty time axis", ErrCorrupt, path)
	}
	for i := 1; i < len(time); i++ {
		if time[i] <= time[i-1] {
			return nil, fmt.Errorf("%w: %s: time axis not strictly increasing at sample %d", ErrCorrupt, path, i)
		}
	}

	tr := &Trajectory{Time: time}

	if tr.Phi, err = loadFrameMajor(st, DatasetPhi, len(time), path); err != nil {
		return nil, err
	}
	if tr.PhiDot, err = loadFrameMajor(st, DatasetPhiDot, len(time), path); err != nil {
		if !errors.Is(err, ErrMissingData) {
			return nil, err
		}
		tr.PhiDot = nil
	}

	tr.Energy = optionalSeries(st, DatasetEnergy)
	tr.MomentumX = optionalSeries(st, DatasetMomentumX)
	tr.MomentumY = optionalSeries(st, DatasetMomentumY)

	a, errA := st.Attr(AttrSemiMajor)
	b, errB := st.Attr(AttrSemiMinor)
	if errA == nil && errB == nil && a > 0 && b > 0 {
		tr.SemiA, tr.SemiB, tr.HasAxes = a, b, true
	}

	return tr, nil
}

func loadFrameMajor(st Store, name string, frames int, path string) ([][]float64, error) {
	grid, err := st.Grid(name)
	if err != nil {
		if errors.Is(err, ErrMissingData) && name == DatasetPhi {
			return nil, fmt.Errorf("%w: %s: no %s dataset", ErrCorrupt, path, name)
		}
		return nil, err
	}

	switch {
	case grid.Rows == frames:
		// Frame-major already; this branch also resolves the square case.
	case grid.Cols == frames:
		grid = grid.transpose()
	default:
		return nil, fmt.Errorf("%w: %s: dataset %q is %dx%d, neither dimension matches %d time samples",
			ErrCorrupt, path, name, grid.Rows, grid.Cols, frames)
	}

	out := make([][]float64, grid.Rows)
	for r := 0; r < grid.Rows; r++ {
		out[r] = grid.Data[r*grid.Cols : (r+1)*grid.Cols]
	}
	return out, nil
}

func optionalSeries(st Store, name string) []float64 {
	v, err := st.Series(name)
	if err != nil {
		return nil
	}
	return v
}

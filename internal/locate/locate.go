// Package locate discovers run artifacts under a campaign root and parses
// the swept physical parameters out of file and directory names.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrParse marks a name that matches no known naming convention. It is
// always recovered: the run is skipped and counted, never fatal.
var ErrParse = errors.New("unparsable run name")

// RunIdentity is the parsed identity of one simulation run. Immutable once
// parsed.
type RunIdentity struct {
	// RunID is -1 when the naming convention carries no explicit id.
	RunID             int
	Eccentricity      float64
	ParticleCount     int
	EnergyPerParticle float64
	Seed              int
	SourcePath        string
}

// Skipped records one artifact that could not be parsed.
type Skipped struct {
	Path   string
	Reason string
}

// Pattern names a supported naming convention.
type Pattern string

const (
	// PatternAuto tries every known convention in order.
	PatternAuto Pattern = "auto"
	// PatternRun is run_<id>_e<ecc>_N<n>_E<energy>_seed<seed>.
	PatternRun Pattern = "run"
	// PatternSweep is e<ecc>_N<n>_E<energy>_t<tmax>_seed<seed>.
	PatternSweep Pattern = "sweep"
)

var (
	runRe   = regexp.MustCompile(`^run_(\d+)_e([0-9]*\.?[0-9]+)_N(\d+)_E([0-9]*\.?[0-9]+(?:[eE][+-]?\d+)?)_seed(\d+)$`)
	sweepRe = regexp.MustCompile(`^e([0-9]*\.?[0-9]+)_N(\d+)_E([0-9]*\.?[0-9]+(?:[eE][+-]?\d+)?)_t[0-9]*\.?[0-9]+_seed(\d+)$`)
)

// ParsePattern validates a --pattern flag value.
func ParsePattern(s string) (Pattern, error) {
	switch Pattern(s) {
	case PatternAuto, PatternRun, PatternSweep:
		return Pattern(s), nil
	}
	return "", fmt.Errorf("unknown naming pattern %q (want auto, run or sweep)", s)
}

// ParseName parses a single run base name (no directory, no extension).
func ParseName(name string, pattern Pattern) (RunIdentity, error) {
	if pattern == PatternAuto || pattern == PatternRun {
		if m := runRe.FindStringSubmatch(name); m != nil {
			return identityFrom(m[1], m[2], m[3], m[4], m[5])
		}
	}
	if pattern == PatternAuto || pattern == PatternSweep {
		if m := sweepRe.FindStringSubmatch(name); m != nil {
			return identityFrom("", m[1], m[2], m[3], m[4])
		}
	}
	return RunIdentity{}, fmt.Errorf("%w: %q", ErrParse, name)
}

func identityFrom(id, ecc, n, energy, seed string) (RunIdentity, error) {
	out := RunIdentity{RunID: -1}
	var err error
	if id != "" {
		if out.RunID, err = strconv.Atoi(id); err != nil {
			return out, fmt.Errorf("%w: run id %q", ErrParse, id)
		}
	}
	if out.Eccentricity, err = strconv.ParseFloat(ecc, 64); err != nil {
		return out, fmt.Errorf("%w: eccentricity %q", ErrParse, ecc)
	}
	if out.Eccentricity < 0 || out.Eccentricity >= 1 {
		return out, fmt.Errorf("%w: eccentricity %s outside [0,1)", ErrParse, ecc)
	}
	if out.ParticleCount, err = strconv.Atoi(n); err != nil || out.ParticleCount <= 0 {
		return out, fmt.Errorf("%w: particle count %q", ErrParse, n)
	}
	if out.EnergyPerParticle, err = strconv.ParseFloat(energy, 64); err != nil {
		return out, fmt.Errorf("%w: energy %q", ErrParse, energy)
	}
	if out.Seed, err = strconv.Atoi(seed); err != nil {
		return out, fmt.Errorf("%w: seed %q", ErrParse, seed)
	}
	return out, nil
}

// Scan walks the immediate children of root and returns the parsed run
// identities sorted lexicographically by source path, plus the artifacts
// that matched no convention. Entries whose names start with '.' or '_'
// are ignored outright.
func Scan(root string, pattern Pattern) ([]RunIdentity, []Skipped, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("read campaign root: %w", err)
	}

	var runs []RunIdentity
	var skipped []Skipped
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		path := filepath.Join(root, name)
		base := name
		if !entry.IsDir() {
			base = strings.TrimSuffix(name, filepath.Ext(name))
		}
		id, err := ParseName(base, pattern)
		if err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}
		id.SourcePath = path
		if entry.IsDir() {
			applySidecar(&id, path)
		}
		runs = append(runs, id)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].SourcePath < runs[j].SourcePath })
	return runs, skipped, nil
}

// sidecar mirrors the optional metadata.yaml inside a run directory.
// Present values take precedence over the filename-derived ones.
type sidecar struct {
	N            *int     `yaml:"N"`
	Eccentricity *float64 `yaml:"eccentricity"`
	Energy       *float64 `yaml:"energy"`
	Seed         *int     `yaml:"seed"`
	RunID        *int     `yaml:"run_id"`
}

func applySidecar(id *RunIdentity, dir string) {
	raw, err := os.ReadFile(filepath.Join(dir, "metadata.yaml"))
	if err != nil {
		return
	}
	var sc sidecar
	if yaml.Unmarshal(raw, &sc) != nil {
		return
	}
	if sc.N != nil && *sc.N > 0 {
		id.ParticleCount = *sc.N
	}
	if sc.Eccentricity != nil && *sc.Eccentricity >= 0 && *sc.Eccentricity < 1 {
		id.Eccentricity = *sc.Eccentricity
	}
	if sc.Energy != nil {
		id.EnergyPerParticle = *sc.Energy
	}
	if sc.Seed != nil {
		id.Seed = *sc.Seed
	}
	if sc.RunID != nil {
		id.RunID = *sc.RunID
	}
}

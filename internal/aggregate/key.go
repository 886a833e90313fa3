package aggregate

import (
	"fmt"
	"strings"

	"ringstat/internal/locate"
)

// Field names one swept parameter usable in a grouping key.
type Field string

const (
	FieldEccentricity  Field = "eccentricity"
	FieldParticleCount Field = "particle_count"
	FieldEnergy        Field = "energy"
)

// DefaultFields groups by every swept parameter, so repeated seeds of one
// condition land in one ensemble.
var DefaultFields = []Field{FieldEccentricity, FieldParticleCount, FieldEnergy}

// ParseFields validates a --group-by flag value.
func ParseFields(names []string) ([]Field, error) {
	if len(names) == 0 {
		return DefaultFields, nil
	}
	out := make([]Field, 0, len(names))
	for _, n := range names {
		switch f := Field(strings.TrimSpace(n)); f {
		case FieldEccentricity, FieldParticleCount, FieldEnergy:
			out = append(out, f)
		default:
			return nil, fmt.Errorf("unknown grouping field %q", n)
		}
	}
	return out, nil
}

// Key is a first-class grouping key over the swept parameters held fixed
// for one ensemble. Floating-point parameters parsed from filenames are
// compared through a canonical %.6g rendering, never by raw equality.
type Key struct {
	Eccentricity  float64
	ParticleCount int
	Energy        float64

	fields []Field
	canon  string
}

// KeyOf projects a run identity onto the chosen grouping fields.
func KeyOf(id locate.RunIdentity, fields []Field) Key {
	k := Key{fields: fields}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f {
		case FieldEccentricity:
			k.Eccentricity = id.Eccentricity
			parts = append(parts, fmt.Sprintf("e=%.6g", id.Eccentricity))
		case FieldParticleCount:
			k.ParticleCount = id.ParticleCount
			parts = append(parts, fmt.Sprintf("N=%d", id.ParticleCount))
		case FieldEnergy:
			k.Energy = id.EnergyPerParticle
			parts = append(parts, fmt.Sprintf("E=%.6g", id.EnergyPerParticle))
		}
	}
	k.canon = strings.Join(parts, "|")
	return k
}

// Canon is the canonical string form; two keys are the same condition iff
// their canonical forms are equal.
func (k Key) Canon() string { return k.canon }

// Fields returns the grouping fields the key was built with.
func (k Key) Fields() []Field { return k.fields }

// Value returns the key's value for one of its grouping fields, for use as
// a fit abscissa.
func (k Key) Value(f Field) (float64, bool) {
	for _, kf := range k.fields {
		if kf != f {
			continue
		}
		switch f {
		case FieldEccentricity:
			return k.Eccentricity, true
		case FieldParticleCount:
			return float64(k.ParticleCount), true
		case FieldEnergy:
			return k.Energy, true
		}
	}
	return 0, false
}

// Less orders keys component-wise in field order, so summaries come out in
// a stable sweep order.
func (k Key) Less(other Key) bool {
	for _, f := range k.fields {
		a, _ := k.Value(f)
		b, ok := other.Value(f)
		if !ok {
			break
		}
		if a != b {
			return a < b
		}
	}
	return k.canon < other.canon
}

package metrics

import "strconv"

// Value is a scalar diagnostic that distinguishes a computed number from
// "not applicable" and from a failed computation. NaN is never used as a
// sentinel: an undefined Value is excluded from every average instead of
// silently poisoning it.
type Value struct {
	v     float64
	state valueState
}

type valueState uint8

const (
	stateUndefined valueState = iota
	stateDefined
	stateFailed
)

// Defined wraps a computed scalar.
func Defined(v float64) Value { return Value{v: v, state: stateDefined} }

// Undefined marks a metric as not applicable for a run (e.g. a formation
// time whose threshold was never crossed, or drift without conservation
// data).
func Undefined() Value { return Value{state: stateUndefined} }

// Failed marks a metric whose computation errored. Like Undefined it is
// excluded from statistics, but summaries report it separately.
func Failed() Value { return Value{state: stateFailed} }

// Float returns the scalar and whether it is defined.
func (v Value) Float() (float64, bool) { return v.v, v.state == stateDefined }

// MustFloat returns the scalar, valid only when IsDefined reports true.
func (v Value) MustFloat() float64 { return v.v }

func (v Value) IsDefined() bool { return v.state == stateDefined }
func (v Value) IsFailed() bool  { return v.state == stateFailed }

// String renders the scalar, or the state name for non-defined values.
func (v Value) String() string {
	switch v.state {
	case stateDefined:
		return strconv.FormatFloat(v.v, 'g', -1, 64)
	case stateFailed:
		return "failed"
	default:
		return "undefined"
	}
}

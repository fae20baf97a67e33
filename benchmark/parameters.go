package benchmark

import (
	"reflect"
)

// ParameterSource supplies the scalar values a suite's parameterised
// operations are measured with. Invalid sources carry their error until
// discovery.
type ParameterSource struct {
	values []any
	err    error
}

// Values declares an explicit list of parameter values. Every value must be
// non-nil and comparable.
func Values(values ...any) ParameterSource {
	if len(values) == 0 {
		return ParameterSource{err: configErrorf("parameter list is empty")}
	}
	for i, v := range values {
		if v == nil {
			return ParameterSource{err: configErrorf("parameter %d is nil", i)}
		}
		if !reflect.TypeOf(v).Comparable() {
			return ParameterSource{err: configErrorf("parameter %d of type %T is not comparable", i, v)}
		}
	}

	out := make([]any, len(values))
	copy(out, values)
	return ParameterSource{values: out}
}

// Range declares the integers [from, to) advancing by step.
func Range(from, to, step int) ParameterSource {
	if step < 1 {
		return ParameterSource{err: configErrorf("range step %d must be at least 1", step)}
	}
	if to <= from {
		return ParameterSource{err: configErrorf("range [%d, %d) is empty", from, to)}
	}

	values := make([]any, 0, (to-from+step-1)/step)
	for i := from; i < to; i += step {
		values = append(values, i)
	}
	return ParameterSource{values: values}
}

// List returns a copy of the parameter values.
func (p ParameterSource) List() []any {
	out := make([]any, len(p.values))
	copy(out, p.values)
	return out
}

// Err returns the declaration error, if any.
func (p ParameterSource) Err() error {
	return p.err
}

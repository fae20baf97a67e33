package benchmark

import (
	"github.com/pkg/errors"
)

// Target is a benchmark-bearing type known to a Registry.
type Target interface {
	// Owner is the name results are grouped under.
	Owner() string
	// Focused reports whether only focused targets should run.
	Focused() bool
	// Operations lists the benchmarked operation names in declaration order.
	Operations() []string
	// Cases expands the target into executable units, each thunk running its
	// operation batchSize times per invocation.
	Cases(batchSize int) ([]Case, error)
}

type operation[T any] struct {
	name          string
	run           func(T, any)
	parameterized bool
	accepts       func(any) bool
}

// Suite declares the benchmarks of one owner type T.
//
// The factory is called once per expansion and the resulting instance is shared
// by every unit of the suite, so fixture data built by the factory is set up
// once and measured many times.
type Suite[T any] struct {
	owner     string
	factory   func() T
	sources   []ParameterSource
	ops       []operation[T]
	focused   bool
	declError error
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - owner: The name results of this suite are grouped under.
//   - factory: Builds the shared instance handed to every operation. May be nil,
//     in which case the zero value of T is used.
//
// Returns:
//   - *Suite[T]: The suite, ready for Benchmark declarations.
func NewSuite[T any](owner string, factory func() T) *Suite[T] {
	return &Suite[T]{
		owner:   owner,
		factory: factory,
		ops:     make([]operation[T], 0),
	}
}

// Benchmark declares a parameterless operation.
func (s *Suite[T]) Benchmark(name string, fn func(T)) *Suite[T] {
	if fn == nil {
		s.fail(configErrorf("%s.%s: nil benchmark function", s.owner, name))
		return s
	}
	s.ops = append(s.ops, operation[T]{
		name: name,
		run:  func(instance T, _ any) { fn(instance) },
	})
	return s
}

// BenchmarkWithParameter declares an operation receiving each value of the
// suite's parameter source.
func (s *Suite[T]) BenchmarkWithParameter(name string, fn func(T, any)) *Suite[T] {
	if fn == nil {
		s.fail(configErrorf("%s.%s: nil benchmark function", s.owner, name))
		return s
	}
	s.ops = append(s.ops, operation[T]{
		name:          name,
		run:           fn,
		parameterized: true,
		accepts:       func(any) bool { return true },
	})
	return s
}

// BenchmarkWithInt declares an operation receiving int parameters, typically
// from a Range source. Non-int parameter values fail discovery.
func (s *Suite[T]) BenchmarkWithInt(name string, fn func(T, int)) *Suite[T] {
	if fn == nil {
		s.fail(configErrorf("%s.%s: nil benchmark function", s.owner, name))
		return s
	}
	s.ops = append(s.ops, operation[T]{
		name: name,
		run: func(instance T, p any) {
			n, _ := p.(int)
			fn(instance, n)
		},
		parameterized: true,
		accepts: func(p any) bool {
			_, ok := p.(int)
			return ok
		},
	})
	return s
}

// Parameters sets the suite's parameter source. Declaring more than one source
// on a suite is ambiguous and fails discovery.
func (s *Suite[T]) Parameters(source ParameterSource) *Suite[T] {
	s.sources = append(s.sources, source)
	return s
}

// Focus marks the suite so that, when any registered suite is focused, only the
// focused ones are discovered.
func (s *Suite[T]) Focus() *Suite[T] {
	s.focused = true
	return s
}

// Owner implements Target.
func (s *Suite[T]) Owner() string { return s.owner }

// Focused implements Target.
func (s *Suite[T]) Focused() bool { return s.focused }

// Operations implements Target.
func (s *Suite[T]) Operations() []string {
	names := make([]string, len(s.ops))
	for i, op := range s.ops {
		names[i] = op.name
	}
	return names
}

// Cases implements Target.
func (s *Suite[T]) Cases(batchSize int) ([]Case, error) {
	if err := s.validate(batchSize); err != nil {
		return nil, err
	}

	var params []any
	if len(s.sources) == 1 {
		params = s.sources[0].List()
	}

	var instance T
	if s.factory != nil {
		instance = s.factory()
	}

	cases := make([]Case, 0, len(s.ops)*max(1, len(params)))
	for _, op := range s.ops {
		if !op.parameterized || params == nil {
			cases = append(cases, s.newCase(instance, op, nil, batchSize))
			continue
		}
		for _, p := range params {
			if !op.accepts(p) {
				return nil, configErrorf("%s.%s: parameter %v of type %T not accepted", s.owner, op.name, p, p)
			}
			cases = append(cases, s.newCase(instance, op, p, batchSize))
		}
	}

	return cases, nil
}

func (s *Suite[T]) newCase(instance T, op operation[T], parameter any, batchSize int) Case {
	run := op.run
	return Case{
		Unit: Unit{
			Owner:     s.owner,
			Operation: op.name,
			Parameter: parameter,
		},
		Thunk: batched(func() { run(instance, parameter) }, batchSize),
	}
}

func (s *Suite[T]) validate(batchSize int) error {
	if s.declError != nil {
		return s.declError
	}
	if s.owner == "" {
		return configErrorf("suite owner name is empty")
	}
	if batchSize < 1 {
		return configErrorf("batch size %d must be at least 1", batchSize)
	}
	if len(s.sources) > 1 {
		return configErrorf("%s declares %d parameter sources; at most one is allowed", s.owner, len(s.sources))
	}
	if len(s.sources) == 1 {
		if err := s.sources[0].Err(); err != nil {
			return errors.Wrapf(err, "%s parameter source", s.owner)
		}
	}

	seen := make(map[string]struct{}, len(s.ops))
	for _, op := range s.ops {
		if op.name == "" {
			return configErrorf("%s declares an operation without a name", s.owner)
		}
		if _, dup := seen[op.name]; dup {
			return configErrorf("%s declares operation %s twice", s.owner, op.name)
		}
		seen[op.name] = struct{}{}
	}

	return nil
}

func (s *Suite[T]) fail(err error) {
	if s.declError == nil {
		s.declError = err
	}
}

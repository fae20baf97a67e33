package benchmark

import (
	"fmt"
	"reflect"

	"github.com/nvr-ai/tinybench/util"
)

// Unit identifies one measurable (owner, operation, parameter) combination.
// A nil Parameter marks a parameterless unit.
type Unit struct {
	Owner     string `json:"class_name"`
	Operation string `json:"method_name"`
	Parameter any    `json:"parameter,omitempty"`
}

// String renders the unit as Owner.Operation(parameter).
func (u Unit) String() string {
	return fmt.Sprintf("%s.%s(%s)", u.Owner, u.Operation, util.FormatParameter(u.Parameter))
}

// Matches reports whether the unit is the (owner, operation, parameter)
// combination. Parameters compare with ==, so an int parameter does not match
// an int64 lookup value.
func (u Unit) Matches(owner, operation string, parameter any) bool {
	return u.Owner == owner && u.Operation == operation && sameParameter(u.Parameter, parameter)
}

func sameParameter(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Thunk is a zero-argument call wrapping one batched benchmark execution.
type Thunk func()

// Case pairs a unit with the thunk that executes it.
type Case struct {
	Unit  Unit
	Thunk Thunk
}

// batched returns a thunk that invokes run batchSize consecutive times.
func batched(run func(), batchSize int) Thunk {
	if batchSize == 1 {
		return run
	}
	return func() {
		for i := 0; i < batchSize; i++ {
			run()
		}
	}
}

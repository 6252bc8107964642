package analysis

import (
	"fmt"
	"runtime/debug"
)

// Result is the outcome of one estimator.
type Result[T any] struct {
	Value T

	// Fallback is true when Value is the estimator's fallback.
	Fallback bool

	// Err is the failure that caused the fallback.
	Err error
}

// Run calls estimate and converts an error or panic into the fallback value.
func Run[T any](fallback func() T, estimate func() (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[T]{
				Value:    fallback(),
				Fallback: true,
				Err:      &PanicError{Value: p, Stack: debug.Stack()},
			}
		}
	}()

	v, err := estimate()
	if err != nil {
		return Result[T]{Value: fallback(), Fallback: true, Err: err}
	}
	return Result[T]{Value: v}
}

// PanicError wraps a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

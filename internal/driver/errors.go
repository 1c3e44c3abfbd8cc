package driver

import (
	"fmt"
	"runtime/debug"
)

// InternalError is an invariant failure inside the compiler core. It is a
// compiler bug, never a problem with the input.
type InternalError struct {
	Phase  string
	Module string // empty outside lowering
	Value  any
	Stack  []byte
}

func newInternalError(phase, module string, v any) *InternalError {
	return &InternalError{Phase: phase, Module: module, Value: v, Stack: debug.Stack()}
}

func (e *InternalError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("internal compiler error in %s of %s: %v", e.Phase, e.Module, e.Value)
	}
	return fmt.Sprintf("internal compiler error in %s: %v", e.Phase, e.Value)
}

func (e *InternalError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

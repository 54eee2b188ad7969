// Package vm provides the core capability builtins: print, input, range,
// and len. The registry is the complete list of what a program can call;
// nothing outside it is reachable.
package vm

import (
	"fmt"
	"strings"
)

func (vm *VM) registerCoreBuiltins() {
	vm.RegisterBuiltinFunction("print", builtinPrint)
	vm.RegisterBuiltinFunction("input", builtinInput)
	vm.RegisterBuiltinFunction("range", builtinRange)
	vm.RegisterBuiltinFunction("len", builtinLen)
}

// builtinPrint renders its arguments separated by single spaces and writes
// them followed by a newline to the VM's output writer.
func builtinPrint(vm *VM, args []any) (any, error) {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, toString(arg))
	}
	fmt.Fprintln(vm.out, strings.Join(parts, " "))
	return nil, nil
}

// builtinInput is deterministic: there is no interactive console in a
// sandboxed run, so the prompt itself is returned as the entered value.
func builtinInput(vm *VM, args []any) (any, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return toString(args[0]), nil
	default:
		return nil, NewArityError("input expected at most 1 argument, got %d", len(args))
	}
}

// builtinRange builds a lazy range from 1, 2, or 3 integer arguments. The
// value is O(1) in memory regardless of its length.
func builtinRange(vm *VM, args []any) (any, error) {
	if len(args) < 1 || len(args) > 3 {
		if len(args) == 0 {
			return nil, NewArityError("range expected at least 1 argument, got 0")
		}
		return nil, NewArityError("range expected at most 3 arguments, got %d", len(args))
	}

	nums := make([]int64, len(args))
	for i, arg := range args {
		n, ok := arg.(int64)
		if !ok {
			return nil, NewTypeError("'%s' object cannot be interpreted as an integer", typeName(arg))
		}
		nums[i] = n
	}

	r := &Range{Start: 0, Step: 1}
	switch len(nums) {
	case 1:
		r.Stop = nums[0]
	case 2:
		r.Start, r.Stop = nums[0], nums[1]
	case 3:
		r.Start, r.Stop, r.Step = nums[0], nums[1], nums[2]
		if r.Step == 0 {
			return nil, NewValueError("range() arg 3 must not be zero")
		}
	}
	return r, nil
}

// builtinLen measures strings in code points, not bytes.
func builtinLen(vm *VM, args []any) (any, error) {
	if len(args) != 1 {
		return nil, NewArityError("len() takes exactly one argument (%d given)", len(args))
	}
	switch v := args[0].(type) {
	case string:
		return int64(len([]rune(v))), nil
	case *List:
		return int64(len(v.Elements)), nil
	case *Range:
		return v.Len(), nil
	default:
		return nil, NewTypeError("object of type '%s' has no len()", typeName(args[0]))
	}
}

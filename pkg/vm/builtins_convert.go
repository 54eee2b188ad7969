// Package vm provides the conversion capability builtins: int, float, str.
package vm

import (
	"math"
	"strconv"
	"strings"
)

func (vm *VM) registerConversionBuiltins() {
	vm.RegisterBuiltinFunction("int", builtinInt)
	vm.RegisterBuiltinFunction("float", builtinFloat)
	vm.RegisterBuiltinFunction("str", builtinStr)
}

// builtinInt converts to an integer. Floats truncate toward zero; strings
// must spell a plain base-10 integer.
func builtinInt(vm *VM, args []any) (any, error) {
	if len(args) > 1 {
		return nil, NewArityError("int() takes at most 1 argument (%d given)", len(args))
	}
	if len(args) == 0 {
		return int64(0), nil
	}

	switch v := args[0].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(math.Trunc(v)), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, NewValueError("invalid literal for int() with base 10: %s", Repr(v))
		}
		return n, nil
	default:
		return nil, NewTypeError("int() argument must be a string or a number, not '%s'", typeName(args[0]))
	}
}

func builtinFloat(vm *VM, args []any) (any, error) {
	if len(args) > 1 {
		return nil, NewArityError("float() takes at most 1 argument (%d given)", len(args))
	}
	if len(args) == 0 {
		return float64(0), nil
	}

	switch v := args[0].(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case bool:
		if v {
			return float64(1), nil
		}
		return float64(0), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, NewValueError("could not convert string to float: %s", Repr(v))
		}
		return f, nil
	default:
		return nil, NewTypeError("float() argument must be a string or a number, not '%s'", typeName(args[0]))
	}
}

func builtinStr(vm *VM, args []any) (any, error) {
	if len(args) > 1 {
		return nil, NewArityError("str() takes at most 1 argument (%d given)", len(args))
	}
	if len(args) == 0 {
		return "", nil
	}
	return toString(args[0]), nil
}

// Package vm provides the numeric capability builtins: abs, min, max, sum.
package vm

import "math"

func (vm *VM) registerNumericBuiltins() {
	vm.RegisterBuiltinFunction("abs", builtinAbs)
	vm.RegisterBuiltinFunction("min", builtinMin)
	vm.RegisterBuiltinFunction("max", builtinMax)
	vm.RegisterBuiltinFunction("sum", builtinSum)
}

func builtinAbs(vm *VM, args []any) (any, error) {
	if len(args) != 1 {
		return nil, NewArityError("abs() takes exactly one argument (%d given)", len(args))
	}
	switch v := args[0].(type) {
	case int64:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case float64:
		return math.Abs(v), nil
	default:
		return nil, NewTypeError("bad operand type for abs(): '%s'", typeName(args[0]))
	}
}

func builtinMin(vm *VM, args []any) (any, error) {
	return extreme(vm, "min", args, -1)
}

func builtinMax(vm *VM, args []any) (any, error) {
	return extreme(vm, "max", args, 1)
}

// extreme implements min and max: a single list or range argument is scanned
// element-wise, two or more arguments are compared directly. want is the
// comparison sign that makes a candidate the new best.
func extreme(vm *VM, name string, args []any, want int) (any, error) {
	if len(args) == 0 {
		return nil, NewArityError("%s expected at least 1 argument, got 0", name)
	}

	candidates := args
	if len(args) == 1 {
		switch seq := args[0].(type) {
		case *List:
			candidates = seq.Elements
		case *Range:
			n := seq.Len()
			if n == 0 {
				return nil, NewValueError("%s() arg is an empty sequence", name)
			}
			// Monotone sequence: the extreme is at one end.
			first, last := seq.At(0), seq.At(n-1)
			if (seq.Step > 0) == (want > 0) {
				return last, nil
			}
			return first, nil
		default:
			return nil, NewTypeError("'%s' object is not iterable", typeName(args[0]))
		}
		if len(candidates) == 0 {
			return nil, NewValueError("%s() arg is an empty sequence", name)
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		cmp, err := compareValues(c, best)
		if err != nil {
			return nil, NewTypeError("'<' not supported between instances of '%s' and '%s'", typeName(c), typeName(best))
		}
		if (want > 0 && cmp > 0) || (want < 0 && cmp < 0) {
			best = c
		}
	}
	return best, nil
}

func builtinSum(vm *VM, args []any) (any, error) {
	if len(args) != 1 {
		return nil, NewArityError("sum() takes exactly one argument (%d given)", len(args))
	}

	switch seq := args[0].(type) {
	case *List:
		var intSum int64
		var floatSum float64
		isFloat := false
		for _, el := range seq.Elements {
			switch v := el.(type) {
			case int64:
				intSum += v
				floatSum += float64(v)
			case float64:
				isFloat = true
				floatSum += v
			default:
				return nil, NewTypeError("unsupported operand type(s) for +: 'int' and '%s'", typeName(el))
			}
		}
		if isFloat {
			return floatSum, nil
		}
		return intSum, nil

	case *Range:
		// Arithmetic series, closed form; no iteration needed.
		n := seq.Len()
		if n == 0 {
			return int64(0), nil
		}
		return n * (seq.At(0) + seq.At(n-1)) / 2, nil

	default:
		return nil, NewTypeError("'%s' object is not iterable", typeName(args[0]))
	}
}

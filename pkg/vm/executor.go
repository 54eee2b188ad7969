// Package vm provides statement execution and expression evaluation.
package vm

import (
	"errors"
	"math"

	"github.com/blockrun/blockrun/pkg/compiler/ast"
)

// Loop control flow travels as sentinel errors and is absorbed by the
// innermost enclosing loop.
var (
	errBreakSignal    = errors.New("break")
	errContinueSignal = errors.New("continue")
)

// execStatement executes a single statement. Runtime errors are tagged with
// the statement's source line on the way out.
func (vm *VM) execStatement(stmt ast.Statement) error {
	if err := vm.tick(); err != nil {
		return vm.withLine(err, stmt)
	}

	var err error
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err = vm.evalExpression(s.Expression)
	case *ast.AssignStatement:
		err = vm.execAssign(s)
	case *ast.IfStatement:
		err = vm.execIf(s)
	case *ast.WhileStatement:
		err = vm.execWhile(s)
	case *ast.ForStatement:
		err = vm.execFor(s)
	case *ast.BreakStatement:
		return errBreakSignal
	case *ast.ContinueStatement:
		return errContinueSignal
	case *ast.PassStatement:
		return nil
	case *ast.BlockStatement:
		return vm.execBlock(s)
	default:
		err = NewRuntimeError(ErrorTypeMismatch, "unsupported statement")
	}

	return vm.withLine(err, stmt)
}

// withLine attaches the statement's line to a RuntimeError that does not
// carry one yet.
func (vm *VM) withLine(err error, stmt ast.Statement) error {
	if err == nil || err == errBreakSignal || err == errContinueSignal {
		return err
	}
	var rerr *RuntimeError
	if errors.As(err, &rerr) && rerr.Line == 0 {
		rerr.Line = statementLine(stmt)
	}
	return err
}

func statementLine(stmt ast.Statement) int {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return s.Token.Line
	case *ast.AssignStatement:
		return s.Token.Line
	case *ast.IfStatement:
		return s.Token.Line
	case *ast.WhileStatement:
		return s.Token.Line
	case *ast.ForStatement:
		return s.Token.Line
	case *ast.BreakStatement:
		return s.Token.Line
	case *ast.ContinueStatement:
		return s.Token.Line
	case *ast.PassStatement:
		return s.Token.Line
	default:
		return 0
	}
}

func (vm *VM) execBlock(block *ast.BlockStatement) error {
	for _, stmt := range block.Statements {
		if err := vm.execStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) execAssign(s *ast.AssignStatement) error {
	value, err := vm.evalExpression(s.Value)
	if err != nil {
		return err
	}

	switch target := s.Target.(type) {
	case *ast.Identifier:
		if s.Operator != "=" {
			current, ok := vm.globalScope.Get(target.Value)
			if !ok {
				return NewUndefinedNameError(target.Value)
			}
			value, err = vm.binaryOp(s.Operator[:len(s.Operator)-1], current, value)
			if err != nil {
				return err
			}
		}
		vm.globalScope.Set(target.Value, value)
		return nil

	case *ast.IndexExpression:
		obj, err := vm.evalExpression(target.Left)
		if err != nil {
			return err
		}
		list, ok := obj.(*List)
		if !ok {
			return NewTypeError("'%s' object does not support item assignment", typeName(obj))
		}
		idxVal, err := vm.evalExpression(target.Index)
		if err != nil {
			return err
		}
		idx, ok := idxVal.(int64)
		if !ok {
			return NewTypeError("list indices must be integers, not '%s'", typeName(idxVal))
		}
		pos, err := normalizeIndex(idx, int64(len(list.Elements)), "list assignment index out of range")
		if err != nil {
			return err
		}
		if s.Operator != "=" {
			value, err = vm.binaryOp(s.Operator[:len(s.Operator)-1], list.Elements[pos], value)
			if err != nil {
				return err
			}
		}
		list.Elements[pos] = value
		return nil

	default:
		return NewTypeError("cannot assign to expression")
	}
}

func (vm *VM) execIf(s *ast.IfStatement) error {
	cond, err := vm.evalExpression(s.Condition)
	if err != nil {
		return err
	}
	if toBool(cond) {
		return vm.execBlock(s.Consequence)
	}
	if s.Alternative != nil {
		return vm.execBlock(s.Alternative)
	}
	return nil
}

func (vm *VM) execWhile(s *ast.WhileStatement) error {
	for {
		if err := vm.tick(); err != nil {
			return err
		}
		cond, err := vm.evalExpression(s.Condition)
		if err != nil {
			return err
		}
		if !toBool(cond) {
			return nil
		}
		if err := vm.execBlock(s.Body); err != nil {
			if err == errBreakSignal {
				return nil
			}
			if err == errContinueSignal {
				continue
			}
			return err
		}
	}
}

// execFor iterates a range, list, or string. The loop variable is a plain
// binding in the run's scope and keeps its last value after the loop ends.
func (vm *VM) execFor(s *ast.ForStatement) error {
	iterable, err := vm.evalExpression(s.Iterable)
	if err != nil {
		return err
	}

	assign := func(v any) { vm.globalScope.Set(s.Var.Value, v) }

	body := func() (stop bool, err error) {
		if err := vm.tick(); err != nil {
			return true, err
		}
		if err := vm.execBlock(s.Body); err != nil {
			if err == errBreakSignal {
				return true, nil
			}
			if err == errContinueSignal {
				return false, nil
			}
			return true, err
		}
		return false, nil
	}

	switch it := iterable.(type) {
	case *Range:
		n := it.Len()
		for i := int64(0); i < n; i++ {
			assign(it.At(i))
			if stop, err := body(); stop || err != nil {
				return err
			}
		}
		return nil

	case *List:
		// Indexed against the live length, so appends during iteration are
		// observed and removals shorten the walk.
		for i := 0; i < len(it.Elements); i++ {
			assign(it.Elements[i])
			if stop, err := body(); stop || err != nil {
				return err
			}
		}
		return nil

	case string:
		for _, r := range it {
			assign(string(r))
			if stop, err := body(); stop || err != nil {
				return err
			}
		}
		return nil

	default:
		return NewTypeError("'%s' object is not iterable", typeName(iterable))
	}
}

// evalExpression evaluates an expression to a value.
func (vm *VM) evalExpression(expr ast.Expression) (any, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return e.Value, nil
	case *ast.FloatLiteral:
		return e.Value, nil
	case *ast.StringLiteral:
		return e.Value, nil
	case *ast.BooleanLiteral:
		return e.Value, nil
	case *ast.NoneLiteral:
		return nil, nil
	case *ast.Identifier:
		return vm.evalIdentifier(e)
	case *ast.FStringLiteral:
		return vm.evalFString(e)
	case *ast.ListLiteral:
		return vm.evalListLiteral(e)
	case *ast.PrefixExpression:
		return vm.evalPrefix(e)
	case *ast.InfixExpression:
		return vm.evalInfix(e)
	case *ast.IndexExpression:
		return vm.evalIndex(e)
	case *ast.CallExpression:
		return vm.evalCall(e)
	case *ast.MethodCallExpression:
		return vm.evalMethodCall(e)
	default:
		return nil, NewRuntimeError(ErrorTypeMismatch, "unsupported expression")
	}
}

// evalIdentifier resolves a name: user bindings shadow capabilities, and a
// capability referenced without a call evaluates to a *Builtin value.
func (vm *VM) evalIdentifier(e *ast.Identifier) (any, error) {
	if value, ok := vm.globalScope.Get(e.Value); ok {
		return value, nil
	}
	if _, ok := vm.builtins[e.Value]; ok {
		return &Builtin{Name: e.Value}, nil
	}
	return nil, NewUndefinedNameError(e.Value)
}

func (vm *VM) evalFString(e *ast.FStringLiteral) (any, error) {
	var out []byte
	for _, part := range e.Parts {
		if lit, ok := part.(*ast.StringLiteral); ok {
			out = append(out, lit.Value...)
			continue
		}
		value, err := vm.evalExpression(part)
		if err != nil {
			return nil, err
		}
		out = append(out, toString(value)...)
	}
	return string(out), nil
}

func (vm *VM) evalListLiteral(e *ast.ListLiteral) (any, error) {
	elements := make([]any, 0, len(e.Elements))
	for _, el := range e.Elements {
		value, err := vm.evalExpression(el)
		if err != nil {
			return nil, err
		}
		elements = append(elements, value)
	}
	return &List{Elements: elements}, nil
}

func (vm *VM) evalPrefix(e *ast.PrefixExpression) (any, error) {
	right, err := vm.evalExpression(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case "not":
		return !toBool(right), nil
	case "-":
		switch v := right.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
		return nil, NewTypeError("bad operand type for unary -: '%s'", typeName(right))
	case "+":
		switch right.(type) {
		case int64, float64:
			return right, nil
		}
		return nil, NewTypeError("bad operand type for unary +: '%s'", typeName(right))
	default:
		return nil, NewTypeError("unknown prefix operator: %s", e.Operator)
	}
}

// evalInfix handles all binary operators. and/or short-circuit and yield an
// operand value rather than a bool.
func (vm *VM) evalInfix(e *ast.InfixExpression) (any, error) {
	if e.Operator == "and" || e.Operator == "or" {
		left, err := vm.evalExpression(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator == "and" && !toBool(left) {
			return left, nil
		}
		if e.Operator == "or" && toBool(left) {
			return left, nil
		}
		return vm.evalExpression(e.Right)
	}

	left, err := vm.evalExpression(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := vm.evalExpression(e.Right)
	if err != nil {
		return nil, err
	}
	return vm.binaryOp(e.Operator, left, right)
}

func (vm *VM) binaryOp(op string, left, right any) (any, error) {
	switch op {
	case "+":
		return vm.opAdd(left, right)
	case "-":
		return vm.arith(op, left, right)
	case "*":
		return vm.opMul(left, right)
	case "/":
		return vm.opTrueDiv(left, right)
	case "//":
		return vm.opFloorDiv(left, right)
	case "%":
		return vm.opMod(left, right)
	case "**":
		return vm.opPow(left, right)
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return vm.opCompare(op, left, right)
	default:
		return nil, NewTypeError("unknown operator: %s", op)
	}
}

func (vm *VM) opAdd(left, right any) (any, error) {
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return ls + rs, nil
		}
		return nil, NewTypeError("can only concatenate str (not \"%s\") to str", typeName(right))
	}
	if ll, ok := left.(*List); ok {
		rl, ok := right.(*List)
		if !ok {
			return nil, NewTypeError("can only concatenate list (not \"%s\") to list", typeName(right))
		}
		elements := make([]any, 0, len(ll.Elements)+len(rl.Elements))
		elements = append(elements, ll.Elements...)
		elements = append(elements, rl.Elements...)
		return &List{Elements: elements}, nil
	}
	return vm.arith("+", left, right)
}

// maxRepeatSize bounds the result of sequence repetition so a single
// multiplication cannot exhaust memory.
const maxRepeatSize = 10_000_000

func (vm *VM) opMul(left, right any) (any, error) {
	// str * int and list * int repeat the sequence; order is symmetric.
	if s, n, ok := sequenceRepeat(left, right); ok {
		if n > 0 && int64(len(s))*n > maxRepeatSize {
			return nil, NewValueError("repeated string is too large")
		}
		return repeatString(s, n), nil
	}
	if l, n, ok := listRepeat(left, right); ok {
		if n > 0 && int64(len(l.Elements))*n > maxRepeatSize {
			return nil, NewValueError("repeated list is too large")
		}
		return repeatList(l, n), nil
	}
	return vm.arith("*", left, right)
}

// arith handles the numeric cases of + - *. Mixed int/float promotes to
// float.
func (vm *VM) arith(op string, left, right any) (any, error) {
	li, lInt := left.(int64)
	ri, rInt := right.(int64)
	if lInt && rInt {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		}
	}

	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return nil, NewTypeError("unsupported operand type(s) for %s: '%s' and '%s'", op, typeName(left), typeName(right))
	}
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	}
	return nil, NewTypeError("unknown operator: %s", op)
}

// opTrueDiv always yields a float.
func (vm *VM) opTrueDiv(left, right any) (any, error) {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return nil, NewTypeError("unsupported operand type(s) for /: '%s' and '%s'", typeName(left), typeName(right))
	}
	if rf == 0 {
		return nil, NewDivisionByZeroError("division by zero")
	}
	return lf / rf, nil
}

// opFloorDiv rounds toward negative infinity. Two ints yield an int.
func (vm *VM) opFloorDiv(left, right any) (any, error) {
	if li, ok := left.(int64); ok {
		if ri, ok := right.(int64); ok {
			if ri == 0 {
				return nil, NewDivisionByZeroError("integer division or modulo by zero")
			}
			return floorDivInt(li, ri), nil
		}
	}
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return nil, NewTypeError("unsupported operand type(s) for //: '%s' and '%s'", typeName(left), typeName(right))
	}
	if rf == 0 {
		return nil, NewDivisionByZeroError("float floor division by zero")
	}
	return math.Floor(lf / rf), nil
}

// opMod takes the sign of the divisor.
func (vm *VM) opMod(left, right any) (any, error) {
	if li, ok := left.(int64); ok {
		if ri, ok := right.(int64); ok {
			if ri == 0 {
				return nil, NewDivisionByZeroError("integer division or modulo by zero")
			}
			return floorModInt(li, ri), nil
		}
	}
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return nil, NewTypeError("unsupported operand type(s) for %%: '%s' and '%s'", typeName(left), typeName(right))
	}
	if rf == 0 {
		return nil, NewDivisionByZeroError("float modulo")
	}
	m := math.Mod(lf, rf)
	if m != 0 && (m < 0) != (rf < 0) {
		m += rf
	}
	return m, nil
}

// opPow: int ** non-negative int stays int, everything else goes through
// float.
func (vm *VM) opPow(left, right any) (any, error) {
	if li, ok := left.(int64); ok {
		if ri, ok := right.(int64); ok && ri >= 0 {
			return intPow(li, ri), nil
		}
	}
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return nil, NewTypeError("unsupported operand type(s) for ** or pow(): '%s' and '%s'", typeName(left), typeName(right))
	}
	if lf == 0 && rf < 0 {
		return nil, NewDivisionByZeroError("0.0 cannot be raised to a negative power")
	}
	return math.Pow(lf, rf), nil
}

func (vm *VM) opCompare(op string, left, right any) (any, error) {
	cmp, err := compareValues(left, right)
	if err != nil {
		return nil, NewTypeError("'%s' not supported between instances of '%s' and '%s'", op, typeName(left), typeName(right))
	}
	switch op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, NewTypeError("unknown comparison: %s", op)
}

func (vm *VM) evalIndex(e *ast.IndexExpression) (any, error) {
	obj, err := vm.evalExpression(e.Left)
	if err != nil {
		return nil, err
	}
	idxVal, err := vm.evalExpression(e.Index)
	if err != nil {
		return nil, err
	}
	idx, ok := idxVal.(int64)
	if !ok {
		return nil, NewTypeError("%s indices must be integers, not '%s'", typeName(obj), typeName(idxVal))
	}

	switch o := obj.(type) {
	case *List:
		pos, err := normalizeIndex(idx, int64(len(o.Elements)), "list index out of range")
		if err != nil {
			return nil, err
		}
		return o.Elements[pos], nil
	case string:
		runes := []rune(o)
		pos, err := normalizeIndex(idx, int64(len(runes)), "string index out of range")
		if err != nil {
			return nil, err
		}
		return string(runes[pos]), nil
	case *Range:
		pos, err := normalizeIndex(idx, o.Len(), "range object index out of range")
		if err != nil {
			return nil, err
		}
		return o.At(pos), nil
	default:
		return nil, NewTypeError("'%s' object is not subscriptable", typeName(obj))
	}
}

// evalCall dispatches a call through the capability registry. A user binding
// holding a *Builtin value is callable; anything else is not.
func (vm *VM) evalCall(e *ast.CallExpression) (any, error) {
	name := e.Function.Value

	fn, ok := vm.builtins[name]
	if bound, inScope := vm.globalScope.Get(name); inScope {
		b, isBuiltin := bound.(*Builtin)
		if !isBuiltin {
			return nil, NewTypeError("'%s' object is not callable", typeName(bound))
		}
		fn, ok = vm.builtins[b.Name]
	}
	if !ok {
		return nil, NewUndefinedNameError(name)
	}

	args := make([]any, 0, len(e.Arguments))
	for _, arg := range e.Arguments {
		value, err := vm.evalExpression(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}

	return fn(vm, args)
}

// evalMethodCall supports the list mutators append and remove.
func (vm *VM) evalMethodCall(e *ast.MethodCallExpression) (any, error) {
	obj, err := vm.evalExpression(e.Object)
	if err != nil {
		return nil, err
	}

	list, ok := obj.(*List)
	if !ok {
		return nil, NewTypeError("'%s' object has no attribute '%s'", typeName(obj), e.Method)
	}

	args := make([]any, 0, len(e.Arguments))
	for _, arg := range e.Arguments {
		value, err := vm.evalExpression(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}

	switch e.Method {
	case "append":
		if len(args) != 1 {
			return nil, NewArityError("append() takes exactly one argument (%d given)", len(args))
		}
		list.Elements = append(list.Elements, args[0])
		return nil, nil
	case "remove":
		if len(args) != 1 {
			return nil, NewArityError("remove() takes exactly one argument (%d given)", len(args))
		}
		for i, el := range list.Elements {
			if valuesEqual(el, args[0]) {
				list.Elements = append(list.Elements[:i], list.Elements[i+1:]...)
				return nil, nil
			}
		}
		return nil, NewValueError("list.remove(x): x not in list")
	default:
		return nil, NewRuntimeError(ErrorAttribute, "'list' object has no attribute '"+e.Method+"'")
	}
}

// valuesEqual implements == across the value model. Ints and floats compare
// numerically; bools compare only to bools.
func valuesEqual(left, right any) bool {
	switch l := left.(type) {
	case nil:
		return right == nil
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case int64, float64:
		if _, ok := right.(bool); ok {
			return false
		}
		lf, _ := toFloat64(left)
		rf, ok := toFloat64(right)
		return ok && lf == rf
	case *List:
		r, ok := right.(*List)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !valuesEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Range:
		r, ok := right.(*Range)
		if !ok {
			return false
		}
		n := l.Len()
		if n != r.Len() {
			return false
		}
		if n == 0 {
			return true
		}
		return l.Start == r.Start && (n == 1 || l.Step == r.Step)
	case *Builtin:
		r, ok := right.(*Builtin)
		return ok && l.Name == r.Name
	default:
		return false
	}
}

// compareValues orders two values for < <= > >=. Only number/number and
// str/str are ordered.
func compareValues(left, right any) (int, error) {
	if isNumeric(left) && isNumeric(right) {
		lf, _ := toFloat64(left)
		rf, _ := toFloat64(right)
		switch {
		case lf < rf:
			return -1, nil
		case lf > rf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			switch {
			case ls < rs:
				return -1, nil
			case ls > rs:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, errors.New("unorderable")
}

func normalizeIndex(idx, length int64, msg string) (int64, error) {
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, NewIndexError(msg)
	}
	return idx, nil
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// intPow computes base**exp for exp >= 0 by binary exponentiation. Results
// beyond 64 bits wrap; arbitrary precision integers are not modeled.
func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func sequenceRepeat(left, right any) (string, int64, bool) {
	if s, ok := left.(string); ok {
		if n, ok := right.(int64); ok {
			return s, n, true
		}
	}
	if s, ok := right.(string); ok {
		if n, ok := left.(int64); ok {
			return s, n, true
		}
	}
	return "", 0, false
}

func listRepeat(left, right any) (*List, int64, bool) {
	if l, ok := left.(*List); ok {
		if n, ok := right.(int64); ok {
			return l, n, true
		}
	}
	if l, ok := right.(*List); ok {
		if n, ok := left.(int64); ok {
			return l, n, true
		}
	}
	return nil, 0, false
}

func repeatString(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, int64(len(s))*n)
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func repeatList(l *List, n int64) *List {
	if n <= 0 {
		return &List{Elements: []any{}}
	}
	elements := make([]any, 0, int64(len(l.Elements))*n)
	for i := int64(0); i < n; i++ {
		elements = append(elements, l.Elements...)
	}
	return &List{Elements: elements}
}

// Package vm provides the virtual machine that executes block-generated
// programs under a capability allow-list: the only host facilities a program
// can reach are the builtins registered on the VM, and the only output
// channel is the writer the VM was constructed with.
package vm

import (
	"context"
	"io"
	"log/slog"

	"github.com/blockrun/blockrun/pkg/compiler/ast"
	"github.com/blockrun/blockrun/pkg/logger"
)

// DefaultStepLimit bounds the number of statements and loop iterations a
// single run may execute before it is stopped.
const DefaultStepLimit = 1_000_000

// deadlinePollInterval controls how often the context is polled, in steps.
const deadlinePollInterval = 1024

// BuiltinFunc is a builtin function callable from programs.
type BuiltinFunc func(vm *VM, args []any) (any, error)

// VM executes a program AST. A VM is single-use and single-goroutine: create
// one per run.
type VM struct {
	globalScope *Scope
	builtins    map[string]BuiltinFunc
	out         io.Writer
	ctx         context.Context
	stepLimit   int
	stepCount   int
	log         *slog.Logger
}

// Option configures a VM.
type Option func(*VM)

// WithOutput directs print output to w. The default discards output.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.out = w }
}

// WithContext attaches a context checked periodically during execution.
func WithContext(ctx context.Context) Option {
	return func(vm *VM) { vm.ctx = ctx }
}

// WithStepLimit overrides the execution step budget. A limit of 0 disables
// the budget.
func WithStepLimit(limit int) Option {
	return func(vm *VM) { vm.stepLimit = limit }
}

// WithLogger attaches a logger for execution diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) { vm.log = log }
}

// New creates a VM with the default capability set registered.
func New(opts ...Option) *VM {
	vm := &VM{
		globalScope: NewScope(nil),
		builtins:    make(map[string]BuiltinFunc),
		out:         io.Discard,
		ctx:         context.Background(),
		stepLimit:   DefaultStepLimit,
		log:         logger.Get(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	vm.registerCoreBuiltins()
	vm.registerNumericBuiltins()
	vm.registerConversionBuiltins()

	return vm
}

// RegisterBuiltinFunction adds or replaces a builtin. Registering is the only
// way to extend what programs can reach.
func (vm *VM) RegisterBuiltinFunction(name string, fn BuiltinFunc) {
	vm.builtins[name] = fn
}

// HasBuiltin reports whether name is a registered capability.
func (vm *VM) HasBuiltin(name string) bool {
	_, ok := vm.builtins[name]
	return ok
}

// GlobalScope exposes the run's variable bindings, for snapshotting after
// Run returns.
func (vm *VM) GlobalScope() *Scope {
	return vm.globalScope
}

// Run executes the program. The returned error, if any, is a *RuntimeError.
// Bindings made and output written before the fault are preserved.
func (vm *VM) Run(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if err := vm.execStatement(stmt); err != nil {
			if err == errBreakSignal {
				return NewRuntimeError(ErrorValue, "'break' outside loop")
			}
			if err == errContinueSignal {
				return NewRuntimeError(ErrorValue, "'continue' not properly in loop")
			}
			return err
		}
	}
	return nil
}

// tick charges one step against the budget and periodically polls the
// context. Called once per statement and once per loop iteration.
func (vm *VM) tick() error {
	vm.stepCount++
	if vm.stepLimit > 0 && vm.stepCount > vm.stepLimit {
		return NewStepLimitError(vm.stepLimit)
	}
	if vm.stepCount%deadlinePollInterval == 0 {
		select {
		case <-vm.ctx.Done():
			return NewDeadlineError()
		default:
		}
	}
	return nil
}

// StepCount reports how many steps the run has consumed so far.
func (vm *VM) StepCount() int {
	return vm.stepCount
}

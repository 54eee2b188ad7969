// Package runner executes a program source end to end and reports the
// outcome as a single Result: captured output, a final variable snapshot,
// the static step trace, and the first error if the run failed.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/blockrun/blockrun/pkg/compiler"
	"github.com/blockrun/blockrun/pkg/compiler/ast"
	"github.com/blockrun/blockrun/pkg/logger"
	"github.com/blockrun/blockrun/pkg/vm"
)

// Step is one executable source line, recorded by position for trace
// playback.
type Step struct {
	Line int    `json:"line"`
	Code string `json:"code"`
}

// Result is the complete report of one run. Output, Variables and Steps are
// always non-nil; partial output and bindings made before a fault are kept.
type Result struct {
	Success   bool              `json:"success"`
	Output    []string          `json:"output"`
	Error     string            `json:"error,omitempty"`
	Variables map[string]string `json:"variables"`
	Steps     []Step            `json:"steps"`
}

// Runner turns sources into Results. A Runner is safe for concurrent use;
// every Run gets its own VM, scope, and output buffer.
type Runner struct {
	stepLimit      int
	maxSourceBytes int
	log            *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStepLimit sets the per-run execution step budget.
func WithStepLimit(limit int) Option {
	return func(r *Runner) { r.stepLimit = limit }
}

// WithMaxSourceBytes rejects sources larger than n bytes. Zero disables the
// check.
func WithMaxSourceBytes(n int) Option {
	return func(r *Runner) { r.maxSourceBytes = n }
}

// WithLogger attaches a logger for run diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		stepLimit: vm.DefaultStepLimit,
		log:       logger.Get(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes source and reports the outcome. Run never returns an error:
// every failure mode, including a syntax error or an evaluator panic, is
// folded into the Result.
func (r *Runner) Run(ctx context.Context, source string) *Result {
	result := &Result{
		Output:    []string{},
		Variables: map[string]string{},
		Steps:     ScanSteps(source),
	}

	if r.maxSourceBytes > 0 && len(source) > r.maxSourceBytes {
		result.Error = fmt.Sprintf("program too large (%d bytes, limit %d)", len(source), r.maxSourceBytes)
		return result
	}

	program, err := compiler.Compile(source)
	if err != nil {
		result.Error = err.Error()
		r.log.Debug("compile failed", "error", err)
		return result
	}

	var buf strings.Builder
	machine := vm.New(
		vm.WithOutput(&buf),
		vm.WithContext(ctx),
		vm.WithStepLimit(r.stepLimit),
		vm.WithLogger(r.log),
	)

	runErr := execute(machine, program)

	// Output and bindings made before a fault are part of the report.
	result.Output = splitOutput(buf.String())
	result.Variables = snapshotVariables(machine.GlobalScope())

	if runErr != nil {
		result.Error = runErr.Error()
		r.log.Debug("run failed", "error", runErr, "steps", machine.StepCount())
		return result
	}

	result.Success = true
	return result
}

// execute runs the program and converts an evaluator panic into an error so
// one bad run cannot take the process down.
func execute(machine *vm.VM, program *ast.Program) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()
	return machine.Run(program)
}

// splitOutput turns the captured print buffer into lines. A single trailing
// empty line, the artifact of the final newline, is dropped; an empty buffer
// yields no lines at all.
func splitOutput(captured string) []string {
	if captured == "" {
		return []string{}
	}
	lines := strings.Split(captured, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// snapshotVariables renders the final bindings. Names with a leading
// underscore and bare capability references are private and excluded.
func snapshotVariables(scope *vm.Scope) map[string]string {
	vars := make(map[string]string, scope.Size())
	names := scope.Keys()
	sort.Strings(names)
	for _, name := range names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		value, ok := scope.Get(name)
		if !ok {
			continue
		}
		if _, isBuiltin := value.(*vm.Builtin); isBuiltin {
			continue
		}
		vars[name] = vm.Repr(value)
	}
	return vars
}

// ScanSteps records every executable line of the source: blank lines and
// comment lines are skipped, everything else is kept verbatim with its
// 1-based line number. The scan is static, so the trace is available even
// when the program fails to parse.
func ScanSteps(source string) []Step {
	lines := strings.Split(source, "\n")
	steps := make([]Step, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		steps = append(steps, Step{Line: i + 1, Code: line})
	}
	return steps
}

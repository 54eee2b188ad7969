package runner

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPropertyStepScan checks the invariants of the static step trace over
// arbitrary line mixes: 1-based ascending line numbers, no blank or comment
// lines, and verbatim text for everything kept.
func TestPropertyStepScan(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	lineGen := gen.OneConstOf(
		"",
		"   ",
		"# comment",
		"  # indented comment",
		"x = 1",
		"print(x)",
		"    y = 2",
	)

	properties.Property("scan keeps exactly the executable lines, in order", prop.ForAll(
		func(lines []string) bool {
			source := strings.Join(lines, "\n")
			steps := ScanSteps(source)

			j := 0
			for i, line := range lines {
				trimmed := strings.TrimSpace(line)
				if trimmed == "" || strings.HasPrefix(trimmed, "#") {
					continue
				}
				if j >= len(steps) {
					return false
				}
				if steps[j].Line != i+1 || steps[j].Code != line {
					return false
				}
				j++
			}
			return j == len(steps)
		},
		gen.SliceOf(lineGen),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestPropertyDeterminism checks that running the same program twice yields
// identical results.
func TestPropertyDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("two runs of the same source agree", prop.ForAll(
		func(a, b int16) bool {
			source := fmt.Sprintf("x = %d\ny = %d\nif y != 0:\n    print(x %% y)\nelse:\n    print(x)\n", a, b)
			r := New()
			first := r.Run(context.Background(), source)
			second := r.Run(context.Background(), source)
			return reflect.DeepEqual(first, second)
		},
		gen.Int16(), gen.Int16(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

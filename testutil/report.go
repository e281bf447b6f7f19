package testutil

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/kea/analysis/absint"
	"github.com/cs-au-dk/kea/analysis/cfg"
)

// Verdicts renders one line per labeled scenario, stating whether the
// analysis reported it. The output is plain text, suitable for golden
// comparison.
func Verdicts(prog *cfg.Program, res *absint.Result) string {
	var sb strings.Builder
	for _, fn := range prog.Functions() {
		name := fn.Name()
		if !IsScenario(name) {
			continue
		}
		verdict := "silent"
		if res.Reported(name) {
			verdict = "reported"
		}
		fmt.Fprintf(&sb, "%-50s %s\n", name, verdict)
	}
	return sb.String()
}

// Mismatches lists the scenarios whose verdict deviates from their
// expectation label.
func Mismatches(prog *cfg.Program, res *absint.Result) []string {
	var ms []string
	for _, fn := range prog.Functions() {
		name := fn.Name()
		if !IsScenario(name) {
			continue
		}
		if res.Reported(name) != ExpectReport(name) {
			ms = append(ms, name)
		}
	}
	return ms
}

package testutil

import (
	"testing"

	"github.com/cs-au-dk/kea/analysis/absint"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
)

func TestScenarioLabels(t *testing.T) {
	tests := []struct {
		name     string
		scenario bool
		report   bool
	}{
		{"dict_missing_key_const_str_ok", true, false},
		{"dict_missing_key_const_str_bad", true, true},
		{"dict_missing_str_key_not_const_in_op_ok2", true, false},
		{"dict_access_ok3", true, false},
		{"dict_access_bad2", true, true},
		{"fp_dict_missing_int_key_in_op_ok", true, true},
		{"fn_test_str_key_param_bad", true, false},
		{"get_dict", false, false},
		{"identity", false, false},
	}
	for _, tc := range tests {
		if got := IsScenario(tc.name); got != tc.scenario {
			t.Errorf("IsScenario(%q) = %v, expected %v", tc.name, got, tc.scenario)
		}
		if !tc.scenario {
			continue
		}
		if got := ExpectReport(tc.name); got != tc.report {
			t.Errorf("ExpectReport(%q) = %v, expected %v", tc.name, got, tc.report)
		}
	}
}

func TestSuiteVerdicts(t *testing.T) {
	prog := Suite()
	res := absint.Analyze(prog)

	want := map[string]bool{}
	got := map[string]bool{}
	for _, fn := range prog.Functions() {
		name := fn.Name()
		if !IsScenario(name) {
			continue
		}
		want[name] = ExpectReport(name)
		got[name] = res.Reported(name)

		t.Run(name, func(t *testing.T) {
			if got[name] != want[name] {
				t.Errorf("reported = %v, labeled expectation = %v\n%s",
					got[name], want[name], res.Diagnostics(name))
			}
		})
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("verdicts deviate from labels (-want +got):\n%s", diff)
	}
}

func TestSuiteVerdictsGolden(t *testing.T) {
	color.NoColor = true

	prog := Suite()
	res := absint.Analyze(prog)

	g := goldie.New(t)
	g.Assert(t, "verdicts", []byte(Verdicts(prog, res)))
}

func TestHelpersStaySilent(t *testing.T) {
	prog := Suite()
	res := absint.Analyze(prog)

	for _, fn := range prog.Functions() {
		if name := fn.Name(); !IsScenario(name) && res.Reported(name) {
			t.Errorf("helper %s produced diagnostics:\n%s", name, res.Diagnostics(name))
		}
	}
}

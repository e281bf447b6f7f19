package absint

import (
	"testing"

	"github.com/cs-au-dk/kea/analysis/cfg"
	"github.com/cs-au-dk/kea/analysis/defs"
)

func kStr(s string) defs.Key { return defs.ConstString(s) }

// analyzeOne builds a single-function program and reports the functions
// of the given builder chain.
func analyzeOne(t *testing.T, fns ...*cfg.Function) *Result {
	t.Helper()
	return Analyze(cfg.NewProgram(fns...))
}

func TestClosedDictMissingKeyReported(t *testing.T) {
	b := cfg.NewFunction("f")
	d, r := b.Var("d"), b.Var("r")
	fn := b.MakeDict(d, kStr("a")).
		Read(r, d, kStr("b")).
		Return(r).
		Finish()

	res := analyzeOne(t, fn)
	if !res.Reported("f") {
		t.Error("read of a key provably missing from a closed dict should be reported")
	}
	if got := res.Diagnostics("f").List(); len(got) != 1 || got[0].Key() != `"b"` {
		t.Errorf("unexpected diagnostics: %s", res.Diagnostics("f"))
	}
}

func TestOpenDictStaysSilent(t *testing.T) {
	b := cfg.NewFunction("f")
	d, r := b.Var("d"), b.Var("r")
	fn := b.MakeDict(d, kStr("a")).
		Write(d, defs.Unknown{}).
		Read(r, d, kStr("b")).
		Return(r).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Error("an unknown-key write should silence later reads")
	}
}

func TestUnknownKeyReadNeverReported(t *testing.T) {
	b := cfg.NewFunction("f")
	d, r := b.Var("d"), b.Var("r")
	fn := b.MakeDict(d).
		Read(r, d, defs.Unknown{}).
		Return(r).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Error("reads of non-literal keys are outside the diagnostic gate")
	}
}

func TestNarrowingBothEdges(t *testing.T) {
	b := cfg.NewFunction("f")
	d, r1, r2 := b.Var("d"), b.Var("r1"), b.Var("r2")
	fn := b.MakeDict(d, kStr("a")).
		IfIn(d, kStr("b"), func(b *cfg.Builder) {
			// Guarded: the closed default is overridden.
			b.Read(r1, d, kStr("b"))
		}, func(b *cfg.Builder) {
			// Still fine: "a" stays present on the false edge.
			b.Read(r2, d, kStr("a"))
		}).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Errorf("narrowing failed: %s", res.Diagnostics("f"))
	}
}

func TestJoinOfRefinedBranchesOpens(t *testing.T) {
	b := cfg.NewFunction("f")
	d, r1, r2 := b.Var("d"), b.Var("r1"), b.Var("r2")
	fn := b.MakeDict(d, kStr("a")).
		IfIn(d, kStr("b"), func(b *cfg.Builder) {
			b.Read(r1, d, kStr("b"))
		}, nil).
		// The branches disagree on "b", so the joined dict is open and
		// the post-join read is conservatively silent.
		Read(r2, d, kStr("b")).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Errorf("expected no report after the refinement join, got %s",
			res.Diagnostics("f"))
	}
}

func TestNarrowingOverJoinedSites(t *testing.T) {
	// d may denote either of two cells; the guard still rules the key
	// out of definite absence on both, so the guarded read stays silent.
	b := cfg.NewFunction("f")
	d1, d2, d, r := b.Var("d1"), b.Var("d2"), b.Var("d"), b.Var("r")
	fn := b.MakeDict(d1, kStr("a")).
		MakeDict(d2, kStr("a")).
		If(func(b *cfg.Builder) {
			b.Assign(d, d1)
		}, func(b *cfg.Builder) {
			b.Assign(d, d2)
		}).
		IfIn(d, kStr("b"), func(b *cfg.Builder) {
			b.Read(r, d, kStr("b")).Return(r)
		}, nil).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Errorf("expected the guarded read over two sites to stay silent, got %s",
			res.Diagnostics("f"))
	}
}

func TestNarrowingOverJoinedSitesFalseEdge(t *testing.T) {
	// The uncontained edge cannot claim Absent for either cell, so an
	// unguarded read of a key both cells carry stays silent afterwards.
	b := cfg.NewFunction("f")
	d1, d2, d, r := b.Var("d1"), b.Var("d2"), b.Var("d"), b.Var("r")
	fn := b.MakeDict(d1, kStr("a")).
		MakeDict(d2, kStr("a")).
		If(func(b *cfg.Builder) {
			b.Assign(d, d1)
		}, func(b *cfg.Builder) {
			b.Assign(d, d2)
		}).
		IfIn(d, kStr("a"), nil, func(b *cfg.Builder) {
			b.Read(r, d, kStr("a")).Return(r)
		}).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Errorf("expected the read of a constructed key to stay silent, got %s",
			res.Diagnostics("f"))
	}
}

func TestAliasingSharesOneCell(t *testing.T) {
	b := cfg.NewFunction("f")
	x, y, r := b.Var("x"), b.Var("y"), b.Var("r")
	fn := b.MakeDict(x).
		Assign(y, x).
		Write(y, kStr("k")).
		Read(r, x, kStr("k")).
		Return(r).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Error("a write through an alias should be visible to the original")
	}
}

func TestSummaryReturnsOwnDict(t *testing.T) {
	bh := cfg.NewFunction("make")
	d := bh.Var("d")
	helper := bh.MakeDict(d, kStr("a")).Return(d).Finish()

	bc := cfg.NewFunction("caller")
	ages, r := bc.Var("ages"), bc.Var("r")
	caller := bc.Call(ages, "make").
		Read(r, ages, kStr("b")).
		Return(r).
		Finish()

	res := analyzeOne(t, helper, caller)
	if !res.Reported("caller") {
		t.Error("the callee's closed return dict should flow to the call site")
	}

	sum, found := res.Summary("make")
	if !found {
		t.Fatal("summary of make was not published")
	}
	if !sum.Ret().IsClosed() || !sum.Ret().PresenceOf(kStr("a")).IsPresent() {
		t.Errorf("summary return dict is %s, expected a closed dict with \"a\"", sum.Ret())
	}
}

func TestSummaryReturnsParameter(t *testing.T) {
	bh := cfg.NewFunction("identity", "d")
	helper := bh.Return(bh.Var("d")).Finish()

	bc := cfg.NewFunction("caller")
	d, d2, r := bc.Var("d"), bc.Var("d2"), bc.Var("r")
	caller := bc.MakeDict(d, kStr("a")).
		Call(d2, "identity", d).
		Read(r, d2, kStr("b")).
		Return(r).
		Finish()

	res := analyzeOne(t, helper, caller)

	sum, _ := res.Summary("identity")
	if !sum.ReturnsParam(0) {
		t.Errorf("identity should be known to return its argument: %s", sum)
	}
	if sum.MutatesParam(0) {
		t.Errorf("identity does not write through its argument: %s", sum)
	}
	if !res.Reported("caller") {
		t.Error("precision through the returned parameter was lost")
	}
}

func TestSummaryMutatesParameter(t *testing.T) {
	bh := cfg.NewFunction("fill", "d")
	helper := bh.Write(bh.Var("d"), kStr("name")).Finish()

	bc := cfg.NewFunction("caller")
	d, r := bc.Var("d"), bc.Var("r")
	caller := bc.MakeDict(d).
		Call(nil, "fill", d).
		Read(r, d, kStr("name")).
		Return(r).
		Finish()

	res := analyzeOne(t, helper, caller)

	sum, _ := res.Summary("fill")
	if !sum.MutatesParam(0) {
		t.Errorf("fill writes through its argument: %s", sum)
	}
	if res.Reported("caller") {
		t.Error("a callee write should open the caller's dict")
	}
}

func TestUnknownCalleeInvalidatesArguments(t *testing.T) {
	b := cfg.NewFunction("f")
	d, r := b.Var("d"), b.Var("r")
	fn := b.MakeDict(d).
		Call(nil, "somewhere_else", d).
		Read(r, d, kStr("k")).
		Return(r).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Error("arguments to unresolved callees must be opened")
	}
}

func TestDynExecSilences(t *testing.T) {
	b := cfg.NewFunction("f")
	ns, r := b.Var("ns"), b.Var("r")
	fn := b.MakeDict(ns).
		Exec(ns).
		Read(r, ns, kStr("inner")).
		Return(r).
		Finish()

	if res := analyzeOne(t, fn); res.Reported("f") {
		t.Error("reads through exec'd variables are carved out")
	}
}

func TestRecursiveSummariesConverge(t *testing.T) {
	be := cfg.NewFunction("even")
	d := be.Var("d")
	even := be.If(func(b *cfg.Builder) {
		b.MakeDict(d, kStr("e")).Return(d)
	}, func(b *cfg.Builder) {
		b.Call(d, "odd").Return(d)
	}).Finish()

	bo := cfg.NewFunction("odd")
	d2 := bo.Var("d")
	odd := bo.If(func(b *cfg.Builder) {
		b.MakeDict(d2, kStr("o")).Return(d2)
	}, func(b *cfg.Builder) {
		b.Call(d2, "even").Return(d2)
	}).Finish()

	bc := cfg.NewFunction("caller")
	v, r := bc.Var("v"), bc.Var("r")
	caller := bc.Call(v, "even").
		Read(r, v, kStr("missing")).
		Return(r).
		Finish()

	res := analyzeOne(t, even, odd, caller)

	for _, name := range []string{"even", "odd"} {
		if _, found := res.Summary(name); !found {
			t.Fatalf("summary of %s was not published", name)
		}
	}
	// Either branch may produce the dict, so the read is not provable.
	if res.Reported("caller") {
		t.Errorf("recursive join lost soundness: %s", res.Diagnostics("caller"))
	}
}

func TestAnalyzeFunctionResolvesCalleesLazily(t *testing.T) {
	bh := cfg.NewFunction("make")
	d := bh.Var("d")
	helper := bh.MakeDict(d, kStr("a")).Return(d).Finish()

	bc := cfg.NewFunction("caller")
	v, r := bc.Var("v"), bc.Var("r")
	caller := bc.Call(v, "make").
		Read(r, v, kStr("b")).
		Return(r).
		Finish()

	prog := cfg.NewProgram(helper, caller)
	diags, _ := AnalyzeFunction(prog, caller)
	if diags.Empty() {
		t.Error("lazy summary resolution should still flag the read")
	}
}

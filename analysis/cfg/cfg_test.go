package cfg

import (
	"testing"

	"github.com/cs-au-dk/kea/analysis/defs"
)

func TestBuilderOrdering(t *testing.T) {
	b := NewFunction("f", "x")
	d := b.Var("d")
	fn := b.MakeDict(d, defs.ConstString("a")).
		Write(d, defs.ConstString("b")).
		Return(d).
		Finish()

	if fn.ParamSite(0).Index() != 0 {
		t.Error("parameter sites should be ordered first")
	}
	if fn.Entry().Index() >= fn.Exit().Index() {
		t.Errorf("entry (%d) should be ordered before exit (%d)",
			fn.Entry().Index(), fn.Exit().Index())
	}

	// Priority order respects control flow on straight-line code.
	var prev Node
	fn.ForEach(func(n Node) {
		if prev != nil && len(n.Predecessors()) == 1 {
			for pred := range n.Predecessors() {
				if pred.Index() >= n.Index() {
					t.Errorf("%s (%d) ordered after its successor %s (%d)",
						pred, pred.Index(), n, n.Index())
				}
			}
		}
		prev = n
	})
}

func TestBuilderIfIn(t *testing.T) {
	b := NewFunction("g")
	d, r := b.Var("d"), b.Var("r")
	fn := b.MakeDict(d).
		IfIn(d, defs.ConstString("k"), func(b *Builder) {
			b.Read(r, d, defs.ConstString("k"))
		}, nil).
		Finish()

	tests := fn.FindAll(func(n Node) bool {
		_, found := n.(*MemberTest)
		return found
	})
	if len(tests) != 1 {
		t.Fatalf("expected one membership test, found %d", len(tests))
	}

	for n := range tests {
		m := n.(*MemberTest)
		if m.TrueSucc() == nil || m.FalseSucc() == nil {
			t.Fatal("membership test edges are not wired")
		}
		if m.TrueSucc() == m.FalseSucc() {
			t.Error("membership test edges should be distinct")
		}
		if _, found := m.Successors()[m.TrueSucc()]; !found {
			t.Error("true edge is not a successor")
		}
		if _, found := m.Successors()[m.FalseSucc()]; !found {
			t.Error("false edge is not a successor")
		}
	}
}

func TestBuilderLoopBackEdge(t *testing.T) {
	b := NewFunction("h")
	d := b.Var("d")
	fn := b.MakeDict(d).
		Loop(func(b *Builder) {
			b.Write(d, defs.ConstString("k"))
		}).
		Finish()

	writes := fn.FindAll(func(n Node) bool {
		_, found := n.(*DictWrite)
		return found
	})
	if len(writes) != 1 {
		t.Fatalf("expected one write, found %d", len(writes))
	}
	for w := range writes {
		// The loop body flows back to the guard.
		onCycle := false
		for succ := range w.Successors() {
			if succ.Index() < w.Index() {
				onCycle = true
			}
		}
		if !onCycle {
			t.Error("loop body has no back edge")
		}
	}
}

func TestProgramLookup(t *testing.T) {
	f := NewFunction("f").Finish()
	g := NewFunction("g").Finish()
	prog := NewProgram(f, g)

	if prog.Function("f") != f || prog.Function("g") != g {
		t.Error("function lookup is broken")
	}
	if prog.Function("missing") != nil {
		t.Error("unknown callees should resolve to nil")
	}
	if len(prog.Functions()) != 2 {
		t.Errorf("expected 2 functions, got %d", len(prog.Functions()))
	}
}

func TestNodeStrings(t *testing.T) {
	b := NewFunction("p")
	d, r := b.Var("d"), b.Var("r")

	tests := []struct {
		n        Node
		expected string
	}{
		{&MakeDict{Res: d, Entries: []defs.Key{defs.ConstString("a"), defs.ConstInt(1)}},
			`d = {"a": ·, 1: ·}`},
		{&MakeDictKw{Res: d, Names: []string{"name"}}, "d = dict(name=·)"},
		{&DictRead{Res: r, Dict: d, Key: defs.ConstString("k")}, `r = d["k"]`},
		{&DictWrite{Dict: d, Key: defs.Unknown{}}, "d[?] = ·"},
		{&MemberTest{Dict: d, Key: defs.ConstString("k")}, `[ "k" in d ]`},
		{&DynExec{Args: []*Var{d}}, "exec⟨d⟩"},
	}

	for _, test := range tests {
		if got := test.n.String(); got != test.expected {
			t.Errorf("String() = %q, expected %q", got, test.expected)
		}
	}
}

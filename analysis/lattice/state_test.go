package lattice

import (
	"testing"

	"github.com/cs-au-dk/kea/analysis/cfg"
)

// sites builds a throwaway function whose parameter sites serve as
// allocation sites for lattice tests.
func sites(t *testing.T, params ...string) (*cfg.Function, []cfg.Node) {
	t.Helper()
	fn := cfg.NewFunction("test_sites", params...).Finish()
	ns := make([]cfg.Node, len(params))
	for i := range params {
		ns[i] = fn.ParamSite(i)
	}
	return fn, ns
}

func TestPointsToOps(t *testing.T) {
	_, ns := sites(t, "x", "y", "z")

	p := elFact.PointsTo(ns[1], ns[0], ns[1])
	if len(p.Sites()) != 2 {
		t.Errorf("%s should contain exactly two sites", p)
	}
	if p.Sites()[0].Index() > p.Sites()[1].Index() {
		t.Errorf("%s is not ordered by site index", p)
	}
	if _, single := p.Singleton(); single {
		t.Errorf("%s should not be a singleton", p)
	}

	q := elFact.PointsTo(ns[2])
	if site, single := q.Singleton(); !single || site != ns[2] {
		t.Errorf("%s should be the singleton of its site", q)
	}

	joined := p.MonoJoin(q)
	if len(joined.Sites()) != 3 || !p.Leq(joined) || !q.Leq(joined) {
		t.Errorf("%s ⊔ %s = %s is not the site union", p, q, joined)
	}

	top := elFact.PointsToTop()
	if !joined.Leq(top) || top.Leq(joined) {
		t.Errorf("%s should be strictly below ⊤", joined)
	}
	if !top.MonoJoin(q).IsTop() {
		t.Error("⊤ should absorb joins")
	}

	met := p.Meet(q).PointsTo()
	if !met.Empty() {
		t.Errorf("%s ⊓ %s = %s, expected the empty set", p, q, met)
	}
}

func TestStateLookupDefaultsToTop(t *testing.T) {
	fn, _ := sites(t, "x")
	s := elFact.State()

	if !s.Lookup(fn.Params()[0]).IsTop() {
		t.Error("unbound variables should denote anything")
	}
}

func TestStateBindAndUpdate(t *testing.T) {
	fn, ns := sites(t, "x")
	v := fn.Params()[0]

	s := elFact.State().
		BindVar(v, elFact.PointsTo(ns[0])).
		UpdateCell(ns[0], elFact.ClosedDict(kA))

	if site, single := s.Lookup(v).Singleton(); !single || site != ns[0] {
		t.Errorf("%s should denote exactly its site", v)
	}
	if d := s.GetCell(ns[0]); !d.IsClosed() || !d.PresenceOf(kA).IsPresent() {
		t.Errorf("cell holds %s, expected a closed dict with %s", d, kA)
	}

	// Weak update joins onto the cell.
	s = s.JoinCell(ns[0], elFact.ClosedDict(kB))
	if d := s.GetCell(ns[0]); d.IsClosed() {
		t.Errorf("joining dicts with different keys should open the cell, got %s", d)
	}
}

func TestStateJoin(t *testing.T) {
	fn, ns := sites(t, "x", "y")
	x, y := fn.Params()[0], fn.Params()[1]

	s1 := elFact.State().
		BindVar(x, elFact.PointsTo(ns[0])).
		BindVar(y, elFact.PointsTo(ns[0])).
		UpdateCell(ns[0], elFact.ClosedDict(kA))
	s2 := elFact.State().
		BindVar(x, elFact.PointsTo(ns[1])).
		UpdateCell(ns[1], elFact.ClosedDict(kA))

	joined := s1.MonoJoin(s2)

	if pt := joined.Lookup(x); pt.IsTop() || len(pt.Sites()) != 2 {
		t.Errorf("x should denote both sites after the join, got %s", pt)
	}
	// y is bound in only one operand, so the join reverts to ⊤.
	if !joined.Lookup(y).IsTop() {
		t.Errorf("y should be ⊤ after the join, got %s", joined.Lookup(y))
	}
	if d := joined.GetCell(ns[0]); !d.PresenceOf(kA).IsPresent() {
		t.Errorf("cell lost its key during the join: %s", d)
	}

	if !s1.Leq(joined) || !s2.Leq(joined) {
		t.Error("join is not an upper bound")
	}
	bot := elFact.StateBot()
	if !bot.MonoJoin(s1).Eq(s1) || !bot.Leq(s1) {
		t.Error("⊥ should be the join identity")
	}
}

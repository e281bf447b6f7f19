package absint

import (
	"github.com/cs-au-dk/kea/analysis/cfg"
	"github.com/cs-au-dk/kea/analysis/defs"
	"github.com/cs-au-dk/kea/analysis/lattice"
)

var elFact = lattice.Elements()

// runCtx carries the mutable bookkeeping of one intraprocedural run: the
// function under analysis, the resolver for callee summaries, and the
// parameter positions written through so far.
type runCtx struct {
	fn      *cfg.Function
	sz      *summarizer
	mutated map[int]bool
}

// markMutated records that keys may be added through the given site, when
// the site stands for a parameter of the analyzed function.
func (rc *runCtx) markMutated(site cfg.Node) {
	if i := rc.fn.ParamIndex(site); i >= 0 {
		rc.mutated[i] = true
	}
}

// dictOf gives the join of the mappings a variable may denote. The
// second result is false when the variable may denote untracked values.
func dictOf(s lattice.State, v *cfg.Var) (lattice.Dict, bool) {
	_, dicts, ok := s.Dicts(v)
	if !ok {
		return elFact.TopDict(), false
	}
	res := elFact.DictBot()
	for _, d := range dicts {
		res = res.MonoJoin(d)
	}
	return res, true
}

// allocate binds res to a fresh abstraction of the given dict, using the
// allocating instruction as the heap cell. The cell is joined rather than
// overwritten: a site inside a loop summarizes every mapping it creates.
func allocate(s lattice.State, site cfg.Node, res *cfg.Var, d lattice.Dict) lattice.State {
	s = s.JoinCell(site, d)
	return s.BindVar(res, elFact.PointsTo(site))
}

// updateSites applies f to the mapping at every site the variable may
// denote. The update is strong only when the variable denotes a single
// site.
func updateSites(rc *runCtx, s lattice.State, v *cfg.Var, f func(lattice.Dict) lattice.Dict) lattice.State {
	pt := s.Lookup(v)
	if pt.IsTop() {
		return s
	}
	_, single := pt.Singleton()
	for _, site := range pt.Sites() {
		rc.markMutated(site)
		old := s.GetCell(site)
		if old.IsBot() {
			continue
		}
		if single {
			s = s.UpdateCell(site, f(old))
		} else {
			s = s.JoinCell(site, f(old))
		}
	}
	return s
}

// demoteSites opens the key set of every mapping the variable may denote.
// Demotion only grows the abstraction, so the update is strong even for
// non-singleton points-to sets.
func demoteSites(rc *runCtx, s lattice.State, v *cfg.Var) lattice.State {
	pt := s.Lookup(v)
	if pt.IsTop() {
		return s
	}
	for _, site := range pt.Sites() {
		rc.markMutated(site)
		if old := s.GetCell(site); !old.IsBot() {
			s = s.UpdateCell(site, old.Demote())
		}
	}
	return s
}

// transfer computes the abstract state after executing the given
// instruction in the given state. Membership tests are handled by the
// driver, which refines per outgoing edge; here they are the identity.
func (an *analyzer) transfer(rc *runCtx, n cfg.Node, s lattice.State) lattice.State {
	if s.IsBot() {
		return s
	}

	switch n := n.(type) {
	case *cfg.MakeDict:
		d := elFact.ClosedDict()
		for _, src := range n.Spreads {
			spread, _ := dictOf(s, src)
			d = d.Spread(spread)
		}
		for _, k := range n.Entries {
			if k.Literal() {
				d = d.WriteLiteral(k)
			} else {
				d = d.Demote()
			}
		}
		return allocate(s, n, n.Res, d)

	case *cfg.MakeDictKw:
		d := elFact.ClosedDict()
		for _, name := range n.Names {
			d = d.WriteLiteral(defs.ConstString(name))
		}
		return allocate(s, n, n.Res, d)

	case *cfg.MakeDictCopy:
		src, _ := dictOf(s, n.Src)
		return allocate(s, n, n.Res, src)

	case *cfg.MakeDictPairs:
		d := elFact.TopDict()
		if n.Enumerable {
			d = elFact.ClosedDict()
			for _, k := range n.Keys {
				if k.Literal() {
					d = d.WriteLiteral(k)
				} else {
					d = d.Demote()
				}
			}
		}
		return allocate(s, n, n.Res, d)

	case *cfg.MakeDictComp:
		return allocate(s, n, n.Res, elFact.TopDict())

	case *cfg.DictWrite:
		if n.Key.Literal() {
			return updateSites(rc, s, n.Dict, func(d lattice.Dict) lattice.Dict {
				return d.WriteLiteral(n.Key)
			})
		}
		return demoteSites(rc, s, n.Dict)

	case *cfg.DictRead:
		// Values are not tracked, so the result may be anything.
		return s.BindVar(n.Res, elFact.PointsToTop())

	case *cfg.Assign:
		return s.BindVar(n.Dst, s.Lookup(n.Src))

	case *cfg.Call:
		return an.call(rc, n, s)

	case *cfg.DynExec:
		// The dynamic-execution carve-out: passed variables lose their
		// abstraction entirely, silencing later reads through them.
		for _, arg := range n.Args {
			s = s.BindVar(arg, elFact.PointsToTop())
		}
		return s

	case *cfg.Opaque:
		for _, arg := range n.Args {
			s = demoteSites(rc, s, arg)
		}
		if n.Res != nil {
			s = s.BindVar(n.Res, elFact.PointsToTop())
		}
		return s

	default:
		// Entry, Exit, Skip, Branch, MemberTest, Return.
		return s
	}
}

// call applies the callee's summary at a call site. An unresolved callee
// is assumed to behave arbitrarily on its arguments and result.
func (an *analyzer) call(rc *runCtx, n *cfg.Call, s lattice.State) lattice.State {
	callee := an.prog.Function(n.Callee)
	if callee == nil {
		for _, arg := range n.Args {
			s = demoteSites(rc, s, arg)
		}
		if n.Res != nil {
			s = s.BindVar(n.Res, elFact.PointsToTop())
		}
		return s
	}

	sum := rc.sz.resolve(callee)

	for i, arg := range n.Args {
		if sum.MutatesParam(i) {
			s = demoteSites(rc, s, arg)
		}
	}

	if n.Res == nil {
		return s
	}

	// The result aliases every argument the callee may return, plus a
	// fresh cell at the call site for the dict it may build itself.
	res := elFact.PointsTo()
	for i, arg := range n.Args {
		if !sum.ReturnsParam(i) {
			continue
		}
		pt := s.Lookup(arg)
		if pt.IsTop() {
			return s.BindVar(n.Res, elFact.PointsToTop())
		}
		res = res.MonoJoin(pt)
	}
	if !sum.Ret().IsBot() {
		s = s.JoinCell(n, sum.Ret())
		res = res.Add(n)
	}
	if res.Empty() {
		// The callee returns nothing the analysis tracks.
		return s.BindVar(n.Res, elFact.PointsToTop())
	}
	return s.BindVar(n.Res, res)
}

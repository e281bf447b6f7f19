package lattice

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/cs-au-dk/kea/analysis/cfg"

	"github.com/benbjohnson/immutable"
)

// StateLattice is the lattice of abstract states: maps from variables to
// points-to sets paired with maps from allocation sites to abstract
// dicts, ordered pointwise. Unbound variables implicitly map to ⊤.
type StateLattice struct {
	lattice
}

var stateLattice = &StateLattice{}

func (l *StateLattice) State() *StateLattice {
	return l
}

func (l *StateLattice) Eq(l2 Lattice) bool {
	return l == l2
}

func (*StateLattice) String() string {
	return colorize.Lattice("State")
}

func (*StateLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (*StateLattice) Bot() Element {
	return elFact.StateBot()
}

type varHasher struct{}

func (varHasher) Hash(v *cfg.Var) uint32 {
	h := fnv.New32a()
	h.Write([]byte(v.Name()))
	return h.Sum32()
}

func (varHasher) Equal(a, b *cfg.Var) bool {
	return a == b
}

type siteHasher struct{}

func (siteHasher) Hash(n cfg.Node) uint32 {
	return uint32(n.Index())
}

func (siteHasher) Equal(a, b cfg.Node) bool {
	return a == b
}

// State is a member of the abstract state lattice. The environment binds
// variables to the allocation sites they may denote; the heap binds
// allocation sites to abstract dicts.
type State struct {
	element
	bot  bool
	env  *immutable.Map[*cfg.Var, PointsTo]
	heap *immutable.Map[cfg.Node, Dict]
}

// State yields the initial abstract state, with no bound variable and an
// empty heap.
func (elementFactory) State() State {
	return State{
		element: element{stateLattice},
		env:     immutable.NewMap[*cfg.Var, PointsTo](varHasher{}),
		heap:    immutable.NewMap[cfg.Node, Dict](siteHasher{}),
	}
}

// StateBot yields the ⊥ abstract state, denoting an unreached program
// point.
func (elementFactory) StateBot() State {
	s := elFact.State()
	s.bot = true
	return s
}

func (s State) State() State {
	return s
}

// IsBot checks whether the program point is unreached.
func (s State) IsBot() bool {
	return s.bot
}

// Lookup gives the points-to set of a variable. Variables with no
// binding default to ⊤: they may denote anything.
func (s State) Lookup(v *cfg.Var) PointsTo {
	if p, found := s.env.Get(v); found {
		return p
	}
	return elFact.PointsToTop()
}

// BindVar yields the state with the variable rebound to the given
// points-to set.
func (s State) BindVar(v *cfg.Var, p PointsTo) State {
	if s.bot {
		return s
	}
	s.env = s.env.Set(v, p)
	return s
}

// GetCell gives the abstract dict stored at an allocation site.
func (s State) GetCell(site cfg.Node) Dict {
	if d, found := s.heap.Get(site); found {
		return d
	}
	return elFact.DictBot()
}

// UpdateCell strongly updates the dict at an allocation site. Only
// admissible when the written variable denotes that single site.
func (s State) UpdateCell(site cfg.Node, d Dict) State {
	if s.bot {
		return s
	}
	s.heap = s.heap.Set(site, d)
	return s
}

// JoinCell weakly updates the dict at an allocation site, joining the
// new dict onto the old.
func (s State) JoinCell(site cfg.Node, d Dict) State {
	return s.UpdateCell(site, s.GetCell(site).MonoJoin(d))
}

// Dicts gives the abstract dicts a variable may denote along with the
// corresponding sites. The second result is false when the variable may
// denote untracked values.
func (s State) Dicts(v *cfg.Var) ([]cfg.Node, []Dict, bool) {
	pt := s.Lookup(v)
	if pt.IsTop() {
		return nil, nil, false
	}
	sites := pt.Sites()
	dicts := make([]Dict, 0, len(sites))
	for _, site := range sites {
		dicts = append(dicts, s.GetCell(site))
	}
	return sites, dicts, true
}

// Leq computes s ⊑ o. Performs lattice dynamic type checking.
func (e1 State) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes s ⊑ o.
func (e1 State) leq(e2 Element) bool {
	s2, ok := e2.(State)
	if !ok {
		panic(errPatternMatch(e2))
	}

	switch {
	case e1.bot:
		return true
	case s2.bot:
		return false
	}

	// Pointwise over bound variables; a variable bound on only one side
	// compares against the implicit ⊤ of the other.
	for itr := e1.env.Iterator(); !itr.Done(); {
		v, p1, _ := itr.Next()
		if !p1.leq(s2.Lookup(v)) {
			return false
		}
	}
	for itr := s2.env.Iterator(); !itr.Done(); {
		v, p2, _ := itr.Next()
		if _, bound := e1.env.Get(v); !bound && !p2.IsTop() {
			return false
		}
	}

	for itr := e1.heap.Iterator(); !itr.Done(); {
		site, d1, _ := itr.Next()
		if !d1.leq(s2.GetCell(site)) {
			return false
		}
	}
	return true
}

// Geq computes s ⊒ o. Performs lattice dynamic type checking.
func (e1 State) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes s ⊒ o.
func (e1 State) geq(e2 Element) bool {
	return e2.leq(e1)
}

// Eq computes s = o. Performs lattice dynamic type checking.
func (e1 State) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes s = o.
func (e1 State) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Join computes s ⊔ o. Performs lattice dynamic type checking.
func (e1 State) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes s ⊔ o.
func (e1 State) join(e2 Element) Element {
	s2, ok := e2.(State)
	if !ok {
		panic(errPatternMatch(e2))
	}
	return e1.MonoJoin(s2)
}

// MonoJoin is a monomorphic variant of s ⊔ o for abstract states.
func (s1 State) MonoJoin(s2 State) State {
	switch {
	case s1.bot:
		return s2
	case s2.bot:
		return s1
	}

	res := elFact.State()

	// A binding joins with the implicit ⊤ of the other side, so only
	// variables bound in both states keep a binding.
	for itr := s1.env.Iterator(); !itr.Done(); {
		v, p1, _ := itr.Next()
		if p2, bound := s2.env.Get(v); bound {
			res.env = res.env.Set(v, p1.MonoJoin(p2))
		}
	}

	res.heap = s1.heap
	for itr := s2.heap.Iterator(); !itr.Done(); {
		site, d2, _ := itr.Next()
		res.heap = res.heap.Set(site, s1.GetCell(site).MonoJoin(d2))
	}
	return res
}

// Meet computes s ⊓ o. Performs lattice dynamic type checking.
func (e1 State) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes s ⊓ o.
func (e1 State) meet(e2 Element) Element {
	panic(errUnsupportedOperation)
}

func (s State) String() string {
	if s.bot {
		return colorize.Element("⊥")
	}

	strs := []string{}
	for itr := s.env.Iterator(); !itr.Done(); {
		v, p, _ := itr.Next()
		strs = append(strs, "  "+colorize.Attr(v.Name())+" ↦ "+p.String())
	}
	for itr := s.heap.Iterator(); !itr.Done(); {
		site, d, _ := itr.Next()
		strs = append(strs, "  "+colorize.Site("‹"+strconv.Itoa(site.Index())+"›")+" ↦ "+d.String())
	}
	sort.Strings(strs)
	return "{\n" + strings.Join(strs, "\n") + "\n}"
}

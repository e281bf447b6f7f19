package lattice

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cs-au-dk/kea/analysis/cfg"
)

// PointsToLattice is the powerset lattice of allocation sites, extended
// with an explicit ⊤ member for variables that may denote any value.
type PointsToLattice struct {
	lattice
}

var pointsToLattice = &PointsToLattice{}

func (l *PointsToLattice) PointsTo() *PointsToLattice {
	return l
}

func (l *PointsToLattice) Eq(l2 Lattice) bool {
	return l == l2
}

func (*PointsToLattice) String() string {
	return colorize.Lattice("PointsTo")
}

func (*PointsToLattice) Top() Element {
	return elFact.PointsToTop()
}

func (*PointsToLattice) Bot() Element {
	return elFact.PointsTo()
}

// PointsTo is a member of the points-to lattice: a set of allocation
// sites a variable may denote, or ⊤ when the variable may denote
// anything, tracked dicts included.
type PointsTo struct {
	element
	top bool
	// Sorted by node index; no duplicates.
	sites []cfg.Node
}

// PointsTo yields the points-to set of exactly the given sites.
func (elementFactory) PointsTo(sites ...cfg.Node) PointsTo {
	res := PointsTo{element: element{pointsToLattice}}
	for _, site := range sites {
		res = res.Add(site)
	}
	return res
}

// PointsToTop yields the ⊤ points-to set.
func (elementFactory) PointsToTop() PointsTo {
	return PointsTo{element: element{pointsToLattice}, top: true}
}

func (p PointsTo) PointsTo() PointsTo {
	return p
}

// IsTop checks whether the variable may denote any value.
func (p PointsTo) IsTop() bool {
	return p.top
}

// Empty checks whether the set is ⊥, i.e. contains no site.
func (p PointsTo) Empty() bool {
	return !p.top && len(p.sites) == 0
}

// Singleton gives the sole site of the set, if it has exactly one.
// Strong updates are admissible only in that case.
func (p PointsTo) Singleton() (cfg.Node, bool) {
	if !p.top && len(p.sites) == 1 {
		return p.sites[0], true
	}
	return nil, false
}

// Sites gives the members of the set in node index order. The result
// must not be mutated.
func (p PointsTo) Sites() []cfg.Node {
	return p.sites
}

// Contains checks site membership.
func (p PointsTo) Contains(site cfg.Node) bool {
	i := sort.Search(len(p.sites), func(i int) bool {
		return p.sites[i].Index() >= site.Index()
	})
	return i < len(p.sites) && p.sites[i] == site
}

// Add yields the set extended with the given site.
func (p PointsTo) Add(site cfg.Node) PointsTo {
	if p.top || p.Contains(site) {
		return p
	}
	sites := make([]cfg.Node, 0, len(p.sites)+1)
	sites = append(sites, p.sites...)
	sites = append(sites, site)
	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Index() < sites[j].Index()
	})
	p.sites = sites
	return p
}

// Leq computes p ⊑ o. Performs lattice dynamic type checking.
func (e1 PointsTo) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes p ⊑ o.
func (e1 PointsTo) leq(e2 Element) bool {
	p2, ok := e2.(PointsTo)
	if !ok {
		panic(errPatternMatch(e2))
	}

	switch {
	case p2.top:
		return true
	case e1.top:
		return false
	}

	for _, site := range e1.sites {
		if !p2.Contains(site) {
			return false
		}
	}
	return true
}

// Geq computes p ⊒ o. Performs lattice dynamic type checking.
func (e1 PointsTo) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes p ⊒ o.
func (e1 PointsTo) geq(e2 Element) bool {
	return e2.leq(e1)
}

// Eq computes p = o. Performs lattice dynamic type checking.
func (e1 PointsTo) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes p = o.
func (e1 PointsTo) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Join computes p ⊔ o. Performs lattice dynamic type checking.
func (e1 PointsTo) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes p ⊔ o.
func (e1 PointsTo) join(e2 Element) Element {
	p2, ok := e2.(PointsTo)
	if !ok {
		panic(errPatternMatch(e2))
	}
	return e1.MonoJoin(p2)
}

// MonoJoin is a monomorphic variant of p ⊔ o for points-to sets.
func (p1 PointsTo) MonoJoin(p2 PointsTo) PointsTo {
	switch {
	case p1.top:
		return p1
	case p2.top:
		return p2
	case len(p1.sites) == 0:
		return p2
	case len(p2.sites) == 0:
		return p1
	}

	res := p1
	for _, site := range p2.sites {
		res = res.Add(site)
	}
	return res
}

// Meet computes p ⊓ o. Performs lattice dynamic type checking.
func (e1 PointsTo) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes p ⊓ o.
func (e1 PointsTo) meet(e2 Element) Element {
	p2, ok := e2.(PointsTo)
	if !ok {
		panic(errPatternMatch(e2))
	}

	switch {
	case e1.top:
		return p2
	case p2.top:
		return e1
	}

	res := PointsTo{element: e1.element}
	for _, site := range e1.sites {
		if p2.Contains(site) {
			res = res.Add(site)
		}
	}
	return res
}

func (p PointsTo) String() string {
	if p.top {
		return colorize.Element("T")
	}
	strs := make([]string, 0, len(p.sites))
	for _, site := range p.sites {
		strs = append(strs, colorize.Site("‹"+strconv.Itoa(site.Index())+"›"))
	}
	return "{" + strings.Join(strs, ", ") + "}"
}

package lattice

import (
	"strconv"
	"strings"
)

// SummaryLattice is the lattice of call summaries: the abstract dict a
// callee may return, which parameters it may return aliased, and which
// parameters it may write through.
type SummaryLattice struct {
	lattice
}

var summaryLattice = &SummaryLattice{}

func (l *SummaryLattice) Summary() *SummaryLattice {
	return l
}

func (l *SummaryLattice) Eq(l2 Lattice) bool {
	return l == l2
}

func (*SummaryLattice) String() string {
	return colorize.Lattice("Summary")
}

// Top requires an arity, so the generic accessor is unsupported; use
// elFact.TopSummary instead.
func (*SummaryLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (*SummaryLattice) Bot() Element {
	return elFact.BotSummary(0)
}

// Summary is a member of the summary lattice. The flag slices are
// indexed by parameter position: retParams[i] holds when the callee may
// return its i-th argument, mutParams[i] when it may add keys to it.
type Summary struct {
	element
	bot       bool
	ret       Dict
	retParams []bool
	mutParams []bool
}

// Summary yields the call summary with the given return dict and
// parameter flags. The flag slices must have equal length and must not
// be mutated afterwards.
func (elementFactory) Summary(ret Dict, retParams, mutParams []bool) Summary {
	if len(retParams) != len(mutParams) {
		panic(errInternal)
	}
	return Summary{
		element:   element{summaryLattice},
		ret:       ret,
		retParams: retParams,
		mutParams: mutParams,
	}
}

// TopSummary yields the summary assuming the worst of a callee with the
// given arity: any dict returned, every argument possibly returned and
// possibly extended. It is the safe stand-in for unresolved calls and
// the starting point for cyclic summary groups.
func (elementFactory) TopSummary(arity int) Summary {
	all := make([]bool, arity)
	for i := range all {
		all[i] = true
	}
	return elFact.Summary(elFact.TopDict(), all, append([]bool(nil), all...))
}

// BotSummary yields the ⊥ summary of the given arity, denoting a callee
// with no analyzed behavior.
func (elementFactory) BotSummary(arity int) Summary {
	s := elFact.Summary(elFact.DictBot(), make([]bool, arity), make([]bool, arity))
	s.bot = true
	return s
}

func (s Summary) Summary() Summary {
	return s
}

// IsBot checks whether the summary records no behavior.
func (s Summary) IsBot() bool {
	return s.bot
}

// Ret gives the abstract dict the callee may return directly.
func (s Summary) Ret() Dict {
	return s.ret
}

// Arity gives the number of parameters the summary covers.
func (s Summary) Arity() int {
	return len(s.retParams)
}

// ReturnsParam checks whether the callee may return its i-th argument.
func (s Summary) ReturnsParam(i int) bool {
	return i < len(s.retParams) && s.retParams[i]
}

// MutatesParam checks whether the callee may add keys to its i-th
// argument.
func (s Summary) MutatesParam(i int) bool {
	return i < len(s.mutParams) && s.mutParams[i]
}

// Leq computes s ⊑ o. Performs lattice dynamic type checking.
func (e1 Summary) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes s ⊑ o.
func (e1 Summary) leq(e2 Element) bool {
	s2, ok := e2.(Summary)
	if !ok {
		panic(errPatternMatch(e2))
	}

	switch {
	case e1.bot:
		return true
	case s2.bot:
		return false
	}

	if !e1.ret.leq(s2.ret) {
		return false
	}
	for i := 0; i < e1.Arity() || i < s2.Arity(); i++ {
		if e1.ReturnsParam(i) && !s2.ReturnsParam(i) {
			return false
		}
		if e1.MutatesParam(i) && !s2.MutatesParam(i) {
			return false
		}
	}
	return true
}

// Geq computes s ⊒ o. Performs lattice dynamic type checking.
func (e1 Summary) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes s ⊒ o.
func (e1 Summary) geq(e2 Element) bool {
	return e2.leq(e1)
}

// Eq computes s = o. Performs lattice dynamic type checking.
func (e1 Summary) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes s = o.
func (e1 Summary) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Join computes s ⊔ o. Performs lattice dynamic type checking.
func (e1 Summary) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes s ⊔ o.
func (e1 Summary) join(e2 Element) Element {
	s2, ok := e2.(Summary)
	if !ok {
		panic(errPatternMatch(e2))
	}
	return e1.MonoJoin(s2)
}

// MonoJoin is a monomorphic variant of s ⊔ o for summaries.
func (s1 Summary) MonoJoin(s2 Summary) Summary {
	switch {
	case s1.bot:
		return s2
	case s2.bot:
		return s1
	}

	arity := s1.Arity()
	if s2.Arity() > arity {
		arity = s2.Arity()
	}
	retParams := make([]bool, arity)
	mutParams := make([]bool, arity)
	for i := 0; i < arity; i++ {
		retParams[i] = s1.ReturnsParam(i) || s2.ReturnsParam(i)
		mutParams[i] = s1.MutatesParam(i) || s2.MutatesParam(i)
	}
	return elFact.Summary(s1.ret.MonoJoin(s2.ret), retParams, mutParams)
}

// Meet computes s ⊓ o. Performs lattice dynamic type checking.
func (e1 Summary) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes s ⊓ o.
func (e1 Summary) meet(e2 Element) Element {
	panic(errUnsupportedOperation)
}

func (s Summary) String() string {
	if s.bot {
		return colorize.Element("⊥")
	}

	flags := func(bs []bool) string {
		strs := []string{}
		for i, b := range bs {
			if b {
				strs = append(strs, strconv.Itoa(i))
			}
		}
		return "{" + strings.Join(strs, ", ") + "}"
	}
	return "⟨ret: " + s.ret.String() +
		", ret-params: " + flags(s.retParams) +
		", mut-params: " + flags(s.mutParams) + "⟩"
}

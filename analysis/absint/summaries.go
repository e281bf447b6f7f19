package absint

import (
	"sort"
	"sync"

	"github.com/cs-au-dk/kea/analysis/cfg"
	"github.com/cs-au-dk/kea/analysis/lattice"
	"github.com/cs-au-dk/kea/utils"
	"github.com/cs-au-dk/kea/utils/worklist"

	uf "github.com/spakin/disjoint"
)

// store holds published call summaries, keyed by function name. It is
// safe for concurrent use. A summary is published only once final:
// readers never observe an intermediate value of a refinement loop.
type store struct {
	mu        sync.RWMutex
	summaries map[string]lattice.Summary
}

func newStore() *store {
	return &store{summaries: make(map[string]lattice.Summary)}
}

func (st *store) get(name string) (lattice.Summary, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, found := st.summaries[name]
	return s, found
}

// publish installs a batch of summaries in one critical section, so a
// recursive group becomes visible all at once.
func (st *store) publish(sums map[string]lattice.Summary) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for name, s := range sums {
		st.summaries[name] = s
	}
}

// summarizer resolves callee summaries on demand. It tracks the chain of
// in-flight computations to detect recursion; mutually recursive
// functions are grouped with union-find and refined together from the ⊤
// summary until their summaries stabilize.
type summarizer struct {
	an          *analyzer
	stack       []string
	groups      map[string]*uf.Element
	provisional map[string]lattice.Summary
	inCycle     map[string]bool
	refining    bool
}

func (an *analyzer) newSummarizer() *summarizer {
	return &summarizer{
		an:          an,
		groups:      make(map[string]*uf.Element),
		provisional: make(map[string]lattice.Summary),
		inCycle:     make(map[string]bool),
	}
}

func (sz *summarizer) onStack(name string) int {
	for i, m := range sz.stack {
		if m == name {
			return i
		}
	}
	return -1
}

func (sz *summarizer) group(name string) *uf.Element {
	if e, found := sz.groups[name]; found {
		return e
	}
	e := uf.NewElement()
	sz.groups[name] = e
	return e
}

// groupOnStack checks whether any in-flight computation belongs to the
// same recursive group as the named function.
func (sz *summarizer) groupOnStack(name string) bool {
	root := sz.group(name).Find()
	for _, m := range sz.stack {
		if e, found := sz.groups[m]; found && e.Find() == root {
			return true
		}
	}
	return false
}

func (sz *summarizer) provisionalOf(fn *cfg.Function) lattice.Summary {
	if s, found := sz.provisional[fn.Name()]; found {
		return s
	}
	s := elFact.TopSummary(len(fn.Params()))
	sz.provisional[fn.Name()] = s
	return s
}

// resolve gives the summary of a function, computing and publishing it
// first if needed.
func (sz *summarizer) resolve(fn *cfg.Function) lattice.Summary {
	name := fn.Name()
	if s, found := sz.an.sums.get(name); found {
		return s
	}

	if sz.refining {
		if s, found := sz.provisional[name]; found {
			return s
		}
	}

	if i := sz.onStack(name); i >= 0 {
		// Recursion: everything on the stack from the first occurrence
		// onward is one recursive group. Answer provisionally; the
		// group converges before anything is published.
		for _, m := range sz.stack[i:] {
			sz.inCycle[m] = true
			uf.Union(sz.group(name), sz.group(m))
		}
		return sz.provisionalOf(fn)
	}

	sz.stack = append(sz.stack, name)
	sum := sz.an.summarize(fn, sz)
	sz.stack = sz.stack[:len(sz.stack)-1]

	if !sz.inCycle[name] {
		sz.an.sums.publish(map[string]lattice.Summary{name: sum})
		return sum
	}

	sz.provisional[name] = sum
	if sz.groupOnStack(name) {
		// An outer member of the group still computes; it will drive
		// the refinement.
		return sum
	}
	return sz.refine(name)
}

// refine iterates the members of a recursive group, recomputing each
// summary against the group's provisional values, until nothing changes.
// Provisional values start at ⊤ and only shrink, so the loop terminates.
func (sz *summarizer) refine(name string) lattice.Summary {
	root := sz.group(name).Find()
	members := []string{}
	for m, e := range sz.groups {
		if e.Find() == root {
			members = append(members, m)
		}
	}
	sort.Strings(members)

	sz.refining = true
	worklist.StartV(members, func(m string, add func(string)) {
		sum := sz.an.summarize(sz.an.prog.Function(m), sz)
		if !sum.Eq(sz.provisional[m]) {
			sz.provisional[m] = sum
			// A shrunken summary may shrink the others.
			for _, o := range members {
				if o != m {
					add(o)
				}
			}
		}
	})
	sz.refining = false

	final := make(map[string]lattice.Summary, len(members))
	for _, m := range members {
		final[m] = sz.provisional[m]
		utils.VerbosePrint("summary of %s converged: %s\n", m, final[m])
	}
	sz.an.sums.publish(final)
	return final[name]
}

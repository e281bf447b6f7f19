package absint

import (
	"sort"
	"strings"
	"sync"

	"github.com/cs-au-dk/kea/analysis/cfg"
	"github.com/cs-au-dk/kea/analysis/lattice"
	"github.com/cs-au-dk/kea/utils"
	"github.com/cs-au-dk/kea/utils/pq"
)

type analyzer struct {
	prog *cfg.Program
	sums *store
}

// run computes, for every CF-node of the function, the abstract state
// holding just before the node executes. It is a standard worklist
// fixpoint, prioritized by node index so loop bodies stabilize before
// their continuations. The second result records which parameter
// positions were written through.
func (an *analyzer) run(fn *cfg.Function, sz *summarizer) (map[cfg.Node]lattice.State, map[int]bool) {
	rc := &runCtx{fn: fn, sz: sz, mutated: make(map[int]bool)}

	states := make(map[cfg.Node]lattice.State, len(fn.Nodes()))
	for _, n := range fn.Nodes() {
		states[n] = elFact.StateBot()
	}

	// Parameters denote their synthetic sites, about whose mappings
	// nothing is assumed.
	init := elFact.State()
	for i, p := range fn.Params() {
		site := fn.ParamSite(i)
		init = init.BindVar(p, elFact.PointsTo(site))
		init = init.UpdateCell(site, elFact.TopDict())
	}
	states[fn.Entry()] = init

	queue := pq.Empty(func(a, b cfg.Node) bool {
		return a.Index() < b.Index()
	})
	queue.Add(fn.Entry())

	propagate := func(succ cfg.Node, out lattice.State) {
		old := states[succ]
		joined := old.MonoJoin(out)
		if !joined.Eq(old) {
			states[succ] = joined
			queue.Add(succ)
		}
	}

	for !queue.IsEmpty() {
		n := queue.GetNext()
		in := states[n]

		if m, found := n.(*cfg.MemberTest); found {
			propagate(m.TrueSucc(), narrow(in, m, true))
			propagate(m.FalseSucc(), narrow(in, m, false))
			continue
		}

		out := an.transfer(rc, n, in)
		for succ := range n.Successors() {
			propagate(succ, out)
		}
	}

	return states, rc.mutated
}

// summarize runs the fixpoint for a function and condenses the result
// into its call summary.
func (an *analyzer) summarize(fn *cfg.Function, sz *summarizer) lattice.Summary {
	states, mutated := an.run(fn, sz)

	arity := len(fn.Params())
	ret := elFact.DictBot()
	retParams := make([]bool, arity)
	mutParams := make([]bool, arity)
	for i := range mutParams {
		mutParams[i] = mutated[i]
	}

	for _, n := range fn.Nodes() {
		retNode, found := n.(*cfg.Return)
		if !found || retNode.Val == nil {
			continue
		}
		s := states[n]
		if s.IsBot() {
			continue
		}

		pt := s.Lookup(retNode.Val)
		if pt.IsTop() {
			// The returned value is untracked; it could be any dict,
			// any argument included.
			ret = elFact.TopDict()
			for i := range retParams {
				retParams[i] = true
			}
			continue
		}
		for _, site := range pt.Sites() {
			if i := fn.ParamIndex(site); i >= 0 {
				retParams[i] = true
			} else if d := s.GetCell(site); !d.IsBot() {
				ret = ret.MonoJoin(d)
			}
		}
	}

	return elFact.Summary(ret, retParams, mutParams)
}

// diagnose runs the fixpoint for a function and reports every subscript
// read of a literal key where every mapping the subscripted variable may
// denote provably lacks the key.
func (an *analyzer) diagnose(fn *cfg.Function) *Diagnostics {
	states, _ := an.run(fn, an.newSummarizer())

	ds := &Diagnostics{}
	for _, n := range fn.Nodes() {
		read, found := n.(*cfg.DictRead)
		if !found || !read.Key.Literal() {
			continue
		}
		s := states[n]
		if s.IsBot() {
			continue
		}

		pt := s.Lookup(read.Dict)
		if pt.IsTop() || pt.Empty() {
			continue
		}
		absentEverywhere := true
		for _, site := range pt.Sites() {
			if !s.GetCell(site).IsDefinitelyAbsent(read.Key) {
				absentEverywhere = false
			}
		}
		if absentEverywhere {
			ds.Add(read)
		}
	}
	return ds
}

// Result holds the outcome of a whole-program analysis run.
type Result struct {
	reports map[string]*Diagnostics
	sums    *store
}

// Diagnostics gives the reports for the named function.
func (r *Result) Diagnostics(fun string) *Diagnostics {
	if ds, found := r.reports[fun]; found {
		return ds
	}
	return &Diagnostics{}
}

// Reported checks whether any read of the named function was reported.
func (r *Result) Reported(fun string) bool {
	return !r.Diagnostics(fun).Empty()
}

// Summary gives the published call summary of the named function.
func (r *Result) Summary(fun string) (lattice.Summary, bool) {
	return r.sums.get(fun)
}

func (r *Result) String() string {
	funs := make([]string, 0, len(r.reports))
	for fun := range r.reports {
		funs = append(funs, fun)
	}
	sort.Strings(funs)

	strs := []string{}
	for _, fun := range funs {
		if ds := r.reports[fun]; !ds.Empty() {
			strs = append(strs, ds.String())
		}
	}
	if len(strs) == 0 {
		return colorize.Good("no missing-key accesses")
	}
	return strings.Join(strs, "\n")
}

// Analyze runs the missing-key analysis on every function of the
// program. Summaries are computed bottom-up first; the per-function
// diagnostic passes then run concurrently against the published store.
func Analyze(prog *cfg.Program) *Result {
	an := &analyzer{prog: prog, sums: newStore()}

	sz := an.newSummarizer()
	for _, fn := range prog.Functions() {
		sz.resolve(fn)
		utils.VerbosePrint("summarized %s\n", fn.Name())
	}

	funs := prog.Functions()
	reports := make([]*Diagnostics, len(funs))

	var wg sync.WaitGroup
	for i, fn := range funs {
		wg.Add(1)
		go func(i int, fn *cfg.Function) {
			defer wg.Done()
			reports[i] = an.diagnose(fn)
		}(i, fn)
	}
	wg.Wait()

	res := &Result{reports: make(map[string]*Diagnostics, len(funs)), sums: an.sums}
	for i, fn := range funs {
		res.reports[fn.Name()] = reports[i]
	}
	return res
}

// AnalyzeFunction analyzes a single function, resolving the summaries of
// its (transitive) callees on demand.
func AnalyzeFunction(prog *cfg.Program, fn *cfg.Function) (*Diagnostics, lattice.Summary) {
	an := &analyzer{prog: prog, sums: newStore()}
	sum := an.newSummarizer().resolve(fn)
	return an.diagnose(fn), sum
}

package cfg

// Function is the control flow graph of one function body, as supplied by
// the front-end.
type Function struct {
	name       string
	params     []*Var
	paramSites []*Param
	vars       map[string]*Var
	entry      Node
	exit       Node
	nodes      []Node
}

func (fn *Function) Name() string {
	return fn.name
}

func (fn *Function) Params() []*Var {
	return fn.params
}

// ParamSite is the synthetic allocation site of the i'th parameter.
func (fn *Function) ParamSite(i int) *Param {
	return fn.paramSites[i]
}

// ParamIndex resolves an allocation site back to a parameter position, or
// -1 when the site does not denote a parameter of this function.
func (fn *Function) ParamIndex(n Node) int {
	p, ok := n.(*Param)
	if !ok {
		return -1
	}
	for i, site := range fn.paramSites {
		if site == p {
			return i
		}
	}
	return -1
}

func (fn *Function) Entry() Node {
	return fn.entry
}

func (fn *Function) Exit() Node {
	return fn.exit
}

// Nodes lists every CF-node of the function in priority order. Nodes
// unreachable from the entry come last.
func (fn *Function) Nodes() []Node {
	return fn.nodes
}

// ForEach executes the given procedure for each node reachable from the
// function entry. Traversal is depth-first with arbitrary ordering between
// siblings.
func (fn *Function) ForEach(do func(Node)) {
	visited := make(map[Node]struct{})

	var visit func(Node)
	visit = func(n Node) {
		if _, ok := visited[n]; !ok {
			visited[n] = struct{}{}

			do(n)

			for succ := range n.Successors() {
				visit(succ)
			}
		}
	}

	visit(fn.entry)
}

// FindAll aggregates all reachable CF-nodes that satisfy the given
// predicate.
func (fn *Function) FindAll(pred func(Node) bool) map[Node]struct{} {
	found := make(map[Node]struct{})

	fn.ForEach(func(n Node) {
		if pred(n) {
			found[n] = struct{}{}
		}
	})

	return found
}

func (fn *Function) String() string {
	return fn.name
}

// Program is a collection of function graphs subject to one analysis run.
type Program struct {
	funs  []*Function
	index map[string]*Function
}

func NewProgram(funs ...*Function) *Program {
	p := &Program{index: make(map[string]*Function)}
	for _, fn := range funs {
		p.Add(fn)
	}
	return p
}

func (p *Program) Add(fn *Function) {
	p.funs = append(p.funs, fn)
	p.index[fn.name] = fn
}

// Function resolves a function by name, yielding nil for callees outside
// the analyzed program.
func (p *Program) Function(name string) *Function {
	return p.index[name]
}

func (p *Program) Functions() []*Function {
	return p.funs
}

package cfg

import (
	"fmt"

	"github.com/cs-au-dk/kea/analysis/defs"
)

// Builder assembles a well-formed function graph. It is the programmatic
// interface offered to the front-end; the structured helpers (IfIn, If,
// Loop) guarantee that branch edges and back-edges are wired consistently.
type Builder struct {
	fun *Function
	cur Node
}

// NewFunction starts building the graph of a function with the given
// parameters.
func NewFunction(name string, params ...string) *Builder {
	fun := &Function{
		name: name,
		vars: make(map[string]*Var),
	}

	entry := &Entry{makeBaseNode()}
	exit := &Exit{makeBaseNode()}
	fun.entry = entry
	fun.exit = exit
	fun.nodes = append(fun.nodes, entry)

	for i, p := range params {
		v := &Var{name: p}
		fun.vars[p] = v
		fun.params = append(fun.params, v)

		site := &Param{BaseNode: makeBaseNode(), Var: v, Pos: i}
		site.setFunction(fun)
		fun.paramSites = append(fun.paramSites, site)
	}

	entry.setFunction(fun)
	exit.setFunction(fun)

	return &Builder{fun: fun, cur: entry}
}

// Var retrieves the variable with the given name, creating it on first
// use.
func (b *Builder) Var(name string) *Var {
	if v, ok := b.fun.vars[name]; ok {
		return v
	}
	v := &Var{name: name}
	b.fun.vars[name] = v
	return v
}

func (b *Builder) addNode(n Node) {
	n.setFunction(b.fun)
	b.fun.nodes = append(b.fun.nodes, n)
}

func wire(from, to Node) {
	from.AddSuccessor(to)
	to.AddPredecessor(from)
}

func (b *Builder) append(n Node) {
	b.addNode(n)
	if b.cur != nil {
		wire(b.cur, n)
	}
	b.cur = n
}

// MakeDict emits a mapping literal over the given keys.
func (b *Builder) MakeDict(res *Var, keys ...defs.Key) *Builder {
	b.append(&MakeDict{BaseNode: makeBaseNode(), Res: res, Entries: keys})
	return b
}

// MakeDictSpread emits a mapping literal that additionally unpacks the
// given spread sources.
func (b *Builder) MakeDictSpread(res *Var, keys []defs.Key, spreads ...*Var) *Builder {
	b.append(&MakeDict{BaseNode: makeBaseNode(), Res: res, Entries: keys, Spreads: spreads})
	return b
}

// MakeDictKw emits a constructor call with a keyword-argument set.
func (b *Builder) MakeDictKw(res *Var, names ...string) *Builder {
	b.append(&MakeDictKw{BaseNode: makeBaseNode(), Res: res, Names: names})
	return b
}

// MakeDictCopy emits a constructor call over an existing mapping.
func (b *Builder) MakeDictCopy(res, src *Var) *Builder {
	b.append(&MakeDictCopy{BaseNode: makeBaseNode(), Res: res, Src: src})
	return b
}

// MakeDictPairs emits a constructor call over a literal, finite sequence
// of pairs with the given keys.
func (b *Builder) MakeDictPairs(res *Var, keys ...defs.Key) *Builder {
	b.append(&MakeDictPairs{BaseNode: makeBaseNode(), Res: res, Keys: keys, Enumerable: true})
	return b
}

// MakeDictIter emits a constructor call over an iterable whose element
// keys are not statically enumerable.
func (b *Builder) MakeDictIter(res *Var) *Builder {
	b.append(&MakeDictPairs{BaseNode: makeBaseNode(), Res: res})
	return b
}

// MakeDictComp emits a comprehension-built mapping.
func (b *Builder) MakeDictComp(res *Var) *Builder {
	b.append(&MakeDictComp{BaseNode: makeBaseNode(), Res: res})
	return b
}

// Write emits a subscript write `d[k] = ·`.
func (b *Builder) Write(d *Var, k defs.Key) *Builder {
	b.append(&DictWrite{BaseNode: makeBaseNode(), Dict: d, Key: k})
	return b
}

// Read emits a subscript read `res = d[k]`.
func (b *Builder) Read(res, d *Var, k defs.Key) *Builder {
	b.append(&DictRead{BaseNode: makeBaseNode(), Res: res, Dict: d, Key: k})
	return b
}

// Assign emits a plain assignment `dst = src`.
func (b *Builder) Assign(dst, src *Var) *Builder {
	b.append(&Assign{BaseNode: makeBaseNode(), Dst: dst, Src: src})
	return b
}

// Call emits a call to the named function.
func (b *Builder) Call(res *Var, callee string, args ...*Var) *Builder {
	b.append(&Call{BaseNode: makeBaseNode(), Res: res, Callee: callee, Args: args})
	return b
}

// Exec emits the dynamic-execution primitive.
func (b *Builder) Exec(args ...*Var) *Builder {
	b.append(&DynExec{BaseNode: makeBaseNode(), Args: args})
	return b
}

// Opaque emits an unmodeled instruction touching the given variables.
func (b *Builder) Opaque(res *Var, args ...*Var) *Builder {
	b.append(&Opaque{BaseNode: makeBaseNode(), Res: res, Args: args})
	return b
}

// Return emits a return instruction and terminates the current flow.
func (b *Builder) Return(v *Var) *Builder {
	ret := &Return{BaseNode: makeBaseNode(), Val: v}
	b.append(ret)
	wire(ret, b.fun.exit)
	b.cur = nil
	return b
}

// IfIn emits a membership test branch `k in d` with the two given branch
// bodies. A nil else-branch falls through.
func (b *Builder) IfIn(d *Var, k defs.Key, then func(*Builder), els func(*Builder)) *Builder {
	m := &MemberTest{BaseNode: makeBaseNode(), Dict: d, Key: k}
	b.append(m)

	join := &Skip{makeBaseNode()}
	b.addNode(join)

	tEntry := &Skip{makeBaseNode()}
	b.addNode(tEntry)
	wire(m, tEntry)
	m.tsucc = tEntry

	fEntry := &Skip{makeBaseNode()}
	b.addNode(fEntry)
	wire(m, fEntry)
	m.fsucc = fEntry

	runBranch := func(entry Node, body func(*Builder)) {
		sb := &Builder{fun: b.fun, cur: entry}
		if body != nil {
			body(sb)
		}
		if sb.cur != nil {
			wire(sb.cur, join)
		}
	}

	runBranch(tEntry, then)
	runBranch(fEntry, els)

	b.cur = join
	return b
}

// If emits a branch on an untracked condition with the two given branch
// bodies. A nil else-branch falls through.
func (b *Builder) If(then func(*Builder), els func(*Builder)) *Builder {
	br := &Branch{makeBaseNode()}
	b.append(br)

	join := &Skip{makeBaseNode()}
	b.addNode(join)

	runBranch := func(body func(*Builder)) {
		entry := &Skip{makeBaseNode()}
		b.addNode(entry)
		wire(br, entry)

		sb := &Builder{fun: b.fun, cur: entry}
		if body != nil {
			body(sb)
		}
		if sb.cur != nil {
			wire(sb.cur, join)
		}
	}

	runBranch(then)
	runBranch(els)

	b.cur = join
	return b
}

// Loop emits a loop with an untracked guard around the given body. The
// body's tail is wired back to the guard.
func (b *Builder) Loop(body func(*Builder)) *Builder {
	guard := &Branch{makeBaseNode()}
	b.append(guard)

	bodyEntry := &Skip{makeBaseNode()}
	b.addNode(bodyEntry)
	wire(guard, bodyEntry)

	exit := &Skip{makeBaseNode()}
	b.addNode(exit)
	wire(guard, exit)

	sb := &Builder{fun: b.fun, cur: bodyEntry}
	body(sb)
	if sb.cur != nil {
		wire(sb.cur, guard)
	}

	b.cur = exit
	return b
}

// Finish completes the graph: the fall-through tail is wired to the exit
// node, and all nodes are assigned priority indices in reverse post-order.
func (b *Builder) Finish() *Function {
	fun := b.fun
	if b.cur != nil {
		wire(b.cur, fun.exit)
		b.cur = nil
	}

	ordered := make([]Node, 0, len(fun.nodes)+len(fun.paramSites)+1)
	for _, site := range fun.paramSites {
		ordered = append(ordered, site)
	}

	// Reverse post-order of the reachable component.
	visited := make(map[Node]struct{})
	var post []Node
	var visit func(Node)
	visit = func(n Node) {
		if _, ok := visited[n]; ok {
			return
		}
		visited[n] = struct{}{}
		for succ := range n.Successors() {
			visit(succ)
		}
		post = append(post, n)
	}
	visit(fun.entry)

	for i := len(post) - 1; i >= 0; i-- {
		ordered = append(ordered, post[i])
	}

	// Dead nodes keep a stable position after the reachable component.
	for _, n := range fun.nodes {
		if _, ok := visited[n]; !ok {
			ordered = append(ordered, n)
		}
	}
	if _, ok := visited[fun.exit]; !ok {
		ordered = append(ordered, fun.exit)
	}

	for i, n := range ordered {
		n.setIndex(i)
	}
	fun.nodes = ordered

	if fun.entry.Index() > fun.exit.Index() {
		panic(fmt.Sprintf("malformed graph for %s: entry ordered after exit", fun.name))
	}

	return fun
}

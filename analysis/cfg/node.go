package cfg

import (
	"github.com/cs-au-dk/kea/analysis/defs"
)

// Var is a program variable identifier. Variables are identified by
// pointer; each function owns its variables.
type Var struct {
	name string
}

func (v *Var) Name() string {
	return v.name
}

func (v *Var) String() string {
	return v.name
}

// Node is a single instruction in the control-flow graph of a function.
// The instruction kinds below are the complete set the front-end may
// produce; anything the analyzed language does beyond them must be encoded
// as an Opaque node.
type Node interface {
	AddSuccessor(Node)
	AddPredecessor(Node)
	Successors() map[Node]struct{}
	Predecessors() map[Node]struct{}

	// Function is the function the node belongs to.
	Function() *Function
	// Index is the node's position in the priority order of its function.
	// It doubles as a stable program point identifier.
	Index() int

	String() string

	baseNode() *BaseNode
	setFunction(*Function)
	setIndex(int)
}

// BaseNode holds the relational structure shared by all CF-nodes.
type BaseNode struct {
	succ map[Node]struct{}
	pred map[Node]struct{}
	fun  *Function
	idx  int
}

func makeBaseNode() BaseNode {
	return BaseNode{
		succ: make(map[Node]struct{}),
		pred: make(map[Node]struct{}),
	}
}

func (n *BaseNode) baseNode() *BaseNode {
	return n
}

func (n *BaseNode) AddPredecessor(n2 Node) {
	n.pred[n2] = struct{}{}
}

func (n *BaseNode) AddSuccessor(n2 Node) {
	n.succ[n2] = struct{}{}
}

func (n *BaseNode) Successors() map[Node]struct{} {
	return n.succ
}

func (n *BaseNode) Predecessors() map[Node]struct{} {
	return n.pred
}

func (n *BaseNode) Function() *Function {
	return n.fun
}

func (n *BaseNode) Index() int {
	return n.idx
}

func (n *BaseNode) setFunction(f *Function) {
	n.fun = f
}

func (n *BaseNode) setIndex(i int) {
	n.idx = i
}

type (
	// Entry is the synthetic entry point of a function body.
	Entry struct {
		BaseNode
	}

	// Exit is the synthetic exit point of a function body. All Return
	// nodes, and the fall-through tail of the body, lead here.
	Exit struct {
		BaseNode
	}

	// Skip is a synthetic no-op node used as a merge point or loop header.
	Skip struct {
		BaseNode
	}

	// Param is the synthetic allocation site standing for the unknown
	// value of one parameter. Param nodes are not part of the instruction
	// flow; they only serve as heap cells.
	Param struct {
		BaseNode
		Var *Var
		Pos int
	}

	// MakeDict is a mapping literal `{k1: v1, ...}`, possibly containing
	// `**spread` sources. Non-literal keys appear as defs.Unknown.
	MakeDict struct {
		BaseNode
		Res     *Var
		Entries []defs.Key
		Spreads []*Var
	}

	// MakeDictKw is a constructor call with a keyword-argument set,
	// `dict(name=..., age=...)`. All keyword names are literal identifiers.
	MakeDictKw struct {
		BaseNode
		Res   *Var
		Names []string
	}

	// MakeDictCopy is a constructor call over an existing mapping,
	// `dict(other)`.
	MakeDictCopy struct {
		BaseNode
		Res *Var
		Src *Var
	}

	// MakeDictPairs is a constructor call over an iterable of pairs.
	// When the iterable is a literal, finite sequence of pairs, Enumerable
	// is true and Keys lists the pair keys; otherwise the element keys are
	// not statically enumerable and Keys is nil.
	MakeDictPairs struct {
		BaseNode
		Res        *Var
		Keys       []defs.Key
		Enumerable bool
	}

	// MakeDictComp is a comprehension-built mapping.
	MakeDictComp struct {
		BaseNode
		Res *Var
	}

	// DictWrite is a subscript write `d[k] = v`.
	DictWrite struct {
		BaseNode
		Dict *Var
		Key  defs.Key
	}

	// DictRead is a subscript read `d[k]`. It is the only instruction
	// kind that can give rise to a diagnostic.
	DictRead struct {
		BaseNode
		Res  *Var
		Dict *Var
		Key  defs.Key
	}

	// MemberTest is a containment test `k in d` used as a branch
	// condition. Its two outgoing edges are distinguished.
	MemberTest struct {
		BaseNode
		Dict  *Var
		Key   defs.Key
		tsucc Node
		fsucc Node
	}

	// Branch is a two-way branch on a condition the analysis does not
	// track.
	Branch struct {
		BaseNode
	}

	// Assign is a plain assignment `y = x`, establishing that both names
	// denote the same mapping object.
	Assign struct {
		BaseNode
		Dst *Var
		Src *Var
	}

	// Call invokes the function with the given name. A callee name that
	// does not resolve within the analyzed program is treated as an
	// unknown call.
	Call struct {
		BaseNode
		Res    *Var
		Callee string
		Args   []*Var
	}

	// DynExec is the dynamic-execution primitive. Every variable passed
	// to it has its abstraction forced to ⊤; this is the documented
	// unsoundness carve-out.
	DynExec struct {
		BaseNode
		Args []*Var
	}

	// Opaque is any instruction outside the modeled set. It conservatively
	// invalidates the abstraction of every variable it touches.
	Opaque struct {
		BaseNode
		Res  *Var
		Args []*Var
	}

	// Return leaves the function, optionally yielding a value.
	Return struct {
		BaseNode
		Val *Var
	}
)

// TrueSucc is the successor on the edge where the tested key is contained
// in the dictionary.
func (n *MemberTest) TrueSucc() Node {
	return n.tsucc
}

// FalseSucc is the successor on the edge where the tested key is not
// contained in the dictionary.
func (n *MemberTest) FalseSucc() Node {
	return n.fsucc
}

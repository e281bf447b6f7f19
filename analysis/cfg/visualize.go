package cfg

import (
	"bytes"
	"fmt"
	"log"

	"github.com/cs-au-dk/kea/utils/dot"
)

// toDotGraph lowers the function graph to a renderable dot graph.
func (fn *Function) toDotGraph() *dot.DotGraph {
	nodeToDot := make(map[Node]*dot.DotNode)

	g := &dot.DotGraph{Title: fn.name}

	fn.ForEach(func(n Node) {
		dn := &dot.DotNode{
			ID:    fmt.Sprintf("n%d", n.Index()),
			Attrs: dot.DotAttrs{"label": n.String()},
		}
		switch n.(type) {
		case *DictRead:
			dn.Attrs["fillcolor"] = "lightpink"
		case *MemberTest, *Branch:
			dn.Attrs["shape"] = "diamond"
		}
		nodeToDot[n] = dn
		g.Nodes = append(g.Nodes, dn)
	})

	fn.ForEach(func(n Node) {
		for succ := range n.Successors() {
			e := &dot.DotEdge{From: nodeToDot[n], To: nodeToDot[succ], Attrs: dot.DotAttrs{}}
			if m, ok := n.(*MemberTest); ok {
				switch succ {
				case m.TrueSucc():
					e.Attrs["label"] = "in"
				case m.FalseSucc():
					e.Attrs["label"] = "not in"
				}
			}
			g.Edges = append(g.Edges, e)
		}
	})

	return g
}

// Visualize renders the function graph to an image file named after the
// function, returning the file path.
func (fn *Function) Visualize(prefix string, format string) (string, error) {
	var buf bytes.Buffer
	if err := fn.toDotGraph().WriteDot(&buf); err != nil {
		log.Fatal("rendering CFG for", fn.name, "failed:", err)
	}

	return dot.DotToImage(prefix+fn.name, format, buf.Bytes())
}

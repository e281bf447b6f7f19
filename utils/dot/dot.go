package dot

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/template"

	"github.com/goccy/go-graphviz"
)

const tmplEdge = `{{define "edge" -}}
	{{printf "%q -> %q [ %s ]" .From.ID .To.ID .Attrs}}
{{- end}}`

const tmplNode = `{{define "node" -}}
	{{printf "%q [ %s ]" .ID .Attrs}}
{{- end}}`

const tmplGraph = `digraph ControlFlowGraph {
	label="{{.Title}}";
	labeljust="l";
	fontname="Arial";
	fontsize="14";
	rankdir="TB";

	node [shape="box" style="filled" fillcolor="honeydew" fontname="Verdana" penwidth="1.0" margin="0.05,0.0"];

	{{range .Nodes}}
	{{template "node" .}}
	{{- end}}

	{{- range .Edges}}
	{{template "edge" .}}
	{{- end}}
}
`

// DotNode is a single node in a rendered graph.
type DotNode struct {
	ID    string
	Attrs DotAttrs
}

// DotEdge connects two rendered nodes.
type DotEdge struct {
	From  *DotNode
	To    *DotNode
	Attrs DotAttrs
}

// DotGraph is a renderable directed graph.
type DotGraph struct {
	Title string
	Nodes []*DotNode
	Edges []*DotEdge
}

// DotAttrs are key/value graph attributes.
type DotAttrs map[string]string

func (p DotAttrs) String() string {
	buf := new(bytes.Buffer)
	for k, v := range p {
		fmt.Fprintf(buf, "%s=%q ", k, v)
	}
	return buf.String()
}

// WriteDot renders the graph in the dot format to the given writer.
func (g *DotGraph) WriteDot(w *bytes.Buffer) error {
	t := template.New("dot")
	for _, s := range []string{tmplNode, tmplEdge, tmplGraph} {
		if _, err := t.Parse(s); err != nil {
			return err
		}
	}
	return t.Execute(w, g)
}

// DotToImage renders the given dot source to an image file, returning the
// file path.
func DotToImage(outfname string, format string, dot []byte) (string, error) {
	g := graphviz.New()
	graph, err := graphviz.ParseBytes(dot)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := graph.Close(); err != nil {
			log.Fatal(err)
		}
		g.Close()
	}()
	var img string
	if outfname == "" {
		img = filepath.Join(os.TempDir(), fmt.Sprintf("kea-export.%s", format))
	} else {
		img = fmt.Sprintf("%s.%s", outfname, format)
	}
	if err := g.RenderFilename(graph, graphviz.Format(format), img); err != nil {
		return "", err
	}
	return img, nil
}

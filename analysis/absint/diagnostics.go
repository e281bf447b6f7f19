package absint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cs-au-dk/kea/analysis/cfg"
	"github.com/cs-au-dk/kea/utils"

	"github.com/fatih/color"
	"golang.org/x/tools/container/intsets"
)

var colorize = struct {
	Key  func(...interface{}) string
	Var  func(...interface{}) string
	Fun  func(...interface{}) string
	Bad  func(...interface{}) string
	Good func(...interface{}) string
}{
	Key: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
	Var: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiRed).SprintFunc())(is...)
	},
	Fun: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	Bad: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgRed, color.Bold).SprintFunc())(is...)
	},
	Good: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgGreen).SprintFunc())(is...)
	},
}

// Diagnostic reports one subscript read that is guaranteed to fault:
// every mapping the subscripted variable may denote provably lacks the
// key.
type Diagnostic struct {
	Read *cfg.DictRead
}

// Key gives the missing key of the faulting read.
func (d Diagnostic) Key() string {
	return d.Read.Key.String()
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: missing key %s in %s[%s] at node %d",
		colorize.Fun(d.Read.Function().Name()),
		colorize.Key(d.Read.Key.String()),
		colorize.Var(d.Read.Dict.Name()),
		colorize.Key(d.Read.Key.String()),
		d.Read.Index())
}

// Diagnostics accumulates the reports of one analysis run, deduplicating
// by program point.
type Diagnostics struct {
	seen intsets.Sparse
	list []Diagnostic
}

// Add records a faulting read, unless its program point was already
// reported.
func (ds *Diagnostics) Add(read *cfg.DictRead) bool {
	if !ds.seen.Insert(read.Index()) {
		return false
	}
	ds.list = append(ds.list, Diagnostic{Read: read})
	return true
}

// Empty checks whether no read was reported.
func (ds *Diagnostics) Empty() bool {
	return len(ds.list) == 0
}

// List gives the reports in program point order.
func (ds *Diagnostics) List() []Diagnostic {
	sort.Slice(ds.list, func(i, j int) bool {
		return ds.list[i].Read.Index() < ds.list[j].Read.Index()
	})
	return ds.list
}

func (ds *Diagnostics) String() string {
	if ds.Empty() {
		return colorize.Good("no missing-key accesses")
	}
	strs := make([]string, 0, len(ds.list))
	for _, d := range ds.List() {
		strs = append(strs, colorize.Bad("✗ ")+d.String())
	}
	return strings.Join(strs, "\n")
}

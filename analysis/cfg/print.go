package cfg

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/kea/analysis/defs"
)

func keyList(keys []defs.Key) string {
	strs := make([]string, 0, len(keys))
	for _, k := range keys {
		strs = append(strs, fmt.Sprintf("%s: ·", k))
	}
	return strings.Join(strs, ", ")
}

func (n *Entry) String() string {
	return "[ entry ]"
}

func (n *Exit) String() string {
	return "[ exit ]"
}

func (n *Skip) String() string {
	return "[ skip ]"
}

func (n *Branch) String() string {
	return "[ branch ]"
}

func (n *Param) String() string {
	return fmt.Sprintf("[ param %d: %s ]", n.Pos, n.Var)
}

func (n *MakeDict) String() string {
	parts := []string{}
	if len(n.Entries) > 0 {
		parts = append(parts, keyList(n.Entries))
	}
	for _, s := range n.Spreads {
		parts = append(parts, "**"+s.Name())
	}
	return fmt.Sprintf("%s = {%s}", n.Res, strings.Join(parts, ", "))
}

func (n *MakeDictKw) String() string {
	kws := make([]string, 0, len(n.Names))
	for _, name := range n.Names {
		kws = append(kws, name+"=·")
	}
	return fmt.Sprintf("%s = dict(%s)", n.Res, strings.Join(kws, ", "))
}

func (n *MakeDictCopy) String() string {
	return fmt.Sprintf("%s = dict(%s)", n.Res, n.Src)
}

func (n *MakeDictPairs) String() string {
	if !n.Enumerable {
		return fmt.Sprintf("%s = dict(⟨iterable⟩)", n.Res)
	}
	return fmt.Sprintf("%s = dict([%s])", n.Res, keyList(n.Keys))
}

func (n *MakeDictComp) String() string {
	return fmt.Sprintf("%s = {· for ·}", n.Res)
}

func (n *DictWrite) String() string {
	return fmt.Sprintf("%s[%s] = ·", n.Dict, n.Key)
}

func (n *DictRead) String() string {
	return fmt.Sprintf("%s = %s[%s]", n.Res, n.Dict, n.Key)
}

func (n *MemberTest) String() string {
	return fmt.Sprintf("[ %s in %s ]", n.Key, n.Dict)
}

func (n *Assign) String() string {
	return fmt.Sprintf("%s = %s", n.Dst, n.Src)
}

func (n *Call) String() string {
	args := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, a.Name())
	}
	call := fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", "))
	if n.Res == nil {
		return call
	}
	return fmt.Sprintf("%s = %s", n.Res, call)
}

func (n *DynExec) String() string {
	args := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, a.Name())
	}
	return fmt.Sprintf("exec⟨%s⟩", strings.Join(args, ", "))
}

func (n *Opaque) String() string {
	args := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, a.Name())
	}
	call := fmt.Sprintf("?(%s)", strings.Join(args, ", "))
	if n.Res == nil {
		return call
	}
	return fmt.Sprintf("%s = %s", n.Res, call)
}

func (n *Return) String() string {
	if n.Val == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", n.Val)
}

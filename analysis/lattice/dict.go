package lattice

import (
	"sort"
	"strings"

	"github.com/cs-au-dk/kea/analysis/defs"

	"github.com/benbjohnson/immutable"
)

// DictLattice is the lattice of abstract dicts. Its members record, for
// one mapping instance, which literal keys are known present or absent,
// and whether the full key set is exactly known (closed) or may extend
// beyond the tracked entries (open).
type DictLattice struct {
	lattice
}

var dictLattice = &DictLattice{}

func (l *DictLattice) Dict() *DictLattice {
	return l
}

func (l *DictLattice) Eq(l2 Lattice) bool {
	return l == l2
}

func (*DictLattice) String() string {
	return colorize.Lattice("Dict")
}

func (*DictLattice) Top() Element {
	return elFact.TopDict()
}

func (*DictLattice) Bot() Element {
	return elFact.DictBot()
}

// Dict is a member of the abstract dict lattice. A closed dict's full key
// set is exactly the set of keys with a Present entry; an open dict may
// contain any key beyond its tracked entries.
type Dict struct {
	element
	bot     bool
	open    bool
	entries *immutable.Map[defs.Key, Presence]
}

func emptyEntries() *immutable.Map[defs.Key, Presence] {
	return immutable.NewMap[defs.Key, Presence](defs.KeyHasher())
}

// DictBot yields the ⊥ abstract dict, denoting an unreached value.
func (elementFactory) DictBot() Dict {
	return Dict{element: element{dictLattice}, bot: true}
}

// ClosedDict yields a closed abstract dict whose key set is exactly the
// given literal keys.
func (elementFactory) ClosedDict(keys ...defs.Key) Dict {
	entries := emptyEntries()
	for _, k := range keys {
		entries = entries.Set(k, elFact.Present())
	}
	return Dict{element: element{dictLattice}, entries: entries}
}

// OpenDict yields an open abstract dict where the given literal keys are
// known present, and any further key may or may not be present.
func (elementFactory) OpenDict(keys ...defs.Key) Dict {
	d := elFact.ClosedDict(keys...)
	d.open = true
	return d
}

// TopDict yields the ⊤ abstract dict: an open dict with no tracked
// entries.
func (elementFactory) TopDict() Dict {
	return Dict{element: element{dictLattice}, open: true, entries: emptyEntries()}
}

func (d Dict) Dict() Dict {
	return d
}

// IsBot checks whether the abstract dict is ⊥.
func (d Dict) IsBot() bool {
	return d.bot
}

// IsTop checks whether nothing is known about the dict.
func (d Dict) IsTop() bool {
	return !d.bot && d.open && d.entries.Len() == 0
}

// IsClosed checks whether the dict's full key set is exactly known.
func (d Dict) IsClosed() bool {
	return !d.bot && !d.open
}

// PresenceOf gives the presence fact for the given key. Keys without a
// tracked entry default to Absent in a closed dict and to ⊤ in an open
// one.
func (d Dict) PresenceOf(k defs.Key) Presence {
	if d.bot {
		return presenceLattice.Bot().Presence()
	}
	if p, found := d.entries.Get(k); found {
		return p
	}
	if d.open {
		return presenceLattice.Top().Presence()
	}
	return elFact.Absent()
}

// UpdateEntry records a presence fact for the given literal key without
// changing the dict's openness. It is the narrowing primitive.
func (d Dict) UpdateEntry(k defs.Key, p Presence) Dict {
	if !k.Literal() {
		panic(errUnsupportedOperation)
	}
	if d.bot {
		return d
	}
	d.entries = d.entries.Set(k, p)
	return d
}

// WriteLiteral adds or overwrites the given literal key, preserving the
// dict's openness.
func (d Dict) WriteLiteral(k defs.Key) Dict {
	return d.UpdateEntry(k, elFact.Present())
}

// Demote opens the dict's key set. Present facts survive (writes and
// merges only ever add keys); Absent and unknown facts do not, since the
// uncertain keys may collide with them.
func (d Dict) Demote() Dict {
	if d.bot || d.open {
		return d
	}
	entries := emptyEntries()
	for itr := d.entries.Iterator(); !itr.Done(); {
		k, p, _ := itr.Next()
		if p.IsPresent() {
			entries = entries.Set(k, p)
		}
	}
	d.open = true
	d.entries = entries
	return d
}

// AbsorbPresent copies every Present fact of the other dict into d.
func (d Dict) AbsorbPresent(o Dict) Dict {
	if d.bot || o.bot {
		return d
	}
	for itr := o.entries.Iterator(); !itr.Done(); {
		k, p, _ := itr.Next()
		if p.IsPresent() {
			d.entries = d.entries.Set(k, p)
		}
	}
	return d
}

// Spread merges the entries of o into d the way unpacking o into a
// mapping literal does: keys present in o become present, keys possibly
// in o can no longer be ruled out, and o's openness carries over.
// Spreading a provably empty mapping is the identity.
func (d Dict) Spread(o Dict) Dict {
	if d.bot || o.bot {
		return d
	}
	if !o.IsClosed() {
		return d.Demote().AbsorbPresent(o)
	}
	for itr := o.entries.Iterator(); !itr.Done(); {
		k, p, _ := itr.Next()
		switch {
		case p.IsPresent():
			d = d.UpdateEntry(k, elFact.Present())
		case p.IsTop() && !d.PresenceOf(k).IsPresent():
			d = d.UpdateEntry(k, presenceLattice.Top().Presence())
		}
	}
	return d
}

// IsDefinitelyAbsent is the single predicate gating diagnostic emission:
// it holds only for closed dicts and literal keys whose presence fact is
// Absent. It is deliberately conservative: always false for unknown keys
// and for open dicts.
func (d Dict) IsDefinitelyAbsent(k defs.Key) bool {
	return d.IsClosed() && k.Literal() && d.PresenceOf(k).IsAbsent()
}

// IsDefinitelyPresent holds when the literal key has a Present entry.
func (d Dict) IsDefinitelyPresent(k defs.Key) bool {
	return !d.bot && k.Literal() && d.PresenceOf(k).IsPresent()
}

// presentKeys collects the keys with a Present entry.
func (d Dict) presentKeys() map[defs.Key]struct{} {
	res := make(map[defs.Key]struct{})
	for itr := d.entries.Iterator(); !itr.Done(); {
		k, p, _ := itr.Next()
		if p.IsPresent() {
			res[k] = struct{}{}
		}
	}
	return res
}

func samePresentKeys(d1, d2 Dict) bool {
	k1, k2 := d1.presentKeys(), d2.presentKeys()
	if len(k1) != len(k2) {
		return false
	}
	for k := range k1 {
		if _, found := k2[k]; !found {
			return false
		}
	}
	return true
}

// entryKeys collects the union of tracked keys of both dicts.
func entryKeys(d1, d2 Dict) map[defs.Key]struct{} {
	res := make(map[defs.Key]struct{})
	for itr := d1.entries.Iterator(); !itr.Done(); {
		k, _, _ := itr.Next()
		res[k] = struct{}{}
	}
	for itr := d2.entries.Iterator(); !itr.Done(); {
		k, _, _ := itr.Next()
		res[k] = struct{}{}
	}
	return res
}

// Leq computes d ⊑ o. Performs lattice dynamic type checking.
func (e1 Dict) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes d ⊑ o.
func (e1 Dict) leq(e2 Element) bool {
	d2, ok := e2.(Dict)
	if !ok {
		panic(errPatternMatch(e2))
	}

	switch {
	case e1.bot:
		return true
	case d2.bot:
		return false
	case e1.open && !d2.open:
		// An open dict admits keys a closed dict rules out.
		return false
	}

	for k := range entryKeys(e1, d2) {
		if !e1.PresenceOf(k).leq(d2.PresenceOf(k)) {
			return false
		}
	}
	return true
}

// Geq computes d ⊒ o. Performs lattice dynamic type checking.
func (e1 Dict) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes d ⊒ o.
func (e1 Dict) geq(e2 Element) bool {
	return e2.leq(e1)
}

// Eq computes d = o. Performs lattice dynamic type checking.
func (e1 Dict) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes d = o.
func (e1 Dict) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Join computes d ⊔ o. Performs lattice dynamic type checking.
func (e1 Dict) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes d ⊔ o.
func (e1 Dict) join(e2 Element) Element {
	d2, ok := e2.(Dict)
	if !ok {
		panic(errPatternMatch(e2))
	}
	return e1.MonoJoin(d2)
}

// MonoJoin is a monomorphic variant of d ⊔ o for abstract dicts.
//
// Two closed dicts with identical key sets join to a closed dict of the
// key-wise presence joins. Any other combination yields an open dict:
// keys guaranteed by only one operand are no longer guaranteed on the
// merged path.
func (d1 Dict) MonoJoin(d2 Dict) Dict {
	switch {
	case d1.bot:
		return d2
	case d2.bot:
		return d1
	}

	if d1.IsClosed() && d2.IsClosed() {
		if samePresentKeys(d1, d2) {
			entries := emptyEntries()
			for k := range entryKeys(d1, d2) {
				entries = entries.Set(k, d1.PresenceOf(k).MonoJoin(d2.PresenceOf(k)))
			}
			return Dict{element: d1.element, entries: entries}
		}

		// Tracked facts survive only for keys common to both operands.
		entries := emptyEntries()
		for itr := d1.entries.Iterator(); !itr.Done(); {
			k, p1, _ := itr.Next()
			if p2, found := d2.entries.Get(k); found {
				if p := p1.MonoJoin(p2); !p.IsTop() {
					entries = entries.Set(k, p)
				}
			}
		}
		return Dict{element: d1.element, open: true, entries: entries}
	}

	entries := emptyEntries()
	for k := range entryKeys(d1, d2) {
		if p := d1.PresenceOf(k).MonoJoin(d2.PresenceOf(k)); !p.IsTop() && !p.IsBot() {
			entries = entries.Set(k, p)
		}
	}
	return Dict{element: d1.element, open: true, entries: entries}
}

// Meet computes d ⊓ o. Performs lattice dynamic type checking.
func (e1 Dict) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes d ⊓ o.
func (e1 Dict) meet(e2 Element) Element {
	d2, ok := e2.(Dict)
	if !ok {
		panic(errPatternMatch(e2))
	}

	switch {
	case e1.bot:
		return e1
	case d2.bot:
		return d2
	}

	res := Dict{
		element: e1.element,
		open:    e1.open && d2.open,
		entries: emptyEntries(),
	}
	for k := range entryKeys(e1, d2) {
		p := e1.PresenceOf(k).meet(d2.PresenceOf(k)).Presence()
		if p.IsBot() {
			return elFact.DictBot()
		}
		res.entries = res.entries.Set(k, p)
	}
	return res
}

func (d Dict) String() string {
	if d.bot {
		return colorize.Element("⊥")
	}
	if d.IsTop() {
		return colorize.Element("T")
	}

	strs := []string{}
	for itr := d.entries.Iterator(); !itr.Done(); {
		k, p, _ := itr.Next()
		strs = append(strs, colorize.Key(k.String())+" ↦ "+p.String())
	}
	sort.Strings(strs)

	if d.open {
		strs = append(strs, "…")
	}
	return "⟨" + strings.Join(strs, ", ") + "⟩"
}

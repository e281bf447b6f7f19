package lattice

// PresenceLattice is the flat lattice over the presence facts a literal
// key may have in an abstract dict:
//
//	      ⊤
//	    /   \
//	Present Absent
//	    \   /
//	      ⊥
type PresenceLattice struct {
	lattice
}

var presenceLattice = &PresenceLattice{}

func (l *PresenceLattice) Presence() *PresenceLattice {
	return l
}

func (l *PresenceLattice) Eq(l2 Lattice) bool {
	return l == l2
}

func (*PresenceLattice) String() string {
	return colorize.Lattice("Presence")
}

func (*PresenceLattice) Top() Element {
	return Presence{element{presenceLattice}, presenceTop}
}

func (*PresenceLattice) Bot() Element {
	return Presence{element{presenceLattice}, presenceBot}
}

type presenceStatus uint8

const (
	presenceBot presenceStatus = iota
	present
	absent
	presenceTop
)

// Presence is a member of the presence lattice.
type Presence struct {
	element
	status presenceStatus
}

// Present yields the presence fact of a key known to be in a dict.
func (elementFactory) Present() Presence {
	return Presence{element{presenceLattice}, present}
}

// Absent yields the presence fact of a key known not to be in a dict.
func (elementFactory) Absent() Presence {
	return Presence{element{presenceLattice}, absent}
}

func (p Presence) Presence() Presence {
	return p
}

// IsPresent is true when the key is known present.
func (p Presence) IsPresent() bool {
	return p.status == present
}

// IsAbsent is true when the key is known absent.
func (p Presence) IsAbsent() bool {
	return p.status == absent
}

// IsBot checks whether the presence fact is ⊥.
func (p Presence) IsBot() bool {
	return p.status == presenceBot
}

// IsTop checks whether the presence fact is unknown.
func (p Presence) IsTop() bool {
	return p.status == presenceTop
}

func (p Presence) String() string {
	switch p.status {
	case presenceBot:
		return colorize.Element("⊥")
	case present:
		return colorize.Element("P")
	case absent:
		return colorize.Element("A")
	default:
		return colorize.Element("T")
	}
}

// Leq computes p ⊑ o. Performs lattice dynamic type checking.
func (e1 Presence) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes p ⊑ o.
func (e1 Presence) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Presence:
		return e1.status == presenceBot ||
			e2.status == presenceTop ||
			e1.status == e2.status
	default:
		panic(errPatternMatch(e2))
	}
}

// Geq computes p ⊒ o. Performs lattice dynamic type checking.
func (e1 Presence) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes p ⊒ o.
func (e1 Presence) geq(e2 Element) bool {
	return e2.leq(e1)
}

// Eq computes p = o. Performs lattice dynamic type checking.
func (e1 Presence) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes p = o.
func (e1 Presence) eq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Presence:
		return e1.status == e2.status
	default:
		panic(errPatternMatch(e2))
	}
}

// Join computes p ⊔ o. Performs lattice dynamic type checking.
func (e1 Presence) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes p ⊔ o.
func (e1 Presence) join(e2 Element) Element {
	return e1.MonoJoin(e2.Presence())
}

// MonoJoin is a monomorphic variant of p ⊔ o for presence facts.
func (e1 Presence) MonoJoin(e2 Presence) Presence {
	switch {
	case e1.status == e2.status:
		return e1
	case e1.status == presenceBot:
		return e2
	case e2.status == presenceBot:
		return e1
	default:
		return Presence{e1.element, presenceTop}
	}
}

// Meet computes p ⊓ o. Performs lattice dynamic type checking.
func (e1 Presence) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes p ⊓ o.
func (e1 Presence) meet(e2 Element) Element {
	o := e2.Presence()
	switch {
	case e1.status == o.status:
		return e1
	case e1.status == presenceTop:
		return o
	case o.status == presenceTop:
		return e1
	default:
		return Presence{e1.element, presenceBot}
	}
}

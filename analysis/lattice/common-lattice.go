package lattice

import (
	"log"
)

// Lattice is the common interface of all lattices in the analysis.
type Lattice interface {
	Top() Element
	Bot() Element

	String() string
	Eq(Lattice) bool

	// These methods allow for quick type conversions.
	// Suitable, if you know what lattice type to expect.
	Presence() *PresenceLattice
	Dict() *DictLattice
	PointsTo() *PointsToLattice
	State() *StateLattice
	Summary() *SummaryLattice
}

type lattice struct{}

func (*lattice) Presence() *PresenceLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Dict() *DictLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) PointsTo() *PointsToLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) State() *StateLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Summary() *SummaryLattice {
	panic(errUnsupportedTypeConversion)
}

func checkLatticeMatch(l1, l2 Lattice, binop string) {
	if !l1.Eq(l2) {
		log.Fatal(
			"Lattice error - Invalid ", binop,
			"\nOperand 1 ∈\n",
			l1.String(),
			"\nOperand 2 ∈\n",
			l2.String(),
		)
	}
}

package lattice

// factory is the entry point for constructing lattices and their
// members. Obtain one via Create.
type factory struct{}

// Create gives the lattice and element factory facade.
func Create() factory {
	return factory{}
}

// Lattice gives the factory for lattices.
func (factory) Lattice() latticeFactory {
	return latFact
}

// Element gives the factory for lattice elements.
func (factory) Element() elementFactory {
	return elFact
}

// Elements is shorthand for Create().Element().
func Elements() elementFactory {
	return elFact
}

type latticeFactory struct{}

var latFact latticeFactory

func (latticeFactory) Presence() *PresenceLattice {
	return presenceLattice
}

func (latticeFactory) Dict() *DictLattice {
	return dictLattice
}

func (latticeFactory) PointsTo() *PointsToLattice {
	return pointsToLattice
}

func (latticeFactory) State() *StateLattice {
	return stateLattice
}

func (latticeFactory) Summary() *SummaryLattice {
	return summaryLattice
}

type elementFactory struct{}

var elFact elementFactory

package absint

import (
	"github.com/cs-au-dk/kea/analysis/cfg"
	"github.com/cs-au-dk/kea/analysis/lattice"
)

// narrow refines the state along one edge of a membership test,
// requiring a literal key. A variable denoting exactly one site gets the
// strong fact on both edges: Present where the key is contained, Absent
// where it is not. With several candidate sites the contained edge still
// joins Present into every cell's entry for the key; the join must be
// weak because each cell is shared with paths the test says nothing
// about, but it suffices to rule the key out of definite absence on
// every site the variable may denote. The uncontained edge stays
// unrefined in that case: Absent holds for the denoted cell only, not
// for each candidate.
func narrow(s lattice.State, m *cfg.MemberTest, contained bool) lattice.State {
	if s.IsBot() || !m.Key.Literal() {
		return s
	}

	pt := s.Lookup(m.Dict)
	if pt.IsTop() || pt.Empty() {
		return s
	}

	if site, single := pt.Singleton(); single {
		d := s.GetCell(site)
		if d.IsBot() {
			return s
		}
		if contained {
			d = d.UpdateEntry(m.Key, elFact.Present())
		} else {
			d = d.UpdateEntry(m.Key, elFact.Absent())
		}
		return s.UpdateCell(site, d)
	}

	if !contained {
		return s
	}
	for _, site := range pt.Sites() {
		d := s.GetCell(site)
		if d.IsBot() {
			continue
		}
		d = d.UpdateEntry(m.Key, d.PresenceOf(m.Key).MonoJoin(elFact.Present()))
		s = s.UpdateCell(site, d)
	}
	return s
}

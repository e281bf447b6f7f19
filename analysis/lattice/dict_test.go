package lattice

import (
	"testing"

	"github.com/cs-au-dk/kea/analysis/defs"
)

var (
	kA = defs.ConstString("a")
	kB = defs.ConstString("b")
	kN = defs.ConstInt(1)
)

func TestDictJoinClosedSameKeys(t *testing.T) {
	d1 := elFact.ClosedDict(kA, kB)
	d2 := elFact.ClosedDict(kA, kB)

	joined := d1.MonoJoin(d2)
	if !joined.IsClosed() {
		t.Errorf("%s ⊔ %s = %s, expected a closed dict", d1, d2, joined)
	}
	if !joined.PresenceOf(kA).IsPresent() || !joined.PresenceOf(kB).IsPresent() {
		t.Errorf("%s lost a present key", joined)
	}
	if !joined.IsDefinitelyAbsent(kN) {
		t.Errorf("%s should still rule out %s", joined, kN)
	}
}

func TestDictJoinClosedDifferentKeys(t *testing.T) {
	d1 := elFact.ClosedDict(kA)
	d2 := elFact.ClosedDict(kB)

	joined := d1.MonoJoin(d2)
	if joined.IsClosed() {
		t.Errorf("%s ⊔ %s = %s, expected an open dict", d1, d2, joined)
	}
	// Neither key is guaranteed on the merged path.
	if joined.PresenceOf(kA).IsPresent() || joined.PresenceOf(kB).IsPresent() {
		t.Errorf("%s guarantees a key of only one operand", joined)
	}
	if joined.IsDefinitelyAbsent(kN) {
		t.Errorf("%s is open but still rules out %s", joined, kN)
	}
}

func TestDictJoinOpenOperand(t *testing.T) {
	d1 := elFact.ClosedDict(kA)
	d2 := elFact.OpenDict(kA)

	joined := d1.MonoJoin(d2)
	if joined.IsClosed() {
		t.Errorf("%s ⊔ %s = %s, expected an open dict", d1, d2, joined)
	}
	if !joined.PresenceOf(kA).IsPresent() {
		t.Errorf("%s lost a key present in both operands", joined)
	}
}

func TestDictJoinBounds(t *testing.T) {
	dicts := []Dict{
		elFact.DictBot(),
		elFact.ClosedDict(),
		elFact.ClosedDict(kA),
		elFact.ClosedDict(kA, kB),
		elFact.OpenDict(kA),
		elFact.TopDict(),
	}

	for _, d1 := range dicts {
		for _, d2 := range dicts {
			joined := d1.MonoJoin(d2)
			if !d1.Leq(joined) || !d2.Leq(joined) {
				t.Errorf("%s ⊔ %s = %s is not an upper bound", d1, d2, joined)
			}
			if !joined.eq(d2.MonoJoin(d1)) {
				t.Errorf("%s ⊔ %s is not commutative", d1, d2)
			}
		}
		if !d1.MonoJoin(d1).eq(d1) {
			t.Errorf("%s ⊔ %s is not idempotent", d1, d1)
		}
	}
}

func TestDictLeq(t *testing.T) {
	tests := []struct {
		a, b     Dict
		expected bool
	}{
		{elFact.DictBot(), elFact.ClosedDict(), true},
		{elFact.ClosedDict(kA), elFact.TopDict(), true},
		{elFact.ClosedDict(kA), elFact.OpenDict(kA), true},
		{elFact.OpenDict(kA), elFact.ClosedDict(kA), false},
		{elFact.ClosedDict(kA), elFact.ClosedDict(kA, kB), false},
		{elFact.TopDict(), elFact.OpenDict(kA), false},
		{elFact.ClosedDict(), elFact.ClosedDict(), true},
	}

	for _, test := range tests {
		res := test.a.Leq(test.b)
		if res != test.expected {
			t.Errorf("%s ⊑ %s = %v, expected %v\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊑ %s = %v\n", test.a, test.b, res)
		}
	}
}

func TestDictDemote(t *testing.T) {
	d := elFact.ClosedDict(kA).UpdateEntry(kB, elFact.Absent()).Demote()

	if d.IsClosed() {
		t.Errorf("%s should be open after demotion", d)
	}
	if !d.PresenceOf(kA).IsPresent() {
		t.Errorf("%s lost a present key during demotion", d)
	}
	// Absence facts cannot survive an unknown-key write.
	if !d.PresenceOf(kB).IsTop() {
		t.Errorf("%s kept the absence of %s during demotion", d, kB)
	}
	if d.IsDefinitelyAbsent(kN) {
		t.Errorf("%s is open but still rules out %s", d, kN)
	}
}

func TestDictSpread(t *testing.T) {
	empty := elFact.ClosedDict()

	if d := elFact.ClosedDict(kA).Spread(empty); !d.IsClosed() {
		t.Errorf("spreading a provably empty dict opened %s", d)
	}

	d := elFact.ClosedDict(kA).Spread(elFact.ClosedDict(kB))
	if !d.IsClosed() || !d.PresenceOf(kB).IsPresent() || !d.PresenceOf(kA).IsPresent() {
		t.Errorf("closed ⊕ closed spread lost precision: %s", d)
	}

	d = elFact.ClosedDict(kA).Spread(elFact.TopDict())
	if d.IsClosed() {
		t.Errorf("spreading ⊤ should open the dict: %s", d)
	}
	if !d.PresenceOf(kA).IsPresent() {
		t.Errorf("spreading ⊤ lost the present key of %s", d)
	}
}

func TestDictDefinitelyAbsent(t *testing.T) {
	closed := elFact.ClosedDict(kA)
	tests := []struct {
		d        Dict
		k        defs.Key
		expected bool
	}{
		{closed, kB, true},
		{closed, kN, true},
		{closed, kA, false},
		{closed, defs.Unknown{}, false},
		{elFact.OpenDict(kA), kB, false},
		{elFact.TopDict(), kB, false},
		{elFact.DictBot(), kB, false},
		{closed.WriteLiteral(kB), kB, false},
	}

	for _, test := range tests {
		if res := test.d.IsDefinitelyAbsent(test.k); res != test.expected {
			t.Errorf("definitely-absent(%s, %s) = %v, expected %v",
				test.d, test.k, res, test.expected)
		}
	}
}

func TestDictNarrowedEntryOverridesDefault(t *testing.T) {
	// A membership guard can assert presence of a key a closed dict
	// would otherwise rule out.
	d := elFact.ClosedDict(kA).UpdateEntry(kB, elFact.Present())
	if !d.IsClosed() {
		t.Errorf("narrowing should not open %s", d)
	}
	if d.IsDefinitelyAbsent(kB) {
		t.Errorf("%s rules out a key asserted present", d)
	}
}

package lattice

import "testing"

var (
	pBot = presenceLattice.Bot().Presence()
	pTop = presenceLattice.Top().Presence()
	pP   = Create().Element().Present()
	pA   = Create().Element().Absent()
)

func TestPresenceJoin(t *testing.T) {
	tests := []struct{ a, b, expected Presence }{
		{pBot, pBot, pBot},
		{pBot, pP, pP},
		{pP, pBot, pP},
		{pP, pP, pP},
		{pA, pA, pA},
		{pP, pA, pTop},
		{pA, pP, pTop},
		{pTop, pA, pTop},
		{pBot, pTop, pTop},
	}

	for _, test := range tests {
		res := test.a.MonoJoin(test.b)
		if !res.eq(test.expected) {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊔ %s = %s\n", test.a, test.b, res)
		}
	}
}

func TestPresenceLeq(t *testing.T) {
	tests := []struct {
		a, b     Presence
		expected bool
	}{
		{pBot, pBot, true},
		{pBot, pA, true},
		{pP, pTop, true},
		{pA, pTop, true},
		{pP, pA, false},
		{pA, pP, false},
		{pTop, pP, false},
		{pP, pP, true},
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

func TestPresenceMeet(t *testing.T) {
	tests := []struct{ a, b, expected Presence }{
		{pTop, pP, pP},
		{pP, pTop, pP},
		{pP, pA, pBot},
		{pA, pA, pA},
		{pBot, pP, pBot},
	}

	for _, test := range tests {
		res := test.a.Meet(test.b).Presence()
		if !res.eq(test.expected) {
			t.Errorf("%s ⊓ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
	}
}

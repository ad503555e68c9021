package gamelog

import (
	"math"
	"testing"
)

func TestParseTOI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    RawTOI
		policy TOIPolicy
		want   *float64
	}{
		{name: "clock", raw: TOIFromText("07:30"), want: ptr(7.5)},
		{name: "zero clock", raw: TOIFromText("00:00"), want: ptr(0)},
		{name: "padded clock", raw: TOIFromText(" 18:45 "), want: ptr(18.75)},
		{name: "long shift", raw: TOIFromText("105:06"), want: ptr(105.1)},
		{name: "missing", raw: MissingTOI(), want: nil},
		{name: "missing ignores fallback", raw: MissingTOI(), policy: FixedTOIFallback(20), want: nil},
		{name: "numeric passthrough", raw: TOIFromNumber(20.0), want: ptr(20.0)},
		{name: "numeric nan is missing", raw: TOIFromNumber(math.NaN()), want: nil},
		{name: "no colon", raw: TOIFromText("1830"), want: nil},
		{name: "no colon with fallback", raw: TOIFromText("1830"), policy: FixedTOIFallback(20), want: ptr(20)},
		{name: "two colons", raw: TOIFromText("1:02:03"), want: nil},
		{name: "non numeric", raw: TOIFromText("ab:cd"), want: nil},
		{name: "seconds out of range", raw: TOIFromText("12:75"), want: nil},
		{name: "negative minutes", raw: TOIFromText("-3:10"), want: nil},
		{name: "malformed with fallback", raw: TOIFromText("x:10"), policy: FixedTOIFallback(20), want: ptr(20)},
		{name: "empty", raw: TOIFromText(""), want: nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ParseTOI(tc.raw, tc.policy)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got=%v", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %v, got nil", *tc.want)
			}
			if math.Abs(*got-*tc.want) > 1e-9 {
				t.Fatalf("unexpected minutes: got=%v want=%v", *got, *tc.want)
			}
		})
	}
}

func TestParseTOI_IsDeterministic(t *testing.T) {
	t.Parallel()

	policy := FixedTOIFallback(20)
	for _, raw := range []RawTOI{TOIFromText("16:20"), TOIFromText("bad"), TOIFromNumber(14.2), MissingTOI()} {
		first := ParseTOI(raw, policy)
		for i := 0; i < 5; i++ {
			again := ParseTOI(raw, policy)
			if (first == nil) != (again == nil) || (first != nil && *first != *again) {
				t.Fatalf("ParseTOI(%q) not deterministic", raw.String())
			}
		}
	}
}

func TestParseTOI_FallbackIsNotShared(t *testing.T) {
	t.Parallel()

	policy := FixedTOIFallback(20)
	first := ParseTOI(TOIFromText("bad"), policy)
	*first = 99

	second := ParseTOI(TOIFromText("bad"), policy)
	if *second != 20 {
		t.Fatalf("fallback leaked mutation: got=%v", *second)
	}
}

func ptr(v float64) *float64 {
	return &v
}

package utils

import "testing"

func TestOffset(t *testing.T) {
	if got := Offset(1, 10); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := Offset(3, 10); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
	if got := Offset(0, 10); got != 0 {
		t.Fatalf("expected page clamp to 1, got %d", got)
	}
}

func TestValidPage(t *testing.T) {
	if !ValidPage(1, 100) {
		t.Fatalf("expected 1/100 valid")
	}
	if ValidPage(0, 10) || ValidPage(1, 0) || ValidPage(1, 101) {
		t.Fatalf("expected out of range values to be rejected")
	}
}

func TestPageSlice(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	p := PageSlice(items, 3, 10)
	if len(p) != 5 || p[0] != 21 || p[4] != 25 {
		t.Fatalf("unexpected last page: %v", p)
	}
	if p := PageSlice(items, 4, 10); p == nil || len(p) != 0 {
		t.Fatalf("expected empty non-nil page, got %v", p)
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	if got := LikePattern(`50%_a\`); got != `%50\%\_a\\%` {
		t.Fatalf("unexpected pattern: %s", got)
	}
	if got := LikePattern(""); got != "%%" {
		t.Fatalf("unexpected empty pattern: %s", got)
	}
}

package id

import (
	"strings"
	"testing"
	"time"
)

func TestRunIDGenerator_NewID(t *testing.T) {
	g := NewRunIDGenerator()
	g.now = func() time.Time {
		return time.Date(2026, 3, 1, 20, 0, 0, 0, time.FixedZone("AEDT", 11*3600))
	}

	first, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	if !strings.HasPrefix(first, "20260301T090000Z-") {
		t.Fatalf("unexpected id prefix: %s", first)
	}
	if len(first) != len("20260301T090000Z-")+8 {
		t.Fatalf("unexpected id length: %s", first)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
}

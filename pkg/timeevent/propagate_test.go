package timeevent

import (
	"testing"

	"skirace/pkg/domain"
)

func finishers(n int) []Finisher {
	out := make([]Finisher, n)
	for i := range out {
		out[i] = Finisher{TimeEventID: string(rune('a' + i)), Bib: i + 1}
	}
	return out
}

func TestPropagateSplitsByBranchCount(t *testing.T) {
	rule := domain.Rule{
		{Target: "FA", Count: 2, Offset: 0},
		{Target: "FB", Count: 2, Offset: 0},
	}
	targets := Propagate(rule, finishers(4))

	if len(targets) != 4 {
		t.Fatalf("want 4 targets, got %d", len(targets))
	}
	for i, want := range []string{"FA", "FA", "FB", "FB"} {
		if targets[i].Letter != want {
			t.Errorf("target %d: want letter %q, got %q", i, want, targets[i].Letter)
		}
	}
}

func TestPropagateSkipsOUT(t *testing.T) {
	rule := domain.Rule{
		{Target: "FA", Count: 1, Offset: 0},
		{Target: "OUT", Count: 3, Offset: 0},
	}
	targets := Propagate(rule, finishers(4))

	if len(targets) != 1 {
		t.Fatalf("want 1 target (OUT branch dropped), got %d", len(targets))
	}
	if targets[0].Letter != "FA" || targets[0].Finisher.Bib != 1 {
		t.Errorf("unexpected survivor: %+v", targets[0])
	}
}

func TestPropagateHonorsOffset(t *testing.T) {
	rule := domain.Rule{
		{Target: "SA", Count: 2, Offset: 4},
	}
	targets := Propagate(rule, finishers(2))

	if len(targets) != 2 {
		t.Fatalf("want 2 targets, got %d", len(targets))
	}
	if targets[0].GlobalPosition != 5 || targets[1].GlobalPosition != 6 {
		t.Errorf("want global positions 5,6, got %d,%d", targets[0].GlobalPosition, targets[1].GlobalPosition)
	}
}

func TestPropagateCapsCountAtRemaining(t *testing.T) {
	rule := domain.Rule{
		{Target: "FA", Count: 10, Offset: 0},
		{Target: "FB", Count: 10, Offset: 0},
	}
	targets := Propagate(rule, finishers(3))

	if len(targets) != 3 {
		t.Fatalf("want 3 targets (all claimed by first branch), got %d", len(targets))
	}
	for _, tg := range targets {
		if tg.Letter != "FA" {
			t.Errorf("want all 3 finishers claimed by FA, got %q for bib %d", tg.Letter, tg.Finisher.Bib)
		}
	}
}

func TestPropagatePreservesFinisherOrder(t *testing.T) {
	rule := domain.Rule{
		{Target: "FA", Count: 3, Offset: 0},
	}
	in := finishers(3)
	targets := Propagate(rule, in)

	for i, tg := range targets {
		if tg.Finisher.Bib != in[i].Bib {
			t.Errorf("position %d: want bib %d, got %d", i, in[i].Bib, tg.Finisher.Bib)
		}
		if tg.GlobalPosition != i+1 {
			t.Errorf("position %d: want global position %d, got %d", i, i+1, tg.GlobalPosition)
		}
	}
}

package raceplan

import (
	"testing"
	"time"

	"skirace/pkg/domain"
)

func TestClassifyFormat(t *testing.T) {
	cases := []struct {
		name, startingOrder string
		want                Kind
	}{
		{"Interval Start", "", KindIntervalStart},
		{"anything", "interval_start", KindIntervalStart},
		{"Individual Sprint", "", KindIndividualSprint},
		{"Team Sprint", "", KindTeamSprint},
		{"Relay", "", KindRelay},
		{"Skiathlon", "", KindSkiathlon},
		{"Pursuit", "", KindPursuit},
		{"Mass Start", "", KindMassStart},
	}
	for _, c := range cases {
		got, err := ClassifyFormat(&domain.CompetitionFormat{Name: c.name, StartingOrder: c.startingOrder})
		if err != nil {
			t.Errorf("%q: unexpected error: %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%q: want %q, got %q", c.name, c.want, got)
		}
	}
}

func TestClassifyFormatRejectsUnknown(t *testing.T) {
	if _, err := ClassifyFormat(&domain.CompetitionFormat{Name: "underwater hockey"}); err == nil {
		t.Fatal("want an error for an unrecognized format name")
	}
}

func baseEvent() *domain.Event {
	return &domain.Event{ID: "ev1", DateOfEvent: "2026-03-01", TimeOfEvent: "10:00:00"}
}

func TestGenerateRejectsEventWithNoRaceclasses(t *testing.T) {
	_, _, err := Generate(baseEvent(), &domain.CompetitionFormat{Name: "mass_start"}, nil)
	if err == nil {
		t.Fatal("want an error for an event with no raceclasses")
	}
}

func TestGenerateIntervalStartOneRacePerClass(t *testing.T) {
	format := &domain.CompetitionFormat{Name: "interval_start", Intervals: 30 * time.Second, TimeBetweenClasses: 5 * time.Minute}
	rcs := []domain.Raceclass{
		{Name: "M", NoOfContestants: 20, Order: 1},
		{Name: "K", NoOfContestants: 15, Order: 2},
	}

	plan, races, err := Generate(baseEvent(), format, rcs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(races) != 2 {
		t.Fatalf("want one race per raceclass, got %d", len(races))
	}
	if plan.EventID != "ev1" {
		t.Errorf("want plan.event_id=ev1, got %q", plan.EventID)
	}
	if !races[1].StartTime.After(races[0].StartTime) {
		t.Error("want the second raceclass's race to start strictly after the first's")
	}
	if races[0].Order >= races[1].Order {
		t.Error("want strictly increasing Order across the event")
	}
}

func TestGenerateMassStartSingleRaceCapsAtFormatMax(t *testing.T) {
	format := &domain.CompetitionFormat{Name: "mass_start", MaxNoOfContestantsInRace: 50}
	rcs := []domain.Raceclass{{Name: "M", NoOfContestants: 120, Order: 1}}

	_, races, err := Generate(baseEvent(), format, rcs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(races) != 1 {
		t.Fatalf("want exactly one race, got %d", len(races))
	}
	if races[0].MaxNoOfContestants != 50 {
		t.Errorf("want max_no_of_contestants capped to the format's 50, got %d", races[0].MaxNoOfContestants)
	}
}

func TestGenerateIndividualSprintBuildsFullBracketWithOffsets(t *testing.T) {
	format := &domain.CompetitionFormat{
		Name:              "individual_sprint",
		TimeBetweenHeats:  30 * time.Second,
		TimeBetweenRounds: 10 * time.Minute,
	}
	rcs := []domain.Raceclass{{Name: "M", NoOfContestants: 32, Order: 1, Ranking: true}}

	_, races, err := Generate(baseEvent(), format, rcs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var qHeats, saHeats, scHeats, finals []*domain.Race
	for _, r := range races {
		switch {
		case r.Round == domain.RoundQ:
			qHeats = append(qHeats, r)
		case r.Round == domain.RoundS && r.Index == "A":
			saHeats = append(saHeats, r)
		case r.Round == domain.RoundS && r.Index == "C":
			scHeats = append(scHeats, r)
		case r.Round == domain.RoundF:
			finals = append(finals, r)
		}
	}

	if len(qHeats) != 4 {
		t.Fatalf("N=32 row has 4 Q heats, got %d", len(qHeats))
	}
	if len(saHeats) != 2 {
		t.Fatalf("N=32 row has 2 SA heats, got %d", len(saHeats))
	}
	if len(scHeats) != 2 {
		t.Fatalf("N=32 row has 2 SC heats, got %d", len(scHeats))
	}
	if len(finals) != 3 {
		t.Fatalf("N=32 row has FA, FB, FC, got %d", len(finals))
	}

	// The second Q heat's rule offsets must continue where the first left
	// off: heat 1 sends 4 to SA (offset 0) and the rest to SC (offset 0);
	// heat 2's SA branch should then carry offset 4.
	var secondQ *domain.Race
	for _, r := range qHeats {
		if r.Heat == 2 {
			secondQ = r
		}
	}
	if secondQ == nil {
		t.Fatal("expected a Q heat with Heat=2")
	}
	var sawSAOffset bool
	for _, branch := range secondQ.Rule {
		if branch.Target == "SA" {
			sawSAOffset = true
			if branch.Offset != 4 {
				t.Errorf("want Q heat 2's SA offset to continue at 4, got %d", branch.Offset)
			}
		}
	}
	if !sawSAOffset {
		t.Fatal("Q heat's rule should include an SA branch")
	}
}

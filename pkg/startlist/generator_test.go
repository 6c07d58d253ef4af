package startlist

import (
	"testing"
	"time"

	"skirace/pkg/domain"
)

func TestGenerateRejectsContestantWithNoBib(t *testing.T) {
	event := &domain.Event{ID: "ev1"}
	format := &domain.CompetitionFormat{}
	rcs := []domain.Raceclass{{Name: "M", NoOfContestants: 1}}
	races := []*domain.Race{{ID: "r1", Raceclass: "M", Datatype: domain.DatatypeMassStart, StartTime: time.Now()}}
	contestants := []domain.Contestant{{ID: "c1", Raceclass: "M", Bib: 0}}

	_, err := Generate(event, format, rcs, races, contestants)
	if err == nil {
		t.Fatal("want a validation error for a contestant with no bib")
	}
}

func TestGenerateIntervalStartSpacesStartTimesByPosition(t *testing.T) {
	event := &domain.Event{ID: "ev1"}
	format := &domain.CompetitionFormat{Intervals: 30 * time.Second}
	rcs := []domain.Raceclass{{Name: "M", NoOfContestants: 3}}
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	races := []*domain.Race{{ID: "r1", Raceclass: "M", Datatype: domain.DatatypeIntervalStart, StartTime: start, MaxNoOfContestants: 3}}
	contestants := []domain.Contestant{
		{ID: "c1", Raceclass: "M", Bib: 1, SeedingPoints: 10, RegistrationNo: 1},
		{ID: "c2", Raceclass: "M", Bib: 2, SeedingPoints: 20, RegistrationNo: 2},
		{ID: "c3", Raceclass: "M", Bib: 3, SeedingPoints: 30, RegistrationNo: 3},
	}

	res, err := Generate(event, format, rcs, races, contestants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.StartEntries) != 3 {
		t.Fatalf("want 3 start entries, got %d", len(res.StartEntries))
	}

	// Higher seeding points start first (position 1).
	byBib := map[int]*domain.StartEntry{}
	for _, e := range res.StartEntries {
		byBib[e.Bib] = e
	}
	if byBib[3].StartingPosition != 1 {
		t.Errorf("want the highest-seeded contestant (bib 3) at position 1, got %d", byBib[3].StartingPosition)
	}
	if !byBib[3].ScheduledStartTime.Equal(start) {
		t.Errorf("want position 1's scheduled start time to equal the race start time, got %v", byBib[3].ScheduledStartTime)
	}
	if !byBib[2].ScheduledStartTime.Equal(start.Add(30 * time.Second)) {
		t.Errorf("want position 2 to start 30s after position 1, got %v", byBib[2].ScheduledStartTime)
	}
	if !byBib[1].ScheduledStartTime.Equal(start.Add(60 * time.Second)) {
		t.Errorf("want position 3 to start 60s after position 1, got %v", byBib[1].ScheduledStartTime)
	}

	if len(res.UpdatedRaces) != 1 || res.UpdatedRaces[0].NoOfContestants != 3 {
		t.Errorf("want the race's no_of_contestants updated to 3")
	}
	if res.Startlist.NoOfContestants != 3 {
		t.Errorf("want startlist.no_of_contestants=3, got %d", res.Startlist.NoOfContestants)
	}
}

func TestSeedSerpentineSnakesAcrossHeats(t *testing.T) {
	roster := make([]domain.Contestant, 6)
	for i := range roster {
		roster[i] = domain.Contestant{Bib: i + 1}
	}
	heats := seedSerpentine(roster, 2)

	if len(heats) != 2 {
		t.Fatalf("want 2 heats, got %d", len(heats))
	}
	// lap 0: bib1->heat0, bib2->heat1; lap1 (reversed): bib3->heat1, bib4->heat0; lap2: bib5->heat0, bib6->heat1
	wantHeat0 := []int{1, 4, 5}
	wantHeat1 := []int{2, 3, 6}

	gotHeat0 := bibsOf(heats[0])
	gotHeat1 := bibsOf(heats[1])

	if !equalInts(gotHeat0, wantHeat0) {
		t.Errorf("heat 0: want %v, got %v", wantHeat0, gotHeat0)
	}
	if !equalInts(gotHeat1, wantHeat1) {
		t.Errorf("heat 1: want %v, got %v", wantHeat1, gotHeat1)
	}
}

func bibsOf(cs []domain.Contestant) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Bib
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMassStartScheduledStartTimeIgnoresPosition(t *testing.T) {
	event := &domain.Event{ID: "ev1"}
	format := &domain.CompetitionFormat{}
	rcs := []domain.Raceclass{{Name: "M", NoOfContestants: 2}}
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	races := []*domain.Race{{ID: "r1", Raceclass: "M", Datatype: domain.DatatypeMassStart, StartTime: start, MaxNoOfContestants: 2}}
	contestants := []domain.Contestant{
		{ID: "c1", Raceclass: "M", Bib: 1},
		{ID: "c2", Raceclass: "M", Bib: 2},
	}

	res, err := Generate(event, format, rcs, races, contestants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range res.StartEntries {
		if !e.ScheduledStartTime.Equal(start) {
			t.Errorf("mass start: want every entry's scheduled_start_time to equal the race start time, got %v for bib %d", e.ScheduledStartTime, e.Bib)
		}
	}
}

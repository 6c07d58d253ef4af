package domain

import (
	"testing"
	"time"
)

func TestRaceValidateRequiresEventAndRaceplanID(t *testing.T) {
	r := &Race{Raceclass: "M", Order: 1, MaxNoOfContestants: 10, StartTime: time.Now()}
	if err := r.Validate(); err == nil {
		t.Fatal("want an error when event_id is missing")
	}
	r.EventID = "ev1"
	if err := r.Validate(); err == nil {
		t.Fatal("want an error when raceplan_id is missing")
	}
}

func TestRaceValidateRejectsContestantsOverMax(t *testing.T) {
	r := &Race{
		EventID: "ev1", RaceplanID: "rp1", Raceclass: "M", Order: 1,
		MaxNoOfContestants: 5, NoOfContestants: 6, StartTime: time.Now(),
	}
	if err := r.Validate(); err == nil {
		t.Fatal("want an error when no_of_contestants exceeds max_no_of_contestants")
	}
}

func TestRaceIsBracketOnlyForIndividualSprint(t *testing.T) {
	if (&Race{Datatype: DatatypeMassStart}).IsBracket() {
		t.Error("mass_start is not a bracket race")
	}
	if !(&Race{Datatype: DatatypeIndividualSprint}).IsBracket() {
		t.Error("individual_sprint is a bracket race")
	}
}

func TestStartEntryValidateRejectsNonPositiveBib(t *testing.T) {
	e := &StartEntry{RaceID: "r1", Bib: 0, StartingPosition: 1}
	if err := e.Validate(); err == nil {
		t.Fatal("want an error for a non-positive bib")
	}
}

func TestStartEntryValidateRejectsUnknownStatus(t *testing.T) {
	e := &StartEntry{RaceID: "r1", Bib: 1, StartingPosition: 1, Status: Status("BOGUS")}
	if err := e.Validate(); err == nil {
		t.Fatal("want an error for an unrecognized status")
	}
}

func TestStatusRankedTreatsUnsetAndOKAsRanked(t *testing.T) {
	cases := map[Status]bool{
		StatusNone: true,
		StatusOK:   true,
		StatusDNS:  false,
		StatusDNF:  false,
		StatusDSQ:  false,
	}
	for status, want := range cases {
		if got := status.Ranked(); got != want {
			t.Errorf("status %q: want Ranked()=%v, got %v", status, want, got)
		}
	}
}

func TestRaceResultValidateRequiresRaceAndTimingPoint(t *testing.T) {
	r := &RaceResult{}
	if err := r.Validate(); err == nil {
		t.Fatal("want an error when race_id is missing")
	}
	r.RaceID = "r1"
	if err := r.Validate(); err == nil {
		t.Fatal("want an error when timing_point is missing")
	}
	r.TimingPoint = "Finish"
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTimeEventValidateRequiresRegistrationTime(t *testing.T) {
	e := &TimeEvent{RaceID: "r1", TimingPoint: "Finish"}
	if err := e.Validate(); err == nil {
		t.Fatal("want an error when registration_time is zero")
	}
	e.RegistrationTime = time.Now()
	if err := e.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidTimingPointsAddsTemplateForIndividualSprint(t *testing.T) {
	massStart := ValidTimingPoints(DatatypeMassStart)
	if len(massStart) != 2 {
		t.Errorf("want 2 timing points for mass_start, got %d", len(massStart))
	}
	sprint := ValidTimingPoints(DatatypeIndividualSprint)
	if len(sprint) != 3 {
		t.Errorf("want 3 timing points for individual_sprint (incl. Template), got %d", len(sprint))
	}
}

func TestRaceplanValidateRejectsNegativeContestantCount(t *testing.T) {
	p := &Raceplan{EventID: "ev1", NoOfContestants: -1}
	if err := p.Validate(); err == nil {
		t.Fatal("want an error for a negative no_of_contestants")
	}
}

func TestStartlistValidateRequiresEventID(t *testing.T) {
	s := &Startlist{NoOfContestants: 0}
	if err := s.Validate(); err == nil {
		t.Fatal("want an error when event_id is missing")
	}
}

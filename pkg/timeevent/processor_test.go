package timeevent

import (
	"context"
	"testing"
	"time"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
	"skirace/pkg/store"
)

func newFixture(t *testing.T) (*store.Memory, *Processor) {
	t.Helper()
	s := store.NewMemory()
	return s, New(s)
}

func mustCreateRace(t *testing.T, s *store.Memory, r *domain.Race) {
	t.Helper()
	if err := s.Races().Create(context.Background(), r); err != nil {
		t.Fatalf("create race %s: %v", r.ID, err)
	}
}

func mustCreateEntry(t *testing.T, s *store.Memory, e *domain.StartEntry) {
	t.Helper()
	if err := s.StartEntries().Create(context.Background(), e); err != nil {
		t.Fatalf("create start-entry %s: %v", e.ID, err)
	}
}

func TestIngestRanksFinishByRegistrationTimeThenBibThenSeq(t *testing.T) {
	s, p := newFixture(t)
	ctx := context.Background()

	race := &domain.Race{
		ID: "r1", Datatype: domain.DatatypeMassStart, Raceclass: "M",
		MaxNoOfContestants: 3, NoOfContestants: 3, RaceplanID: "plan1",
	}
	mustCreateRace(t, s, race)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// bib 2 and bib 1 tie at the same instant; bib 1 must rank first.
	for _, ev := range []*domain.TimeEvent{
		{RaceID: "r1", Bib: 3, TimingPoint: string(domain.TimingFinish), RegistrationTime: base.Add(1 * time.Second)},
		{RaceID: "r1", Bib: 2, TimingPoint: string(domain.TimingFinish), RegistrationTime: base},
		{RaceID: "r1", Bib: 1, TimingPoint: string(domain.TimingFinish), RegistrationTime: base},
	} {
		if _, err := p.Ingest(ctx, ev, "tester"); err != nil {
			t.Fatalf("ingest bib %d: %v", ev.Bib, err)
		}
	}

	result, err := s.RaceResults().GetByRaceAndTimingPoint(ctx, "r1", string(domain.TimingFinish))
	if err != nil {
		t.Fatalf("load race result: %v", err)
	}
	if len(result.RankingSequence) != 3 {
		t.Fatalf("want 3 ranked events, got %d", len(result.RankingSequence))
	}

	var ranked []*domain.TimeEvent
	for _, id := range result.RankingSequence {
		ev, err := s.TimeEvents().Get(ctx, id)
		if err != nil {
			t.Fatalf("load ranked event: %v", err)
		}
		ranked = append(ranked, ev)
	}
	wantOrder := []int{1, 2, 3}
	for i, bib := range wantOrder {
		if ranked[i].Bib != bib {
			t.Errorf("rank %d: want bib %d, got %d", i+1, bib, ranked[i].Bib)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("rank field on bib %d: want %d, got %d", ranked[i].Bib, i+1, ranked[i].Rank)
		}
	}
}

func TestIngestRejectsInvalidTimingPointButStillPersists(t *testing.T) {
	s, p := newFixture(t)
	ctx := context.Background()

	race := &domain.Race{ID: "r1", Datatype: domain.DatatypeMassStart, MaxNoOfContestants: 1, RaceplanID: "plan1"}
	mustCreateRace(t, s, race)

	ev := &domain.TimeEvent{RaceID: "r1", Bib: 1, TimingPoint: "Halfway", RegistrationTime: time.Now()}
	_, err := p.Ingest(ctx, ev, "tester")
	if err == nil {
		t.Fatal("want validation error for unrecognized timing point")
	}
	de, ok := domainerr.As(err)
	if !ok || de.Kind != domainerr.Validation {
		t.Fatalf("want Validation kind, got %v", err)
	}

	persisted, err := s.TimeEvents().Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("rejected event should still be persisted: %v", err)
	}
	if persisted.Status != domain.TimeEventError {
		t.Errorf("want status Error, got %q", persisted.Status)
	}
	if len(persisted.Changelog) == 0 {
		t.Error("want a changelog entry recording the rejection")
	}
}

// buildBracketFixture wires one semifinal-style source heat ("SA") whose
// rule sends the top finisher to "FA" and the runner-up to "FB", plus the
// two target heats.
func buildBracketFixture(t *testing.T, faMax, fbMax int) (*store.Memory, *Processor, *domain.Race) {
	t.Helper()
	s := store.NewMemory()
	p := New(s)
	ctx := context.Background()

	source := &domain.Race{
		ID: "sa1", Datatype: domain.DatatypeIndividualSprint, Raceclass: "M",
		Round: domain.RoundS, Index: "A", Heat: 1,
		MaxNoOfContestants: 2, NoOfContestants: 2, RaceplanID: "plan1",
		Rule: domain.Rule{
			{Target: "FA", Count: 1, Offset: 0},
			{Target: "FB", Count: 1, Offset: 0},
		},
	}
	fa := &domain.Race{ID: "fa1", Datatype: domain.DatatypeIndividualSprint, Raceclass: "M", Round: domain.RoundF, Index: "A", Heat: 1, MaxNoOfContestants: faMax, RaceplanID: "plan1"}
	fb := &domain.Race{ID: "fb1", Datatype: domain.DatatypeIndividualSprint, Raceclass: "M", Round: domain.RoundF, Index: "B", Heat: 1, MaxNoOfContestants: fbMax, RaceplanID: "plan1"}
	mustCreateRace(t, s, source)
	mustCreateRace(t, s, fa)
	mustCreateRace(t, s, fb)

	mustCreateEntry(t, s, &domain.StartEntry{ID: "e1", RaceID: "sa1", Bib: 1, StartingPosition: 1, Status: domain.StatusNone})
	mustCreateEntry(t, s, &domain.StartEntry{ID: "e2", RaceID: "sa1", Bib: 2, StartingPosition: 2, Status: domain.StatusNone})

	_ = ctx
	return s, p, source
}

func TestTryPropagateMovesQualifiersOnceHeatCompletes(t *testing.T) {
	s, p, _ := buildBracketFixture(t, 4, 4)
	ctx := context.Background()
	base := time.Now()

	if _, err := p.Ingest(ctx, &domain.TimeEvent{RaceID: "sa1", Bib: 1, TimingPoint: string(domain.TimingFinish), RegistrationTime: base}, "tester"); err != nil {
		t.Fatalf("ingest bib 1: %v", err)
	}
	if _, err := p.Ingest(ctx, &domain.TimeEvent{RaceID: "sa1", Bib: 2, TimingPoint: string(domain.TimingFinish), RegistrationTime: base.Add(time.Second)}, "tester"); err != nil {
		t.Fatalf("ingest bib 2: %v", err)
	}

	faEntry, err := s.StartEntries().GetByRaceAndBib(ctx, "fa1", 1)
	if err != nil {
		t.Fatalf("want bib 1 propagated to FA: %v", err)
	}
	if faEntry.StartingPosition != 1 {
		t.Errorf("want position 1 in FA, got %d", faEntry.StartingPosition)
	}

	fbEntry, err := s.StartEntries().GetByRaceAndBib(ctx, "fb1", 2)
	if err != nil {
		t.Fatalf("want bib 2 propagated to FB: %v", err)
	}
	if fbEntry.StartingPosition != 1 {
		t.Errorf("want position 1 in FB, got %d", fbEntry.StartingPosition)
	}

	source, err := s.Races().Get(ctx, "sa1")
	if err != nil {
		t.Fatal(err)
	}
	finishResult, err := s.RaceResults().GetByRaceAndTimingPoint(ctx, "sa1", string(domain.TimingFinish))
	if err != nil {
		t.Fatal(err)
	}
	firstID := finishResult.RankingSequence[0]
	firstEvent, err := s.TimeEvents().Get(ctx, firstID)
	if err != nil {
		t.Fatal(err)
	}
	if firstEvent.NextRaceID != "fa1" || firstEvent.NextRace != "FA" {
		t.Errorf("want next-race bookkeeping pointing at FA/fa1, got %q/%q", firstEvent.NextRace, firstEvent.NextRaceID)
	}
	_ = source
}

func TestTryPropagateWaitsForDNSAndDNFBeforeFiring(t *testing.T) {
	s, p, _ := buildBracketFixture(t, 4, 4)
	ctx := context.Background()

	// Mark bib 2 DNS instead of giving it a Finish event.
	e2, err := s.StartEntries().Get(ctx, "e2")
	if err != nil {
		t.Fatal(err)
	}
	e2.Status = domain.StatusDNS
	if err := s.StartEntries().Update(ctx, e2); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Ingest(ctx, &domain.TimeEvent{RaceID: "sa1", Bib: 1, TimingPoint: string(domain.TimingFinish), RegistrationTime: time.Now()}, "tester"); err != nil {
		t.Fatalf("ingest bib 1: %v", err)
	}

	if _, err := s.StartEntries().GetByRaceAndBib(ctx, "fa1", 1); err != nil {
		t.Fatalf("heat should be complete once bib 2 is DNS, propagation should have fired: %v", err)
	}
}

func TestTryPropagateOverflowLeavesNoPartialWrites(t *testing.T) {
	// FA has no capacity at all: the first branch's target position (1)
	// already exceeds max_no_of_contestants=0, so propagation must fail
	// before writing anything, including to FB.
	s, p, _ := buildBracketFixture(t, 0, 4)
	ctx := context.Background()
	base := time.Now()

	if _, err := p.Ingest(ctx, &domain.TimeEvent{RaceID: "sa1", Bib: 1, TimingPoint: string(domain.TimingFinish), RegistrationTime: base}, "tester"); err != nil {
		t.Fatalf("ingest bib 1: %v", err)
	}

	_, err := p.Ingest(ctx, &domain.TimeEvent{RaceID: "sa1", Bib: 2, TimingPoint: string(domain.TimingFinish), RegistrationTime: base.Add(time.Second)}, "tester")
	if err == nil {
		t.Fatal("want a validation failure once propagation resolves against a zero-capacity target")
	}
	de, ok := domainerr.As(err)
	if !ok || de.Kind != domainerr.Validation {
		t.Fatalf("want Validation kind, got %v", err)
	}

	if _, err := s.StartEntries().GetByRaceAndBib(ctx, "fb1", 2); err == nil {
		t.Error("FB write must not have happened: FA's failure should abort the whole batch")
	}

	bib2Event, err := s.TimeEvents().Get(ctx, findEventID(t, s, "sa1", 2))
	if err != nil {
		t.Fatal(err)
	}
	if bib2Event.Status != domain.TimeEventError {
		t.Errorf("bib 2's event should be marked Error after the failed propagation, got %q", bib2Event.Status)
	}
}

func TestDeleteRerankAndRetractPropagation(t *testing.T) {
	s, p, _ := buildBracketFixture(t, 4, 4)
	ctx := context.Background()
	base := time.Now()

	if _, err := p.Ingest(ctx, &domain.TimeEvent{RaceID: "sa1", Bib: 1, TimingPoint: string(domain.TimingFinish), RegistrationTime: base}, "tester"); err != nil {
		t.Fatal(err)
	}
	ev2, err := p.Ingest(ctx, &domain.TimeEvent{RaceID: "sa1", Bib: 2, TimingPoint: string(domain.TimingFinish), RegistrationTime: base.Add(time.Second)}, "tester")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.StartEntries().GetByRaceAndBib(ctx, "fb1", 2); err != nil {
		t.Fatalf("expected propagation before deletion: %v", err)
	}

	if err := p.Delete(ctx, ev2.ID, "tester"); err != nil {
		t.Fatalf("delete bib 2's finish event: %v", err)
	}

	if _, err := s.StartEntries().GetByRaceAndBib(ctx, "fb1", 2); err == nil {
		t.Error("retraction should have removed bib 2's propagated start-entry from FB")
	}

	result, err := s.RaceResults().GetByRaceAndTimingPoint(ctx, "sa1", string(domain.TimingFinish))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.RankingSequence) != 1 {
		t.Errorf("want 1 remaining ranked event after delete, got %d", len(result.RankingSequence))
	}
}

func findEventID(t *testing.T, s *store.Memory, raceID string, bib int) string {
	t.Helper()
	evs, err := s.TimeEvents().ListByRaceAndTimingPoint(context.Background(), raceID, string(domain.TimingFinish))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range evs {
		if e.Bib == bib {
			return e.ID
		}
	}
	t.Fatalf("no event found for bib %d in race %s", bib, raceID)
	return ""
}

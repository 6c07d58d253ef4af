package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
	"skirace/pkg/store"
)

// --- Raceplans -------------------------------------------------------------

// CreateRaceplan persists a caller-supplied raceplan directly, distinct
// from the generate-raceplan-for-event command: it still enforces the
// "no existing plan for this event" precondition, but does not run the
// generator.
func (o *Orchestrator) CreateRaceplan(ctx context.Context, p *domain.Raceplan) (*domain.Raceplan, error) {
	if p.ID != "" {
		return nil, domainerr.Validationf("raceplan: id must not be supplied on create")
	}
	p.ID = uuid.New().String()
	if p.Races == nil {
		p.Races = []string{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := o.Store.Raceplans().GetByEventID(ctx, p.EventID); err == nil {
		return nil, domainerr.Conflictf("raceplan: event %s already has a raceplan", p.EventID)
	} else if err != store.ErrNotFound {
		return nil, domainerr.Internalf("raceplan: lookup existing plan: %v", err)
	}
	if err := o.Store.Raceplans().Create(ctx, p); err != nil {
		return nil, domainerr.Internalf("raceplan: persist: %v", err)
	}
	return p, nil
}

func (o *Orchestrator) GetRaceplan(ctx context.Context, id string) (*domain.Raceplan, error) {
	p, err := o.Store.Raceplans().Get(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("raceplan", id, err)
	}
	return p, nil
}

func (o *Orchestrator) ListRaceplans(ctx context.Context, eventID string) ([]*domain.Raceplan, error) {
	if eventID != "" {
		p, err := o.Store.Raceplans().GetByEventID(ctx, eventID)
		if err != nil {
			if err == store.ErrNotFound {
				return []*domain.Raceplan{}, nil
			}
			return nil, domainerr.Internalf("raceplan: lookup by event: %v", err)
		}
		return []*domain.Raceplan{p}, nil
	}
	plans, err := o.Store.Raceplans().List(ctx)
	if err != nil {
		return nil, domainerr.Internalf("raceplan: list: %v", err)
	}
	return plans, nil
}

// DeleteRaceplan cascades to races, their start-entries, and race-results,
// and to the event's startlist if this is its only plan.
func (o *Orchestrator) DeleteRaceplan(ctx context.Context, id string) error {
	plan, err := o.Store.Raceplans().Get(ctx, id)
	if err != nil {
		return notFoundOrInternal("raceplan", id, err)
	}

	races, err := o.Store.Races().ListByRaceplanID(ctx, id)
	if err != nil {
		return domainerr.Internalf("raceplan: list races for delete: %v", err)
	}

	for _, r := range races {
		entries, err := o.Store.StartEntries().ListByRaceID(ctx, r.ID)
		if err != nil {
			return domainerr.Internalf("raceplan: list start-entries for delete: %v", err)
		}
		for _, e := range entries {
			if err := o.Store.StartEntries().Delete(ctx, e.ID); err != nil {
				return domainerr.Internalf("raceplan: delete start-entry: %v", err)
			}
		}

		results, err := o.Store.RaceResults().ListByRaceID(ctx, r.ID)
		if err != nil {
			return domainerr.Internalf("raceplan: list race-results for delete: %v", err)
		}
		for _, res := range results {
			if err := o.Store.RaceResults().Delete(ctx, res.ID); err != nil {
				return domainerr.Internalf("raceplan: delete race-result: %v", err)
			}
		}

		if err := o.Store.Races().Delete(ctx, r.ID); err != nil {
			return domainerr.Internalf("raceplan: delete race: %v", err)
		}
	}

	if sl, err := o.Store.Startlists().GetByEventID(ctx, plan.EventID); err == nil {
		if err := o.Store.Startlists().Delete(ctx, sl.ID); err != nil {
			return domainerr.Internalf("raceplan: delete startlist: %v", err)
		}
	} else if err != store.ErrNotFound {
		return domainerr.Internalf("raceplan: lookup startlist for delete: %v", err)
	}

	return o.Store.Raceplans().Delete(ctx, id)
}

// --- Races -------------------------------------------------------------

func (o *Orchestrator) GetRace(ctx context.Context, id string) (*domain.Race, error) {
	r, err := o.Store.Races().Get(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("race", id, err)
	}
	return r, nil
}

func (o *Orchestrator) ListRaces(ctx context.Context, eventID, raceplanID string) ([]*domain.Race, error) {
	switch {
	case raceplanID != "":
		rs, err := o.Store.Races().ListByRaceplanID(ctx, raceplanID)
		if err != nil {
			return nil, domainerr.Internalf("race: list by raceplan: %v", err)
		}
		return rs, nil
	case eventID != "":
		rs, err := o.Store.Races().ListByEventID(ctx, eventID)
		if err != nil {
			return nil, domainerr.Internalf("race: list by event: %v", err)
		}
		return rs, nil
	default:
		rs, err := o.Store.Races().List(ctx)
		if err != nil {
			return nil, domainerr.Internalf("race: list: %v", err)
		}
		return rs, nil
	}
}

func (o *Orchestrator) CreateRace(ctx context.Context, r *domain.Race) (*domain.Race, error) {
	if r.ID != "" {
		return nil, domainerr.Validationf("race: id must not be supplied on create")
	}
	r.ID = uuid.New().String()
	if r.StartEntries == nil {
		r.StartEntries = []string{}
	}
	if r.Results == nil {
		r.Results = map[string]string{}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := o.Store.Raceplans().Get(ctx, r.RaceplanID); err != nil {
		return nil, domainerr.NotFoundf("race: raceplan %s not found", r.RaceplanID)
	}
	if err := o.Store.Races().Create(ctx, r); err != nil {
		return nil, domainerr.Internalf("race: persist: %v", err)
	}
	plan, err := o.Store.Raceplans().Get(ctx, r.RaceplanID)
	if err == nil {
		plan.Races = append(plan.Races, r.ID)
		_ = o.Store.Raceplans().Update(ctx, plan)
	}
	return r, nil
}

// UpdateRace persists r and, when start_time changed, shifts every
// start-entry's scheduled_start_time by the same delta — this
// preserves each entry's spacing relative to the others (which for an
// interval race already encodes starting_position × intervals) without
// needing to re-fetch the competition format here.
func (o *Orchestrator) UpdateRace(ctx context.Context, r *domain.Race) error {
	if err := r.Validate(); err != nil {
		return err
	}
	before, err := o.Store.Races().Get(ctx, r.ID)
	if err != nil {
		return notFoundOrInternal("race", r.ID, err)
	}

	if err := o.Store.Races().Update(ctx, r); err != nil {
		return domainerr.Internalf("race: persist update: %v", err)
	}

	if before.StartTime.Equal(r.StartTime) {
		return nil
	}
	delta := r.StartTime.Sub(before.StartTime)

	entries, err := o.Store.StartEntries().ListByRaceID(ctx, r.ID)
	if err != nil {
		return domainerr.Internalf("race: list start-entries for cascade: %v", err)
	}
	for _, e := range entries {
		e.ScheduledStartTime = e.ScheduledStartTime.Add(delta)
		if err := o.Store.StartEntries().Update(ctx, e); err != nil {
			return domainerr.Internalf("race: cascade start-entry: %v", err)
		}
	}
	return nil
}

func (o *Orchestrator) DeleteRace(ctx context.Context, id string) error {
	if _, err := o.Store.Races().Get(ctx, id); err != nil {
		return notFoundOrInternal("race", id, err)
	}
	entries, err := o.Store.StartEntries().ListByRaceID(ctx, id)
	if err != nil {
		return domainerr.Internalf("race: list start-entries for delete: %v", err)
	}
	if len(entries) > 0 {
		return domainerr.Conflictf("race: %s has start-entries, delete them first", id)
	}
	return o.Store.Races().Delete(ctx, id)
}

// --- StartEntries -------------------------------------------------------------

func (o *Orchestrator) CreateStartEntry(ctx context.Context, e *domain.StartEntry) (*domain.StartEntry, error) {
	if e.ID != "" {
		return nil, domainerr.Validationf("start-entry: id must not be supplied on create")
	}
	e.ID = uuid.New().String()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	race, err := o.Store.Races().Get(ctx, e.RaceID)
	if err != nil {
		return nil, domainerr.NotFoundf("start-entry: race %s not found", e.RaceID)
	}
	if _, err := o.Store.StartEntries().GetByRaceAndBib(ctx, e.RaceID, e.Bib); err == nil {
		return nil, domainerr.Conflictf("start-entry: bib %d already used in race %s", e.Bib, e.RaceID)
	}
	if race.NoOfContestants >= race.MaxNoOfContestants {
		return nil, domainerr.Conflictf("start-entry: race %s is at max_no_of_contestants", e.RaceID)
	}

	if err := o.Store.StartEntries().Create(ctx, e); err != nil {
		return nil, domainerr.Internalf("start-entry: persist: %v", err)
	}
	race.StartEntries = append(race.StartEntries, e.ID)
	race.NoOfContestants = len(race.StartEntries)
	if err := o.Store.Races().Update(ctx, race); err != nil {
		return nil, domainerr.Internalf("start-entry: persist race: %v", err)
	}
	return e, nil
}

func (o *Orchestrator) GetStartEntry(ctx context.Context, id string) (*domain.StartEntry, error) {
	e, err := o.Store.StartEntries().Get(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("start-entry", id, err)
	}
	return e, nil
}

func (o *Orchestrator) ListStartEntriesByRace(ctx context.Context, raceID string) ([]*domain.StartEntry, error) {
	es, err := o.Store.StartEntries().ListByRaceID(ctx, raceID)
	if err != nil {
		return nil, domainerr.Internalf("start-entry: list: %v", err)
	}
	return es, nil
}

func (o *Orchestrator) UpdateStartEntry(ctx context.Context, e *domain.StartEntry, userID string) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, err := o.Store.StartEntries().Get(ctx, e.ID); err != nil {
		return notFoundOrInternal("start-entry", e.ID, err)
	}
	e.AppendChangelog(changelogAuthor(userID), "updated")
	if err := o.Store.StartEntries().Update(ctx, e); err != nil {
		return domainerr.Internalf("start-entry: persist update: %v", err)
	}
	return nil
}

func (o *Orchestrator) DeleteStartEntry(ctx context.Context, id string) error {
	e, err := o.Store.StartEntries().Get(ctx, id)
	if err != nil {
		return notFoundOrInternal("start-entry", id, err)
	}
	if err := o.Store.StartEntries().Delete(ctx, id); err != nil {
		return domainerr.Internalf("start-entry: delete: %v", err)
	}
	race, err := o.Store.Races().Get(ctx, e.RaceID)
	if err == nil {
		race.StartEntries = removeID(race.StartEntries, id)
		race.NoOfContestants = len(race.StartEntries)
		_ = o.Store.Races().Update(ctx, race)
	}
	return nil
}

// --- Startlists -------------------------------------------------------------

func (o *Orchestrator) GetStartlist(ctx context.Context, id string) (*domain.Startlist, error) {
	s, err := o.Store.Startlists().Get(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("startlist", id, err)
	}
	return s, nil
}

func (o *Orchestrator) ListStartlists(ctx context.Context) ([]*domain.Startlist, error) {
	ss, err := o.Store.Startlists().List(ctx)
	if err != nil {
		return nil, domainerr.Internalf("startlist: list: %v", err)
	}
	return ss, nil
}

func (o *Orchestrator) DeleteStartlist(ctx context.Context, id string) error {
	if _, err := o.Store.Startlists().Get(ctx, id); err != nil {
		return notFoundOrInternal("startlist", id, err)
	}
	return o.Store.Startlists().Delete(ctx, id)
}

// --- RaceResults -------------------------------------------------------------

func (o *Orchestrator) GetRaceResult(ctx context.Context, id string) (*domain.RaceResult, error) {
	r, err := o.Store.RaceResults().Get(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("race-result", id, err)
	}
	return r, nil
}

func (o *Orchestrator) ListRaceResultsByRace(ctx context.Context, raceID, timingPoint string) ([]*domain.RaceResult, error) {
	rs, err := o.Store.RaceResults().ListByRaceID(ctx, raceID)
	if err != nil {
		return nil, domainerr.Internalf("race-result: list: %v", err)
	}
	if timingPoint == "" {
		return rs, nil
	}
	out := make([]*domain.RaceResult, 0, len(rs))
	for _, r := range rs {
		if r.TimingPoint == timingPoint {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpdateRaceResult allows only the operator-controlled status transition;
// ranking_sequence/no_of_contestants are processor-owned and not accepted
// from this surface.
func (o *Orchestrator) UpdateRaceResult(ctx context.Context, id string, status domain.ResultStatus) (*domain.RaceResult, error) {
	r, err := o.Store.RaceResults().Get(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("race-result", id, err)
	}
	r.Status = status
	if err := o.Store.RaceResults().Update(ctx, r); err != nil {
		return nil, domainerr.Internalf("race-result: persist update: %v", err)
	}
	return r, nil
}

func (o *Orchestrator) DeleteRaceResult(ctx context.Context, id string) error {
	if _, err := o.Store.RaceResults().Get(ctx, id); err != nil {
		return notFoundOrInternal("race-result", id, err)
	}
	return o.Store.RaceResults().Delete(ctx, id)
}

// --- TimeEvents -------------------------------------------------------------

func (o *Orchestrator) IngestTimeEvent(ctx context.Context, ev *domain.TimeEvent, userID string) (*domain.TimeEvent, error) {
	return o.TimeEvents.Ingest(ctx, ev, changelogAuthor(userID))
}

func (o *Orchestrator) GetTimeEvent(ctx context.Context, id string) (*domain.TimeEvent, error) {
	e, err := o.Store.TimeEvents().Get(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("time-event", id, err)
	}
	return e, nil
}

func (o *Orchestrator) ListTimeEvents(ctx context.Context, raceID, timingPoint string) ([]*domain.TimeEvent, error) {
	if raceID != "" && timingPoint != "" {
		es, err := o.Store.TimeEvents().ListByRaceAndTimingPoint(ctx, raceID, timingPoint)
		if err != nil {
			return nil, domainerr.Internalf("time-event: list: %v", err)
		}
		return es, nil
	}
	all, err := o.Store.TimeEvents().List(ctx)
	if err != nil {
		return nil, domainerr.Internalf("time-event: list: %v", err)
	}
	if raceID == "" {
		return all, nil
	}
	out := make([]*domain.TimeEvent, 0, len(all))
	for _, e := range all {
		if e.RaceID == raceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *Orchestrator) DeleteTimeEvent(ctx context.Context, id, userID string) error {
	return o.TimeEvents.Delete(ctx, id, changelogAuthor(userID))
}

func notFoundOrInternal(kind, id string, err error) error {
	if err == store.ErrNotFound {
		return domainerr.NotFoundf("%s: %s not found", kind, id)
	}
	return domainerr.Internalf("%s: lookup %s: %v", kind, id, err)
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

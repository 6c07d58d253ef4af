package orchestrator

import (
	"context"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
	"skirace/pkg/raceplan"
	"skirace/pkg/startlist"
	"skirace/pkg/store"
)

// GenerateRaceplanForEvent runs the Raceplan Generator and persists
// its output atomically. Generation commands for the same event_id
// serialize on a per-event logical mutex; retry on failure relies on
// the CONFLICT response rather than an idempotency key.
func (o *Orchestrator) GenerateRaceplanForEvent(ctx context.Context, eventID, userID string) (*domain.Raceplan, error) {
	unlock := o.generation.Lock(eventID)
	defer unlock()

	if _, err := o.Store.Raceplans().GetByEventID(ctx, eventID); err == nil {
		return nil, domainerr.Conflictf("raceplan: event %s already has a raceplan", eventID)
	} else if err != store.ErrNotFound {
		return nil, domainerr.Internalf("raceplan: lookup existing plan: %v", err)
	}

	event, err := o.Events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	format, err := o.Formats.GetByName(ctx, event.CompetitionFormatName)
	if err != nil {
		return nil, err
	}
	raceclasses, err := o.Events.GetRaceclasses(ctx, eventID)
	if err != nil {
		return nil, err
	}

	plan, races, err := raceplan.Generate(event, format, raceclasses)
	if err != nil {
		return nil, err
	}

	j := &journal{}
	if err := o.Store.Raceplans().Create(ctx, plan); err != nil {
		return nil, domainerr.Internalf("raceplan: persist plan: %v", err)
	}
	j.add(func(ctx context.Context) { _ = o.Store.Raceplans().Delete(ctx, plan.ID) })

	for _, r := range races {
		if err := o.Store.Races().Create(ctx, r); err != nil {
			j.rollback(ctx)
			return nil, domainerr.Internalf("raceplan: persist race: %v", err)
		}
		rID := r.ID
		j.add(func(ctx context.Context) { _ = o.Store.Races().Delete(ctx, rID) })
	}

	return plan, nil
}

// GenerateStartlistForEvent runs the Startlist Generator and persists
// its output (startlist, first-round start-entries, updated races)
// atomically.
func (o *Orchestrator) GenerateStartlistForEvent(ctx context.Context, eventID, userID string) (*domain.Startlist, error) {
	unlock := o.generation.Lock(eventID)
	defer unlock()

	plan, err := o.Store.Raceplans().GetByEventID(ctx, eventID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, domainerr.NotFoundf("startlist: event %s has no raceplan yet", eventID)
		}
		return nil, domainerr.Internalf("startlist: lookup raceplan: %v", err)
	}

	if _, err := o.Store.Startlists().GetByEventID(ctx, eventID); err == nil {
		return nil, domainerr.Conflictf("startlist: event %s already has a startlist", eventID)
	} else if err != store.ErrNotFound {
		return nil, domainerr.Internalf("startlist: lookup existing startlist: %v", err)
	}

	event, err := o.Events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	format, err := o.Formats.GetByName(ctx, event.CompetitionFormatName)
	if err != nil {
		return nil, err
	}
	raceclasses, err := o.Events.GetRaceclasses(ctx, eventID)
	if err != nil {
		return nil, err
	}
	contestants, err := o.Events.GetContestants(ctx, eventID)
	if err != nil {
		return nil, err
	}

	races, err := o.Store.Races().ListByRaceplanID(ctx, plan.ID)
	if err != nil {
		return nil, domainerr.Internalf("startlist: list races: %v", err)
	}

	result, err := startlist.Generate(event, format, raceclasses, races, contestants)
	if err != nil {
		return nil, err
	}

	j := &journal{}
	if err := o.Store.Startlists().Create(ctx, result.Startlist); err != nil {
		return nil, domainerr.Internalf("startlist: persist startlist: %v", err)
	}
	j.add(func(ctx context.Context) { _ = o.Store.Startlists().Delete(ctx, result.Startlist.ID) })

	for _, e := range result.StartEntries {
		if err := o.Store.StartEntries().Create(ctx, e); err != nil {
			j.rollback(ctx)
			return nil, domainerr.Internalf("startlist: persist start-entry: %v", err)
		}
		eID := e.ID
		j.add(func(ctx context.Context) { _ = o.Store.StartEntries().Delete(ctx, eID) })
	}

	for _, r := range result.UpdatedRaces {
		before, err := o.Store.Races().Get(ctx, r.ID)
		if err != nil {
			j.rollback(ctx)
			return nil, domainerr.Internalf("startlist: lookup race before update: %v", err)
		}
		if err := o.Store.Races().Update(ctx, r); err != nil {
			j.rollback(ctx)
			return nil, domainerr.Internalf("startlist: persist updated race: %v", err)
		}
		j.add(func(ctx context.Context) { _ = o.Store.Races().Update(ctx, before) })
	}

	plan.NoOfContestants = result.Startlist.NoOfContestants
	if err := o.Store.Raceplans().Update(ctx, plan); err != nil {
		j.rollback(ctx)
		return nil, domainerr.Internalf("startlist: persist plan contestant count: %v", err)
	}

	return result.Startlist, nil
}

// Package timeevent implements the Time-Event Processor: ingesting
// timing observations, maintaining each (race, timing_point)'s ranking, and
// driving bracket qualifier propagation once a heat's Finish results are
// complete.
package timeevent

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
	"skirace/pkg/keymutex"
	"skirace/pkg/store"
)

// Processor is the single entry point for posting and deleting TimeEvents.
// It serializes ranking and propagation per (race_id, timing_point) with a
// keyed lock, mirroring the collector-side locking a live timing feed needs
// to stay correct under concurrent readings at the same point.
type Processor struct {
	store store.Store
	locks *keymutex.Map
}

func New(s store.Store) *Processor {
	return &Processor{store: s, locks: keymutex.New()}
}

func lockKey(raceID, timingPoint string) string { return raceID + "|" + timingPoint }

// Ingest validates, persists, and ranks one TimeEvent, propagating
// qualifiers if it completes a bracket heat's Finish results.
// A rejected event is still persisted, with Status set to Error and a
// changelog entry recording why, so the rejection itself is auditable; the
// returned error is what the caller reports to the submitter.
func (p *Processor) Ingest(ctx context.Context, ev *domain.TimeEvent, userID string) (*domain.TimeEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	race, err := p.store.Races().Get(ctx, ev.RaceID)
	if err != nil {
		return nil, domainerr.NotFoundf("time-event: race %s not found", ev.RaceID)
	}

	if ev.Name == "" || ev.Club == "" {
		if entry, err := p.store.StartEntries().GetByRaceAndBib(ctx, ev.RaceID, ev.Bib); err == nil {
			if ev.Name == "" {
				ev.Name = entry.Name
			}
			if ev.Club == "" {
				ev.Club = entry.Club
			}
		}
	}

	ev.Seq = ksuid.New().String()

	if !validTimingPoint(race.Datatype, ev.TimingPoint) {
		ev.Status = domain.TimeEventError
		ev.AppendChangelog(userID, fmt.Sprintf("rejected: timing_point %q is not valid for race datatype %q", ev.TimingPoint, race.Datatype))
		if err := p.create(ctx, ev); err != nil {
			return nil, err
		}
		return ev, domainerr.Validationf("time-event: timing_point %q is not valid for this race", ev.TimingPoint)
	}

	ev.Status = domain.TimeEventOK
	if err := p.create(ctx, ev); err != nil {
		return nil, err
	}

	unlock := p.locks.Lock(lockKey(ev.RaceID, ev.TimingPoint))
	defer unlock()

	if err := p.rerank(ctx, race, ev.TimingPoint); err != nil {
		return p.markError(ctx, ev, userID, err)
	}

	if ev.TimingPoint == string(domain.TimingFinish) && race.IsBracket() {
		if err := p.tryPropagate(ctx, race, userID); err != nil {
			return p.markError(ctx, ev, userID, err)
		}
	}

	final, err := p.store.TimeEvents().Get(ctx, ev.ID)
	if err != nil {
		return ev, nil
	}
	return final, nil
}

func (p *Processor) create(ctx context.Context, ev *domain.TimeEvent) error {
	if err := p.store.TimeEvents().Create(ctx, ev); err != nil {
		if err == store.ErrAlreadyExists {
			return domainerr.Conflictf("time-event: id %s already exists", ev.ID)
		}
		return domainerr.Internalf("time-event: persist: %v", err)
	}
	return nil
}

// markError downgrades an already-persisted event to Error status after a
// downstream failure (ranking or propagation), so the caller sees the
// VALIDATION/CONFLICT it bubbled up while the record stays in the store for
// audit rather than vanishing.
func (p *Processor) markError(ctx context.Context, ev *domain.TimeEvent, userID string, cause error) (*domain.TimeEvent, error) {
	current, err := p.store.TimeEvents().Get(ctx, ev.ID)
	if err == nil {
		ev = current
	}
	ev.Status = domain.TimeEventError
	ev.AppendChangelog(userID, fmt.Sprintf("rejected: %v", cause))
	_ = p.store.TimeEvents().Update(ctx, ev)
	return ev, cause
}

func validTimingPoint(d domain.Datatype, tp string) bool {
	for _, v := range domain.ValidTimingPoints(d) {
		if string(v) == tp {
			return true
		}
	}
	return false
}

// Delete removes a TimeEvent and re-ranks. A Finish event on a
// bracket race may not be deleted once its propagated StartEntry already
// has TimeEvents of its own recorded against it downstream; retracting it
// then would silently orphan those results, so the delete is refused with
// CONFLICT instead.
func (p *Processor) Delete(ctx context.Context, id, userID string) error {
	ev, err := p.store.TimeEvents().Get(ctx, id)
	if err != nil {
		return domainerr.NotFoundf("time-event: %s not found", id)
	}

	race, err := p.store.Races().Get(ctx, ev.RaceID)
	if err != nil {
		return domainerr.Internalf("time-event: load race %s: %v", ev.RaceID, err)
	}

	unlock := p.locks.Lock(lockKey(ev.RaceID, ev.TimingPoint))
	defer unlock()

	isFinalizedBracketFinish := ev.TimingPoint == string(domain.TimingFinish) && race.IsBracket()
	if isFinalizedBracketFinish {
		dependent, err := p.hasDownstreamTimeEvents(ctx, race, ev.Bib)
		if err != nil {
			return err
		}
		if dependent {
			return domainerr.Conflictf("time-event: cannot delete %s, its propagated start-entry already has recorded results", id)
		}
	}

	if err := p.store.TimeEvents().Delete(ctx, id); err != nil {
		return domainerr.Internalf("time-event: delete: %v", err)
	}

	if err := p.rerank(ctx, race, ev.TimingPoint); err != nil {
		return err
	}

	if isFinalizedBracketFinish {
		if err := p.retractPropagation(ctx, race, ev.Bib, userID); err != nil {
			return err
		}
	}
	return nil
}

// rerank recomputes the ranking_sequence for one (race, timing_point),
// assigns Rank on every surviving OK TimeEvent, and keeps the RaceResult
// document in sync. Start/Template points rank by arrival
// order (insertion sequence); Finish ranks by registration_time, breaking
// ties first by bib, then by insertion order.
func (p *Processor) rerank(ctx context.Context, race *domain.Race, timingPoint string) error {
	events, err := p.store.TimeEvents().ListByRaceAndTimingPoint(ctx, race.ID, timingPoint)
	if err != nil {
		return domainerr.Internalf("time-event: list for rerank: %v", err)
	}

	var ranked []*domain.TimeEvent
	for _, e := range events {
		if e.Status == domain.TimeEventOK {
			ranked = append(ranked, e)
		}
	}

	if timingPoint == string(domain.TimingFinish) {
		sort.SliceStable(ranked, func(i, j int) bool {
			if !ranked[i].RegistrationTime.Equal(ranked[j].RegistrationTime) {
				return ranked[i].RegistrationTime.Before(ranked[j].RegistrationTime)
			}
			if ranked[i].Bib != ranked[j].Bib {
				return ranked[i].Bib < ranked[j].Bib
			}
			return ranked[i].Seq < ranked[j].Seq
		})
	} else {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Seq < ranked[j].Seq })
	}

	ids := make([]string, len(ranked))
	for i, e := range ranked {
		e.Rank = i + 1
		ids[i] = e.ID
		if err := p.store.TimeEvents().Update(ctx, e); err != nil {
			return domainerr.Internalf("time-event: persist rank: %v", err)
		}
	}

	result, err := p.store.RaceResults().GetByRaceAndTimingPoint(ctx, race.ID, timingPoint)
	switch err {
	case nil:
		result.RankingSequence = ids
		result.NoOfContestants = len(ids)
		if err := p.store.RaceResults().Update(ctx, result); err != nil {
			return domainerr.Internalf("time-event: update race-result: %v", err)
		}
	case store.ErrNotFound:
		result = &domain.RaceResult{
			ID:              uuid.New().String(),
			RaceID:          race.ID,
			TimingPoint:     timingPoint,
			NoOfContestants: len(ids),
			RankingSequence: ids,
			Status:          domain.ResultUnofficial,
		}
		if err := p.store.RaceResults().Create(ctx, result); err != nil {
			return domainerr.Internalf("time-event: create race-result: %v", err)
		}
	default:
		return domainerr.Internalf("time-event: lookup race-result: %v", err)
	}

	if race.Results == nil {
		race.Results = map[string]string{}
	}
	race.Results[timingPoint] = result.ID
	if err := p.store.Races().Update(ctx, race); err != nil {
		return domainerr.Internalf("time-event: persist race.results: %v", err)
	}
	return nil
}

// tryPropagate fires qualifier propagation once every contestant expected
// to finish a bracket heat is accounted for, either by a Finish TimeEvent
// or a DNS/DNF StartEntry status. It resolves every target heat
// and position before writing anything, so a capacity overflow anywhere in
// the batch aborts as VALIDATION and leaves the store untouched — the
// "roll back the propagation" requirement is satisfied by never having
// applied it in the first place.
func (p *Processor) tryPropagate(ctx context.Context, race *domain.Race, userID string) error {
	if len(race.Rule) == 0 {
		return nil
	}

	entries, err := p.store.StartEntries().ListByRaceID(ctx, race.ID)
	if err != nil {
		return domainerr.Internalf("time-event: list start-entries for %s: %v", race.ID, err)
	}
	entryByBib := map[int]*domain.StartEntry{}
	settled := 0
	for _, e := range entries {
		entryByBib[e.Bib] = e
		if !e.Status.Ranked() {
			settled++
		}
	}

	result, err := p.store.RaceResults().GetByRaceAndTimingPoint(ctx, race.ID, string(domain.TimingFinish))
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return domainerr.Internalf("time-event: lookup finish result for %s: %v", race.ID, err)
	}
	settled += len(result.RankingSequence)

	if settled < race.NoOfContestants {
		return nil // heat isn't complete yet
	}

	finishers := make([]Finisher, 0, len(result.RankingSequence))
	for _, id := range result.RankingSequence {
		te, err := p.store.TimeEvents().Get(ctx, id)
		if err != nil {
			return domainerr.Internalf("time-event: load ranked event %s: %v", id, err)
		}
		f := Finisher{TimeEventID: te.ID, Bib: te.Bib, Name: te.Name, Club: te.Club}
		if entry, ok := entryByBib[te.Bib]; ok {
			f.StartEntryID = entry.ID
			f.StartlistID = entry.StartlistID
			if f.Name == "" {
				f.Name = entry.Name
			}
			if f.Club == "" {
				f.Club = entry.Club
			}
		}
		finishers = append(finishers, f)
	}

	targets := Propagate(race.Rule, finishers)

	resolved := make([]resolvedTarget, 0, len(targets))
	for _, t := range targets {
		rt, err := p.resolveTarget(ctx, race, t)
		if err != nil {
			return err
		}
		resolved = append(resolved, rt)
	}

	for _, rt := range resolved {
		if err := p.applyPropagation(ctx, race, rt, userID); err != nil {
			return err
		}
		if err := p.recordNextRace(ctx, rt.finisher.TimeEventID, rt); err != nil {
			return err
		}
	}
	return nil
}

// recordNextRace stamps the source Finish TimeEvent with where its
// contestant was propagated to, so a reader of the event itself (not just
// the target race) can see the outcome.
func (p *Processor) recordNextRace(ctx context.Context, timeEventID string, rt resolvedTarget) error {
	te, err := p.store.TimeEvents().Get(ctx, timeEventID)
	if err != nil {
		return domainerr.Internalf("time-event: reload %s for next-race bookkeeping: %v", timeEventID, err)
	}
	te.NextRace = rt.letter
	te.NextRaceID = rt.targetRace.ID
	te.NextRacePosition = rt.position
	if err := p.store.TimeEvents().Update(ctx, te); err != nil {
		return domainerr.Internalf("time-event: persist next-race bookkeeping: %v", err)
	}
	return nil
}

type resolvedTarget struct {
	targetRace *domain.Race
	position   int
	finisher   Finisher
	letter     string
}

// resolveTarget maps a finisher's absolute position within a progression
// target round to a concrete target heat and in-heat position, by block
// allocation over the target round's heats in Heat order: heat 1 claims
// positions [1, heat1.MaxNoOfContestants], heat 2 the next block, and so
// on. It does no writes; a position past the last heat's block is a
// VALIDATION failure, caught here before anything is persisted.
func (p *Processor) resolveTarget(ctx context.Context, race *domain.Race, t Target) (resolvedTarget, error) {
	round, index := splitLetter(t.Letter)
	heats, err := p.targetHeats(ctx, race, round, index)
	if err != nil {
		return resolvedTarget{}, err
	}
	if len(heats) == 0 {
		return resolvedTarget{}, domainerr.Validationf("time-event: no heats found for propagation target %q in raceclass %q", t.Letter, race.Raceclass)
	}

	cumulative := 0
	for _, h := range heats {
		if t.GlobalPosition <= cumulative+h.MaxNoOfContestants {
			return resolvedTarget{
				targetRace: h,
				position:   t.GlobalPosition - cumulative,
				finisher:   t.Finisher,
				letter:     t.Letter,
			}, nil
		}
		cumulative += h.MaxNoOfContestants
	}
	return resolvedTarget{}, domainerr.Validationf("time-event: propagation target %q has no capacity for bib %d", t.Letter, t.Finisher.Bib)
}

func (p *Processor) targetHeats(ctx context.Context, race *domain.Race, round, index string) ([]*domain.Race, error) {
	all, err := p.store.Races().ListByRaceplanID(ctx, race.RaceplanID)
	if err != nil {
		return nil, domainerr.Internalf("time-event: list races for raceplan %s: %v", race.RaceplanID, err)
	}
	var out []*domain.Race
	for _, r := range all {
		if r.Raceclass == race.Raceclass && r.Round == round && r.Index == index {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Heat < out[j].Heat })
	return out, nil
}

// applyPropagation creates or updates the downstream StartEntry and updates
// the target race's start_entries and no_of_contestants. The source
// TimeEvent's NextRace bookkeeping is recordNextRace's job.
func (p *Processor) applyPropagation(ctx context.Context, sourceRace *domain.Race, rt resolvedTarget, userID string) error {
	existing, err := p.store.StartEntries().GetByRaceAndBib(ctx, rt.targetRace.ID, rt.finisher.Bib)
	switch {
	case err == nil:
		existing.StartingPosition = rt.position
		existing.AppendChangelog(userID, "PROPAGATED_FROM:"+sourceRace.ID)
		if err := p.store.StartEntries().Update(ctx, existing); err != nil {
			return domainerr.Internalf("time-event: update propagated start-entry: %v", err)
		}
	case err == store.ErrNotFound:
		entry := &domain.StartEntry{
			ID:                 uuid.New().String(),
			RaceID:             rt.targetRace.ID,
			StartlistID:        rt.finisher.StartlistID,
			Bib:                rt.finisher.Bib,
			Name:               rt.finisher.Name,
			Club:               rt.finisher.Club,
			StartingPosition:   rt.position,
			ScheduledStartTime: rt.targetRace.StartTime,
			Status:             domain.StatusNone,
		}
		entry.AppendChangelog(userID, "PROPAGATED_FROM:"+sourceRace.ID)
		if err := p.store.StartEntries().Create(ctx, entry); err != nil {
			return domainerr.Internalf("time-event: create propagated start-entry: %v", err)
		}

		target, err := p.store.Races().Get(ctx, rt.targetRace.ID)
		if err != nil {
			return domainerr.Internalf("time-event: reload target race: %v", err)
		}
		target.StartEntries = append(target.StartEntries, entry.ID)
		target.NoOfContestants = len(target.StartEntries)
		if err := p.store.Races().Update(ctx, target); err != nil {
			return domainerr.Internalf("time-event: persist target race: %v", err)
		}
	default:
		return domainerr.Internalf("time-event: lookup target start-entry: %v", err)
	}
	return nil
}

// hasDownstreamTimeEvents reports whether bib's propagated StartEntry in
// any of race's progression targets already has its own TimeEvents
// recorded against it, which would make retracting the propagation lossy.
func (p *Processor) hasDownstreamTimeEvents(ctx context.Context, race *domain.Race, bib int) (bool, error) {
	if len(race.Rule) == 0 {
		return false, nil
	}
	all, err := p.store.TimeEvents().List(ctx)
	if err != nil {
		return false, domainerr.Internalf("time-event: list for downstream check: %v", err)
	}
	eventsByRace := map[string][]*domain.TimeEvent{}
	for _, e := range all {
		eventsByRace[e.RaceID] = append(eventsByRace[e.RaceID], e)
	}

	for _, branch := range race.Rule {
		if branch.Target == "OUT" {
			continue
		}
		round, index := splitLetter(branch.Target)
		heats, err := p.targetHeats(ctx, race, round, index)
		if err != nil {
			return false, err
		}
		for _, h := range heats {
			entry, err := p.store.StartEntries().GetByRaceAndBib(ctx, h.ID, bib)
			if err != nil {
				continue
			}
			for _, e := range eventsByRace[h.ID] {
				if e.Bib == entry.Bib {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// retractPropagation removes bib's StartEntry from every progression target
// of race, then re-derives propagation from what remains, so a corrected
// heat re-propagates cleanly instead of leaving a stale slot behind.
func (p *Processor) retractPropagation(ctx context.Context, race *domain.Race, bib int, userID string) error {
	if len(race.Rule) == 0 {
		return nil
	}
	for _, branch := range race.Rule {
		if branch.Target == "OUT" {
			continue
		}
		round, index := splitLetter(branch.Target)
		heats, err := p.targetHeats(ctx, race, round, index)
		if err != nil {
			return err
		}
		for _, h := range heats {
			entry, err := p.store.StartEntries().GetByRaceAndBib(ctx, h.ID, bib)
			if err != nil {
				continue
			}
			if err := p.store.StartEntries().Delete(ctx, entry.ID); err != nil {
				return domainerr.Internalf("time-event: delete stale propagated start-entry: %v", err)
			}
			target, err := p.store.Races().Get(ctx, h.ID)
			if err != nil {
				return domainerr.Internalf("time-event: reload target race: %v", err)
			}
			target.StartEntries = removeID(target.StartEntries, entry.ID)
			target.NoOfContestants = len(target.StartEntries)
			if err := p.store.Races().Update(ctx, target); err != nil {
				return domainerr.Internalf("time-event: persist target race: %v", err)
			}
		}
	}
	return p.tryPropagate(ctx, race, userID)
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

// splitLetter decomposes a progression target like "SA" into its round
// ("S") and index ("A").
func splitLetter(letter string) (round, index string) {
	if len(letter) == 0 {
		return "", ""
	}
	return letter[:1], letter[1:]
}

package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
)

// ValidateRaceplan re-checks invariants 1, 3, 4, and 7 against the
// persisted state of plan id and reports the first violation found, without
// mutating anything. An empty string means the plan is consistent.
func (o *Orchestrator) ValidateRaceplan(ctx context.Context, id string) (string, error) {
	plan, err := o.Store.Raceplans().Get(ctx, id)
	if err != nil {
		return "", notFoundOrInternal("raceplan", id, err)
	}

	races, err := o.Store.Races().ListByRaceplanID(ctx, id)
	if err != nil {
		return "", domainerr.Internalf("raceplan: validate: list races: %v", err)
	}

	// Invariant 1: every persisted race for this plan is listed on it.
	inPlan := map[string]bool{}
	for _, rid := range plan.Races {
		inPlan[rid] = true
	}
	for _, r := range races {
		if !inPlan[r.ID] {
			return fmt.Sprintf("invariant 1 violated: race %s not listed in raceplan.races", r.ID), nil
		}
	}

	for _, r := range races {
		// Invariant 3: start-entry count tracks no_of_contestants, within max.
		entries, err := o.Store.StartEntries().ListByRaceID(ctx, r.ID)
		if err != nil {
			return "", domainerr.Internalf("raceplan: validate: list start-entries for %s: %v", r.ID, err)
		}
		if len(entries) > r.MaxNoOfContestants {
			return fmt.Sprintf("invariant 3 violated: race %s has %d start-entries, max is %d", r.ID, len(entries), r.MaxNoOfContestants), nil
		}
		if len(entries) != r.NoOfContestants {
			return fmt.Sprintf("invariant 3 violated: race %s no_of_contestants=%d but has %d start-entries", r.ID, r.NoOfContestants, len(entries)), nil
		}

		// Invariant 4: bibs unique, starting positions unique and dense 1..n.
		if violation := checkBibsAndPositions(r.ID, entries); violation != "" {
			return violation, nil
		}
	}

	// Invariant 7: start times strictly increase with order within a
	// raceclass, respecting the minimum race order within each class.
	if violation := checkStartTimeOrdering(races); violation != "" {
		return violation, nil
	}

	return "", nil
}

func checkBibsAndPositions(raceID string, entries []*domain.StartEntry) string {
	bibs := map[int]bool{}
	positions := map[int]bool{}
	for _, e := range entries {
		if bibs[e.Bib] {
			return fmt.Sprintf("invariant 4 violated: race %s has duplicate bib %d", raceID, e.Bib)
		}
		bibs[e.Bib] = true
		if positions[e.StartingPosition] {
			return fmt.Sprintf("invariant 4 violated: race %s has duplicate starting_position %d", raceID, e.StartingPosition)
		}
		positions[e.StartingPosition] = true
	}
	for i := 1; i <= len(entries); i++ {
		if !positions[i] {
			return fmt.Sprintf("invariant 4 violated: race %s starting_positions are not dense 1..%d", raceID, len(entries))
		}
	}
	return ""
}

func checkStartTimeOrdering(races []*domain.Race) string {
	byClass := map[string][]*domain.Race{}
	for _, r := range races {
		byClass[r.Raceclass] = append(byClass[r.Raceclass], r)
	}
	for class, rs := range byClass {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Order < rs[j].Order })
		for i := 1; i < len(rs); i++ {
			if !rs[i].StartTime.After(rs[i-1].StartTime) {
				return fmt.Sprintf("invariant 7 violated: raceclass %q race order %d does not start after order %d", class, rs[i].Order, rs[i-1].Order)
			}
		}
	}
	return ""
}

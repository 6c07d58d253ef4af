package raceplan

import (
	"sort"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
)

// SelectSprintRow picks the progression-matrix row whose
// MaxNoOfContestants is the smallest value ≥ N, using the raceclass's
// Ranking flag to choose between the ranked and non-ranked config surface.
func SelectSprintRow(format *domain.CompetitionFormat, rc domain.Raceclass) (domain.ProgressionRow, error) {
	rows := format.RaceConfigRanked
	if !rc.Ranking {
		rows = format.RaceConfigNonRanked
	}
	if len(rows) == 0 {
		rows = domain.DefaultSprintMatrix()
	}

	sorted := append([]domain.ProgressionRow{}, rows...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MaxNoOfContestants < sorted[j].MaxNoOfContestants
	})

	for _, row := range sorted {
		if rc.NoOfContestants <= row.MaxNoOfContestants {
			return row, nil
		}
	}
	return domain.ProgressionRow{}, domainerr.Validationf(
		"raceplan: raceclass %q has %d contestants, exceeding the largest progression-matrix row (%d)",
		rc.Name, rc.NoOfContestants, sorted[len(sorted)-1].MaxNoOfContestants)
}

// IsFirstRoundRace reports whether r is a first-round race of its
// raceclass's bracket: a Q heat when the row has quarterfinals, or an SA
// heat when the row skips straight to semifinals.
func IsFirstRoundRace(r *domain.Race, row domain.ProgressionRow) bool {
	if row.QHeats > 0 {
		return r.Round == domain.RoundQ
	}
	return r.Round == domain.RoundS && r.Index == "A"
}

// ruleCounts partitions a heat of the given size across a rule's branches,
// in branch order, the Rest branch absorbing whatever remains.
func ruleCounts(rule domain.Rule, size int) map[string]int {
	out := map[string]int{}
	remaining := size
	for _, branch := range rule {
		if branch.Rest {
			out[branch.Target] += remaining
			remaining = 0
			continue
		}
		c := branch.Count
		if c > remaining {
			c = remaining
		}
		out[branch.Target] += c
		remaining -= c
	}
	return out
}

// splitEvenly divides total across parts as evenly as possible: the
// quotient plus remainder split used by the progression matrix, with the
// earliest heats taking the extra contestant.
func splitEvenly(total, parts int) []int {
	if parts <= 0 {
		return nil
	}
	base := total / parts
	rem := total % parts
	out := make([]int, parts)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

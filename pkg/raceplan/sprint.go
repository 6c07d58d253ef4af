package raceplan

import (
	"skirace/pkg/domain"
)

// buildIndividualSprint builds the full bracket for one raceclass:
// all Q heats, then SC, then SA, then FC, then FB, then FA, in that order,
// each race's max_no_of_contestants smoothed evenly across the heats of
// its round, and each source race's Rule recorded — with Offset per branch
// resolved — for the Time-Event Processor to apply once results come in.
func buildIndividualSprint(event *domain.Event, format *domain.CompetitionFormat, rc domain.Raceclass, raceplanID string, cur *cursor) ([]*domain.Race, error) {
	row, err := SelectSprintRow(format, rc)
	if err != nil {
		return nil, err
	}

	n := rc.NoOfContestants
	heatGap := format.EffectiveTimeBetweenHeats()
	roundGap := format.TimeBetweenRounds

	pool := map[string]int{} // running totals per target pool: SA, SC, FA, FB, FC, OUT

	var races []*domain.Race
	firstRoundEmitted := false

	advanceRound := func() {
		if firstRoundEmitted {
			cur.advance(roundGap)
		}
	}

	emitHeats := func(heats int, sizesTotal int, round, index string, rule domain.Rule) []int {
		advanceRound()
		sizes := splitEvenly(sizesTotal, heats)
		for h, size := range sizes {
			r := newRace(event, raceplanID, rc, domain.DatatypeIndividualSprint, size)
			r.Round = round
			r.Index = index
			r.Heat = h + 1
			if rule != nil {
				r.Rule = resolveRule(rule, size, pool)
			}
			cur.emit(r)
			if h < len(sizes)-1 {
				cur.advance(heatGap)
			}
			races = append(races, r)
		}
		firstRoundEmitted = true
		return sizes
	}

	// Q
	if row.QHeats > 0 {
		emitHeats(row.QHeats, n, domain.RoundQ, "", row.QRule)
	} else {
		pool["SA"] += n
	}

	// SC (consolation semifinal pool), emitted before SA per spec order.
	if row.SCHeats > 0 {
		emitHeats(row.SCHeats, pool["SC"], domain.RoundS, "C", row.SCRule)
	}

	// SA
	if row.SHeats > 0 {
		emitHeats(row.SHeats, pool["SA"], domain.RoundS, "A", row.SRule)
	}

	// Finals: FC, then FB, then FA.
	for _, letter := range []string{"C", "B", "A"} {
		if !containsFinal(row.Finals, letter) {
			continue
		}
		advanceRound()
		max := pool["F"+letter]
		if max <= 0 {
			max = n
		}
		r := newRace(event, raceplanID, rc, domain.DatatypeIndividualSprint, max)
		r.Round = domain.RoundF
		r.Index = letter
		r.Heat = 1
		cur.emit(r)
		races = append(races, r)
		firstRoundEmitted = true
	}

	return races, nil
}

// resolveRule partitions one heat of the given size across rule's
// branches, in branch order, recording each branch's cumulative Offset
// into pool (which running totals persist across the whole round so later
// heats' offsets continue where earlier heats left off) and mutating pool
// with this heat's contribution.
func resolveRule(rule domain.Rule, size int, pool map[string]int) domain.Rule {
	remaining := size
	out := make(domain.Rule, 0, len(rule))
	for _, b := range rule {
		c := b.Count
		if b.Rest || c > remaining {
			c = remaining
		}
		out = append(out, domain.RuleTarget{Target: b.Target, Count: c, Rest: b.Rest, Offset: pool[b.Target]})
		pool[b.Target] += c
		remaining -= c
	}
	return out
}

func containsFinal(finals []string, letter string) bool {
	for _, f := range finals {
		if f == "F"+letter {
			return true
		}
	}
	return false
}

package raceplan

import (
	"time"

	"skirace/pkg/domain"
)

// buildIntervalStart emits the single IntervalStartRace for a raceclass,
// then advances the cursor past every contestant's interval slot plus the
// configured between-class gap, so the outer loop does not apply its own
// gap for this kind.
func buildIntervalStart(event *domain.Event, format *domain.CompetitionFormat, rc domain.Raceclass, raceplanID string, cur *cursor) []*domain.Race {
	r := newRace(event, raceplanID, rc, domain.DatatypeIntervalStart, rc.NoOfContestants)
	cur.emit(r)

	cur.advance(time.Duration(rc.NoOfContestants) * format.Intervals)
	cur.advance(format.TimeBetweenClasses)

	return []*domain.Race{r}
}

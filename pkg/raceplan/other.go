package raceplan

import "skirace/pkg/domain"

// buildSingleRace emits the one race a raceclass gets under Mass Start,
// Skiathlon, Pursuit, Team Sprint, and Relay. Pursuit and
// Skiathlon carry no multi-stage marker beyond the race's datatype and share
// the single-race plan shape; Team Sprint and Relay additionally record
// TeamSize for display/validation only.
func buildSingleRace(kind Kind, event *domain.Event, format *domain.CompetitionFormat, rc domain.Raceclass, raceplanID string, cur *cursor) []*domain.Race {
	max := rc.NoOfContestants
	if format.MaxNoOfContestantsInRace > 0 && format.MaxNoOfContestantsInRace < max {
		max = format.MaxNoOfContestantsInRace
	}

	var datatype domain.Datatype
	switch kind {
	case KindMassStart:
		datatype = domain.DatatypeMassStart
	case KindSkiathlon:
		datatype = domain.DatatypeSkiathlon
	case KindPursuit:
		datatype = domain.DatatypePursuit
	case KindTeamSprint:
		datatype = domain.DatatypeTeamSprint
	case KindRelay:
		datatype = domain.DatatypeRelay
	default:
		datatype = domain.DatatypeMassStart
	}

	r := newRace(event, raceplanID, rc, datatype, max)
	if kind == KindTeamSprint || kind == KindRelay {
		r.TeamSize = teamSizeFromFormat(format)
	}
	cur.emit(r)

	return []*domain.Race{r}
}

// teamSizeFromFormat reads the configured team size off the competition
// format. The upstream catalog does not carry a dedicated field for it in
// the subset this service consumes, so it is derived from
// MaxNoOfContestantsInRace when present and otherwise left at the
// conventional relay/team-sprint size of 2.
func teamSizeFromFormat(format *domain.CompetitionFormat) int {
	if format.MaxNoOfContestantsInRace > 0 {
		return format.MaxNoOfContestantsInRace
	}
	return 2
}

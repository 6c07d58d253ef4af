// Package raceplan implements the Raceplan Generator: deterministic,
// per-competition-format construction of the full round-by-round schedule
// for an event, with start times allocated and inter-race spacing
// enforced.
package raceplan

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
)

// Kind is the sum-type tag selecting which generation algorithm a
// CompetitionFormat maps to.
type Kind string

const (
	KindIntervalStart    Kind = "interval_start"
	KindIndividualSprint Kind = "individual_sprint"
	KindMassStart        Kind = "mass_start"
	KindSkiathlon        Kind = "skiathlon"
	KindPursuit          Kind = "pursuit"
	KindTeamSprint       Kind = "team_sprint"
	KindRelay            Kind = "relay"
)

// ClassifyFormat maps a CompetitionFormat's name (and, for the plain
// interval case, its starting_order) to a generator Kind.
func ClassifyFormat(format *domain.CompetitionFormat) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(format.Name))
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")

	switch {
	case name == "interval_start" || format.StartingOrder == "interval_start":
		return KindIntervalStart, nil
	case strings.Contains(name, "sprint") && !strings.Contains(name, "team"):
		return KindIndividualSprint, nil
	case strings.Contains(name, "team_sprint"):
		return KindTeamSprint, nil
	case strings.Contains(name, "relay"):
		return KindRelay, nil
	case strings.Contains(name, "skiathlon"):
		return KindSkiathlon, nil
	case strings.Contains(name, "pursuit"):
		return KindPursuit, nil
	case strings.Contains(name, "mass_start") || strings.Contains(name, "massstart"):
		return KindMassStart, nil
	default:
		return "", domainerr.Validationf("raceplan: unsupported competition format %q", format.Name)
	}
}

// Generate builds the full Raceplan and its Races for one event.
// It is pure: no I/O, no ids beyond what uuid.NewString generates, fully
// deterministic given identical inputs.
func Generate(event *domain.Event, format *domain.CompetitionFormat, raceclasses []domain.Raceclass) (*domain.Raceplan, []*domain.Race, error) {
	if len(raceclasses) == 0 {
		return nil, nil, domainerr.Validationf("raceplan: event %s has no raceclasses", event.ID)
	}

	kind, err := ClassifyFormat(format)
	if err != nil {
		return nil, nil, err
	}

	t0, err := parseEventStart(event)
	if err != nil {
		return nil, nil, err
	}

	sorted := append([]domain.Raceclass{}, raceclasses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Group != sorted[j].Group {
			return sorted[i].Group < sorted[j].Group
		}
		return sorted[i].Order < sorted[j].Order
	})

	raceplanID := uuid.NewString()
	cur := &cursor{t: t0}

	var allRaces []*domain.Race
	lastGroup := sorted[0].Group
	for i, rc := range sorted {
		if rc.NoOfContestants <= 0 {
			return nil, nil, domainerr.Validationf("raceplan: raceclass %q has no contestants", rc.Name)
		}

		// The common framework's between-class gap. Interval Start
		// folds this into its own advance step, so it is skipped
		// here for that kind to avoid double-counting.
		if i > 0 && kind != KindIntervalStart {
			gap := format.TimeBetweenRaces
			if rc.Group != lastGroup {
				gap = format.TimeBetweenGroups
			}
			cur.advance(gap)
		}
		lastGroup = rc.Group

		var classRaces []*domain.Race
		switch kind {
		case KindIntervalStart:
			classRaces = buildIntervalStart(event, format, rc, raceplanID, cur)
		case KindIndividualSprint:
			classRaces, err = buildIndividualSprint(event, format, rc, raceplanID, cur)
		default:
			classRaces = buildSingleRace(kind, event, format, rc, raceplanID, cur)
		}
		if err != nil {
			return nil, nil, err
		}
		allRaces = append(allRaces, classRaces...)
	}

	ids := make([]string, 0, len(allRaces))
	for _, r := range allRaces {
		ids = append(ids, r.ID)
	}

	plan := &domain.Raceplan{
		ID:              raceplanID,
		EventID:         event.ID,
		NoOfContestants: 0,
		Races:           ids,
	}
	return plan, allRaces, nil
}

// parseEventStart combines date_of_event and time_of_event into t0.
func parseEventStart(event *domain.Event) (time.Time, error) {
	layout := "2006-01-02 15:04:05"
	t, err := time.Parse(layout, event.DateOfEvent+" "+event.TimeOfEvent)
	if err != nil {
		return time.Time{}, domainerr.Validationf("raceplan: invalid event date/time %q %q: %v", event.DateOfEvent, event.TimeOfEvent, err)
	}
	return t, nil
}

func newRace(event *domain.Event, raceplanID string, rc domain.Raceclass, datatype domain.Datatype, max int) *domain.Race {
	return &domain.Race{
		ID:                 uuid.NewString(),
		Datatype:           datatype,
		Raceclass:          rc.Name,
		EventID:            event.ID,
		RaceplanID:         raceplanID,
		MaxNoOfContestants: max,
		NoOfContestants:    0,
		StartEntries:       []string{},
		Results:            map[string]string{},
	}
}

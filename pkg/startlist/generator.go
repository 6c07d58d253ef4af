// Package startlist implements the Startlist Generator: seeding
// contestants into the first-round races of every raceclass and assigning
// bibs, positions, and scheduled start times.
package startlist

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
	"skirace/pkg/raceplan"
)

// Result is everything the Startlist Generator produces: the Startlist
// document, the first-round StartEntry documents, and the subset of Races
// whose NoOfContestants/StartEntries changed as a result.
type Result struct {
	Startlist    *domain.Startlist
	StartEntries []*domain.StartEntry
	UpdatedRaces []*domain.Race
}

// Generate seeds every raceclass's first round. races is the full
// set produced by raceplan.Generate for this event; contestants must all
// carry a bib already assigned by the events service, or generation fails
// with VALIDATION.
func Generate(event *domain.Event, format *domain.CompetitionFormat, raceclasses []domain.Raceclass, races []*domain.Race, contestants []domain.Contestant) (*Result, error) {
	for _, c := range contestants {
		if c.Bib <= 0 {
			return nil, domainerr.Validationf("startlist: contestant %q has no bib assigned", c.ID)
		}
	}

	racesByClass := map[string][]*domain.Race{}
	for _, r := range races {
		racesByClass[r.Raceclass] = append(racesByClass[r.Raceclass], r)
	}

	contestantsByClass := map[string][]domain.Contestant{}
	for _, c := range contestants {
		contestantsByClass[c.Raceclass] = append(contestantsByClass[c.Raceclass], c)
	}

	startlistID := uuid.NewString()
	var allEntries []*domain.StartEntry
	var updatedRaces []*domain.Race

	for _, rc := range raceclasses {
		firstRound, err := firstRoundRaces(format, rc, racesByClass[rc.Name])
		if err != nil {
			return nil, err
		}
		if len(firstRound) == 0 {
			continue
		}

		roster := append([]domain.Contestant{}, contestantsByClass[rc.Name]...)
		sort.SliceStable(roster, func(i, j int) bool {
			if roster[i].SeedingPoints != roster[j].SeedingPoints {
				return roster[i].SeedingPoints > roster[j].SeedingPoints
			}
			return roster[i].RegistrationNo < roster[j].RegistrationNo
		})

		heats := seedSerpentine(roster, len(firstRound))

		for h, heatRoster := range heats {
			race := firstRound[h]
			entries := make([]string, 0, len(heatRoster))
			for i, c := range heatRoster {
				position := i + 1
				entry := &domain.StartEntry{
					ID:                 uuid.NewString(),
					RaceID:             race.ID,
					StartlistID:        startlistID,
					Bib:                c.Bib,
					Name:               c.Name,
					Club:               c.Club,
					StartingPosition:   position,
					ScheduledStartTime: scheduledStartTime(race, format, position),
					Status:             domain.StatusNone,
				}
				allEntries = append(allEntries, entry)
				entries = append(entries, entry.ID)
			}
			race.StartEntries = entries
			race.NoOfContestants = len(entries)
			updatedRaces = append(updatedRaces, race)
		}
	}

	ids := make([]string, 0, len(allEntries))
	for _, e := range allEntries {
		ids = append(ids, e.ID)
	}

	return &Result{
		Startlist: &domain.Startlist{
			ID:              startlistID,
			EventID:         event.ID,
			NoOfContestants: len(allEntries),
			StartEntries:    ids,
		},
		StartEntries: allEntries,
		UpdatedRaces: updatedRaces,
	}, nil
}

// firstRoundRaces selects and orders (by heat number) the races a
// raceclass starts its contestants in.
func firstRoundRaces(format *domain.CompetitionFormat, rc domain.Raceclass, classRaces []*domain.Race) ([]*domain.Race, error) {
	if len(classRaces) == 0 {
		return nil, domainerr.Validationf("startlist: raceclass %q has no races in the plan", rc.Name)
	}
	if classRaces[0].Datatype != domain.DatatypeIndividualSprint {
		return classRaces[:1], nil
	}

	row, err := raceplan.SelectSprintRow(format, rc)
	if err != nil {
		return nil, err
	}
	var first []*domain.Race
	for _, r := range classRaces {
		if raceplan.IsFirstRoundRace(r, row) {
			first = append(first, r)
		}
	}
	sort.Slice(first, func(i, j int) bool { return first[i].Heat < first[j].Heat })
	return first, nil
}

// seedSerpentine deals roster into H heats in snake order: heat 1..H, then
// H..1, then 1..H, and so on, stopping early if the roster is smaller than
// H.
func seedSerpentine(roster []domain.Contestant, h int) [][]domain.Contestant {
	heats := make([][]domain.Contestant, h)
	for i, c := range roster {
		lap := i / h
		pos := i % h
		if lap%2 == 1 {
			pos = h - 1 - pos
		}
		heats[pos] = append(heats[pos], c)
	}
	return heats
}

func scheduledStartTime(race *domain.Race, format *domain.CompetitionFormat, position int) time.Time {
	if race.Datatype == domain.DatatypeIntervalStart {
		return race.StartTime.Add(time.Duration(position-1) * format.Intervals)
	}
	return race.StartTime
}

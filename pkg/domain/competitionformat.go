package domain

import "time"

// CompetitionFormat is the subset of the competition-format-service's
// document this service needs. Starting order selects whether the
// Startlist Generator treats a raceclass as interval or draw-seeded.
type CompetitionFormat struct {
	Name                          string          `json:"name"`
	StartingOrder                 string          `json:"starting_order"` // "interval_start" | "draw"
	StartProcedure                string          `json:"start_procedure"`
	TimeBetweenGroups             time.Duration   `json:"time_between_groups"`
	TimeBetweenRounds             time.Duration   `json:"time_between_rounds"`
	TimeBetweenRaces              time.Duration   `json:"time_between_races"`
	TimeBetweenHeats              time.Duration   `json:"time_between_heats"`
	TimeBetweenClasses            time.Duration   `json:"time_between_classes"`
	Intervals                     time.Duration   `json:"intervals"`
	MaxNoOfContestantsInRaceclass int             `json:"max_no_of_contestants_in_raceclass"`
	MaxNoOfContestantsInRace      int             `json:"max_no_of_contestants_in_race"`
	RoundsRankedClasses           []string        `json:"rounds_ranked_classes"`
	RoundsNonRankedClasses        []string        `json:"rounds_non_ranked_classes"`
	RaceConfigRanked              []ProgressionRow `json:"race_config_ranked"`
	RaceConfigNonRanked           []ProgressionRow `json:"race_config_non_ranked"`
}

// EffectiveTimeBetweenHeats returns the configured gap between heats within
// a sprint round, defaulting to TimeBetweenRaces when unset.
func (f *CompetitionFormat) EffectiveTimeBetweenHeats() time.Duration {
	if f.TimeBetweenHeats > 0 {
		return f.TimeBetweenHeats
	}
	return f.TimeBetweenRaces
}

// ProgressionRow is one row of the Individual Sprint progression matrix.
// MaxNoOfContestants is the "N" column; heats/rules for a round are
// zero/nil when that round does not exist for this row (Q for N=7 and
// N=16; SC for N=7,16,24).
type ProgressionRow struct {
	MaxNoOfContestants int    `json:"max_no_of_contestants"`
	QHeats             int    `json:"q_heats"`
	QRule              Rule   `json:"q_rule"`
	SHeats             int    `json:"s_heats"`
	SRule              Rule   `json:"s_rule"`
	SCHeats            int    `json:"sc_heats"`
	SCRule             Rule   `json:"sc_rule"`
	Finals             []string `json:"finals"` // subset of "FA","FB","FC", bracket order FC,FB,FA
}

// DefaultSprintMatrix is the normative progression-matrix row set, used
// when the config table the raceclass's ranking flag selects
// (race_config_ranked or race_config_non_ranked) is empty (e.g. in tests or
// for formats that have not customized it).
func DefaultSprintMatrix() []ProgressionRow {
	return []ProgressionRow{
		{
			MaxNoOfContestants: 7,
			SHeats:             1,
			SRule:              Rule{{Target: "FA", Rest: true}},
			Finals:             []string{"FA"},
		},
		{
			MaxNoOfContestants: 16,
			SHeats:             2,
			SRule:              Rule{{Target: "FA", Count: 4}, {Target: "FB", Rest: true}},
			Finals:             []string{"FA", "FB"},
		},
		{
			MaxNoOfContestants: 24,
			QHeats:             3,
			QRule:              Rule{{Target: "SA", Count: 5}, {Target: "FC", Rest: true}},
			SHeats:             2,
			SRule:              Rule{{Target: "FA", Count: 4}, {Target: "FB", Rest: true}},
			Finals:             []string{"FA", "FB", "FC"},
		},
		{
			MaxNoOfContestants: 32,
			QHeats:             4,
			QRule:              Rule{{Target: "SA", Count: 4}, {Target: "SC", Rest: true}},
			SHeats:             2,
			SRule:              Rule{{Target: "FA", Count: 4}, {Target: "FB", Rest: true}},
			SCHeats:            2,
			SCRule:             Rule{{Target: "FC", Count: 4}, {Target: "OUT", Rest: true}},
			Finals:             []string{"FA", "FB", "FC"},
		},
		{
			MaxNoOfContestants: 40,
			QHeats:             5,
			QRule:              Rule{{Target: "SA", Count: 5}, {Target: "SC", Rest: true}},
			SHeats:             3,
			SRule:              Rule{{Target: "FA", Count: 3}, {Target: "FB", Count: 3}, {Target: "OUT", Rest: true}},
			SCHeats:            2,
			SCRule:             Rule{{Target: "FC", Count: 4}, {Target: "OUT", Rest: true}},
			Finals:             []string{"FA", "FB", "FC"},
		},
		{
			MaxNoOfContestants: 48,
			QHeats:             6,
			QRule:              Rule{{Target: "SA", Count: 4}, {Target: "SC", Rest: true}},
			SHeats:             3,
			SRule:              Rule{{Target: "FA", Count: 3}, {Target: "FB", Count: 3}, {Target: "OUT", Rest: true}},
			SCHeats:            3,
			SCRule:             Rule{{Target: "FC", Count: 3}, {Target: "OUT", Rest: true}},
			Finals:             []string{"FA", "FB", "FC"},
		},
		{
			MaxNoOfContestants: 56,
			QHeats:             7,
			QRule:              Rule{{Target: "SA", Count: 5}, {Target: "SC", Rest: true}},
			SHeats:             4,
			SRule:              Rule{{Target: "FA", Count: 2}, {Target: "FB", Count: 2}, {Target: "OUT", Rest: true}},
			SCHeats:            3,
			SCRule:             Rule{{Target: "FC", Count: 3}, {Target: "OUT", Rest: true}},
			Finals:             []string{"FA", "FB", "FC"},
		},
		{
			MaxNoOfContestants: 80,
			QHeats:             8,
			QRule:              Rule{{Target: "SA", Count: 4}, {Target: "SC", Rest: true}},
			SHeats:             4,
			SRule:              Rule{{Target: "FA", Count: 2}, {Target: "FB", Count: 2}, {Target: "OUT", Rest: true}},
			SCHeats:            4,
			SCRule:             Rule{{Target: "FC", Count: 2}, {Target: "OUT", Rest: true}},
			Finals:             []string{"FA", "FB", "FC"},
		},
	}
}

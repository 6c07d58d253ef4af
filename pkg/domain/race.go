package domain

import "time"

// Datatype tags which of the two Race shapes a document carries. Both
// shapes share the common fields below; the sprint-only fields are zero
// valued on an IntervalStartRace.
type Datatype string

const (
	DatatypeIntervalStart    Datatype = "interval_start"
	DatatypeIndividualSprint Datatype = "individual_sprint"
	DatatypeMassStart        Datatype = "mass_start"
	DatatypeSkiathlon        Datatype = "skiathlon"
	DatatypePursuit          Datatype = "pursuit"
	DatatypeTeamSprint       Datatype = "team_sprint"
	DatatypeRelay            Datatype = "relay"
)

// Round names a sprint bracket round. Index distinguishes the A/B/C lanes
// within a round (semifinal or final); it is empty for Q and for any
// non-sprint race.
const (
	RoundQ = "Q"
	RoundS = "S"
	RoundF = "F"
)

// RuleTarget is one branch of a progression rule: Count contestants (in
// rank order within the heat) advance to the race tagged Target. Rest
// means "all contestants not already claimed by an earlier branch",
// and is always the last branch of a rule.
type RuleTarget struct {
	Target string `msgpack:"target" json:"target"`
	Count  int    `msgpack:"count" json:"count"`
	Rest   bool   `msgpack:"rest,omitempty" json:"rest,omitempty"`

	// Offset is the number of contestants this round already sent to
	// Target by earlier heats (heat order, not arrival order). It is
	// resolved once at plan-generation time and lets the
	// Time-Event Processor compute each propagated contestant's absolute
	// position within the target round without re-deriving heat order.
	Offset int `msgpack:"offset,omitempty" json:"offset,omitempty"`
}

// Rule is an ordered list of RuleTarget branches evaluated top to bottom
// against a heat's finish-order ranking.
type Rule []RuleTarget

// Race is the union of IntervalStartRace and IndividualSprintRace (and the
// single-race-per-class formats: mass start, skiathlon, pursuit, team
// sprint, relay). Datatype selects which fields are meaningful.
type Race struct {
	ID                  string            `msgpack:"id" json:"id"`
	Datatype            Datatype          `msgpack:"datatype" json:"datatype"`
	Raceclass           string            `msgpack:"raceclass" json:"raceclass"`
	Order               int               `msgpack:"order" json:"order"`
	StartTime           time.Time         `msgpack:"start_time" json:"start_time"`
	MaxNoOfContestants  int               `msgpack:"max_no_of_contestants" json:"max_no_of_contestants"`
	NoOfContestants     int               `msgpack:"no_of_contestants" json:"no_of_contestants"`
	EventID             string            `msgpack:"event_id" json:"event_id"`
	RaceplanID          string            `msgpack:"raceplan_id" json:"raceplan_id"`
	StartEntries        []string          `msgpack:"start_entries" json:"start_entries"`
	Results             map[string]string `msgpack:"results" json:"results"` // timing_point -> RaceResult.ID

	// IndividualSprintRace-only fields. Zero valued otherwise.
	Round string `msgpack:"round,omitempty" json:"round,omitempty"`
	Index string `msgpack:"index,omitempty" json:"index,omitempty"`
	Heat  int    `msgpack:"heat,omitempty" json:"heat,omitempty"`
	Rule  Rule   `msgpack:"rule,omitempty" json:"rule,omitempty"`

	// Team Sprint / Relay display-only field; does not change the
	// single-race-per-class plan shape.
	TeamSize int `msgpack:"team_size,omitempty" json:"team_size,omitempty"`
}

// IsBracket reports whether this race participates in bracket progression
// (qualifier propagation applies only to these).
func (r *Race) IsBracket() bool {
	return r.Datatype == DatatypeIndividualSprint
}

func (r *Race) Validate() error {
	if r.EventID == "" {
		return validationf("race: event_id is required")
	}
	if r.RaceplanID == "" {
		return validationf("race: raceplan_id is required")
	}
	if r.Raceclass == "" {
		return validationf("race: raceclass is required")
	}
	if r.Order <= 0 {
		return validationf("race: order must be positive")
	}
	if r.MaxNoOfContestants <= 0 {
		return validationf("race: max_no_of_contestants must be positive")
	}
	if r.NoOfContestants < 0 || r.NoOfContestants > r.MaxNoOfContestants {
		return validationf("race: no_of_contestants out of range")
	}
	if r.StartTime.IsZero() {
		return validationf("race: start_time is required")
	}
	return nil
}

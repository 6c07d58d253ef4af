package domain

// ResultStatus is the lifecycle stage of a RaceResult. It is set to
// Unofficial as soon as a RaceResult document is created and advances to
// Official only through an operator action on the race-results CRUD
// surface.
type ResultStatus string

const (
	ResultNone       ResultStatus = ""
	ResultUnofficial ResultStatus = "UNOFFICIAL"
	ResultOfficial   ResultStatus = "OFFICIAL"
)

// RaceResult is the authoritative ranking of TimeEvents for one
// (race, timing_point) pair.
type RaceResult struct {
	ID              string       `msgpack:"id" json:"id"`
	RaceID          string       `msgpack:"race_id" json:"race_id"`
	TimingPoint     string       `msgpack:"timing_point" json:"timing_point"`
	NoOfContestants int          `msgpack:"no_of_contestants" json:"no_of_contestants"`
	RankingSequence []string     `msgpack:"ranking_sequence" json:"ranking_sequence"`
	Status          ResultStatus `msgpack:"status" json:"status"`
}

func (r *RaceResult) Validate() error {
	if r.RaceID == "" {
		return validationf("race-result: race_id is required")
	}
	if r.TimingPoint == "" {
		return validationf("race-result: timing_point is required")
	}
	return nil
}

package domain

import "time"

// TimingPoint names a point along a race where a TimeEvent can be
// registered. Valid sets differ per race Datatype.
type TimingPoint string

const (
	TimingStart    TimingPoint = "Start"
	TimingFinish   TimingPoint = "Finish"
	TimingTemplate TimingPoint = "Template"
)

// ValidTimingPoints returns the timing points accepted for a race of the
// given datatype.
func ValidTimingPoints(d Datatype) []TimingPoint {
	if d == DatatypeIndividualSprint {
		return []TimingPoint{TimingStart, TimingFinish, TimingTemplate}
	}
	return []TimingPoint{TimingStart, TimingFinish}
}

type TimeEventStatus string

const (
	TimeEventOK    TimeEventStatus = "OK"
	TimeEventError TimeEventStatus = "Error"
)

// TimeEvent is one timing observation at a timing point. Append-only: a
// correction is a delete followed by a fresh insert, never an in-place edit
// of RegistrationTime/Bib/TimingPoint.
type TimeEvent struct {
	ID                string          `msgpack:"id" json:"id"`
	EventID           string          `msgpack:"event_id" json:"event_id"`
	RaceID            string          `msgpack:"race_id" json:"race_id"`
	Bib               int             `msgpack:"bib" json:"bib"`
	Name              string          `msgpack:"name" json:"name"`
	Club              string          `msgpack:"club" json:"club"`
	TimingPoint       string          `msgpack:"timing_point" json:"timing_point"`
	RegistrationTime  time.Time       `msgpack:"registration_time" json:"registration_time"`
	Rank              int             `msgpack:"rank,omitempty" json:"rank,omitempty"`
	Status            TimeEventStatus `msgpack:"status" json:"status"`
	NextRace          string          `msgpack:"next_race,omitempty" json:"next_race,omitempty"`
	NextRaceID        string          `msgpack:"next_race_id,omitempty" json:"next_race_id,omitempty"`
	NextRacePosition  int             `msgpack:"next_race_position,omitempty" json:"next_race_position,omitempty"`
	Changelog         []Changelog     `msgpack:"changelog" json:"changelog"`

	// Seq is a KSUID assigned at repository insertion time. It sorts
	// lexically by creation instant and is the stable tie-break key for two
	// time-events with an identical registration_time and bib. It is
	// internal bookkeeping, never accepted from a client.
	Seq string `msgpack:"seq" json:"-"`
}

func (t *TimeEvent) Validate() error {
	if t.RaceID == "" {
		return validationf("time-event: race_id is required")
	}
	if t.TimingPoint == "" {
		return validationf("time-event: timing_point is required")
	}
	if t.RegistrationTime.IsZero() {
		return validationf("time-event: registration_time is required")
	}
	return nil
}

func (t *TimeEvent) AppendChangelog(userID, comment string) {
	t.Changelog = append(t.Changelog, Changelog{Timestamp: time.Now(), UserID: userID, Comment: comment})
}

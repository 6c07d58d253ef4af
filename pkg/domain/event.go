package domain

// Event is the subset of the events-service's Event document this service
// needs to build a raceplan.
type Event struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	DateOfEvent            string `json:"date_of_event"` // "2006-01-02"
	TimeOfEvent            string `json:"time_of_event"` // "15:04:05"
	CompetitionFormatName  string `json:"competition_format"`
}

// Raceclass groups contestants that race against each other. Ranking
// selects between the ranked and non-ranked round sets for the Individual
// Sprint format.
type Raceclass struct {
	Name            string `json:"name"`
	Ageclasses      []string `json:"ageclasses"`
	NoOfContestants int    `json:"no_of_contestants"`
	Ranking         bool   `json:"ranking"`
	Order           int    `json:"order"`
	Group           int    `json:"group"`
}

// Contestant is the subset of the events-service Contestant document
// needed to seed a startlist.
type Contestant struct {
	ID              string `json:"id"`
	Bib             int    `json:"bib"`
	Name            string `json:"name"`
	Club            string `json:"club"`
	Raceclass       string `json:"raceclass"`
	SeedingPoints   int    `json:"seeding_points"`
	RegistrationNo  int    `json:"registration_no"`
}

package domain

import "time"

// Changelog is an immutable, append-only note attached to a StartEntry or a
// TimeEvent. Entries are never edited or removed once written.
type Changelog struct {
	Timestamp time.Time `msgpack:"timestamp" json:"timestamp"`
	UserID    string    `msgpack:"user_id" json:"user_id"`
	Comment   string    `msgpack:"comment" json:"comment"`
}

// SystemUser is the changelog author recorded when no bearer-token subject
// is available.
const SystemUser = "system"

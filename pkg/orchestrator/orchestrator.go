// Package orchestrator implements the Command Orchestrator: the only
// layer allowed to perform multi-document writes, so the cross-document
// invariants hold before any command returns.
package orchestrator

import (
	"context"

	"skirace/pkg/adapters"
	"skirace/pkg/domain"
	"skirace/pkg/keymutex"
	"skirace/pkg/store"
	"skirace/pkg/timeevent"
)

// Orchestrator is the single entry point CRUD commands and the generation
// commands go through. It holds no business state of its own beyond the
// per-event_id generation lock; everything durable lives in store.
type Orchestrator struct {
	Store       store.Store
	Events      *adapters.EventsAdapter
	Formats     *adapters.CompetitionFormatAdapter
	TimeEvents  *timeevent.Processor
	generation  *keymutex.Map
}

func New(s store.Store, events *adapters.EventsAdapter, formats *adapters.CompetitionFormatAdapter) *Orchestrator {
	return &Orchestrator{
		Store:      s,
		Events:     events,
		Formats:    formats,
		TimeEvents: timeevent.New(s),
		generation: keymutex.New(),
	}
}

// journal is the in-memory rollback log for a logical unit: an ordered
// list of compensating actions, run in reverse on failure.
type journal struct {
	actions []func(ctx context.Context)
}

func (j *journal) add(undo func(ctx context.Context)) {
	j.actions = append(j.actions, undo)
}

func (j *journal) rollback(ctx context.Context) {
	for i := len(j.actions) - 1; i >= 0; i-- {
		j.actions[i](ctx)
	}
}

// changelogAuthor resolves the userID to record on a Changelog entry: the
// bearer token's subject when the caller has one, domain.SystemUser
// otherwise.
func changelogAuthor(userID string) string {
	if userID == "" {
		return domain.SystemUser
	}
	return userID
}

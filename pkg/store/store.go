// Package store is the repository layer: per-entity collections
// keyed by id, with secondary lookups on the referential keys the rest of
// the system needs. It purposely knows nothing about generation algorithms
// or HTTP — only persistence and indexed retrieval.
package store

import (
	"context"

	"skirace/pkg/domain"
)

// Store is the full repository surface. Two implementations exist: Memory
// (tests, no disk) and Badger (the default, on-disk).
type Store interface {
	Raceplans() RaceplanRepo
	Races() RaceRepo
	StartEntries() StartEntryRepo
	Startlists() StartlistRepo
	TimeEvents() TimeEventRepo
	RaceResults() RaceResultRepo

	// Ping checks the underlying engine is reachable, for the /ready probe.
	Ping(ctx context.Context) error
	Close() error
}

type RaceplanRepo interface {
	Create(ctx context.Context, p *domain.Raceplan) error
	Get(ctx context.Context, id string) (*domain.Raceplan, error)
	Update(ctx context.Context, p *domain.Raceplan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Raceplan, error)
	GetByEventID(ctx context.Context, eventID string) (*domain.Raceplan, error)
}

type RaceRepo interface {
	Create(ctx context.Context, r *domain.Race) error
	Get(ctx context.Context, id string) (*domain.Race, error)
	Update(ctx context.Context, r *domain.Race) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Race, error)
	ListByRaceplanID(ctx context.Context, raceplanID string) ([]*domain.Race, error)
	ListByEventID(ctx context.Context, eventID string) ([]*domain.Race, error)
}

type StartEntryRepo interface {
	Create(ctx context.Context, e *domain.StartEntry) error
	Get(ctx context.Context, id string) (*domain.StartEntry, error)
	Update(ctx context.Context, e *domain.StartEntry) error
	Delete(ctx context.Context, id string) error
	ListByRaceID(ctx context.Context, raceID string) ([]*domain.StartEntry, error)
	ListByStartlistID(ctx context.Context, startlistID string) ([]*domain.StartEntry, error)
	GetByRaceAndBib(ctx context.Context, raceID string, bib int) (*domain.StartEntry, error)
}

type StartlistRepo interface {
	Create(ctx context.Context, s *domain.Startlist) error
	Get(ctx context.Context, id string) (*domain.Startlist, error)
	Update(ctx context.Context, s *domain.Startlist) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Startlist, error)
	GetByEventID(ctx context.Context, eventID string) (*domain.Startlist, error)
}

type TimeEventRepo interface {
	Create(ctx context.Context, t *domain.TimeEvent) error
	Get(ctx context.Context, id string) (*domain.TimeEvent, error)
	Update(ctx context.Context, t *domain.TimeEvent) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.TimeEvent, error)
	ListByRaceAndTimingPoint(ctx context.Context, raceID, timingPoint string) ([]*domain.TimeEvent, error)
}

type RaceResultRepo interface {
	Create(ctx context.Context, r *domain.RaceResult) error
	Get(ctx context.Context, id string) (*domain.RaceResult, error)
	Update(ctx context.Context, r *domain.RaceResult) error
	Delete(ctx context.Context, id string) error
	GetByRaceAndTimingPoint(ctx context.Context, raceID, timingPoint string) (*domain.RaceResult, error)
	ListByRaceID(ctx context.Context, raceID string) ([]*domain.RaceResult, error)
}

// ErrNotFound is returned by Get/GetBy* lookups with no match. Callers at
// the orchestrator boundary translate it into a domainerr.NotFound.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "store: not found" }

// ErrAlreadyExists is returned by Create when the id is already present.
// Used by the time-event idempotence rule (same id posted twice).
var ErrAlreadyExists = alreadyExistsError{}

type alreadyExistsError struct{}

func (alreadyExistsError) Error() string { return "store: already exists" }

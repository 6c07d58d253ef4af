package store

import (
	"context"
	"sync"

	"skirace/pkg/domain"
)

// Memory is an in-process, map-backed Store. It exists so the generators,
// processor, and orchestrator can be unit tested without a badger file on
// disk.
type Memory struct {
	mu sync.RWMutex

	raceplans    map[string]*domain.Raceplan
	races        map[string]*domain.Race
	startEntries map[string]*domain.StartEntry
	startlists   map[string]*domain.Startlist
	timeEvents   map[string]*domain.TimeEvent
	raceResults  map[string]*domain.RaceResult
}

func NewMemory() *Memory {
	return &Memory{
		raceplans:    map[string]*domain.Raceplan{},
		races:        map[string]*domain.Race{},
		startEntries: map[string]*domain.StartEntry{},
		startlists:   map[string]*domain.Startlist{},
		timeEvents:   map[string]*domain.TimeEvent{},
		raceResults:  map[string]*domain.RaceResult{},
	}
}

func (m *Memory) Raceplans() RaceplanRepo       { return memRaceplanRepo{m} }
func (m *Memory) Races() RaceRepo               { return memRaceRepo{m} }
func (m *Memory) StartEntries() StartEntryRepo  { return memStartEntryRepo{m} }
func (m *Memory) Startlists() StartlistRepo     { return memStartlistRepo{m} }
func (m *Memory) TimeEvents() TimeEventRepo     { return memTimeEventRepo{m} }
func (m *Memory) RaceResults() RaceResultRepo   { return memRaceResultRepo{m} }

func (m *Memory) Ping(ctx context.Context) error { return nil }
func (m *Memory) Close() error                    { return nil }

// --- raceplans ---

type memRaceplanRepo struct{ s *Memory }

func (r memRaceplanRepo) Create(ctx context.Context, p *domain.Raceplan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.raceplans[p.ID] = &cp
	return nil
}

func (r memRaceplanRepo) Get(ctx context.Context, id string) (*domain.Raceplan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.raceplans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memRaceplanRepo) Update(ctx context.Context, p *domain.Raceplan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.raceplans[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	r.s.raceplans[p.ID] = &cp
	return nil
}

func (r memRaceplanRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.raceplans[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.raceplans, id)
	return nil
}

func (r memRaceplanRepo) List(ctx context.Context) ([]*domain.Raceplan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Raceplan, 0, len(r.s.raceplans))
	for _, p := range r.s.raceplans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r memRaceplanRepo) GetByEventID(ctx context.Context, eventID string) (*domain.Raceplan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.raceplans {
		if p.EventID == eventID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// --- races ---

type memRaceRepo struct{ s *Memory }

func (r memRaceRepo) Create(ctx context.Context, x *domain.Race) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *x
	r.s.races[x.ID] = &cp
	return nil
}

func (r memRaceRepo) Get(ctx context.Context, id string) (*domain.Race, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	x, ok := r.s.races[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (r memRaceRepo) Update(ctx context.Context, x *domain.Race) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.races[x.ID]; !ok {
		return ErrNotFound
	}
	cp := *x
	r.s.races[x.ID] = &cp
	return nil
}

func (r memRaceRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.races[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.races, id)
	return nil
}

func (r memRaceRepo) List(ctx context.Context) ([]*domain.Race, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Race, 0, len(r.s.races))
	for _, x := range r.s.races {
		cp := *x
		out = append(out, &cp)
	}
	return out, nil
}

func (r memRaceRepo) ListByRaceplanID(ctx context.Context, raceplanID string) ([]*domain.Race, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Race
	for _, x := range r.s.races {
		if x.RaceplanID == raceplanID {
			cp := *x
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memRaceRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Race, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Race
	for _, x := range r.s.races {
		if x.EventID == eventID {
			cp := *x
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- start entries ---

type memStartEntryRepo struct{ s *Memory }

func (r memStartEntryRepo) Create(ctx context.Context, x *domain.StartEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *x
	r.s.startEntries[x.ID] = &cp
	return nil
}

func (r memStartEntryRepo) Get(ctx context.Context, id string) (*domain.StartEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	x, ok := r.s.startEntries[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (r memStartEntryRepo) Update(ctx context.Context, x *domain.StartEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.startEntries[x.ID]; !ok {
		return ErrNotFound
	}
	cp := *x
	r.s.startEntries[x.ID] = &cp
	return nil
}

func (r memStartEntryRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.startEntries[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.startEntries, id)
	return nil
}

func (r memStartEntryRepo) ListByRaceID(ctx context.Context, raceID string) ([]*domain.StartEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.StartEntry
	for _, x := range r.s.startEntries {
		if x.RaceID == raceID {
			cp := *x
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memStartEntryRepo) ListByStartlistID(ctx context.Context, startlistID string) ([]*domain.StartEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.StartEntry
	for _, x := range r.s.startEntries {
		if x.StartlistID == startlistID {
			cp := *x
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memStartEntryRepo) GetByRaceAndBib(ctx context.Context, raceID string, bib int) (*domain.StartEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.startEntries {
		if x.RaceID == raceID && x.Bib == bib {
			cp := *x
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// --- startlists ---

type memStartlistRepo struct{ s *Memory }

func (r memStartlistRepo) Create(ctx context.Context, x *domain.Startlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *x
	r.s.startlists[x.ID] = &cp
	return nil
}

func (r memStartlistRepo) Get(ctx context.Context, id string) (*domain.Startlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	x, ok := r.s.startlists[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (r memStartlistRepo) Update(ctx context.Context, x *domain.Startlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.startlists[x.ID]; !ok {
		return ErrNotFound
	}
	cp := *x
	r.s.startlists[x.ID] = &cp
	return nil
}

func (r memStartlistRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.startlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.startlists, id)
	return nil
}

func (r memStartlistRepo) List(ctx context.Context) ([]*domain.Startlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Startlist, 0, len(r.s.startlists))
	for _, x := range r.s.startlists {
		cp := *x
		out = append(out, &cp)
	}
	return out, nil
}

func (r memStartlistRepo) GetByEventID(ctx context.Context, eventID string) (*domain.Startlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.startlists {
		if x.EventID == eventID {
			cp := *x
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// --- time events ---

type memTimeEventRepo struct{ s *Memory }

func (r memTimeEventRepo) Create(ctx context.Context, x *domain.TimeEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.timeEvents[x.ID]; exists {
		return ErrAlreadyExists
	}
	cp := *x
	r.s.timeEvents[x.ID] = &cp
	return nil
}

func (r memTimeEventRepo) Get(ctx context.Context, id string) (*domain.TimeEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	x, ok := r.s.timeEvents[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (r memTimeEventRepo) Update(ctx context.Context, x *domain.TimeEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.timeEvents[x.ID]; !ok {
		return ErrNotFound
	}
	cp := *x
	r.s.timeEvents[x.ID] = &cp
	return nil
}

func (r memTimeEventRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.timeEvents[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.timeEvents, id)
	return nil
}

func (r memTimeEventRepo) List(ctx context.Context) ([]*domain.TimeEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.TimeEvent, 0, len(r.s.timeEvents))
	for _, x := range r.s.timeEvents {
		cp := *x
		out = append(out, &cp)
	}
	return out, nil
}

func (r memTimeEventRepo) ListByRaceAndTimingPoint(ctx context.Context, raceID, timingPoint string) ([]*domain.TimeEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.TimeEvent
	for _, x := range r.s.timeEvents {
		if x.RaceID == raceID && x.TimingPoint == timingPoint {
			cp := *x
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- race results ---

type memRaceResultRepo struct{ s *Memory }

func (r memRaceResultRepo) Create(ctx context.Context, x *domain.RaceResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *x
	r.s.raceResults[x.ID] = &cp
	return nil
}

func (r memRaceResultRepo) Get(ctx context.Context, id string) (*domain.RaceResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	x, ok := r.s.raceResults[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (r memRaceResultRepo) Update(ctx context.Context, x *domain.RaceResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.raceResults[x.ID]; !ok {
		return ErrNotFound
	}
	cp := *x
	r.s.raceResults[x.ID] = &cp
	return nil
}

func (r memRaceResultRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.raceResults[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.raceResults, id)
	return nil
}

func (r memRaceResultRepo) GetByRaceAndTimingPoint(ctx context.Context, raceID, timingPoint string) (*domain.RaceResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.raceResults {
		if x.RaceID == raceID && x.TimingPoint == timingPoint {
			cp := *x
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r memRaceResultRepo) ListByRaceID(ctx context.Context, raceID string) ([]*domain.RaceResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.RaceResult
	for _, x := range r.s.raceResults {
		if x.RaceID == raceID {
			cp := *x
			out = append(out, &cp)
		}
	}
	return out, nil
}

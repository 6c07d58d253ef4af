package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/vmihailenco/msgpack/v5"

	"skirace/pkg/domain"
)

// entity key prefixes: one prefix per entity kind sharing a single
// badger.DB.
const (
	prefixRaceplan   = "RACEPLAN"
	prefixRace       = "RACE"
	prefixStartEntry = "STARTENTRY"
	prefixStartlist  = "STARTLIST"
	prefixTimeEvent  = "TIMEEVENT"
	prefixRaceResult = "RACERESULT"
)

// Badger is the default Store: a single embedded key-value engine holding
// every entity kind in its own keyspace, msgpack-encoded.
type Badger struct {
	db *badger.DB
}

func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Raceplans() RaceplanRepo      { return badgerRaceplanRepo{newColl(b.db, prefixRaceplan)} }
func (b *Badger) Races() RaceRepo              { return badgerRaceRepo{newColl(b.db, prefixRace)} }
func (b *Badger) StartEntries() StartEntryRepo { return badgerStartEntryRepo{newColl(b.db, prefixStartEntry)} }
func (b *Badger) Startlists() StartlistRepo    { return badgerStartlistRepo{newColl(b.db, prefixStartlist)} }
func (b *Badger) TimeEvents() TimeEventRepo    { return badgerTimeEventRepo{newColl(b.db, prefixTimeEvent)} }
func (b *Badger) RaceResults() RaceResultRepo  { return badgerRaceResultRepo{newColl(b.db, prefixRaceResult)} }

func (b *Badger) Ping(ctx context.Context) error {
	return b.db.View(func(txn *badger.Txn) error { return nil })
}

func (b *Badger) Close() error {
	_ = b.db.Flatten(4)
	_ = b.db.RunValueLogGC(0.5)
	return b.db.Close()
}

// coll is the per-entity-kind keyspace, shared by every *Repo below: a
// prefix and the shared *badger.DB.
type coll struct {
	prefix []byte
	db     *badger.DB
}

func newColl(db *badger.DB, entityType string) coll {
	return coll{prefix: []byte(entityType + "/"), db: db}
}

func (c coll) key(id string) []byte {
	return append(append([]byte{}, c.prefix...), id...)
}

func (c coll) put(id string, v interface{}) error {
	buf, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(id), buf)
	})
}

func (c coll) get(id string, v interface{}) error {
	return c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, v)
		})
	})
}

func (c coll) has(id string) (bool, error) {
	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (c coll) delete(id string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(id))
	})
}

// scan walks every value in this keyspace, unmarshalling into a fresh
// instance of the type new() constructs and invoking visit. This is the
// "derived index rebuilt from a full scan" fallback used for secondary
// lookups, filtered with a visit callback.
func (c coll) scan(new func() interface{}, visit func(v interface{}) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(c.prefix); it.ValidForPrefix(c.prefix); it.Next() {
			v := new()
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, v)
			}); err != nil {
				return err
			}
			if err := visit(v); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- raceplans ---

type badgerRaceplanRepo struct{ c coll }

func (r badgerRaceplanRepo) Create(ctx context.Context, p *domain.Raceplan) error { return r.c.put(p.ID, p) }
func (r badgerRaceplanRepo) Get(ctx context.Context, id string) (*domain.Raceplan, error) {
	var p domain.Raceplan
	if err := r.c.get(id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
func (r badgerRaceplanRepo) Update(ctx context.Context, p *domain.Raceplan) error {
	if ok, err := r.c.has(p.ID); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return r.c.put(p.ID, p)
}
func (r badgerRaceplanRepo) Delete(ctx context.Context, id string) error { return r.c.delete(id) }
func (r badgerRaceplanRepo) List(ctx context.Context) ([]*domain.Raceplan, error) {
	var out []*domain.Raceplan
	err := r.c.scan(func() interface{} { return &domain.Raceplan{} }, func(v interface{}) error {
		out = append(out, v.(*domain.Raceplan))
		return nil
	})
	return out, err
}
func (r badgerRaceplanRepo) GetByEventID(ctx context.Context, eventID string) (*domain.Raceplan, error) {
	var found *domain.Raceplan
	err := r.c.scan(func() interface{} { return &domain.Raceplan{} }, func(v interface{}) error {
		p := v.(*domain.Raceplan)
		if p.EventID == eventID {
			found = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// --- races ---

type badgerRaceRepo struct{ c coll }

func (r badgerRaceRepo) Create(ctx context.Context, x *domain.Race) error { return r.c.put(x.ID, x) }
func (r badgerRaceRepo) Get(ctx context.Context, id string) (*domain.Race, error) {
	var x domain.Race
	if err := r.c.get(id, &x); err != nil {
		return nil, err
	}
	return &x, nil
}
func (r badgerRaceRepo) Update(ctx context.Context, x *domain.Race) error {
	if ok, err := r.c.has(x.ID); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return r.c.put(x.ID, x)
}
func (r badgerRaceRepo) Delete(ctx context.Context, id string) error { return r.c.delete(id) }
func (r badgerRaceRepo) List(ctx context.Context) ([]*domain.Race, error) {
	var out []*domain.Race
	err := r.c.scan(func() interface{} { return &domain.Race{} }, func(v interface{}) error {
		out = append(out, v.(*domain.Race))
		return nil
	})
	return out, err
}
func (r badgerRaceRepo) ListByRaceplanID(ctx context.Context, raceplanID string) ([]*domain.Race, error) {
	var out []*domain.Race
	err := r.c.scan(func() interface{} { return &domain.Race{} }, func(v interface{}) error {
		x := v.(*domain.Race)
		if x.RaceplanID == raceplanID {
			out = append(out, x)
		}
		return nil
	})
	return out, err
}
func (r badgerRaceRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Race, error) {
	var out []*domain.Race
	err := r.c.scan(func() interface{} { return &domain.Race{} }, func(v interface{}) error {
		x := v.(*domain.Race)
		if x.EventID == eventID {
			out = append(out, x)
		}
		return nil
	})
	return out, err
}

// --- start entries ---

type badgerStartEntryRepo struct{ c coll }

func (r badgerStartEntryRepo) Create(ctx context.Context, x *domain.StartEntry) error { return r.c.put(x.ID, x) }
func (r badgerStartEntryRepo) Get(ctx context.Context, id string) (*domain.StartEntry, error) {
	var x domain.StartEntry
	if err := r.c.get(id, &x); err != nil {
		return nil, err
	}
	return &x, nil
}
func (r badgerStartEntryRepo) Update(ctx context.Context, x *domain.StartEntry) error {
	if ok, err := r.c.has(x.ID); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return r.c.put(x.ID, x)
}
func (r badgerStartEntryRepo) Delete(ctx context.Context, id string) error { return r.c.delete(id) }
func (r badgerStartEntryRepo) ListByRaceID(ctx context.Context, raceID string) ([]*domain.StartEntry, error) {
	var out []*domain.StartEntry
	err := r.c.scan(func() interface{} { return &domain.StartEntry{} }, func(v interface{}) error {
		x := v.(*domain.StartEntry)
		if x.RaceID == raceID {
			out = append(out, x)
		}
		return nil
	})
	return out, err
}
func (r badgerStartEntryRepo) ListByStartlistID(ctx context.Context, startlistID string) ([]*domain.StartEntry, error) {
	var out []*domain.StartEntry
	err := r.c.scan(func() interface{} { return &domain.StartEntry{} }, func(v interface{}) error {
		x := v.(*domain.StartEntry)
		if x.StartlistID == startlistID {
			out = append(out, x)
		}
		return nil
	})
	return out, err
}
func (r badgerStartEntryRepo) GetByRaceAndBib(ctx context.Context, raceID string, bib int) (*domain.StartEntry, error) {
	var found *domain.StartEntry
	err := r.c.scan(func() interface{} { return &domain.StartEntry{} }, func(v interface{}) error {
		x := v.(*domain.StartEntry)
		if x.RaceID == raceID && x.Bib == bib {
			found = x
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// --- startlists ---

type badgerStartlistRepo struct{ c coll }

func (r badgerStartlistRepo) Create(ctx context.Context, x *domain.Startlist) error { return r.c.put(x.ID, x) }
func (r badgerStartlistRepo) Get(ctx context.Context, id string) (*domain.Startlist, error) {
	var x domain.Startlist
	if err := r.c.get(id, &x); err != nil {
		return nil, err
	}
	return &x, nil
}
func (r badgerStartlistRepo) Update(ctx context.Context, x *domain.Startlist) error {
	if ok, err := r.c.has(x.ID); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return r.c.put(x.ID, x)
}
func (r badgerStartlistRepo) Delete(ctx context.Context, id string) error { return r.c.delete(id) }
func (r badgerStartlistRepo) List(ctx context.Context) ([]*domain.Startlist, error) {
	var out []*domain.Startlist
	err := r.c.scan(func() interface{} { return &domain.Startlist{} }, func(v interface{}) error {
		out = append(out, v.(*domain.Startlist))
		return nil
	})
	return out, err
}
func (r badgerStartlistRepo) GetByEventID(ctx context.Context, eventID string) (*domain.Startlist, error) {
	var found *domain.Startlist
	err := r.c.scan(func() interface{} { return &domain.Startlist{} }, func(v interface{}) error {
		x := v.(*domain.Startlist)
		if x.EventID == eventID {
			found = x
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// --- time events ---

type badgerTimeEventRepo struct{ c coll }

func (r badgerTimeEventRepo) Create(ctx context.Context, x *domain.TimeEvent) error {
	if ok, err := r.c.has(x.ID); err != nil {
		return err
	} else if ok {
		return ErrAlreadyExists
	}
	return r.c.put(x.ID, x)
}
func (r badgerTimeEventRepo) Get(ctx context.Context, id string) (*domain.TimeEvent, error) {
	var x domain.TimeEvent
	if err := r.c.get(id, &x); err != nil {
		return nil, err
	}
	return &x, nil
}
func (r badgerTimeEventRepo) Update(ctx context.Context, x *domain.TimeEvent) error {
	if ok, err := r.c.has(x.ID); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return r.c.put(x.ID, x)
}
func (r badgerTimeEventRepo) Delete(ctx context.Context, id string) error { return r.c.delete(id) }
func (r badgerTimeEventRepo) List(ctx context.Context) ([]*domain.TimeEvent, error) {
	var out []*domain.TimeEvent
	err := r.c.scan(func() interface{} { return &domain.TimeEvent{} }, func(v interface{}) error {
		out = append(out, v.(*domain.TimeEvent))
		return nil
	})
	return out, err
}
func (r badgerTimeEventRepo) ListByRaceAndTimingPoint(ctx context.Context, raceID, timingPoint string) ([]*domain.TimeEvent, error) {
	var out []*domain.TimeEvent
	err := r.c.scan(func() interface{} { return &domain.TimeEvent{} }, func(v interface{}) error {
		x := v.(*domain.TimeEvent)
		if x.RaceID == raceID && x.TimingPoint == timingPoint {
			out = append(out, x)
		}
		return nil
	})
	return out, err
}

// --- race results ---

type badgerRaceResultRepo struct{ c coll }

func (r badgerRaceResultRepo) Create(ctx context.Context, x *domain.RaceResult) error { return r.c.put(x.ID, x) }
func (r badgerRaceResultRepo) Get(ctx context.Context, id string) (*domain.RaceResult, error) {
	var x domain.RaceResult
	if err := r.c.get(id, &x); err != nil {
		return nil, err
	}
	return &x, nil
}
func (r badgerRaceResultRepo) Update(ctx context.Context, x *domain.RaceResult) error {
	if ok, err := r.c.has(x.ID); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return r.c.put(x.ID, x)
}
func (r badgerRaceResultRepo) Delete(ctx context.Context, id string) error { return r.c.delete(id) }
func (r badgerRaceResultRepo) GetByRaceAndTimingPoint(ctx context.Context, raceID, timingPoint string) (*domain.RaceResult, error) {
	var found *domain.RaceResult
	err := r.c.scan(func() interface{} { return &domain.RaceResult{} }, func(v interface{}) error {
		x := v.(*domain.RaceResult)
		if x.RaceID == raceID && x.TimingPoint == timingPoint {
			found = x
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}
func (r badgerRaceResultRepo) ListByRaceID(ctx context.Context, raceID string) ([]*domain.RaceResult, error) {
	var out []*domain.RaceResult
	err := r.c.scan(func() interface{} { return &domain.RaceResult{} }, func(v interface{}) error {
		x := v.(*domain.RaceResult)
		if x.RaceID == raceID {
			out = append(out, x)
		}
		return nil
	})
	return out, err
}

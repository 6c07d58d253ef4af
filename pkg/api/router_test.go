package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skirace/pkg/adapters"
	"skirace/pkg/domain"
	"skirace/pkg/orchestrator"
	"skirace/pkg/store"
)

func newTestServer(t *testing.T, usersBaseURL string) *Server {
	t.Helper()
	o := orchestrator.New(store.NewMemory(), nil, nil)
	users := adapters.NewUsersAdapter(usersBaseURL, http.DefaultClient)
	return NewServer(o, users)
}

func TestPingAndReady(t *testing.T) {
	s := newTestServer(t, "")
	router := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/ping: want 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/ready: want 200 against a healthy memory store, got %d", rec.Code)
	}
}

func TestCreateRaceRequiresAuth(t *testing.T) {
	s := newTestServer(t, "http://unused.invalid")
	router := s.Router()

	body, _ := json.Marshal(domain.Race{})
	req := httptest.NewRequest(http.MethodPost, "/races/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without a bearer token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAndGetRaceRoundTrips(t *testing.T) {
	usersSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User-Id", "operator-1")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer usersSrv.Close()

	s := newTestServer(t, usersSrv.URL)
	router := s.Router()

	plan, err := s.orchestrator.CreateRaceplan(context.Background(), &domain.Raceplan{EventID: "ev1"})
	if err != nil {
		t.Fatalf("seed raceplan: %v", err)
	}

	race := domain.Race{
		EventID: "ev1", RaceplanID: plan.ID, Raceclass: "M",
		Datatype: domain.DatatypeMassStart, Order: 1, MaxNoOfContestants: 10,
	}
	race.StartTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	body, _ := json.Marshal(race)

	req := httptest.NewRequest(http.MethodPost, "/races/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201 creating a race, got %d: %s", rec.Code, rec.Body.String())
	}

	var created domain.Race
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created race: %v", err)
	}
	if created.ID == "" {
		t.Fatal("want a generated id on the created race")
	}

	req = httptest.NewRequest(http.MethodGet, "/races/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 reading the race back, got %d", rec.Code)
	}
}

func TestCreateTimeEventRejectsPropagationOverflowWith422(t *testing.T) {
	usersSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User-Id", "operator-1")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer usersSrv.Close()

	s := newTestServer(t, usersSrv.URL)
	router := s.Router()
	ctx := context.Background()

	// A semifinal heat whose sole qualifier rule sends the winner to an FA
	// heat that already has no remaining capacity: the sole finisher's
	// Finish event completes the heat and triggers propagation, which must
	// fail.
	source := &domain.Race{
		ID: "sa1", Datatype: domain.DatatypeIndividualSprint, Raceclass: "M",
		Round: domain.RoundS, Index: "A", Heat: 1,
		MaxNoOfContestants: 1, NoOfContestants: 1, RaceplanID: "plan1",
		Rule: domain.Rule{{Target: "FA", Count: 1, Offset: 0}},
	}
	fa := &domain.Race{ID: "fa1", Datatype: domain.DatatypeIndividualSprint, Raceclass: "M", Round: domain.RoundF, Index: "A", Heat: 1, MaxNoOfContestants: 0, RaceplanID: "plan1"}
	if err := s.orchestrator.Store.Races().Create(ctx, source); err != nil {
		t.Fatalf("seed source race: %v", err)
	}
	if err := s.orchestrator.Store.Races().Create(ctx, fa); err != nil {
		t.Fatalf("seed target race: %v", err)
	}
	if err := s.orchestrator.Store.StartEntries().Create(ctx, &domain.StartEntry{ID: "e1", RaceID: "sa1", Bib: 1, StartingPosition: 1, Status: domain.StatusNone}); err != nil {
		t.Fatalf("seed start-entry: %v", err)
	}

	ev := domain.TimeEvent{RaceID: "sa1", Bib: 1, TimingPoint: string(domain.TimingFinish), RegistrationTime: time.Now()}
	body, _ := json.Marshal(ev)

	req := httptest.NewRequest(http.MethodPost, "/time-events/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422 when propagation overflows a full heat, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRaceRejectsUnauthorizedToken(t *testing.T) {
	usersSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer usersSrv.Close()

	s := newTestServer(t, usersSrv.URL)
	router := s.Router()

	body, _ := json.Marshal(domain.Race{})
	req := httptest.NewRequest(http.MethodPost, "/races/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 when the users service rejects the token, got %d", rec.Code)
	}
}

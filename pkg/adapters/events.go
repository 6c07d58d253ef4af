// Package adapters implements the external collaborators: the events
// service, the competition-format service, and the users service.
// Every adapter shares one pooled *http.Client and translates upstream
// responses into the package's own error taxonomy — a non-2xx,
// non-404 response is a domainerr.Dependency, except the users service's
// 401/403, which are a domainerr.Auth.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
)

// EventsAdapter fetches Event, Raceclass, and Contestant documents.
type EventsAdapter struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

func NewEventsAdapter(baseURL string, client *http.Client) *EventsAdapter {
	return &EventsAdapter{baseURL: baseURL, client: client}
}

// SetTokenSource attaches the bearer token this adapter presents to the
// events service on every outbound request. Left unset, requests carry no
// Authorization header and no token is fetched.
func (a *EventsAdapter) SetTokenSource(tokens TokenSource) {
	a.tokens = tokens
}

func (a *EventsAdapter) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	var e domain.Event
	if err := getJSON(ctx, a.client, a.tokens, fmt.Sprintf("%s/events/%s", a.baseURL, eventID), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *EventsAdapter) GetRaceclasses(ctx context.Context, eventID string) ([]domain.Raceclass, error) {
	var rc []domain.Raceclass
	if err := getJSON(ctx, a.client, a.tokens, fmt.Sprintf("%s/events/%s/raceclasses", a.baseURL, eventID), &rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func (a *EventsAdapter) GetContestants(ctx context.Context, eventID string) ([]domain.Contestant, error) {
	var cs []domain.Contestant
	if err := getJSON(ctx, a.client, a.tokens, fmt.Sprintf("%s/events/%s/contestants", a.baseURL, eventID), &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// getJSON issues a GET and decodes a JSON body, mapping transport and
// upstream-status failures into domainerr.Dependency / domainerr.NotFound.
// A non-nil tokens attaches a bearer Authorization header fetched from it.
func getJSON(ctx context.Context, client *http.Client, tokens TokenSource, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domainerr.Internalf("adapters: build request: %v", err)
	}
	if tokens != nil {
		tok, err := tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := client.Do(req)
	if err != nil {
		return domainerr.Dependencyf("adapters: %s unreachable: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domainerr.NotFoundf("adapters: %s returned 404", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainerr.Dependencyf("adapters: %s returned status %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domainerr.Dependencyf("adapters: %s returned malformed body: %v", url, err)
	}
	return nil
}

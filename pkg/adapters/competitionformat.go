package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"skirace/pkg/domain"
)

// CompetitionFormatAdapter fetches the named CompetitionFormat document,
// including the progression matrix rows used by the sprint generator.
type CompetitionFormatAdapter struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

func NewCompetitionFormatAdapter(baseURL string, client *http.Client) *CompetitionFormatAdapter {
	return &CompetitionFormatAdapter{baseURL: baseURL, client: client}
}

// SetTokenSource attaches the bearer token this adapter presents to the
// competition-format service on every outbound request.
func (a *CompetitionFormatAdapter) SetTokenSource(tokens TokenSource) {
	a.tokens = tokens
}

func (a *CompetitionFormatAdapter) GetByName(ctx context.Context, name string) (*domain.CompetitionFormat, error) {
	var f domain.CompetitionFormat
	u := fmt.Sprintf("%s/competition-formats?name=%s", a.baseURL, url.QueryEscape(name))
	if err := getJSON(ctx, a.client, a.tokens, u, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

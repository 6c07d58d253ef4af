package adapters

import (
	"context"
	"net/http"

	"skirace/pkg/domainerr"
)

// UsersAdapter validates bearer tokens against the users service. It
// retrieves no user data: a 204 means "authorized", 401/403 means not.
type UsersAdapter struct {
	baseURL string
	client  *http.Client
}

func NewUsersAdapter(baseURL string, client *http.Client) *UsersAdapter {
	return &UsersAdapter{baseURL: baseURL, client: client}
}

// Authorize checks the bearer token is valid. roles is neither sent
// upstream nor checked: only the token's validity is. It returns the token
// subject when the upstream response carries one (via the
// "X-User-Id" response header), or "" when it does not — the caller falls
// back to domain.SystemUser for changelog authorship.
func (a *UsersAdapter) Authorize(ctx context.Context, token string, roles ...string) (subject string, err error) {
	if token == "" {
		return "", domainerr.New(domainerr.Auth, "missing bearer token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/authorize", nil)
	if err != nil {
		return "", domainerr.Internalf("adapters: build authorize request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", domainerr.Dependencyf("adapters: users service unreachable: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return resp.Header.Get("X-User-Id"), nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", domainerr.New(domainerr.Auth, "invalid or unauthorized bearer token")
	default:
		return "", domainerr.Dependencyf("adapters: users service returned status %d", resp.StatusCode)
	}
}

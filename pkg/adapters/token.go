package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"skirace/pkg/domainerr"
)

// TokenSource returns a bearer token to attach to outbound service-to-service
// requests. EventsAdapter and CompetitionFormatAdapter accept one via
// SetTokenSource so their requests carry the same kind of credential the
// users service expects from any other client.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type serviceTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ServiceToken is a TokenSource backed by the users service's own
// client-credentials endpoint: it trades the admin username/password
// configured for this process for a bearer token, and caches it until
// shortly before it expires.
type ServiceToken struct {
	baseURL  string
	username string
	password string
	client   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewServiceToken(baseURL, username, password string, client *http.Client) *ServiceToken {
	return &ServiceToken{baseURL: baseURL, username: username, password: password, client: client}
}

// Token returns the cached bearer token, fetching a fresh one when the
// cache is empty or within 30s of expiry.
func (s *ServiceToken) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires.Add(-30*time.Second)) {
		return s.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/token", nil)
	if err != nil {
		return "", domainerr.Internalf("adapters: build token request: %v", err)
	}
	req.SetBasicAuth(s.username, s.password)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", domainerr.Dependencyf("adapters: users service unreachable fetching service token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domainerr.Dependencyf("adapters: users service returned status %d fetching service token", resp.StatusCode)
	}

	var body serviceTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", domainerr.Dependencyf("adapters: malformed service token response: %v", err)
	}

	s.token = body.AccessToken
	s.expires = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return s.token, nil
}

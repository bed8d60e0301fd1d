package jellyfin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ripline/internal/config"
)

// HTTPDoer describes the HTTP client used by the Jellyfin service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service refreshes the media library.
type Service interface {
	Refresh(ctx context.Context) error
}

type noopService struct{}

func (noopService) Refresh(context.Context) error { return nil }

type httpService struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewConfiguredService returns an HTTP-backed service when library refresh is
// enabled and credentials are available, and a no-op otherwise.
func NewConfiguredService(cfg *config.Config) Service {
	if cfg == nil || !cfg.Library.Refresh {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	return NewHTTPService(cfg.Library.URL, cfg.Library.APIKey, &http.Client{Timeout: timeout})
}

// NewHTTPService constructs an HTTP-backed Jellyfin service.
func NewHTTPService(baseURL, apiKey string, client HTTPDoer) Service {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return noopService{}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &httpService{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (s *httpService) Refresh(ctx context.Context) error {
	refreshURL := fmt.Sprintf("%s/Library/Refresh", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, refreshURL, nil)
	if err != nil {
		return fmt.Errorf("build jellyfin refresh request: %w", err)
	}
	req.Header.Set("X-Emby-Token", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("refresh jellyfin library: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("jellyfin refresh returned %d", resp.StatusCode)
	}
	return nil
}

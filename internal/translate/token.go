package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAuthEndpoint   = "https://api.cognitive.microsoft.com/sts/v1.0/issueToken"
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
	tokenRefreshInterval  = 8 * time.Minute
)

// TokenProvider exchanges the service subscription key for a short-lived
// bearer token on a fixed interval.
type TokenProvider struct {
	key        string
	httpClient *http.Client
	endpoint   string
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewTokenProvider creates a provider for the given subscription key.
func NewTokenProvider(key string, logger *zap.Logger) *TokenProvider {
	return &TokenProvider{
		key:        key,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   defaultAuthEndpoint,
		logger:     logger,
	}
}

// Token returns the most recently issued bearer token.
func (p *TokenProvider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Run refreshes the token immediately and then on a fixed interval until the
// context is cancelled.
func (p *TokenProvider) Run(ctx context.Context) {
	if err := p.refresh(ctx); err != nil {
		p.logger.Error("token update failed", zap.Error(err))
	}

	ticker := time.NewTicker(tokenRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("token refresher stopped")
			return
		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				p.logger.Error("token update failed", zap.Error(err))
			}
		}
	}
}

func (p *TokenProvider) refresh(ctx context.Context) error {
	p.logger.Debug("starting translation service token update")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, p.key)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	token, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read token response: %w", err)
	}

	p.mu.Lock()
	p.token = string(token)
	p.mu.Unlock()

	p.logger.Debug("finished translation service token update")
	return nil
}

// Package registry tracks the active channel pairs for a process, keyed by
// normalized language key.
package registry

import (
	"sync"

	"localizer/internal/domain"

	"go.uber.org/zap"
)

// Registry is a concurrency-safe map from language key to channel pair.
// Routing reads and pair creation may run at the same time; at most one pair
// exists per key.
type Registry struct {
	logger *zap.Logger

	mu    sync.RWMutex
	pairs map[string]*domain.ChannelPair
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger,
		pairs:  make(map[string]*domain.ChannelPair),
	}
}

// Get returns the pair registered for key.
func (r *Registry) Get(key string) (*domain.ChannelPair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pair, ok := r.pairs[key]
	return pair, ok
}

// TryAdd registers pair under key unless another pair already holds it.
// A false return tells the losing creator to tear its channels down and
// defer to the winner.
func (r *Registry) TryAdd(key string, pair *domain.ChannelPair) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pairs[key]; exists {
		return false
	}
	r.pairs[key] = pair
	return true
}

// Remove drops the pair registered for key, if any.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pairs, key)
}

// RemoveChannel drops the pair containing channelID and returns its key.
// Called when either member channel is deleted on the platform.
func (r *Registry) RemoveChannel(channelID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, pair := range r.pairs {
		if !pair.Complete() {
			r.logger.Warn("invalid channel pair detected", zap.String("key", key))
			continue
		}
		if pair.Contains(channelID) {
			delete(r.pairs, key)
			return key, true
		}
	}
	return "", false
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.pairs)
}

// Rebuild reconstructs pairs from a category's channel list using the naming
// contract. Permanent channels and names that don't parse are skipped;
// only pairs with both sides present are registered. Existing entries for
// rebuilt keys are replaced.
func (r *Registry) Rebuild(channels []domain.Channel, homeKey string) {
	found := make(map[string]*domain.ChannelPair)

	for _, ch := range channels {
		if domain.IsPermanentChannel(ch.Name) {
			continue
		}

		key, standard, ok := domain.ParseChannelName(ch.Name, homeKey)
		if !ok {
			r.logger.Debug("not a translation channel, skipping", zap.String("channel", ch.Name))
			continue
		}

		pair, exists := found[key]
		if !exists {
			pair = &domain.ChannelPair{}
			found[key] = pair
		}

		member := &domain.Channel{ID: ch.ID, Name: ch.Name}
		if standard {
			pair.Standard = member
		} else {
			pair.Foreign = member
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, pair := range found {
		if !pair.Complete() {
			r.logger.Debug("pair is missing one side, skipping", zap.String("key", key))
			continue
		}
		r.pairs[key] = pair
	}
	r.logger.Debug("completed rebuilding pair map", zap.Int("pairs", len(r.pairs)))
}

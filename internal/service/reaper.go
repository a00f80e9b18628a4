package service

import (
	"context"
	"sync"
	"time"

	"localizer/internal/domain"
	"localizer/internal/gateway"

	"go.uber.org/zap"
)

// Reaper deletes pair channels that have sat idle past the configured
// threshold. Deleting a channel triggers the registry's pair-removal path
// through the channel-deleted event.
type Reaper struct {
	gw          gateway.Gateway
	category    string
	idleTimeout time.Duration
	interval    time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	activity map[string]time.Time
}

// NewReaper creates an idle-channel reaper.
func NewReaper(gw gateway.Gateway, category string, idleTimeout, interval time.Duration, logger *zap.Logger) *Reaper {
	return &Reaper{
		gw:          gw,
		category:    category,
		idleTimeout: idleTimeout,
		interval:    interval,
		logger:      logger,
		now:         time.Now,
		activity:    make(map[string]time.Time),
	}
}

// Touch records activity for a channel at the current time.
func (r *Reaper) Touch(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity[channelID] = r.now()
}

// Forget drops the activity record for a deleted channel.
func (r *Reaper) Forget(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activity, channelID)
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep checks every non-permanent channel in the designated category of
// every guild and deletes the ones idle strictly longer than the threshold.
func (r *Reaper) Sweep() {
	r.logger.Debug("begin cleanup of idle pair channels")
	for _, guildID := range r.gw.Guilds() {
		r.sweepGuild(guildID)
	}
	r.logger.Debug("completed cleanup of idle pair channels")
}

func (r *Reaper) sweepGuild(guildID string) {
	category, ok, err := r.gw.Category(guildID, r.category)
	if err != nil {
		r.logger.Error("failed to look up category", zap.String("guild", guildID), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	channels, err := r.gw.ChannelsInCategory(guildID, category.ID)
	if err != nil {
		r.logger.Error("failed to enumerate category channels", zap.String("guild", guildID), zap.Error(err))
		return
	}

	for _, ch := range channels {
		if domain.IsPermanentChannel(ch.Name) {
			continue
		}

		last := r.lastActivity(ch)
		if last.IsZero() {
			r.logger.Warn("unable to determine if the channel is idle", zap.String("channel", ch.Name))
			continue
		}

		if r.now().Sub(last) > r.idleTimeout {
			r.logger.Debug("channel is idle, deleting", zap.String("channel", ch.Name))
			if err := r.gw.DeleteChannel(ch.ID); err != nil {
				r.logger.Error("failed to delete idle channel",
					zap.String("channel", ch.Name),
					zap.Error(err),
				)
			}
		} else {
			r.logger.Debug("channel is not idle", zap.String("channel", ch.Name))
		}
	}
}

// lastActivity returns the tracked activity time for a channel, probing the
// platform for the latest message and falling back to the channel's creation
// time when nothing has been observed.
func (r *Reaper) lastActivity(ch gateway.ChannelInfo) time.Time {
	r.mu.Lock()
	last, tracked := r.activity[ch.ID]
	r.mu.Unlock()
	if tracked {
		return last
	}

	last, err := r.gw.LastMessageTime(ch.ID)
	if err != nil {
		r.logger.Warn("failed to probe last message time",
			zap.String("channel", ch.Name),
			zap.Error(err),
		)
		return time.Time{}
	}
	if last.IsZero() {
		return ch.CreatedAt
	}
	return last
}

package handler

import (
	"context"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/registry"
	"localizer/internal/service"
	"localizer/internal/translate"

	"go.uber.org/zap"
)

// Handler consumes the gateway's event intake and dispatches to the relay
// components. One event at a time; anything slow is pushed onto the router's
// worker pool or a provisioning goroutine.
type Handler struct {
	gw          gateway.Gateway
	registry    *registry.Registry
	guilds      *service.GuildConfig
	pairs       *service.PairService
	router      *service.Router
	reaper      *service.Reaper
	provisioner *service.Provisioner
	translator  translate.Translator
	category    string
	logger      *zap.Logger
}

// NewHandler creates the event dispatcher.
func NewHandler(
	gw gateway.Gateway,
	reg *registry.Registry,
	guilds *service.GuildConfig,
	pairs *service.PairService,
	router *service.Router,
	reaper *service.Reaper,
	provisioner *service.Provisioner,
	translator translate.Translator,
	category string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		gw:          gw,
		registry:    reg,
		guilds:      guilds,
		pairs:       pairs,
		router:      router,
		reaper:      reaper,
		provisioner: provisioner,
		translator:  translator,
		category:    category,
		logger:      logger,
	}
}

// Run processes events until the context is cancelled or the gateway closes
// its intake. A closed intake means the connection is gone for good and the
// process should shut down.
func (h *Handler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-h.gw.Events():
			if !ok {
				h.logger.Warn("gateway event intake closed")
				return nil
			}
			h.dispatch(ctx, ev)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, ev gateway.Event) {
	switch e := ev.(type) {
	case gateway.GuildAvailableEvent:
		// Provisioning does its own network calls; keep it off the
		// dispatch path.
		go h.onGuildAvailable(ctx, e)
	case gateway.ChannelCreatedEvent:
		h.reaper.Touch(e.ChannelID)
	case gateway.ChannelDeletedEvent:
		h.onChannelDeleted(e)
	case gateway.MessageEvent:
		h.onMessage(ctx, e)
	}
}

func (h *Handler) onGuildAvailable(ctx context.Context, ev gateway.GuildAvailableEvent) {
	if err := h.provisioner.ConfigureGuild(ctx, ev.GuildID); err != nil {
		h.logger.Error("failed to configure guild",
			zap.String("guild", ev.GuildID),
			zap.Error(err),
		)
		return
	}
	h.rebuildPairs(ev.GuildID)
}

// rebuildPairs rescans the designated category and reconstructs the pair map
// from channel names.
func (h *Handler) rebuildPairs(guildID string) {
	category, ok, err := h.gw.Category(guildID, h.category)
	if err != nil || !ok {
		return
	}

	infos, err := h.gw.ChannelsInCategory(guildID, category.ID)
	if err != nil {
		h.logger.Error("failed to enumerate category for rebuild", zap.Error(err))
		return
	}

	channels := make([]domain.Channel, 0, len(infos))
	for _, info := range infos {
		channels = append(channels, domain.Channel{ID: info.ID, Name: info.Name})
	}

	h.logger.Debug("rebuilding pair map", zap.String("guild", guildID))
	h.registry.Rebuild(channels, h.guilds.HomeKey(guildID))
}

func (h *Handler) onChannelDeleted(ev gateway.ChannelDeletedEvent) {
	h.reaper.Forget(ev.ChannelID)
	if key, ok := h.registry.RemoveChannel(ev.ChannelID); ok {
		h.logger.Debug("pair channel deleted, pair removed",
			zap.String("key", key),
			zap.String("channel", ev.Name),
		)
	}
}

func (h *Handler) onMessage(ctx context.Context, ev gateway.MessageEvent) {
	if ev.AuthorID == h.gw.BotUserID() {
		return
	}

	if isCommand(ev.Content) {
		h.handleCommand(ctx, ev)
		return
	}

	h.router.HandleMessage(ev)
}

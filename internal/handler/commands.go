package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"localizer/internal/domain"
	"localizer/internal/gateway"

	"go.uber.org/zap"
)

const commandPrefix = "??translate"

func isCommand(content string) bool {
	return strings.HasPrefix(content, commandPrefix)
}

// handleCommand parses and runs the ??translate commands. The work happens
// on its own goroutine; replies go back to the invoking channel.
func (h *Handler) handleCommand(ctx context.Context, ev gateway.MessageEvent) {
	args := strings.Fields(ev.Content)
	if len(args) < 2 {
		return
	}

	switch {
	case args[1] == "create":
		if len(args) == 3 {
			go h.createPair(ctx, ev, args[2])
		}
	case len(args) >= 3:
		go h.translateInline(ctx, ev, args[1], strings.Join(args[2:], " "))
	}
}

func (h *Handler) createPair(ctx context.Context, ev gateway.MessageEvent, lang string) {
	pair, err := h.pairs.GetOrCreate(ctx, ev.GuildID, lang)
	if err != nil {
		var notSupported *domain.LanguageNotSupportedError
		if errors.As(err, &notSupported) {
			h.reply(ev.ChannelID, notSupported.Error())
			return
		}
		h.logger.Error("failed to create channel pair",
			zap.String("language", lang),
			zap.Error(err),
		)
		h.reply(ev.ChannelID, "Unable to create channel pair")
		return
	}

	if !pair.Complete() {
		h.reply(ev.ChannelID, "Unable to create channel pair")
		return
	}

	h.reply(ev.ChannelID, fmt.Sprintf("Translation channels have been created at %s and %s",
		pair.Standard.Mention(), pair.Foreign.Mention()))
}

func (h *Handler) translateInline(ctx context.Context, ev gateway.MessageEvent, to, text string) {
	translation := h.translator.Translate(ctx, "", to, text)
	h.reply(ev.ChannelID, translation.Translated.Text)
}

func (h *Handler) reply(channelID, content string) {
	if err := h.gw.SendMessage(channelID, content); err != nil {
		h.logger.Error("failed to send reply", zap.Error(err))
	}
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/translate"

	"go.uber.org/zap"
)

// Provisioner prepares a guild for relaying: detects its home language,
// ensures the designated category and permanent channels exist and posts the
// stock how-to messages.
type Provisioner struct {
	gw         gateway.Gateway
	translator translate.Translator
	guilds     *GuildConfig
	category   string
	logger     *zap.Logger
}

// NewProvisioner creates a guild provisioner.
func NewProvisioner(
	gw gateway.Gateway,
	translator translate.Translator,
	guilds *GuildConfig,
	category string,
	logger *zap.Logger,
) *Provisioner {
	return &Provisioner{
		gw:         gw,
		translator: translator,
		guilds:     guilds,
		category:   category,
		logger:     logger,
	}
}

// ConfigureGuild runs the full provisioning sequence for one guild.
func (p *Provisioner) ConfigureGuild(ctx context.Context, guildID string) error {
	p.logger.Debug("configuring guild", zap.String("guild", guildID))

	locale, err := p.gw.GuildLocale(guildID)
	if err != nil {
		p.logger.Warn("failed to read guild locale", zap.Error(err))
	}
	p.guilds.Detect(ctx, guildID, locale)

	category, ok, err := p.gw.Category(guildID, p.category)
	if err != nil {
		return fmt.Errorf("failed to look up category: %w", err)
	}
	if !ok {
		p.logger.Debug("category not found, creating", zap.String("category", p.category))
		category, err = p.gw.CreateCategory(guildID, p.category)
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
	}

	howto, err := p.ensureChannel(guildID, category.ID, domain.HowToChannelName,
		"Use the ??translate create <your-language> command to start a session")
	if err != nil {
		return err
	}
	if _, err := p.ensureChannel(guildID, category.ID, domain.HistoryChannelName,
		"Use this channel to search past localized conversations"); err != nil {
		return err
	}

	if err := p.postStockMessages(ctx, howto.ID); err != nil {
		return err
	}

	p.logger.Debug("done configuring guild", zap.String("guild", guildID))
	return nil
}

func (p *Provisioner) ensureChannel(guildID, categoryID, name, topic string) (gateway.ChannelInfo, error) {
	channels, err := p.gw.ChannelsInCategory(guildID, categoryID)
	if err != nil {
		return gateway.ChannelInfo{}, fmt.Errorf("failed to enumerate category channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch, nil
		}
	}

	p.logger.Debug("permanent channel not found, creating", zap.String("channel", name))
	ch, err := p.gw.CreateChannel(guildID, categoryID, name, topic)
	if err != nil {
		return gateway.ChannelInfo{}, fmt.Errorf("failed to create %s channel: %w", name, err)
	}
	return ch, nil
}

// postStockMessages fills the how-to channel with the supported-language
// table, usage and example lines, skipping any that are already present.
func (p *Provisioner) postStockMessages(ctx context.Context, howtoID string) error {
	messages, err := p.gw.RecentMessages(howtoID, 20)
	if err != nil {
		return fmt.Errorf("failed to read how-to channel: %w", err)
	}

	hasLanguages := false
	hasUsage := false
	hasExample := false
	for _, msg := range messages {
		if strings.Contains(msg, "Supported Languages:") {
			hasLanguages = true
		}
		if strings.Contains(msg, "Usage:") {
			hasUsage = true
		}
		if strings.Contains(msg, "Example:") {
			hasExample = true
		}
	}

	if !hasLanguages {
		table, err := p.buildLanguageTable(ctx)
		if err != nil {
			return err
		}
		if err := p.gw.SendMessage(howtoID, table); err != nil {
			return fmt.Errorf("failed to post language table: %w", err)
		}
	}
	if !hasUsage {
		if err := p.gw.SendMessage(howtoID, "**Usage:** `??translate create <lang>`"); err != nil {
			return fmt.Errorf("failed to post usage message: %w", err)
		}
	}
	if !hasExample {
		if err := p.gw.SendMessage(howtoID, "**Example:** `??translate create es`"); err != nil {
			return fmt.Errorf("failed to post example message: %w", err)
		}
	}

	return nil
}

func (p *Provisioner) buildLanguageTable(ctx context.Context) (string, error) {
	languages, err := p.translator.SupportedLanguages(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch supported languages: %w", err)
	}

	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var b strings.Builder
	b.WriteString("**Supported Languages:**\n")
	b.WriteString("```\n")
	fmt.Fprintf(&b, "%-9s%s\n", "Language", "Name")
	for _, code := range codes {
		fmt.Fprintf(&b, "%-9s%s\n", code, languages[code].NativeName)
	}
	b.WriteString("```")
	return b.String(), nil
}

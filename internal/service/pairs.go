package service

import (
	"context"
	"fmt"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/registry"
	"localizer/internal/translate"

	"go.uber.org/zap"
)

// PairService owns the channel-pair lifecycle: creating the two mirror
// channels for a language, localizing their topics and registering the pair.
type PairService struct {
	gw         gateway.Gateway
	translator translate.Translator
	registry   *registry.Registry
	guilds     *GuildConfig
	category   string
	logger     *zap.Logger
}

// NewPairService creates a pair lifecycle service.
func NewPairService(
	gw gateway.Gateway,
	translator translate.Translator,
	reg *registry.Registry,
	guilds *GuildConfig,
	category string,
	logger *zap.Logger,
) *PairService {
	return &PairService{
		gw:         gw,
		translator: translator,
		registry:   reg,
		guilds:     guilds,
		category:   category,
		logger:     logger,
	}
}

// GetOrCreate returns the pair for lang, creating its channels when absent.
// It fails with domain.LanguageNotSupportedError when the translation
// backend cannot handle lang, with no side effects.
func (s *PairService) GetOrCreate(ctx context.Context, guildID, lang string) (*domain.ChannelPair, error) {
	key := domain.NormalizeLang(lang)
	if pair, ok := s.registry.Get(key); ok {
		return pair, nil
	}

	category, ok, err := s.gw.Category(guildID, s.category)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("the channel category %s does not exist", s.category)
	}

	supported, err := s.translator.IsLanguageSupported(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to verify language support: %w", err)
	}
	if !supported {
		return nil, &domain.LanguageNotSupportedError{Language: lang}
	}

	homeLang := s.guilds.Language(guildID)
	homeKey := domain.NormalizeLang(homeLang)
	standardName, foreignName := domain.PairChannelNames(homeKey, key)

	foreignInfo, err := s.gw.CreateChannel(guildID, category.ID, foreignName, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create foreign channel: %w", err)
	}
	standardInfo, err := s.gw.CreateChannel(guildID, category.ID, standardName, "")
	if err != nil {
		s.cleanupChannels(foreignInfo.ID)
		return nil, fmt.Errorf("failed to create standard channel: %w", err)
	}

	pair := &domain.ChannelPair{
		Standard: &domain.Channel{ID: standardInfo.ID, Name: standardInfo.Name},
		Foreign:  &domain.Channel{ID: foreignInfo.ID, Name: foreignInfo.Name},
	}

	if err := s.localizeTopics(ctx, guildID, lang, pair); err != nil {
		s.cleanupChannels(foreignInfo.ID, standardInfo.ID)
		return nil, err
	}

	if !s.registry.TryAdd(key, pair) {
		s.logger.Warn("channel pair already tracked, cleaning up",
			zap.String("standard", standardName),
			zap.String("foreign", foreignName),
		)
		s.cleanupChannels(foreignInfo.ID, standardInfo.ID)
		pair, _ = s.registry.Get(key)
	}

	return pair, nil
}

// localizeTopics writes both channel topics, translating the foreign side's
// topic into its language. The embedded channel mention survives translation
// because the masking codec protects it.
func (s *PairService) localizeTopics(ctx context.Context, guildID, lang string, pair *domain.ChannelPair) error {
	homeLang := s.guilds.Language(guildID)

	localized := s.translator.Translate(ctx, homeLang, lang,
		fmt.Sprintf("Responses will be translated to %s and posted in this channel's pair %s",
			homeLang, pair.Standard.Mention()))
	if err := s.gw.SetTopic(pair.Foreign.ID, localized.Translated.Text); err != nil {
		return fmt.Errorf("failed to set foreign channel topic: %w", err)
	}

	topic := fmt.Sprintf("Responses will be translated to %s and posted in this channel's pair %s",
		lang, pair.Foreign.Mention())
	if err := s.gw.SetTopic(pair.Standard.ID, topic); err != nil {
		return fmt.Errorf("failed to set standard channel topic: %w", err)
	}

	return nil
}

// cleanupChannels deletes channels created by an aborted or losing creation.
// Best effort; a failed delete is logged and the channel left to the reaper.
func (s *PairService) cleanupChannels(channelIDs ...string) {
	for _, id := range channelIDs {
		if err := s.gw.DeleteChannel(id); err != nil {
			s.logger.Error("failed to clean up channel",
				zap.String("channel", id),
				zap.Error(err),
			)
		}
	}
}

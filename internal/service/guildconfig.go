package service

import (
	"context"
	"sync"

	"localizer/internal/domain"
	"localizer/internal/translate"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// GuildConfig caches each guild's home language for the process lifetime.
// Written once per guild during configuration, read by the lifecycle manager
// and router on every message.
type GuildConfig struct {
	translator translate.Translator
	fallback   string
	logger     *zap.Logger

	mu    sync.RWMutex
	langs map[string]string
}

// NewGuildConfig creates a guild language cache with the given fallback
// home language.
func NewGuildConfig(translator translate.Translator, fallback string, logger *zap.Logger) *GuildConfig {
	return &GuildConfig{
		translator: translator,
		fallback:   fallback,
		logger:     logger,
		langs:      make(map[string]string),
	}
}

// Language returns the home language detected for a guild, or the fallback
// when the guild has not been configured.
func (g *GuildConfig) Language(guildID string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if lang, ok := g.langs[guildID]; ok {
		return lang
	}
	return g.fallback
}

// Detect derives the guild's home language from its platform locale, keeps
// only the base language subtag and falls back when the backend does not
// support it. The result is cached and returned.
func (g *GuildConfig) Detect(ctx context.Context, guildID, locale string) string {
	lang := g.fallback

	if tag, err := language.Parse(locale); err == nil {
		base, _ := tag.Base()
		lang = base.String()
	} else if locale != "" {
		g.logger.Debug("could not parse guild locale",
			zap.String("guild", guildID),
			zap.String("locale", locale),
		)
	}

	supported, err := g.translator.IsLanguageSupported(ctx, lang)
	if err != nil {
		g.logger.Error("failed to verify guild language support", zap.Error(err))
		lang = g.fallback
	} else if !supported {
		g.logger.Debug("guild language unsupported, using fallback",
			zap.String("guild", guildID),
			zap.String("language", lang),
		)
		lang = g.fallback
	}

	g.mu.Lock()
	g.langs[guildID] = lang
	g.mu.Unlock()

	g.logger.Info("guild home language configured",
		zap.String("guild", guildID),
		zap.String("language", lang),
	)
	return lang
}

// HomeKey returns the normalized registry form of a guild's home language.
func (g *GuildConfig) HomeKey(guildID string) string {
	return domain.NormalizeLang(g.Language(guildID))
}

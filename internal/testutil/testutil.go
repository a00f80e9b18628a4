package testutil

import (
	"localizer/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestPair creates a complete channel pair for the given foreign key
func NewTestPair(homeKey, foreignKey string) *domain.ChannelPair {
	standardName, foreignName := domain.PairChannelNames(homeKey, foreignKey)
	return &domain.ChannelPair{
		Standard: &domain.Channel{ID: "std-" + foreignKey, Name: standardName},
		Foreign:  &domain.Channel{ID: "for-" + foreignKey, Name: foreignName},
	}
}

// NewTestTranslation creates a home→foreign translation result
func NewTestTranslation(from, original, to, translated string) *domain.Translation {
	return &domain.Translation{
		Original:   domain.LocalText{Language: from, Text: original},
		Translated: domain.LocalText{Language: to, Text: translated},
	}
}

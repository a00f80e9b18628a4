// Package translate talks to the Azure Translator service. Text is run
// through the masking codec before it leaves the process so code blocks and
// platform tokens survive the round trip.
package translate

import (
	"context"

	"localizer/internal/domain"
)

// LanguageDetails is the display metadata for one supported language.
type LanguageDetails struct {
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Direction  string `json:"dir"`
}

// Translator is the translation capability consumed by the lifecycle
// manager, router and command surface.
type Translator interface {
	// Translate converts text from one language to another. An empty from
	// requests auto-detection. Failures degrade to the original text inside
	// the returned Translation; they are logged, never returned.
	Translate(ctx context.Context, from, to, text string) *domain.Translation

	// IsLanguageSupported reports whether the backend can translate to lang.
	IsLanguageSupported(ctx context.Context, lang string) (bool, error)

	// SupportedLanguages returns the backend's language set keyed by
	// lower-cased language code.
	SupportedLanguages(ctx context.Context) (map[string]LanguageDetails, error)
}

package domain

// LocalText is a piece of text tagged with its language.
type LocalText struct {
	Language string
	Text     string
}

// TranslationType records which side of a translation is the guild's home
// language. Either direction can be the original.
type TranslationType int

const (
	// TranslationToForeign means the original was written in the home language.
	TranslationToForeign TranslationType = iota
	// TranslationToHome means the original was written in the foreign language.
	TranslationToHome
)

// Translation is the result of one translation call. Code blocks stripped
// during masking are owned by the translation and belong with the translated
// side; they are rendered as a separate artifact, never re-inlined.
type Translation struct {
	Original   LocalText
	Translated LocalText
	Type       TranslationType
	CodeBlocks []string
}

// HomeText returns the home-language variant of the exchange.
func (t *Translation) HomeText() LocalText {
	if t.Type == TranslationToForeign {
		return t.Original
	}
	return t.Translated
}

// ForeignText returns the foreign-language variant of the exchange.
func (t *Translation) ForeignText() LocalText {
	if t.Type == TranslationToForeign {
		return t.Translated
	}
	return t.Original
}

package domain

import "fmt"

// LanguageNotSupportedError rejects a pair-creation request for a language
// the translation backend does not know. It is surfaced to the user as a
// chat message, never as a crash.
type LanguageNotSupportedError struct {
	Language string
}

func (e *LanguageNotSupportedError) Error() string {
	return fmt.Sprintf("%s is not supported at this time", e.Language)
}

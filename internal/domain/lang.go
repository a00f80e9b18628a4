package domain

import "strings"

const pairNameSeparator = "-to-"

// NormalizeLang converts a language tag to the canonical registry key:
// lower case, with the BCP 47 subtag separator swapped for an underscore so
// the key survives being embedded in a channel name.
func NormalizeLang(lang string) string {
	return strings.ReplaceAll(strings.ToLower(lang), "-", "_")
}

// DenormalizeLang converts a registry key back into the tag form the
// translation backend expects.
func DenormalizeLang(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// PairChannelNames returns the deterministic names for both sides of a pair,
// derived from the normalized home and foreign keys. Rebuild reconstructs
// pairs purely from these names.
func PairChannelNames(homeKey, foreignKey string) (standard, foreign string) {
	standard = homeKey + pairNameSeparator + foreignKey
	foreign = foreignKey + pairNameSeparator + homeKey
	return standard, foreign
}

// ParseChannelName decodes a pair channel name against the guild's home key.
// It returns the foreign-language key, whether the channel is the home-side
// member, and whether the name matched the two-part pattern at all.
func ParseChannelName(name, homeKey string) (key string, standard bool, ok bool) {
	parts := strings.SplitN(name, pairNameSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false, false
	}

	switch {
	case parts[0] == homeKey:
		return parts[1], true, true
	case parts[1] == homeKey:
		return parts[0], false, true
	default:
		return "", false, false
	}
}

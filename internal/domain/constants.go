package domain

import "time"

// Relay constants shared by the lifecycle manager, router and reaper.
const (
	// CategoryName is the designated category grouping all relay channels.
	CategoryName = "localized"

	// HowToChannelName holds operator instructions and the supported-language list.
	HowToChannelName = "how-to"

	// HistoryChannelName receives the combined archive record for every relay.
	HistoryChannelName = "history"

	// StandardLanguage is the fallback home language when a guild's locale
	// cannot be detected or is unsupported.
	StandardLanguage = "en"

	// IdleChannelTimeout is how long a pair channel may sit without activity
	// before the reaper deletes it.
	IdleChannelTimeout = 240 * time.Minute

	// HistoryFieldLimit caps a single archive embed field; longer texts are
	// split into multiple same-language fields.
	HistoryFieldLimit = 1024
)

// PermanentChannels are never pair members and never reaped.
var PermanentChannels = []string{HowToChannelName, HistoryChannelName}

// IsPermanentChannel reports whether name is one of the reserved channels.
func IsPermanentChannel(name string) bool {
	for _, p := range PermanentChannels {
		if name == p {
			return true
		}
	}
	return false
}

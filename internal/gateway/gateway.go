// Package gateway is the boundary to the chat platform. The core consumes
// typed events from a single intake channel and drives the platform through
// the Gateway interface; everything Discord-specific lives in the adapter.
package gateway

import "time"

// Event is one platform event delivered on the intake channel.
type Event interface {
	isEvent()
}

// Attachment is a file attached to a message.
type Attachment struct {
	URL string
}

// MessageEvent is delivered for every message posted in a guild.
type MessageEvent struct {
	GuildID         string
	ChannelID       string
	MessageID       string
	AuthorID        string
	AuthorName      string
	AuthorAvatarURL string
	Content         string
	Attachments     []Attachment
}

// ChannelCreatedEvent is delivered when a guild channel is created.
type ChannelCreatedEvent struct {
	GuildID   string
	ChannelID string
	Name      string
}

// ChannelDeletedEvent is delivered when a guild channel is deleted.
type ChannelDeletedEvent struct {
	GuildID   string
	ChannelID string
	Name      string
}

// GuildAvailableEvent is delivered when a guild becomes available after
// connect or when the bot joins a new guild.
type GuildAvailableEvent struct {
	GuildID string
}

func (MessageEvent) isEvent()        {}
func (ChannelCreatedEvent) isEvent() {}
func (ChannelDeletedEvent) isEvent() {}
func (GuildAvailableEvent) isEvent() {}

// ChannelInfo describes a guild channel as seen by the platform.
type ChannelInfo struct {
	ID         string
	Name       string
	Topic      string
	CategoryID string
	CreatedAt  time.Time
}

// EmbedField is one field of an archive embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is the rich archive record posted to the history channel.
type Embed struct {
	AuthorName    string
	AuthorIconURL string
	Fields        []EmbedField
	ImageURL      string
}

// Gateway is the platform capability required by the core: enumerate
// channels, mutate them, post messages and receive events. Implementations
// close the Events channel when the connection is gone for good, which ends
// the dispatch loop.
type Gateway interface {
	// Events returns the intake channel for platform events.
	Events() <-chan Event

	// BotUserID identifies the bot's own user, used to ignore self-messages.
	BotUserID() string

	// Guilds lists the ids of all guilds the bot currently sees.
	Guilds() []string

	// GuildLocale returns the platform's preferred-locale tag for a guild.
	GuildLocale(guildID string) (string, error)

	// Channel fetches a single channel.
	Channel(channelID string) (ChannelInfo, error)

	// Category finds a category channel by name. ok is false when absent.
	Category(guildID, name string) (ChannelInfo, bool, error)

	// CreateCategory creates a category channel.
	CreateCategory(guildID, name string) (ChannelInfo, error)

	// ChannelsInCategory lists the text channels under a category.
	ChannelsInCategory(guildID, categoryID string) ([]ChannelInfo, error)

	// CreateChannel creates a text channel under a category.
	CreateChannel(guildID, categoryID, name, topic string) (ChannelInfo, error)

	// SetTopic updates a channel's topic.
	SetTopic(channelID, topic string) error

	// DeleteChannel deletes a channel.
	DeleteChannel(channelID string) error

	// SendMessage posts plain text to a channel.
	SendMessage(channelID, content string) error

	// SendEmbed posts an embed to a channel.
	SendEmbed(channelID string, embed Embed) error

	// LastMessageTime returns when the most recent message in a channel was
	// posted, or the zero time when the channel has no messages.
	LastMessageTime(channelID string) (time.Time, error)

	// RecentMessages returns the content of up to limit recent messages.
	RecentMessages(channelID string, limit int) ([]string, error)
}

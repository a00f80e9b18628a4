package gateway

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	eventBufferSize = 256

	// maxConsecutiveDrops is how many disconnects without a successful
	// resume in between the adapter tolerates before declaring the
	// connection gone for good.
	maxConsecutiveDrops = 5
)

// Discord implements Gateway on a discordgo session.
type Discord struct {
	session *discordgo.Session
	events  chan Event
	logger  *zap.Logger

	drops     int32
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewDiscord creates a Discord gateway for the given bot token. Open must be
// called before events flow.
func NewDiscord(token string, logger *zap.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	d := &Discord{
		session: session,
		events:  make(chan Event, eventBufferSize),
		done:    make(chan struct{}),
		logger:  logger,
	}

	session.AddHandler(d.onMessageCreate)
	session.AddHandler(d.onChannelCreate)
	session.AddHandler(d.onChannelDelete)
	session.AddHandler(d.onGuildCreate)
	session.AddHandler(d.onReady)
	session.AddHandler(d.onResume)
	session.AddHandler(d.onDisconnect)

	return d, nil
}

// Open connects to the platform gateway.
func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	d.logger.Info("bot has logged into discord")
	return nil
}

// Close disconnects and closes the event intake, ending the dispatch loop.
func (d *Discord) Close() error {
	err := d.session.Close()
	d.closeIntake()
	return err
}

// closeIntake shuts the event intake down exactly once. Closing done first
// unblocks any handler stuck sending into a full buffer; the closed flag is
// flipped under the write lock so no handler can reach the send after the
// channel is closed.
func (d *Discord) closeIntake() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.mu.Lock()
		d.closed = true
		close(d.events)
		d.mu.Unlock()
	})
}

// emit delivers an event to the intake unless the intake is shut down.
func (d *Discord) emit(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

// Events returns the intake channel for platform events.
func (d *Discord) Events() <-chan Event {
	return d.events
}

// BotUserID identifies the bot's own user.
func (d *Discord) BotUserID() string {
	if d.session.State != nil && d.session.State.User != nil {
		return d.session.State.User.ID
	}
	return ""
}

// Guilds lists the ids of all guilds the bot currently sees.
func (d *Discord) Guilds() []string {
	guilds := d.session.State.Guilds
	ids := make([]string, 0, len(guilds))
	for _, g := range guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// GuildLocale returns the guild's preferred locale.
func (d *Discord) GuildLocale(guildID string) (string, error) {
	guild, err := d.session.State.Guild(guildID)
	if err == nil {
		return guild.PreferredLocale, nil
	}
	guild, err = d.session.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	return guild.PreferredLocale, nil
}

// Channel fetches a single channel, preferring the state cache.
func (d *Discord) Channel(channelID string) (ChannelInfo, error) {
	ch, err := d.session.State.Channel(channelID)
	if err != nil {
		ch, err = d.session.Channel(channelID)
		if err != nil {
			return ChannelInfo{}, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
		}
	}
	return toChannelInfo(ch), nil
}

// Category finds a category channel by name.
func (d *Discord) Category(guildID, name string) (ChannelInfo, bool, error) {
	channels, err := d.guildChannels(guildID)
	if err != nil {
		return ChannelInfo{}, false, err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == name {
			return toChannelInfo(ch), true, nil
		}
	}
	return ChannelInfo{}, false, nil
}

// CreateCategory creates a category channel.
func (d *Discord) CreateCategory(guildID, name string) (ChannelInfo, error) {
	ch, err := d.session.GuildChannelCreate(guildID, name, discordgo.ChannelTypeGuildCategory)
	if err != nil {
		return ChannelInfo{}, fmt.Errorf("failed to create category %s: %w", name, err)
	}
	return toChannelInfo(ch), nil
}

// ChannelsInCategory lists the text channels under a category.
func (d *Discord) ChannelsInCategory(guildID, categoryID string) ([]ChannelInfo, error) {
	channels, err := d.guildChannels(guildID)
	if err != nil {
		return nil, err
	}
	var result []ChannelInfo
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.ParentID == categoryID {
			result = append(result, toChannelInfo(ch))
		}
	}
	return result, nil
}

// CreateChannel creates a text channel under a category.
func (d *Discord) CreateChannel(guildID, categoryID, name, topic string) (ChannelInfo, error) {
	ch, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		Topic:    topic,
		ParentID: categoryID,
	})
	if err != nil {
		return ChannelInfo{}, fmt.Errorf("failed to create channel %s: %w", name, err)
	}
	return toChannelInfo(ch), nil
}

// SetTopic updates a channel's topic.
func (d *Discord) SetTopic(channelID, topic string) error {
	_, err := d.session.ChannelEditComplex(channelID, &discordgo.ChannelEdit{Topic: topic})
	if err != nil {
		return fmt.Errorf("failed to set topic on %s: %w", channelID, err)
	}
	return nil
}

// DeleteChannel deletes a channel.
func (d *Discord) DeleteChannel(channelID string) error {
	if _, err := d.session.ChannelDelete(channelID); err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", channelID, err)
	}
	return nil
}

// SendMessage posts plain text to a channel.
func (d *Discord) SendMessage(channelID, content string) error {
	if _, err := d.session.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return nil
}

// SendEmbed posts an embed to a channel.
func (d *Discord) SendEmbed(channelID string, embed Embed) error {
	fields := make([]*discordgo.MessageEmbedField, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	msg := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    embed.AuthorName,
			IconURL: embed.AuthorIconURL,
		},
		Fields: fields,
	}
	if embed.ImageURL != "" {
		msg.Image = &discordgo.MessageEmbedImage{URL: embed.ImageURL}
	}

	if _, err := d.session.ChannelMessageSendEmbed(channelID, msg); err != nil {
		return fmt.Errorf("failed to send embed to %s: %w", channelID, err)
	}
	return nil
}

// LastMessageTime returns the timestamp of the most recent message in a
// channel, or the zero time when there are none.
func (d *Discord) LastMessageTime(channelID string) (time.Time, error) {
	messages, err := d.session.ChannelMessages(channelID, 1, "", "", "")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch messages for %s: %w", channelID, err)
	}
	if len(messages) == 0 {
		return time.Time{}, nil
	}
	return messages[0].Timestamp, nil
}

// RecentMessages returns the content of up to limit recent messages.
func (d *Discord) RecentMessages(channelID string, limit int) ([]string, error) {
	messages, err := d.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for %s: %w", channelID, err)
	}
	contents := make([]string, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, m.Content)
	}
	return contents, nil
}

func (d *Discord) guildChannels(guildID string) ([]*discordgo.Channel, error) {
	guild, err := d.session.State.Guild(guildID)
	if err == nil && len(guild.Channels) > 0 {
		return guild.Channels, nil
	}
	channels, err := d.session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for guild %s: %w", guildID, err)
	}
	return channels, nil
}

func (d *Discord) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	name := m.Author.Username
	avatar := m.Author.AvatarURL("")
	if m.Member != nil && m.Member.Nick != "" {
		name = m.Member.Nick
	}

	attachments := make([]Attachment, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, Attachment{URL: a.URL})
	}

	d.emit(MessageEvent{
		GuildID:         m.GuildID,
		ChannelID:       m.ChannelID,
		MessageID:       m.ID,
		AuthorID:        m.Author.ID,
		AuthorName:      name,
		AuthorAvatarURL: avatar,
		Content:         m.Content,
		Attachments:     attachments,
	})
}

func (d *Discord) onChannelCreate(_ *discordgo.Session, c *discordgo.ChannelCreate) {
	d.emit(ChannelCreatedEvent{GuildID: c.GuildID, ChannelID: c.ID, Name: c.Name})
}

func (d *Discord) onChannelDelete(_ *discordgo.Session, c *discordgo.ChannelDelete) {
	d.emit(ChannelDeletedEvent{GuildID: c.GuildID, ChannelID: c.ID, Name: c.Name})
}

func (d *Discord) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	d.emit(GuildAvailableEvent{GuildID: g.ID})
}

func (d *Discord) onReady(_ *discordgo.Session, _ *discordgo.Ready) {
	atomic.StoreInt32(&d.drops, 0)
}

func (d *Discord) onResume(_ *discordgo.Session, _ *discordgo.Resumed) {
	atomic.StoreInt32(&d.drops, 0)
}

// onDisconnect counts drops since the last successful ready or resume.
// discordgo reconnects on its own, so a single drop is routine; a run of
// them with no resume in between means the session is not coming back and
// the intake is closed so the process can shut down.
func (d *Discord) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	n := atomic.AddInt32(&d.drops, 1)
	if n >= maxConsecutiveDrops {
		d.logger.Error("discord gateway is not recovering, closing event intake",
			zap.Int32("consecutive_drops", n))
		d.closeIntake()
		return
	}
	d.logger.Warn("discord gateway disconnected, awaiting resume",
		zap.Int32("consecutive_drops", n))
}

func toChannelInfo(ch *discordgo.Channel) ChannelInfo {
	created, err := discordgo.SnowflakeTimestamp(ch.ID)
	if err != nil {
		created = time.Time{}
	}
	return ChannelInfo{
		ID:         ch.ID,
		Name:       ch.Name,
		Topic:      ch.Topic,
		CategoryID: ch.ParentID,
		CreatedAt:  created,
	}
}

package domain

// Channel is a minimal handle to a guild text channel.
type Channel struct {
	ID   string
	Name string
}

// Mention renders the platform channel-mention token.
func (c *Channel) Mention() string {
	return "<#" + c.ID + ">"
}

// ChannelPair links the two mirror channels for one language.
type ChannelPair struct {
	// Standard is the side expressed in the guild's home language.
	Standard *Channel
	// Foreign is the side expressed in the target language.
	Foreign *Channel
}

// Complete reports whether both sides of the pair exist. An incomplete pair
// must never be handed to the router.
func (p *ChannelPair) Complete() bool {
	return p != nil && p.Standard != nil && p.Foreign != nil
}

// Contains reports whether channelID is either side of the pair.
func (p *ChannelPair) Contains(channelID string) bool {
	if !p.Complete() {
		return false
	}
	return p.Standard.ID == channelID || p.Foreign.ID == channelID
}

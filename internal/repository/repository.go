package repository

import "time"

// HistoryRecord is one archived relay: both language variants of a message
// plus the author and any protected code-block artifact.
type HistoryRecord struct {
	ID              int
	GuildID         string
	AuthorID        string
	AuthorName      string
	HomeLanguage    string
	HomeText        string
	ForeignLanguage string
	ForeignText     string
	CodeBlocks      string
	AttachmentURL   string
	CreatedAt       time.Time
}

// HistoryRepository defines the durable translation-history operations.
type HistoryRepository interface {
	SaveRecord(record *HistoryRecord) error
	RecentByGuild(guildID string, limit int) ([]HistoryRecord, error)
}

package postgres

import (
	"database/sql"

	"localizer/internal/repository"
)

// HistoryRepo implements repository.HistoryRepository
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new history repository
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// SaveRecord inserts one archived relay
func (r *HistoryRepo) SaveRecord(record *repository.HistoryRecord) error {
	query := `
		INSERT INTO translation_history
			(guild_id, author_id, author_name, home_language, home_text,
			 foreign_language, foreign_text, code_blocks, attachment_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(query,
		record.GuildID,
		record.AuthorID,
		record.AuthorName,
		record.HomeLanguage,
		record.HomeText,
		record.ForeignLanguage,
		record.ForeignText,
		record.CodeBlocks,
		record.AttachmentURL,
	)
	return err
}

// RecentByGuild returns the most recent archived relays for a guild
func (r *HistoryRepo) RecentByGuild(guildID string, limit int) ([]repository.HistoryRecord, error) {
	query := `
		SELECT id, guild_id, author_id, author_name, home_language, home_text,
		       foreign_language, foreign_text, code_blocks, attachment_url, created_at
		FROM translation_history
		WHERE guild_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(query, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []repository.HistoryRecord
	for rows.Next() {
		var rec repository.HistoryRecord
		err := rows.Scan(
			&rec.ID,
			&rec.GuildID,
			&rec.AuthorID,
			&rec.AuthorName,
			&rec.HomeLanguage,
			&rec.HomeText,
			&rec.ForeignLanguage,
			&rec.ForeignText,
			&rec.CodeBlocks,
			&rec.AttachmentURL,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

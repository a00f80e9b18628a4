package service

import (
	"context"
	"strings"
	"sync"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/registry"
	"localizer/internal/repository"
	"localizer/internal/translate"

	"go.uber.org/zap"
)

// ActivityTracker records channel activity for the idle reaper.
type ActivityTracker interface {
	Touch(channelID string)
}

// relayJob is one message accepted for relay, handed to the worker pool so
// slow translation calls never block event intake.
type relayJob struct {
	event      gateway.MessageEvent
	partner    *domain.Channel
	from       string
	to         string
	trType     domain.TranslationType
	categoryID string
}

// archiveJob carries a completed relay back to the archive loop.
type archiveJob struct {
	guildID         string
	categoryID      string
	authorID        string
	authorName      string
	authorAvatarURL string
	translation     *domain.Translation
	attachmentURL   string
}

// Router decides, for each inbound message, which partner channel receives
// the translated copy and forwards the combined record to the archive.
type Router struct {
	gw         gateway.Gateway
	translator translate.Translator
	registry   *registry.Registry
	guilds     *GuildConfig
	history    repository.HistoryRepository
	activity   ActivityTracker
	category   string
	logger     *zap.Logger

	jobs     chan relayJob
	archives chan archiveJob
}

// NewRouter creates a message router.
func NewRouter(
	gw gateway.Gateway,
	translator translate.Translator,
	reg *registry.Registry,
	guilds *GuildConfig,
	history repository.HistoryRepository,
	activity ActivityTracker,
	category string,
	logger *zap.Logger,
) *Router {
	return &Router{
		gw:         gw,
		translator: translator,
		registry:   reg,
		guilds:     guilds,
		history:    history,
		activity:   activity,
		category:   category,
		logger:     logger,
		jobs:       make(chan relayJob, 256),
		archives:   make(chan archiveJob, 256),
	}
}

// Run drives the translation worker pool and the archive loop until the
// context is cancelled.
func (r *Router) Run(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-r.jobs:
					r.relay(ctx, job)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-r.archives:
				r.archive(job)
			}
		}
	}()

	wg.Wait()
}

// HandleMessage classifies an inbound message and, when it belongs to a pair
// channel, enqueues the relay work. It never performs network-bound
// translation itself.
func (r *Router) HandleMessage(ev gateway.MessageEvent) {
	if ev.AuthorID == r.gw.BotUserID() {
		return
	}

	ch, err := r.gw.Channel(ev.ChannelID)
	if err != nil {
		r.logger.Debug("failed to resolve message channel", zap.Error(err))
		return
	}
	if ch.CategoryID == "" {
		return
	}
	parent, err := r.gw.Channel(ch.CategoryID)
	if err != nil || parent.Name != r.category {
		return
	}

	r.activity.Touch(ch.ID)

	if domain.IsPermanentChannel(ch.Name) {
		return
	}

	homeLang := r.guilds.Language(ev.GuildID)
	homeKey := domain.NormalizeLang(homeLang)

	key, standard, ok := domain.ParseChannelName(ch.Name, homeKey)
	if !ok {
		r.logger.Debug("channel name does not match the pair pattern",
			zap.String("channel", ch.Name))
		return
	}

	pair, ok := r.registry.Get(key)
	if !ok || !pair.Complete() {
		r.logger.Warn("message received from a pair channel without a valid pair",
			zap.String("key", key))
		return
	}

	foreignLang := domain.DenormalizeLang(key)
	job := relayJob{event: ev, categoryID: ch.CategoryID}
	if standard {
		job.partner = pair.Foreign
		job.from = homeLang
		job.to = foreignLang
		job.trType = domain.TranslationToForeign
	} else {
		job.partner = pair.Standard
		job.from = foreignLang
		job.to = homeLang
		job.trType = domain.TranslationToHome
	}

	r.logger.Debug("starting translation of message",
		zap.String("from", job.from),
		zap.String("to", job.to),
		zap.String("partner", job.partner.Name),
	)

	// Dropping under a sustained burst beats stalling the dispatch loop.
	select {
	case r.jobs <- job:
	default:
		r.logger.Warn("relay queue is full, dropping message",
			zap.String("channel", ch.Name),
			zap.String("message", ev.MessageID),
		)
	}
}

// relay translates the message and posts it to the partner channel, then
// hands the exchange to the archive loop.
func (r *Router) relay(ctx context.Context, job relayJob) {
	ev := job.event

	var translation *domain.Translation
	relayText := ""
	if strings.TrimSpace(ev.Content) != "" {
		translation = r.translator.Translate(ctx, job.from, job.to, ev.Content)
		translation.Type = job.trType
		relayText = translation.Translated.Text
	}

	attachmentURL := ""
	if len(ev.Attachments) > 0 {
		urls := make([]string, 0, len(ev.Attachments))
		for _, a := range ev.Attachments {
			urls = append(urls, a.URL)
		}
		relayText += " " + strings.Join(urls, " ")
		attachmentURL = ev.Attachments[0].URL
	}

	if err := r.gw.SendMessage(job.partner.ID, "**"+ev.AuthorName+"**: "+relayText); err != nil {
		r.logger.Error("failed to relay message to partner channel",
			zap.String("partner", job.partner.ID),
			zap.Error(err),
		)
	}

	if translation == nil {
		return
	}

	r.archives <- archiveJob{
		guildID:         ev.GuildID,
		categoryID:      job.categoryID,
		authorID:        ev.AuthorID,
		authorName:      ev.AuthorName,
		authorAvatarURL: ev.AuthorAvatarURL,
		translation:     translation,
		attachmentURL:   attachmentURL,
	}
}

// archive posts the combined record to the history channel and persists it.
// Skipped entirely when either variant is blank.
func (r *Router) archive(job archiveJob) {
	home := job.translation.HomeText()
	foreign := job.translation.ForeignText()
	if strings.TrimSpace(home.Text) == "" || strings.TrimSpace(foreign.Text) == "" {
		r.logger.Debug("skipping archive of half-empty exchange")
		return
	}

	channels, err := r.gw.ChannelsInCategory(job.guildID, job.categoryID)
	if err != nil {
		r.logger.Error("failed to enumerate category for history channel", zap.Error(err))
		return
	}

	historyID := ""
	for _, ch := range channels {
		if ch.Name == domain.HistoryChannelName {
			historyID = ch.ID
			break
		}
	}
	if historyID == "" {
		return
	}

	embed := gateway.Embed{
		AuthorName:    job.authorName,
		AuthorIconURL: job.authorAvatarURL,
		ImageURL:      job.attachmentURL,
	}
	embed.Fields = appendChunkedFields(embed.Fields, home.Language, home.Text)
	embed.Fields = appendChunkedFields(embed.Fields, foreign.Language, foreign.Text)
	if len(job.translation.CodeBlocks) > 0 {
		embed.Fields = appendChunkedFields(embed.Fields, "code",
			strings.Join(job.translation.CodeBlocks, "\n"))
	}

	r.logger.Debug("sending exchange to the history channel")
	if err := r.gw.SendEmbed(historyID, embed); err != nil {
		r.logger.Error("failed to post history embed", zap.Error(err))
	}

	record := &repository.HistoryRecord{
		GuildID:         job.guildID,
		AuthorID:        job.authorID,
		AuthorName:      job.authorName,
		HomeLanguage:    home.Language,
		HomeText:        home.Text,
		ForeignLanguage: foreign.Language,
		ForeignText:     foreign.Text,
		CodeBlocks:      strings.Join(job.translation.CodeBlocks, "\n"),
		AttachmentURL:   job.attachmentURL,
	}
	if err := r.history.SaveRecord(record); err != nil {
		r.logger.Error("failed to persist history record", zap.Error(err))
	}
}

// appendChunkedFields splits text into archive-field-sized chunks, one field
// per chunk, all carrying the same name.
func appendChunkedFields(fields []gateway.EmbedField, name, text string) []gateway.EmbedField {
	for _, chunk := range chunkUpTo(text, domain.HistoryFieldLimit) {
		fields = append(fields, gateway.EmbedField{Name: name, Value: chunk, Inline: true})
	}
	return fields
}

// chunkUpTo splits s into rune-safe chunks of at most size characters.
func chunkUpTo(s string, size int) []string {
	runes := []rune(s)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

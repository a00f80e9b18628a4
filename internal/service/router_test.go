package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/registry"
	"localizer/internal/repository"
	"localizer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubTracker struct {
	touched []string
}

func (s *stubTracker) Touch(channelID string) {
	s.touched = append(s.touched, channelID)
}

func newTestRouter(gw *testutil.MockGateway, translator *testutil.MockTranslator, history *testutil.MockHistoryRepository) (*Router, *registry.Registry, *stubTracker) {
	logger := testutil.NewTestLogger()
	reg := registry.New(logger)
	guilds := NewGuildConfig(translator, "en", logger)
	tracker := &stubTracker{}
	return NewRouter(gw, translator, reg, guilds, history, tracker, domain.CategoryName, logger), reg, tracker
}

func TestRouter_HandleMessage_IgnoresOwnMessages(t *testing.T) {
	gw := testutil.NewMockGateway()
	router, _, _ := newTestRouter(gw, new(testutil.MockTranslator), new(testutil.MockHistoryRepository))

	gw.On("BotUserID").Return("bot-1")

	router.HandleMessage(gateway.MessageEvent{AuthorID: "bot-1", ChannelID: "std-fr"})
	assert.Empty(t, router.jobs)
	gw.AssertNotCalled(t, "Channel", mock.Anything)
}

func TestRouter_HandleMessage_IgnoresChannelsOutsideCategory(t *testing.T) {
	tests := []struct {
		name    string
		channel gateway.ChannelInfo
		parent  gateway.ChannelInfo
	}{
		{
			name:    "no parent category",
			channel: gateway.ChannelInfo{ID: "chan-1", Name: "en-to-fr"},
		},
		{
			name:    "different category",
			channel: gateway.ChannelInfo{ID: "chan-1", Name: "en-to-fr", CategoryID: "cat-9"},
			parent:  gateway.ChannelInfo{ID: "cat-9", Name: "general"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := testutil.NewMockGateway()
			router, _, tracker := newTestRouter(gw, new(testutil.MockTranslator), new(testutil.MockHistoryRepository))

			gw.On("BotUserID").Return("bot-1")
			gw.On("Channel", tt.channel.ID).Return(tt.channel, nil)
			if tt.channel.CategoryID != "" {
				gw.On("Channel", tt.channel.CategoryID).Return(tt.parent, nil)
			}

			router.HandleMessage(gateway.MessageEvent{AuthorID: "user-1", ChannelID: tt.channel.ID})
			assert.Empty(t, router.jobs)
			assert.Empty(t, tracker.touched)
		})
	}
}

func TestRouter_HandleMessage_PermanentChannelOnlyRecordsActivity(t *testing.T) {
	gw := testutil.NewMockGateway()
	router, _, tracker := newTestRouter(gw, new(testutil.MockTranslator), new(testutil.MockHistoryRepository))

	gw.On("BotUserID").Return("bot-1")
	gw.On("Channel", "howto-1").
		Return(gateway.ChannelInfo{ID: "howto-1", Name: domain.HowToChannelName, CategoryID: "cat-1"}, nil)
	gw.On("Channel", "cat-1").Return(gateway.ChannelInfo{ID: "cat-1", Name: domain.CategoryName}, nil)

	router.HandleMessage(gateway.MessageEvent{AuthorID: "user-1", ChannelID: "howto-1"})
	assert.Empty(t, router.jobs)
	assert.Equal(t, []string{"howto-1"}, tracker.touched)
}

func TestRouter_HandleMessage_UnregisteredPairChannel(t *testing.T) {
	gw := testutil.NewMockGateway()
	router, _, _ := newTestRouter(gw, new(testutil.MockTranslator), new(testutil.MockHistoryRepository))

	gw.On("BotUserID").Return("bot-1")
	gw.On("Channel", "std-de").
		Return(gateway.ChannelInfo{ID: "std-de", Name: "en-to-de", CategoryID: "cat-1"}, nil)
	gw.On("Channel", "cat-1").Return(gateway.ChannelInfo{ID: "cat-1", Name: domain.CategoryName}, nil)

	router.HandleMessage(gateway.MessageEvent{AuthorID: "user-1", ChannelID: "std-de"})
	assert.Empty(t, router.jobs)
}

func TestRouter_HandleMessage_ClassifiesSides(t *testing.T) {
	tests := []struct {
		name        string
		channel     gateway.ChannelInfo
		wantPartner string
		wantFrom    string
		wantTo      string
		wantType    domain.TranslationType
	}{
		{
			name:        "standard side relays to foreign",
			channel:     gateway.ChannelInfo{ID: "std-fr", Name: "en-to-fr", CategoryID: "cat-1"},
			wantPartner: "for-fr",
			wantFrom:    "en",
			wantTo:      "fr",
			wantType:    domain.TranslationToForeign,
		},
		{
			name:        "foreign side relays to standard",
			channel:     gateway.ChannelInfo{ID: "for-fr", Name: "fr-to-en", CategoryID: "cat-1"},
			wantPartner: "std-fr",
			wantFrom:    "fr",
			wantTo:      "en",
			wantType:    domain.TranslationToHome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := testutil.NewMockGateway()
			router, reg, tracker := newTestRouter(gw, new(testutil.MockTranslator), new(testutil.MockHistoryRepository))
			reg.TryAdd("fr", testutil.NewTestPair("en", "fr"))

			gw.On("BotUserID").Return("bot-1")
			gw.On("Channel", tt.channel.ID).Return(tt.channel, nil)
			gw.On("Channel", "cat-1").Return(gateway.ChannelInfo{ID: "cat-1", Name: domain.CategoryName}, nil)

			router.HandleMessage(gateway.MessageEvent{
				GuildID:   "guild-1",
				AuthorID:  "user-1",
				ChannelID: tt.channel.ID,
				Content:   "hello",
			})

			assert.Len(t, router.jobs, 1)
			job := <-router.jobs
			assert.Equal(t, tt.wantPartner, job.partner.ID)
			assert.Equal(t, tt.wantFrom, job.from)
			assert.Equal(t, tt.wantTo, job.to)
			assert.Equal(t, tt.wantType, job.trType)
			assert.Equal(t, "cat-1", job.categoryID)
			assert.Equal(t, []string{tt.channel.ID}, tracker.touched)
		})
	}
}

func TestRouter_HandleMessage_DropsWhenQueueFull(t *testing.T) {
	gw := testutil.NewMockGateway()
	router, reg, _ := newTestRouter(gw, new(testutil.MockTranslator), new(testutil.MockHistoryRepository))
	reg.TryAdd("fr", testutil.NewTestPair("en", "fr"))

	gw.On("BotUserID").Return("bot-1")
	gw.On("Channel", "std-fr").
		Return(gateway.ChannelInfo{ID: "std-fr", Name: "en-to-fr", CategoryID: "cat-1"}, nil)
	gw.On("Channel", "cat-1").Return(gateway.ChannelInfo{ID: "cat-1", Name: domain.CategoryName}, nil)

	for i := 0; i < cap(router.jobs); i++ {
		router.jobs <- relayJob{}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.HandleMessage(gateway.MessageEvent{
			GuildID:   "guild-1",
			AuthorID:  "user-1",
			ChannelID: "std-fr",
			Content:   "hello",
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a full relay queue")
	}
	assert.Len(t, router.jobs, cap(router.jobs))
}

func TestRouter_Relay_TranslatesAndForwards(t *testing.T) {
	gw := testutil.NewMockGateway()
	translator := new(testutil.MockTranslator)
	router, _, _ := newTestRouter(gw, translator, new(testutil.MockHistoryRepository))

	pair := testutil.NewTestPair("en", "fr")
	translator.On("Translate", mock.Anything, "en", "fr", "hello").
		Return(testutil.NewTestTranslation("en", "hello", "fr", "bonjour"))
	gw.On("SendMessage", "for-fr", "**Alice**: bonjour").Return(nil)

	router.relay(context.Background(), relayJob{
		event: gateway.MessageEvent{
			GuildID:    "guild-1",
			AuthorID:   "user-1",
			AuthorName: "Alice",
			Content:    "hello",
		},
		partner:    pair.Foreign,
		from:       "en",
		to:         "fr",
		trType:     domain.TranslationToForeign,
		categoryID: "cat-1",
	})

	assert.Len(t, router.archives, 1)
	job := <-router.archives
	assert.Equal(t, "guild-1", job.guildID)
	assert.Equal(t, "Alice", job.authorName)
	assert.Equal(t, domain.TranslationToForeign, job.translation.Type)
	assert.Equal(t, "hello", job.translation.HomeText().Text)
	assert.Equal(t, "bonjour", job.translation.ForeignText().Text)
	gw.AssertExpectations(t)
}

func TestRouter_Relay_AttachmentOnlyMessage(t *testing.T) {
	gw := testutil.NewMockGateway()
	translator := new(testutil.MockTranslator)
	router, _, _ := newTestRouter(gw, translator, new(testutil.MockHistoryRepository))

	pair := testutil.NewTestPair("en", "fr")
	gw.On("SendMessage", "for-fr", "**Alice**:  https://cdn.example/cat.png").Return(nil)

	router.relay(context.Background(), relayJob{
		event: gateway.MessageEvent{
			AuthorID:    "user-1",
			AuthorName:  "Alice",
			Content:     "",
			Attachments: []gateway.Attachment{{URL: "https://cdn.example/cat.png"}},
		},
		partner: pair.Foreign,
		from:    "en",
		to:      "fr",
	})

	assert.Empty(t, router.archives)
	translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	gw.AssertExpectations(t)
}

func TestRouter_Archive_SkipsHalfEmptyExchange(t *testing.T) {
	gw := testutil.NewMockGateway()
	history := new(testutil.MockHistoryRepository)
	router, _, _ := newTestRouter(gw, new(testutil.MockTranslator), history)

	router.archive(archiveJob{
		guildID:     "guild-1",
		translation: testutil.NewTestTranslation("en", "hello", "fr", "   "),
	})

	gw.AssertNotCalled(t, "ChannelsInCategory", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "SaveRecord", mock.Anything)
}

func TestRouter_Archive_PostsEmbedAndPersists(t *testing.T) {
	gw := testutil.NewMockGateway()
	history := new(testutil.MockHistoryRepository)
	router, _, _ := newTestRouter(gw, new(testutil.MockTranslator), history)

	gw.On("ChannelsInCategory", "guild-1", "cat-1").Return([]gateway.ChannelInfo{
		{ID: "howto-1", Name: domain.HowToChannelName},
		{ID: "hist-1", Name: domain.HistoryChannelName},
	}, nil)

	var embed gateway.Embed
	gw.On("SendEmbed", "hist-1", mock.Anything).
		Run(func(args mock.Arguments) { embed = args.Get(1).(gateway.Embed) }).
		Return(nil)

	var record *repository.HistoryRecord
	history.On("SaveRecord", mock.Anything).
		Run(func(args mock.Arguments) { record = args.Get(0).(*repository.HistoryRecord) }).
		Return(nil)

	translation := testutil.NewTestTranslation("en", "hello", "fr", "bonjour")
	translation.CodeBlocks = []string{"```go\nx := 1\n```"}

	router.archive(archiveJob{
		guildID:         "guild-1",
		categoryID:      "cat-1",
		authorID:        "user-1",
		authorName:      "Alice",
		authorAvatarURL: "https://cdn.example/alice.png",
		translation:     translation,
		attachmentURL:   "https://cdn.example/cat.png",
	})

	assert.Equal(t, "Alice", embed.AuthorName)
	assert.Equal(t, "https://cdn.example/cat.png", embed.ImageURL)
	assert.Len(t, embed.Fields, 3)
	assert.Equal(t, "en", embed.Fields[0].Name)
	assert.Equal(t, "hello", embed.Fields[0].Value)
	assert.Equal(t, "fr", embed.Fields[1].Name)
	assert.Equal(t, "bonjour", embed.Fields[1].Value)
	assert.Equal(t, "code", embed.Fields[2].Name)

	assert.Equal(t, "guild-1", record.GuildID)
	assert.Equal(t, "user-1", record.AuthorID)
	assert.Equal(t, "en", record.HomeLanguage)
	assert.Equal(t, "hello", record.HomeText)
	assert.Equal(t, "fr", record.ForeignLanguage)
	assert.Equal(t, "bonjour", record.ForeignText)
	assert.Contains(t, record.CodeBlocks, "x := 1")
}

func TestRouter_Archive_NoHistoryChannel(t *testing.T) {
	gw := testutil.NewMockGateway()
	history := new(testutil.MockHistoryRepository)
	router, _, _ := newTestRouter(gw, new(testutil.MockTranslator), history)

	gw.On("ChannelsInCategory", "guild-1", "cat-1").Return([]gateway.ChannelInfo{
		{ID: "std-fr", Name: "en-to-fr"},
	}, nil)

	router.archive(archiveJob{
		guildID:     "guild-1",
		categoryID:  "cat-1",
		translation: testutil.NewTestTranslation("en", "hello", "fr", "bonjour"),
	})

	gw.AssertNotCalled(t, "SendEmbed", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "SaveRecord", mock.Anything)
}

func TestRouter_Archive_ChunksLongText(t *testing.T) {
	gw := testutil.NewMockGateway()
	history := new(testutil.MockHistoryRepository)
	router, _, _ := newTestRouter(gw, new(testutil.MockTranslator), history)

	gw.On("ChannelsInCategory", "guild-1", "cat-1").Return([]gateway.ChannelInfo{
		{ID: "hist-1", Name: domain.HistoryChannelName},
	}, nil)

	var embed gateway.Embed
	gw.On("SendEmbed", "hist-1", mock.Anything).
		Run(func(args mock.Arguments) { embed = args.Get(1).(gateway.Embed) }).
		Return(nil)
	history.On("SaveRecord", mock.Anything).Return(nil)

	long := strings.Repeat("a", domain.HistoryFieldLimit+10)
	router.archive(archiveJob{
		guildID:     "guild-1",
		categoryID:  "cat-1",
		translation: testutil.NewTestTranslation("en", long, "fr", "bonjour"),
	})

	assert.Len(t, embed.Fields, 3)
	assert.Equal(t, "en", embed.Fields[0].Name)
	assert.Equal(t, "en", embed.Fields[1].Name)
	assert.Len(t, embed.Fields[0].Value, domain.HistoryFieldLimit)
	assert.Len(t, embed.Fields[1].Value, 10)
	assert.Equal(t, "fr", embed.Fields[2].Name)
}

func TestChunkUpTo(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		size     int
		expected []string
	}{
		{
			name:     "shorter than limit",
			input:    "hello",
			size:     10,
			expected: []string{"hello"},
		},
		{
			name:     "exact boundary",
			input:    "abcdef",
			size:     3,
			expected: []string{"abc", "def"},
		},
		{
			name:     "remainder chunk",
			input:    "abcdefg",
			size:     3,
			expected: []string{"abc", "def", "g"},
		},
		{
			name:     "multibyte runes kept intact",
			input:    "héllo wörld",
			size:     4,
			expected: []string{"héll", "o wö", "rld"},
		},
		{
			name:     "empty input",
			input:    "",
			size:     3,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chunkUpTo(tt.input, tt.size))
		})
	}
}

package testutil

import (
	"context"
	"time"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/repository"
	"localizer/internal/translate"

	"github.com/stretchr/testify/mock"
)

// MockTranslator is a mock for translate.Translator
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, from, to, text string) *domain.Translation {
	args := m.Called(ctx, from, to, text)
	return args.Get(0).(*domain.Translation)
}

func (m *MockTranslator) IsLanguageSupported(ctx context.Context, lang string) (bool, error) {
	args := m.Called(ctx, lang)
	return args.Bool(0), args.Error(1)
}

func (m *MockTranslator) SupportedLanguages(ctx context.Context) (map[string]translate.LanguageDetails, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]translate.LanguageDetails), args.Error(1)
}

// MockHistoryRepository is a mock for repository.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) SaveRecord(record *repository.HistoryRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockHistoryRepository) RecentByGuild(guildID string, limit int) ([]repository.HistoryRecord, error) {
	args := m.Called(guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.HistoryRecord), args.Error(1)
}

// MockGateway is a mock for gateway.Gateway
type MockGateway struct {
	mock.Mock

	// EventsCh is handed out by Events; tests push platform events here.
	EventsCh chan gateway.Event
}

func NewMockGateway() *MockGateway {
	return &MockGateway{EventsCh: make(chan gateway.Event, 16)}
}

func (m *MockGateway) Events() <-chan gateway.Event {
	return m.EventsCh
}

func (m *MockGateway) BotUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockGateway) Guilds() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockGateway) GuildLocale(guildID string) (string, error) {
	args := m.Called(guildID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Channel(channelID string) (gateway.ChannelInfo, error) {
	args := m.Called(channelID)
	return args.Get(0).(gateway.ChannelInfo), args.Error(1)
}

func (m *MockGateway) Category(guildID, name string) (gateway.ChannelInfo, bool, error) {
	args := m.Called(guildID, name)
	return args.Get(0).(gateway.ChannelInfo), args.Bool(1), args.Error(2)
}

func (m *MockGateway) CreateCategory(guildID, name string) (gateway.ChannelInfo, error) {
	args := m.Called(guildID, name)
	return args.Get(0).(gateway.ChannelInfo), args.Error(1)
}

func (m *MockGateway) ChannelsInCategory(guildID, categoryID string) ([]gateway.ChannelInfo, error) {
	args := m.Called(guildID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.ChannelInfo), args.Error(1)
}

func (m *MockGateway) CreateChannel(guildID, categoryID, name, topic string) (gateway.ChannelInfo, error) {
	args := m.Called(guildID, categoryID, name, topic)
	return args.Get(0).(gateway.ChannelInfo), args.Error(1)
}

func (m *MockGateway) SetTopic(channelID, topic string) error {
	args := m.Called(channelID, topic)
	return args.Error(0)
}

func (m *MockGateway) DeleteChannel(channelID string) error {
	args := m.Called(channelID)
	return args.Error(0)
}

func (m *MockGateway) SendMessage(channelID, content string) error {
	args := m.Called(channelID, content)
	return args.Error(0)
}

func (m *MockGateway) SendEmbed(channelID string, embed gateway.Embed) error {
	args := m.Called(channelID, embed)
	return args.Error(0)
}

func (m *MockGateway) LastMessageTime(channelID string) (time.Time, error) {
	args := m.Called(channelID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockGateway) RecentMessages(channelID string, limit int) ([]string, error) {
	args := m.Called(channelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

package handler

import (
	"context"
	"testing"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestIsCommand(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{
			name:     "create command",
			content:  "??translate create fr",
			expected: true,
		},
		{
			name:     "inline translation",
			content:  "??translate es hello there",
			expected: true,
		},
		{
			name:     "bare prefix",
			content:  "??translate",
			expected: true,
		},
		{
			name:     "plain message",
			content:  "hello there",
			expected: false,
		},
		{
			name:     "prefix mid-message",
			content:  "use ??translate create fr",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isCommand(tt.content))
		})
	}
}

func TestHandler_CreatePair_Success(t *testing.T) {
	f := newTestHandler()
	pair := testutil.NewTestPair("en", "fr")
	f.registry.TryAdd("fr", pair)

	f.gw.On("SendMessage", "howto-1",
		"Translation channels have been created at <#std-fr> and <#for-fr>").Return(nil)

	f.handler.createPair(context.Background(), gateway.MessageEvent{
		GuildID:   "guild-1",
		ChannelID: "howto-1",
		AuthorID:  "user-1",
	}, "fr")

	f.gw.AssertExpectations(t)
}

func TestHandler_CreatePair_LanguageNotSupported(t *testing.T) {
	f := newTestHandler()

	f.gw.On("Category", "guild-1", domain.CategoryName).
		Return(gateway.ChannelInfo{ID: "cat-1", Name: domain.CategoryName}, true, nil)
	f.translator.On("IsLanguageSupported", mock.Anything, "tlh").Return(false, nil)
	f.gw.On("SendMessage", "howto-1", "tlh is not supported at this time").Return(nil)

	f.handler.createPair(context.Background(), gateway.MessageEvent{
		GuildID:   "guild-1",
		ChannelID: "howto-1",
		AuthorID:  "user-1",
	}, "tlh")

	f.gw.AssertExpectations(t)
}

func TestHandler_CreatePair_GenericFailure(t *testing.T) {
	f := newTestHandler()

	f.gw.On("Category", "guild-1", domain.CategoryName).
		Return(gateway.ChannelInfo{}, false, assert.AnError)
	f.gw.On("SendMessage", "howto-1", "Unable to create channel pair").Return(nil)

	f.handler.createPair(context.Background(), gateway.MessageEvent{
		GuildID:   "guild-1",
		ChannelID: "howto-1",
		AuthorID:  "user-1",
	}, "fr")

	f.gw.AssertExpectations(t)
}

func TestHandler_TranslateInline(t *testing.T) {
	f := newTestHandler()

	f.translator.On("Translate", mock.Anything, "", "es", "hello there").
		Return(testutil.NewTestTranslation("en", "hello there", "es", "hola"))
	f.gw.On("SendMessage", "chan-1", "hola").Return(nil)

	f.handler.translateInline(context.Background(), gateway.MessageEvent{
		ChannelID: "chan-1",
		AuthorID:  "user-1",
	}, "es", "hello there")

	f.gw.AssertExpectations(t)
}

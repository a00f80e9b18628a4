package service

import (
	"testing"
	"time"

	"localizer/internal/domain"
	"localizer/internal/gateway"
	"localizer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestReaper(gw *testutil.MockGateway, now time.Time) *Reaper {
	r := NewReaper(gw, domain.CategoryName, domain.IdleChannelTimeout, time.Minute, testutil.NewTestLogger())
	r.now = func() time.Time { return now }
	return r
}

func expectCategory(gw *testutil.MockGateway, channels []gateway.ChannelInfo) {
	gw.On("Guilds").Return([]string{"guild-1"})
	gw.On("Category", "guild-1", domain.CategoryName).
		Return(gateway.ChannelInfo{ID: "cat-1", Name: domain.CategoryName}, true, nil)
	gw.On("ChannelsInCategory", "guild-1", "cat-1").Return(channels, nil)
}

func TestReaper_Sweep_DeletesIdleChannel(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	expectCategory(gw, []gateway.ChannelInfo{{ID: "std-fr", Name: "en-to-fr"}})
	gw.On("DeleteChannel", "std-fr").Return(nil)

	r.Touch("std-fr")
	r.activity["std-fr"] = now.Add(-domain.IdleChannelTimeout - time.Second)

	r.Sweep()
	gw.AssertCalled(t, "DeleteChannel", "std-fr")
}

func TestReaper_Sweep_KeepsChannelAtThreshold(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	expectCategory(gw, []gateway.ChannelInfo{{ID: "std-fr", Name: "en-to-fr"}})

	// Idle for exactly the timeout is not past it.
	r.activity["std-fr"] = now.Add(-domain.IdleChannelTimeout)

	r.Sweep()
	gw.AssertNotCalled(t, "DeleteChannel", mock.Anything)
}

func TestReaper_Sweep_KeepsActiveChannel(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	expectCategory(gw, []gateway.ChannelInfo{{ID: "std-fr", Name: "en-to-fr"}})

	r.activity["std-fr"] = now.Add(-time.Minute)

	r.Sweep()
	gw.AssertNotCalled(t, "DeleteChannel", mock.Anything)
}

func TestReaper_Sweep_SkipsPermanentChannels(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	old := now.Add(-48 * time.Hour)
	expectCategory(gw, []gateway.ChannelInfo{
		{ID: "howto-1", Name: domain.HowToChannelName, CreatedAt: old},
		{ID: "hist-1", Name: domain.HistoryChannelName, CreatedAt: old},
	})

	r.Sweep()
	gw.AssertNotCalled(t, "DeleteChannel", mock.Anything)
	gw.AssertNotCalled(t, "LastMessageTime", mock.Anything)
}

func TestReaper_Sweep_ProbesLastMessageWhenUntracked(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	expectCategory(gw, []gateway.ChannelInfo{{ID: "std-fr", Name: "en-to-fr"}})
	gw.On("LastMessageTime", "std-fr").Return(now.Add(-48*time.Hour), nil)
	gw.On("DeleteChannel", "std-fr").Return(nil)

	r.Sweep()
	gw.AssertCalled(t, "DeleteChannel", "std-fr")
}

func TestReaper_Sweep_FallsBackToCreationTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	// Empty channel created recently stays; one created long ago goes.
	expectCategory(gw, []gateway.ChannelInfo{
		{ID: "std-fr", Name: "en-to-fr", CreatedAt: now.Add(-time.Hour)},
		{ID: "std-de", Name: "en-to-de", CreatedAt: now.Add(-48 * time.Hour)},
	})
	gw.On("LastMessageTime", "std-fr").Return(time.Time{}, nil)
	gw.On("LastMessageTime", "std-de").Return(time.Time{}, nil)
	gw.On("DeleteChannel", "std-de").Return(nil)

	r.Sweep()
	gw.AssertCalled(t, "DeleteChannel", "std-de")
	gw.AssertNotCalled(t, "DeleteChannel", "std-fr")
}

func TestReaper_Sweep_SkipsChannelOnProbeError(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	expectCategory(gw, []gateway.ChannelInfo{{ID: "std-fr", Name: "en-to-fr"}})
	gw.On("LastMessageTime", "std-fr").Return(time.Time{}, assert.AnError)

	r.Sweep()
	gw.AssertNotCalled(t, "DeleteChannel", mock.Anything)
}

func TestReaper_Forget(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	r.Touch("std-fr")
	r.Forget("std-fr")

	expectCategory(gw, []gateway.ChannelInfo{{ID: "std-fr", Name: "en-to-fr", CreatedAt: now}})
	gw.On("LastMessageTime", "std-fr").Return(time.Time{}, nil)

	r.Sweep()
	gw.AssertCalled(t, "LastMessageTime", "std-fr")
	gw.AssertNotCalled(t, "DeleteChannel", mock.Anything)
}

func TestReaper_Sweep_NoCategory(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gw := testutil.NewMockGateway()
	r := newTestReaper(gw, now)

	gw.On("Guilds").Return([]string{"guild-1"})
	gw.On("Category", "guild-1", domain.CategoryName).
		Return(gateway.ChannelInfo{}, false, nil)

	r.Sweep()
	gw.AssertNotCalled(t, "ChannelsInCategory", mock.Anything, mock.Anything)
}

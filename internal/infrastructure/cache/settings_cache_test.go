package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
)

type countingRepo struct {
	calls    int
	settings map[id.ID]calendar.Settings
	// onRead runs after the row is read and before it is returned.
	onRead func(companyID id.ID)
}

func (r *countingRepo) GetCalendarSettings(_ context.Context, companyID id.ID) (*calendar.Settings, error) {
	r.calls++
	s, ok := r.settings[companyID]
	if r.onRead != nil {
		r.onRead(companyID)
	}
	if !ok {
		return nil, calendar.ErrConfigurationMissing
	}
	return &s, nil
}

func (r *countingRepo) ListConfiguredCompanies(context.Context) ([]id.ID, error) {
	return nil, nil
}

func TestSettingsCache_PassThroughUntilListening(t *testing.T) {
	company := id.New()
	repo := &countingRepo{settings: map[id.ID]calendar.Settings{company: {Timezone: "UTC"}}}
	c := NewSettingsCache(repo, nil)

	for range 3 {
		_, err := c.GetCalendarSettings(context.Background(), company)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.calls)
}

func TestSettingsCache_InvalidatesOnNotification(t *testing.T) {
	company := id.New()
	other := id.New()
	repo := &countingRepo{settings: map[id.ID]calendar.Settings{
		company: {Timezone: "UTC"},
		other:   {Timezone: "Europe/Kyiv"},
	}}
	c := NewSettingsCache(repo, nil)
	c.setActive(true)
	ctx := context.Background()

	s, err := c.GetCalendarSettings(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, "UTC", s.Timezone)
	_, err = c.GetCalendarSettings(ctx, company)
	require.NoError(t, err)
	_, err = c.GetCalendarSettings(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)

	repo.settings[company] = calendar.Settings{Timezone: "Asia/Tokyo"}
	c.handleNotification(company.String())

	s, err = c.GetCalendarSettings(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", s.Timezone)
	_, err = c.GetCalendarSettings(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)

	c.handleNotification("")
	_, err = c.GetCalendarSettings(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.calls)
}

func TestSettingsCache_MissingNotCached(t *testing.T) {
	repo := &countingRepo{settings: map[id.ID]calendar.Settings{}}
	c := NewSettingsCache(repo, nil)
	c.setActive(true)

	company := id.New()
	for range 2 {
		_, err := c.GetCalendarSettings(context.Background(), company)
		assert.ErrorIs(t, err, calendar.ErrConfigurationMissing)
	}
	assert.Equal(t, 2, repo.calls)
}

func TestSettingsCache_ChangeDuringReadIsNotCached(t *testing.T) {
	tests := []struct {
		name   string
		notify func(c *SettingsCache, companyID id.ID)
	}{
		{name: "company notification", notify: func(c *SettingsCache, companyID id.ID) { c.handleNotification(companyID.String()) }},
		{name: "flush notification", notify: func(c *SettingsCache, _ id.ID) { c.handleNotification("*") }},
		{name: "listener reconnect", notify: func(c *SettingsCache, _ id.ID) { c.setActive(true) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company := id.New()
			repo := &countingRepo{settings: map[id.ID]calendar.Settings{company: {Timezone: "UTC"}}}
			c := NewSettingsCache(repo, nil)
			c.setActive(true)
			ctx := context.Background()

			repo.onRead = func(companyID id.ID) {
				repo.onRead = nil
				repo.settings[companyID] = calendar.Settings{Timezone: "Asia/Tokyo"}
				tt.notify(c, companyID)
			}

			s, err := c.GetCalendarSettings(ctx, company)
			require.NoError(t, err)
			assert.Equal(t, "UTC", s.Timezone)

			s, err = c.GetCalendarSettings(ctx, company)
			require.NoError(t, err)
			assert.Equal(t, "Asia/Tokyo", s.Timezone)
			assert.Equal(t, 2, repo.calls)

			_, err = c.GetCalendarSettings(ctx, company)
			require.NoError(t, err)
			assert.Equal(t, 2, repo.calls)
		})
	}
}

// Package cache provides caching infrastructure with PostgreSQL LISTEN/NOTIFY support.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/domain/finance"
	"venueledger/pkg/logger"
)

// ChannelSettingsChanged is notified with a company id whenever a
// venue_settings row changes.
const ChannelSettingsChanged = "venue_settings_changed"

// SettingsCache keeps venue calendar settings in memory and drops entries
// when PostgreSQL notifies a change. Until Start succeeds every lookup goes
// to the wrapped repository.
type SettingsCache struct {
	next finance.SettingsRepository
	pool *pgxpool.Pool

	mu       sync.RWMutex
	settings map[id.ID]calendar.Settings
	active   bool
	// epoch bumps on every full flush, gens on every per-company
	// invalidation. A miss is stored only if neither moved during the read.
	epoch uint64
	gens  map[id.ID]uint64

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

var _ finance.SettingsRepository = (*SettingsCache)(nil)

// NewSettingsCache wraps next. pool provides the dedicated LISTEN connection.
func NewSettingsCache(next finance.SettingsRepository, pool *pgxpool.Pool) *SettingsCache {
	return &SettingsCache{
		next:     next,
		pool:     pool,
		settings: make(map[id.ID]calendar.Settings),
		gens:     make(map[id.ID]uint64),
	}
}

// GetCalendarSettings serves from memory when possible.
func (c *SettingsCache) GetCalendarSettings(ctx context.Context, companyID id.ID) (*calendar.Settings, error) {
	c.mu.RLock()
	s, ok := c.settings[companyID]
	active := c.active
	epoch, gen := c.epoch, c.gens[companyID]
	c.mu.RUnlock()
	if ok {
		return &s, nil
	}

	loaded, err := c.next.GetCalendarSettings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if active {
		c.mu.Lock()
		if c.active && c.epoch == epoch && c.gens[companyID] == gen {
			c.settings[companyID] = *loaded
		}
		c.mu.Unlock()
	}
	return loaded, nil
}

// ListConfiguredCompanies is not cached.
func (c *SettingsCache) ListConfiguredCompanies(ctx context.Context) ([]id.ID, error) {
	return c.next.ListConfiguredCompanies(ctx)
}

// Start begins listening for changes. Entries are only cached while a
// LISTEN connection is held.
func (c *SettingsCache) Start(ctx context.Context) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "settings cache started")
}

// Stop stops the listener and empties the cache.
func (c *SettingsCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	cancel()
	c.wg.Wait()
	c.setActive(false)
	logger.Info(context.Background(), "settings cache stopped")
}

func (c *SettingsCache) listenLoop() {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			c.sleep(time.Second)
			continue
		}

		if _, err := conn.Exec(c.ctx, "LISTEN "+ChannelSettingsChanged); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			c.sleep(time.Second)
			continue
		}

		// Changes missed while disconnected are unknown.
		c.setActive(true)
		logger.Debug(c.ctx, "listening for settings changes", "channel", ChannelSettingsChanged)

		c.waitForNotifications(conn)
		c.setActive(false)
		conn.Release()
	}
}

func (c *SettingsCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				// Timeout, keep listening.
				continue
			}
			logger.Warn(c.ctx, "settings listener lost connection", "error", err)
			return
		}
		c.handleNotification(notification.Payload)
	}
}

// handleNotification drops one company, or everything when the payload is
// not a company id.
func (c *SettingsCache) handleNotification(payload string) {
	companyID, err := id.Parse(strings.TrimSpace(payload))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.flushLocked()
		return
	}
	c.gens[companyID]++
	delete(c.settings, companyID)
}

func (c *SettingsCache) setActive(active bool) {
	c.mu.Lock()
	c.active = active
	c.flushLocked()
	c.mu.Unlock()
}

func (c *SettingsCache) flushLocked() {
	c.epoch++
	c.settings = make(map[id.ID]calendar.Settings)
	c.gens = make(map[id.ID]uint64)
}

func (c *SettingsCache) sleep(d time.Duration) {
	select {
	case <-c.ctx.Done():
	case <-time.After(d):
	}
}

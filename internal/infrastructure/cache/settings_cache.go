package cache

import (
	"time"

	"3tcapital/ms_numeracion_core/internal/core/serial"

	gocache "github.com/patrickmn/go-cache"
)

// SettingsCache keeps recently read serial settings in memory so that live
// previews do not hit the database on every keystroke.
type SettingsCache struct {
	items *gocache.Cache
}

// NewSettingsCache creates a cache whose entries expire after ttl.
// A non-positive ttl disables caching.
func NewSettingsCache(ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		return &SettingsCache{}
	}
	return &SettingsCache{items: gocache.New(ttl, 2*ttl)}
}

// Get returns a copy of the cached setting.
func (c *SettingsCache) Get(id string) (serial.Setting, bool) {
	if c == nil || c.items == nil {
		return serial.Setting{}, false
	}
	v, ok := c.items.Get(id)
	if !ok {
		return serial.Setting{}, false
	}
	s, ok := v.(serial.Setting)
	return s, ok
}

// Set stores a copy of the setting under its id.
func (c *SettingsCache) Set(s serial.Setting) {
	if c == nil || c.items == nil || s.ID == "" {
		return
	}
	c.items.SetDefault(s.ID, s)
}

// Delete evicts a setting, typically after it was written or issued from.
func (c *SettingsCache) Delete(id string) {
	if c == nil || c.items == nil {
		return
	}
	c.items.Delete(id)
}

// Len returns the number of cached entries, expired ones included until the
// next janitor run.
func (c *SettingsCache) Len() int {
	if c == nil || c.items == nil {
		return 0
	}
	return c.items.ItemCount()
}

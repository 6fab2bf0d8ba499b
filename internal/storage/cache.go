package storage

import (
	"sync"

	"upsell-widget-engine/internal/campaign"
)

// Cache holds the active campaign set between store refreshes.
type Cache struct {
	mu        sync.RWMutex
	campaigns []campaign.Campaign
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) GetCampaigns() []campaign.Campaign {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]campaign.Campaign(nil), c.campaigns...)
}

func (c *Cache) GetCampaign(id string) (campaign.Campaign, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cp := range c.campaigns {
		if cp.ID == id {
			return cp, true
		}
	}
	return campaign.Campaign{}, false
}

func (c *Cache) UpdateCampaigns(campaigns []campaign.Campaign) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.campaigns = campaigns
}

package borsdata

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"invest-assistant/internal/logger"
	"invest-assistant/internal/types"
)

// Universe selectors for the cache.
const (
	UniverseNordic = "NORDIC"
	UniverseGlobal = "GLOBAL"
)

// instrumentTypeNames is fixed; the API has no endpoint for it.
var instrumentTypeNames = map[int]string{
	0:  "Aktie",
	1:  "Fond",
	2:  "ETF",
	3:  "Index",
	4:  "Pref",
	5:  "SPAC",
	6:  "Börshandlad fond",
	99: "Övrigt",
}

// Cache holds the instrument universe, classification metadata and the KPI
// catalogue for the process lifetime. Warm it once at startup and inject it
// where needed; lookups after Warm are lock-free reads in practice but the
// mutex keeps concurrent Warm calls safe.
type Cache struct {
	client   *Client
	universe string

	mu          sync.RWMutex
	warmed      bool
	instruments []types.Instrument
	byTicker    map[string]types.Instrument
	sectors     map[int]string
	countries   map[int]string
	markets     map[int]string
	branches    map[int]string
	kpis        []KPIMeta
}

// NewCache builds an empty cache over the given universe selector.
func NewCache(client *Client, universe string) *Cache {
	if universe != UniverseGlobal {
		universe = UniverseNordic
	}
	return &Cache{client: client, universe: universe}
}

// Warm fetches everything the cache serves. Idempotent; a second call after
// success is a no-op.
func (c *Cache) Warm(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return nil
	}

	var (
		instruments []types.Instrument
		err         error
	)
	if c.universe == UniverseGlobal {
		instruments, err = c.client.GlobalInstruments(ctx)
	} else {
		instruments, err = c.client.Instruments(ctx)
	}
	if err != nil {
		return fmt.Errorf("warm instrument universe: %w", err)
	}

	sectors, err := c.client.Sectors(ctx)
	if err != nil {
		return err
	}
	countries, err := c.client.Countries(ctx)
	if err != nil {
		return err
	}
	markets, err := c.client.Markets(ctx)
	if err != nil {
		return err
	}
	branches, err := c.client.Branches(ctx)
	if err != nil {
		return err
	}

	// The KPI catalogue is only needed for dynamic id lookups; a failure
	// degrades those metrics to missing rather than sinking the warm-up.
	kpis, err := c.client.KPIMetadata(ctx)
	if err != nil {
		logger.Warn(ctx, "KPI catalogue unavailable, name lookups disabled", "error", err)
		kpis = nil
	}

	byTicker := make(map[string]types.Instrument, len(instruments))
	for _, inst := range instruments {
		byTicker[strings.ToUpper(inst.Ticker)] = inst
	}

	c.instruments = instruments
	c.byTicker = byTicker
	c.sectors = sectors
	c.countries = countries
	c.markets = markets
	c.branches = branches
	c.kpis = kpis
	c.warmed = true

	logger.Info(ctx, "Börsdata cache warmed",
		"universe", c.universe,
		"instruments", len(instruments),
		"sectors", len(sectors),
		"branches", len(branches),
		"kpis", len(kpis))
	return nil
}

// Universe returns the cached instrument list. Empty before Warm.
func (c *Cache) Universe() []types.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instruments
}

// InstrumentByTicker looks up one instrument by upper-cased ticker.
func (c *Cache) InstrumentByTicker(ticker string) (types.Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	return inst, ok
}

// CountryName resolves a country id to its display name, empty when unknown.
func (c *Cache) CountryName(id int) string { return c.lookup(func() map[int]string { return c.countries }, id) }

// SectorName resolves a sector id to its display name.
func (c *Cache) SectorName(id int) string { return c.lookup(func() map[int]string { return c.sectors }, id) }

// BranchName resolves a branch id to its display name.
func (c *Cache) BranchName(id int) string { return c.lookup(func() map[int]string { return c.branches }, id) }

// MarketName resolves a market id to its display name.
func (c *Cache) MarketName(id int) string { return c.lookup(func() map[int]string { return c.markets }, id) }

// InstrumentTypeName resolves an instrument type id.
func (c *Cache) InstrumentTypeName(id int) string { return instrumentTypeNames[id] }

func (c *Cache) lookup(m func() map[int]string, id int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return m()[id]
}

// KPIIDByNames finds a KPI id by case-insensitive substring match of any
// candidate against the catalogue's name fields. First hit wins.
func (c *Cache) KPIIDByNames(candidates ...string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lowered := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		if cand != "" {
			lowered = append(lowered, strings.ToLower(cand))
		}
	}
	for _, row := range c.kpis {
		joined := strings.ToLower(row.Name + " " + row.EngName + " " + row.CalcName + " " + row.ShortName)
		for _, cand := range lowered {
			if strings.Contains(joined, cand) {
				return row.KPIID, true
			}
		}
	}
	return 0, false
}

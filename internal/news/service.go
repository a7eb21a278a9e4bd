package news

import (
	"context"
	"sync"
	"time"

	"invest-assistant/internal/logger"
	"invest-assistant/internal/store"
	"invest-assistant/internal/types"
)

// Service provides news briefs with caching. Brief construction is
// best-effort: scraping or analysis failures yield an empty brief, never an
// error, so analysis output is unaffected by news availability.
type Service struct {
	scraper  *Scraper
	analyzer *BriefAnalyzer
	cache    *briefCache
	cfg      *ServiceConfig
}

// ServiceConfig configures the news brief service.
type ServiceConfig struct {
	MaxArticles    int           // Maximum articles to scrape per company
	CacheDuration  time.Duration // How long to cache briefs
	ScraperTimeout time.Duration // Timeout for scraping operations
	Enabled        bool          // Whether news enrichment is enabled
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:    6,
		CacheDuration:  1 * time.Hour,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	}
}

// briefCache stores briefs temporarily, keyed by ticker.
type briefCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	brief     types.NewsBrief
	timestamp time.Time
}

func newBriefCache(ttl time.Duration) *briefCache {
	cache := &briefCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}

	go cache.cleanupLoop()

	return cache
}

func (c *briefCache) get(ticker string) (types.NewsBrief, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[ticker]
	if !exists {
		return types.NewsBrief{}, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return types.NewsBrief{}, false
	}
	return entry.brief, true
}

func (c *briefCache) set(ticker string, brief types.NewsBrief) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[ticker] = &cacheEntry{
		brief:     brief,
		timestamp: time.Now(),
	}
}

func (c *briefCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *briefCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for ticker, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, ticker)
		}
	}
}

// NewService creates a news brief service.
func NewService(cfg *store.Config, serviceCfg *ServiceConfig) *Service {
	if serviceCfg == nil {
		serviceCfg = DefaultServiceConfig()
	}

	return &Service{
		scraper:  NewScraper(serviceCfg.ScraperTimeout),
		analyzer: NewBriefAnalyzer(cfg),
		cache:    newBriefCache(serviceCfg.CacheDuration),
		cfg:      serviceCfg,
	}
}

// GetBrief returns the cached or freshly built brief for one company.
func (s *Service) GetBrief(ctx context.Context, ticker, companyName string) (types.NewsBrief, error) {
	if !s.cfg.Enabled {
		return types.NewsBrief{
			Ticker:    ticker,
			Timestamp: time.Now().Unix(),
		}, nil
	}

	if cached, ok := s.cache.get(ticker); ok {
		logger.Info(ctx, "Using cached news brief", "ticker", ticker, "age_minutes",
			time.Since(time.Unix(cached.Timestamp, 0)).Minutes())
		return cached, nil
	}

	logger.Info(ctx, "Fetching fresh news brief", "ticker", ticker)
	brief, err := s.fetchFreshBrief(ctx, ticker, companyName)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build news brief", err, "ticker", ticker)
		// Empty brief on failure rather than sinking the analysis.
		return types.NewsBrief{
			Ticker:    ticker,
			Timestamp: time.Now().Unix(),
		}, nil
	}

	s.cache.set(ticker, brief)

	return brief, nil
}

func (s *Service) fetchFreshBrief(ctx context.Context, ticker, companyName string) (types.NewsBrief, error) {
	articles, err := s.scraper.ScrapeNews(ctx, companyName, s.cfg.MaxArticles)
	if err != nil {
		return types.NewsBrief{}, err
	}

	if len(articles) == 0 {
		logger.Info(ctx, "No articles from primary sources, trying Google News", "company", companyName)
		articles, err = s.scraper.ScrapeGoogleNews(ctx, companyName, s.cfg.MaxArticles)
		if err != nil {
			logger.ErrorWithErr(ctx, "Google News fallback failed", err, "company", companyName)
		}
	}

	return s.analyzer.BuildBrief(ctx, ticker, articles)
}

// RefreshBrief rebuilds the brief for one company, bypassing the cache.
func (s *Service) RefreshBrief(ctx context.Context, ticker, companyName string) (types.NewsBrief, error) {
	brief, err := s.fetchFreshBrief(ctx, ticker, companyName)
	if err != nil {
		return types.NewsBrief{}, err
	}

	s.cache.set(ticker, brief)
	return brief, nil
}

// ClearCache removes all cached briefs.
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// CachedTickers returns the tickers with a cached brief.
func (s *Service) CachedTickers() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	tickers := make([]string, 0, len(s.cache.data))
	for ticker := range s.cache.data {
		tickers = append(tickers, ticker)
	}
	return tickers
}

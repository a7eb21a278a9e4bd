package news

import (
	"context"
	"fmt"
	"testing"
	"time"

	"invest-assistant/internal/store"
	"invest-assistant/internal/types"
)

func TestBriefCache(t *testing.T) {
	cache := newBriefCache(1 * time.Second)

	ticker := "EVO"
	brief := types.NewsBrief{
		Ticker:       ticker,
		Risks:        []string{"regulatory pressure"},
		Catalysts:    []string{"new market entry"},
		ArticleCount: 4,
		Timestamp:    time.Now().Unix(),
	}

	cache.set(ticker, brief)

	retrieved, found := cache.get(ticker)
	if !found {
		t.Fatal("Expected to find cached brief")
	}
	if retrieved.Ticker != ticker {
		t.Errorf("Expected ticker %s, got %s", ticker, retrieved.Ticker)
	}
	if len(retrieved.Risks) != 1 {
		t.Errorf("Expected 1 risk, got %d", len(retrieved.Risks))
	}

	// Test expiration
	time.Sleep(2 * time.Second)
	if _, found := cache.get(ticker); found {
		t.Error("Expected cache entry to be expired")
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxArticles != 6 {
		t.Errorf("Expected MaxArticles to be 6, got %d", cfg.MaxArticles)
	}
	if cfg.CacheDuration != 1*time.Hour {
		t.Errorf("Expected CacheDuration to be 1 hour, got %v", cfg.CacheDuration)
	}
	if !cfg.Enabled {
		t.Error("Expected Enabled to be true")
	}
}

func TestNewService(t *testing.T) {
	cfg := &store.Config{}
	cfg.LLM.Provider = "OPENAI"
	cfg.LLM.Model = "gpt-4o-mini"

	svc := NewService(cfg, DefaultServiceConfig())

	if svc == nil {
		t.Fatal("Expected service to be created")
	}
	if svc.scraper == nil {
		t.Error("Expected scraper to be initialized")
	}
	if svc.analyzer == nil {
		t.Error("Expected analyzer to be initialized")
	}
	if svc.cache == nil {
		t.Error("Expected cache to be initialized")
	}
}

func TestServiceDisabled(t *testing.T) {
	cfg := &store.Config{}
	svc := NewService(cfg, &ServiceConfig{Enabled: false})

	brief, err := svc.GetBrief(context.Background(), "EVO", "Evolution")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if brief.Ticker != "EVO" {
		t.Errorf("Expected ticker EVO, got %s", brief.Ticker)
	}
	if len(brief.Risks) != 0 || len(brief.Catalysts) != 0 {
		t.Error("Expected empty brief when disabled")
	}
}

func TestCacheCleanup(t *testing.T) {
	cache := newBriefCache(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		ticker := fmt.Sprintf("SYM%d", i)
		cache.set(ticker, types.NewsBrief{Ticker: ticker, Timestamp: time.Now().Unix()})
	}

	time.Sleep(200 * time.Millisecond)
	cache.cleanup()

	cache.mu.RLock()
	count := len(cache.data)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Expected 0 cache entries after cleanup, got %d", count)
	}
}

func TestCachedTickers(t *testing.T) {
	cfg := &store.Config{}
	cfg.LLM.Provider = "OPENAI"

	svc := NewService(cfg, DefaultServiceConfig())

	tickers := []string{"EVO", "SHB A", "VOLV B"}
	for _, tk := range tickers {
		svc.cache.set(tk, types.NewsBrief{Ticker: tk, Timestamp: time.Now().Unix()})
	}

	cached := svc.CachedTickers()
	if len(cached) != 3 {
		t.Errorf("Expected 3 cached tickers, got %d", len(cached))
	}
}

func TestClearCache(t *testing.T) {
	svc := NewService(&store.Config{}, DefaultServiceConfig())

	svc.cache.set("EVO", types.NewsBrief{Ticker: "EVO", Timestamp: time.Now().Unix()})
	if len(svc.CachedTickers()) != 1 {
		t.Fatal("Expected 1 cached ticker")
	}

	svc.ClearCache()

	if n := len(svc.CachedTickers()); n != 0 {
		t.Errorf("Expected 0 cached tickers after clear, got %d", n)
	}
}

func TestClampItems(t *testing.T) {
	got := clampItems([]string{" a ", "", "b", "c", "d"})
	if len(got) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(got))
	}
	if got[0] != "a" {
		t.Errorf("Expected trimmed first item, got %q", got[0])
	}
}

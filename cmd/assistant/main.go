package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"invest-assistant/internal/analyze"
	"invest-assistant/internal/auditlog"
	"invest-assistant/internal/borsdata"
	"invest-assistant/internal/llm"
	"invest-assistant/internal/logger"
	"invest-assistant/internal/news"
	"invest-assistant/internal/resolve"
	"invest-assistant/internal/rules"
	"invest-assistant/internal/screener"
	"invest-assistant/internal/store"
	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"

	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	oneShot := flag.String("q", "", "run a single query and exit")
	flag.Parse()

	cfg, err := store.LoadConfig(*configPath)
	must(err)

	must(logger.Init())
	defer logger.Shutdown(context.Background())
	must(trace.Init())
	defer trace.Shutdown(context.Background())

	if os.Getenv("ASSISTANT_LOG_DIR") == "" && cfg.AuditLogDir != "" {
		os.Setenv("ASSISTANT_LOG_DIR", cfg.AuditLogDir)
	}
	if v := os.Getenv("ASSISTANT_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		_ = auditlog.CompressOlder(n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Println("Shutting down...")
		cancel()
	}()

	apiKey := os.Getenv(cfg.Borsdata.APIKeyEnv)
	if apiKey == "" {
		log.Fatalf("%s missing", cfg.Borsdata.APIKeyEnv)
	}

	client := borsdata.NewClient(cfg.Borsdata.BaseURL, apiKey, time.Duration(cfg.Borsdata.TimeoutSeconds)*time.Second)
	cache := borsdata.NewCache(client, cfg.Borsdata.Universe)
	must(cache.Warm(ctx))

	loadRules := func() *rules.RuleSet {
		rs, err := rules.Load(cfg.RulesPath)
		if err != nil {
			logger.Warn(ctx, "Rules file unavailable, every category passes vacuously",
				"path", cfg.RulesPath, "error", err)
			return nil
		}
		return rs
	}

	resolver := resolve.New(cache.Universe(), cache, llm.NewRanker(cfg), resolve.Options{
		ShortlistSize: cfg.Resolver.ShortlistSize,
		ConfidenceMin: cfg.LLM.ConfidenceMin,
		Aliases:       cfg.Resolver.Aliases,
	})
	provider := borsdata.NewProvider(client, cache)
	classifier := llm.NewClassifier(cfg)

	var newsSvc *news.Service
	if cfg.News.Enabled {
		newsSvc = news.NewService(cfg, &news.ServiceConfig{
			MaxArticles:    cfg.News.MaxArticles,
			CacheDuration:  time.Duration(cfg.News.CacheMinutes) * time.Minute,
			ScraperTimeout: 30 * time.Second,
			Enabled:        true,
		})
	}

	analyzer := analyze.New(resolver, provider, loadRules, cache, newsSvc)
	analyzer.Audit = func(tc types.ToolCall) { _ = auditlog.AppendToolCall(tc) }
	screens := screener.New(cache)

	if *oneShot != "" {
		handlePrompt(ctx, *oneShot, classifier, analyzer, screens)
		return
	}

	fmt.Println("Investment assistant ready. Ask about a company, or 'exit' to quit.")
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		handlePrompt(ctx, line, classifier, analyzer, screens)
	}
}

// intentConfidenceMin gates classifier output; below it the prompt is
// treated as unclassified.
const intentConfidenceMin = 0.5

func handlePrompt(ctx context.Context, prompt string, classifier llmClassifier, analyzer *analyze.Service, screens *screener.Service) {
	// Explicit key=value input is always a screen; skip classification.
	if filter, ok := parseScreenFilter(prompt); ok {
		printScreen(screens.Screen(ctx, filter, 0))
		return
	}

	// Unclassified input falls through to single-stock analysis, so the
	// deterministic chain stays usable with the noop provider.
	intent := types.IntentStockAnalysis
	if ic, err := classifier.Classify(ctx, prompt); err == nil &&
		ic.Confidence > intentConfidenceMin && ic.Intent != types.IntentNone {
		intent = ic.Intent
	}

	switch intent {
	case types.IntentScreening:
		fmt.Println("Screening uses key=value filters, e.g.: country=Sverige sector=Finans branch=Bank")
	case types.IntentPortfolio:
		fmt.Println("Portfolio analysis is not supported yet; ask about one company at a time.")
	case types.IntentGeneralAdvice:
		fmt.Println("I only evaluate individual companies against your configured rules; name a company to begin.")
	default:
		resp, err := analyzer.Analyze(ctx, prompt)
		if err != nil {
			fmt.Println("analysis failed:", err)
			return
		}
		fmt.Print(analyze.RenderSummary(resp))
		_ = auditlog.AppendResult(auditlog.ResultEntry{
			Query:   prompt,
			Ticker:  resp.Ticker,
			Verdict: resp.Verdict,
		})
	}
}

type llmClassifier interface {
	Classify(ctx context.Context, prompt string) (types.IntentClassification, error)
}

// parseScreenFilter reads "key=value" tokens. Returns false unless every
// token is a known filter key.
func parseScreenFilter(prompt string) (types.ScreenerFilter, bool) {
	var filter types.ScreenerFilter
	fields := strings.Fields(prompt)
	if len(fields) == 0 {
		return filter, false
	}
	for _, field := range fields {
		k, v, ok := strings.Cut(field, "=")
		if !ok || v == "" {
			return types.ScreenerFilter{}, false
		}
		switch strings.ToLower(k) {
		case "country":
			filter.Country = v
		case "sector":
			filter.Sector = v
		case "branch":
			filter.Branch = v
		case "market":
			filter.Market = v
		case "type":
			filter.InstrumentType = v
		default:
			return types.ScreenerFilter{}, false
		}
	}
	return filter, true
}

func printScreen(results []types.ScreenerResult) {
	if len(results) == 0 {
		fmt.Println("No instruments matched.")
		return
	}
	for _, r := range results {
		fmt.Printf("%-14s %-32s %-10s %s\n", r.Ticker, r.Name, r.Country, r.Branch)
	}
	fmt.Printf("%d instrument(s)\n", len(results))
}

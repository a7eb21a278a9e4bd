// Package analyze orchestrates a single-company analysis: resolve the query
// to an instrument, fetch its metrics snapshot, score it against the
// configured rules and attach a news brief.
package analyze

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"invest-assistant/internal/borsdata"
	"invest-assistant/internal/interfaces"
	"invest-assistant/internal/logger"
	"invest-assistant/internal/news"
	"invest-assistant/internal/resolve"
	"invest-assistant/internal/rules"
	"invest-assistant/internal/scorecard"
	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"
)

// Service runs end-to-end analyses. news may be nil to skip enrichment.
type Service struct {
	resolver *resolve.Resolver
	provider interfaces.MetricsProvider
	rules    func() *rules.RuleSet
	cache    *borsdata.Cache
	news     *news.Service

	// Audit, when set, receives every provenance record from the run.
	Audit func(types.ToolCall)
}

// New wires an analysis service. loadRules is called once per Analyze so
// threshold edits take effect without a restart; it may return nil.
// The resolver's and provider's audit sinks are claimed here, once, so the
// collaborators stay read-only afterwards.
func New(resolver *resolve.Resolver, provider interfaces.MetricsProvider, loadRules func() *rules.RuleSet, cache *borsdata.Cache, newsSvc *news.Service) *Service {
	if loadRules == nil {
		loadRules = func() *rules.RuleSet { return nil }
	}
	s := &Service{
		resolver: resolver,
		provider: provider,
		rules:    loadRules,
		cache:    cache,
		news:     newsSvc,
	}
	resolver.Audit = s.record
	if p, ok := provider.(*borsdata.Provider); ok {
		p.Audit = s.record
	}
	return s
}

// callRecorder collects the provenance records of one Analyze invocation.
// It rides the context so concurrent analyses never mix records.
type callRecorder struct {
	mu    sync.Mutex
	calls []types.ToolCall
}

func (r *callRecorder) add(tc types.ToolCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tc)
}

func (r *callRecorder) all() []types.ToolCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.ToolCall(nil), r.calls...)
}

type recorderKey struct{}

func (s *Service) record(ctx context.Context, tc types.ToolCall) {
	if rec, ok := ctx.Value(recorderKey{}).(*callRecorder); ok {
		rec.add(tc)
	}
	if s.Audit != nil {
		s.Audit(tc)
	}
}

// Analyze maps free text to one instrument and scores it. A missing metrics
// snapshot degrades to unknowns on the scorecard rather than failing; the
// only hard failures are upstream of resolution.
func (s *Service) Analyze(ctx context.Context, query string) (types.AnalyzeResponse, error) {
	ctx, span := trace.StartSpan(ctx, "analyze")
	defer span.End()

	rec := &callRecorder{}
	ctx = context.WithValue(ctx, recorderKey{}, rec)

	res := s.resolver.Resolve(ctx, query)

	var metrics types.Metrics
	m, err := s.provider.Snapshot(ctx, res.Ticker)
	if err != nil {
		logger.Warn(ctx, "Metrics snapshot unavailable, scoring unknowns",
			"ticker", res.Ticker, "error", err)
	} else {
		metrics = m
	}

	sc := scorecard.Build(metrics, s.rules())
	thesis, verdict := scorecard.ThesisAndVerdict(sc)

	resp := types.AnalyzeResponse{
		Ticker:    res.Ticker,
		Name:      res.Name,
		Snapshot:  metrics,
		Scores:    sc,
		Verdict:   verdict,
		Thesis:    thesis,
		ToolCalls: rec.all(),
	}

	if inst, ok := s.cache.InstrumentByTicker(res.Ticker); ok {
		resp.Market = s.cache.MarketName(inst.MarketID)
		resp.Sector = s.cache.SectorName(inst.SectorID)
		resp.Branch = s.cache.BranchName(inst.BranchID)
	}

	if s.news != nil {
		brief, err := s.news.GetBrief(ctx, res.Ticker, res.Name)
		if err == nil {
			resp.Risks = brief.Risks
			resp.Catalysts = brief.Catalysts
		}
	}

	logger.Verdict(ctx, resp.Ticker, resp.Verdict, sc.OverallPass,
		"strategy", res.Strategy, "query", query)

	return resp, nil
}

// RenderSummary formats a response as terminal-friendly text.
func RenderSummary(r types.AnalyzeResponse) string {
	var b strings.Builder
	b.WriteString(r.Ticker)
	if r.Name != "" && r.Name != r.Ticker {
		b.WriteString(" (" + r.Name + ")")
	}
	b.WriteString(" -> " + r.Verdict + "\n")
	b.WriteString(r.Thesis + "\n")
	writeGroup(&b, "Valuation", r.Scores.Valuation)
	writeGroup(&b, "Quality", r.Scores.Quality)
	writeGroup(&b, "Growth", r.Scores.Growth)
	writeGroup(&b, "Financial health", r.Scores.Health)
	writeGroup(&b, "Dividend", r.Scores.Dividend)
	writeGroup(&b, "Signals", r.Scores.Signals)
	if len(r.Risks) > 0 {
		b.WriteString("Risks:\n")
		for _, risk := range r.Risks {
			b.WriteString("  - " + risk + "\n")
		}
	}
	if len(r.Catalysts) > 0 {
		b.WriteString("Catalysts:\n")
		for _, cat := range r.Catalysts {
			b.WriteString("  - " + cat + "\n")
		}
	}
	return b.String()
}

func writeGroup(b *strings.Builder, label string, items []types.ScoreItem) {
	b.WriteString(label + ":\n")
	for _, it := range items {
		b.WriteString("  " + it.Metric + ": " + formatItem(it) + "\n")
	}
}

func formatItem(it types.ScoreItem) string {
	value := "n/a"
	if it.Value != nil {
		value = trimFloat(*it.Value)
	}
	if it.Rule == "" {
		return value
	}
	status := "?"
	if it.Passed != nil {
		if *it.Passed {
			status = "PASS"
		} else {
			status = "FAIL"
		}
	}
	return value + " (" + it.Rule + ") " + status
}

func trimFloat(v float64) string {
	// two decimals is enough for display
	s := strings.TrimRight(strings.TrimRight(strconv.FormatFloat(v, 'f', 2, 64), "0"), ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

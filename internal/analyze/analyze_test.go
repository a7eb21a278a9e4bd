package analyze

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"invest-assistant/internal/borsdata"
	"invest-assistant/internal/resolve"
	"invest-assistant/internal/rules"
	"invest-assistant/internal/types"
)

func f(v float64) *float64 { return &v }

type stubDir struct{}

func (stubDir) CountryName(int) string        { return "Sverige" }
func (stubDir) SectorName(int) string         { return "Industri" }
func (stubDir) BranchName(int) string         { return "Industrimaskiner" }
func (stubDir) InstrumentTypeName(int) string { return "Aktie" }

type noOpinionRanker struct{}

func (noOpinionRanker) Rank(_ context.Context, _ string, _ []string, _ bool, _ []types.Instrument) (types.RankChoice, error) {
	return types.RankChoice{}, errors.New("no opinion")
}

type stubProvider struct {
	metrics types.Metrics
	err     error
}

func (p *stubProvider) Snapshot(_ context.Context, _ string) (types.Metrics, error) {
	return p.metrics, p.err
}

func newTestService(provider *stubProvider, rs *rules.RuleSet) *Service {
	universe := []types.Instrument{
		{ID: 1, Name: "Evolution AB", Ticker: "EVO", CountryID: 1},
		{ID: 2, Name: "Volvo B", Ticker: "VOLV B", CountryID: 1},
	}
	resolver := resolve.New(universe, stubDir{}, noOpinionRanker{}, resolve.Options{})
	cache := borsdata.NewCache(nil, borsdata.UniverseNordic)
	return New(resolver, provider, func() *rules.RuleSet { return rs }, cache, nil)
}

func coreRules() *rules.RuleSet {
	return &rules.RuleSet{
		Valuation: map[string]float64{"pe_max": 15},
		Quality:   map[string]float64{"roic_min": 15},
	}
}

func TestAnalyze_BuyPath(t *testing.T) {
	provider := &stubProvider{metrics: types.Metrics{PE: f(12), ROIC: f(20)}}
	svc := newTestService(provider, coreRules())

	resp, err := svc.Analyze(context.Background(), "Evolution")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Ticker != "EVO" {
		t.Errorf("ticker = %q, want EVO", resp.Ticker)
	}
	if resp.Verdict != types.VerdictBuy {
		t.Errorf("verdict = %q, want BUY", resp.Verdict)
	}
	if len(resp.ToolCalls) == 0 {
		t.Error("expected provenance records")
	}
}

func TestAnalyze_SnapshotFailureScoresUnknowns(t *testing.T) {
	provider := &stubProvider{err: errors.New("api down")}
	svc := newTestService(provider, coreRules())

	resp, err := svc.Analyze(context.Background(), "Evolution")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Verdict != types.VerdictAvoid {
		t.Errorf("verdict = %q, want AVOID with rules and no data", resp.Verdict)
	}
	if resp.Scores.OverallPass {
		t.Error("expected overall fail")
	}
}

func TestAnalyze_ForwardsAuditRecords(t *testing.T) {
	provider := &stubProvider{metrics: types.Metrics{}}
	svc := newTestService(provider, nil)

	var seen []types.ToolCall
	svc.Audit = func(tc types.ToolCall) { seen = append(seen, tc) }

	if _, err := svc.Analyze(context.Background(), "EVO"); err != nil {
		t.Fatal(err)
	}
	if len(seen) == 0 {
		t.Fatal("expected audit callback to fire")
	}
	if seen[0].Name != "resolve_ticker" {
		t.Errorf("first record = %q, want resolve_ticker", seen[0].Name)
	}
}

func TestAnalyze_ConcurrentCallsKeepProvenanceApart(t *testing.T) {
	provider := &stubProvider{metrics: types.Metrics{}}
	svc := newTestService(provider, nil)

	queries := []string{"Evolution", "Volvo"}
	results := make([]types.AnalyzeResponse, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			resp, err := svc.Analyze(context.Background(), q)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = resp
		}(i, q)
	}
	wg.Wait()

	for i, q := range queries {
		if len(results[i].ToolCalls) == 0 {
			t.Fatalf("no provenance for %q", q)
		}
		for _, tc := range results[i].ToolCalls {
			if tc.Name != "resolve_ticker" {
				continue
			}
			if got := tc.Arguments["query"]; got != q {
				t.Errorf("provenance for %q carries query %v", q, got)
			}
		}
	}
}

func TestRenderSummary(t *testing.T) {
	resp := types.AnalyzeResponse{
		Ticker:  "EVO",
		Name:    "Evolution AB",
		Verdict: types.VerdictBuy,
		Thesis:  "Looks good.",
		Scores: types.Scorecard{
			Valuation: []types.ScoreItem{
				{Metric: "P/E", Value: f(12.5), Rule: "<= 15", Passed: f2b(true)},
				{Metric: "EV/EBIT", Value: nil, Rule: "<= 10"},
			},
		},
		Risks: []string{"regulatory pressure"},
	}
	out := RenderSummary(resp)
	for _, want := range []string{"EVO (Evolution AB) -> BUY", "P/E: 12.5 (<= 15) PASS", "EV/EBIT: n/a (<= 10) ?", "regulatory pressure"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func f2b(v bool) *bool { return &v }

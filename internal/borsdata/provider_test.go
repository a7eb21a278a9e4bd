package borsdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"invest-assistant/internal/types"
)

func fp(v float64) *float64 { return &v }

// stubSource serves canned KPI series keyed by "kpiId/report".
type stubSource struct {
	series map[string][]KPIPoint
	quote  Quote
	quoteE error
}

func (s *stubSource) KPIHistory(_ context.Context, _, kpiID int, report string) ([]KPIPoint, error) {
	pts, ok := s.series[fmt.Sprintf("%d/%s", kpiID, report)]
	if !ok {
		return nil, errors.New("no series")
	}
	return pts, nil
}

func (s *stubSource) LastQuote(_ context.Context, _ int) (Quote, error) {
	return s.quote, s.quoteE
}

type stubCatalogue struct {
	inst   types.Instrument
	ok     bool
	kpiIDs map[string]int
}

func (c *stubCatalogue) InstrumentByTicker(_ string) (types.Instrument, bool) {
	return c.inst, c.ok
}

func (c *stubCatalogue) KPIIDByNames(candidates ...string) (int, bool) {
	for _, cand := range candidates {
		if id, ok := c.kpiIDs[cand]; ok {
			return id, true
		}
	}
	return 0, false
}

func yearlySeries(startYear int, values ...float64) []KPIPoint {
	pts := make([]KPIPoint, len(values))
	for i, v := range values {
		vv := v
		pts[i] = KPIPoint{Year: startYear + i, Value: &vv}
	}
	return pts
}

func TestSnapshot_UnknownTicker(t *testing.T) {
	p := &Provider{src: &stubSource{}, cat: &stubCatalogue{ok: false}}
	if _, err := p.Snapshot(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for unknown ticker")
	}
}

func TestSnapshot_FixedKPIsWithFallback(t *testing.T) {
	src := &stubSource{
		series: map[string][]KPIPoint{
			"2/r12":   yearlySeries(2024, 14.2),      // P/E from r12
			"10/year": yearlySeries(2024, 8.5),       // EV/EBIT falls back to year
			"37/r12":  yearlySeries(2024, 19.0),      // ROIC
		},
		quoteE: errors.New("quotes down"),
	}
	cat := &stubCatalogue{inst: types.Instrument{ID: 7, Ticker: "EVO"}, ok: true}
	p := &Provider{src: src, cat: cat}

	m, err := p.Snapshot(context.Background(), "EVO")
	if err != nil {
		t.Fatal(err)
	}
	if m.PE == nil || *m.PE != 14.2 {
		t.Errorf("PE = %v, want 14.2", m.PE)
	}
	if m.EVEBIT == nil || *m.EVEBIT != 8.5 {
		t.Errorf("EVEBIT = %v, want 8.5 via year fallback", m.EVEBIT)
	}
	if m.EVSales != nil {
		t.Errorf("missing series must stay nil, got %v", *m.EVSales)
	}
	if m.Price != nil {
		t.Error("failed quote must leave price nil")
	}
	if m.Year != 2024 {
		t.Errorf("Year = %d, want 2024", m.Year)
	}
}

func TestSnapshot_LatestPointWins(t *testing.T) {
	// Points arrive unsorted; the newest (year, period) must win.
	src := &stubSource{
		series: map[string][]KPIPoint{
			"2/r12": {
				{Year: 2024, Period: 2, Value: fp(15)},
				{Year: 2022, Period: 4, Value: fp(30)},
				{Year: 2024, Period: 4, Value: fp(12)},
			},
		},
	}
	cat := &stubCatalogue{inst: types.Instrument{ID: 1, Ticker: "EVO"}, ok: true}
	p := &Provider{src: src, cat: cat}

	m, err := p.Snapshot(context.Background(), "EVO")
	if err != nil {
		t.Fatal(err)
	}
	if m.PE == nil || *m.PE != 12 {
		t.Errorf("PE = %v, want newest point 12", m.PE)
	}
}

func TestCagr5_FiveYearGrowth(t *testing.T) {
	// 100 -> 200 over five years is ~14.87%/yr.
	src := &stubSource{
		series: map[string][]KPIPoint{
			"53/year": yearlySeries(2019, 100, 120, 140, 160, 180, 200),
		},
	}
	p := &Provider{src: src, cat: &stubCatalogue{}}
	got := p.cagr5(context.Background(), 1, kpiRevenue)
	if got == nil {
		t.Fatal("expected a CAGR value")
	}
	want := 100.0 * (math.Pow(2.0, 0.2) - 1)
	if math.Abs(*got-want) > 1e-9 {
		t.Errorf("cagr = %f, want %f", *got, want)
	}
}

func TestCagr5_RequiresSixPointsAndPositiveEndpoints(t *testing.T) {
	p := &Provider{cat: &stubCatalogue{}, src: &stubSource{
		series: map[string][]KPIPoint{
			"53/year": yearlySeries(2020, 100, 120, 140, 160, 200),
		},
	}}
	if got := p.cagr5(context.Background(), 1, kpiRevenue); got != nil {
		t.Errorf("five points must yield nil, got %v", *got)
	}

	p = &Provider{cat: &stubCatalogue{}, src: &stubSource{
		series: map[string][]KPIPoint{
			"55/year": yearlySeries(2019, -50, 10, 20, 30, 40, 60),
		},
	}}
	if got := p.cagr5(context.Background(), 1, kpiEBIT); got != nil {
		t.Errorf("negative start must yield nil, got %v", *got)
	}
}

func TestSnapshot_RuleOf40(t *testing.T) {
	src := &stubSource{
		series: map[string][]KPIPoint{
			"29/r12":  yearlySeries(2024, 25),
			"53/year": yearlySeries(2019, 100, 120, 140, 160, 180, 200),
		},
	}
	cat := &stubCatalogue{inst: types.Instrument{ID: 1, Ticker: "EVO"}, ok: true}
	p := &Provider{src: src, cat: cat}

	m, err := p.Snapshot(context.Background(), "EVO")
	if err != nil {
		t.Fatal(err)
	}
	if m.RuleOf40 == nil {
		t.Fatal("expected rule of 40 when both inputs exist")
	}
	want := *m.RevenueCAGR5Y + 25
	if math.Abs(*m.RuleOf40-want) > 1e-9 {
		t.Errorf("rule of 40 = %f, want %f", *m.RuleOf40, want)
	}
}

func TestSnapshot_DynamicKPILookup(t *testing.T) {
	src := &stubSource{
		series: map[string][]KPIPoint{
			"77/year": yearlySeries(2024, 6.5),
		},
	}
	cat := &stubCatalogue{
		inst:   types.Instrument{ID: 1, Ticker: "SHB A"},
		ok:     true,
		kpiIDs: map[string]int{"Interest Coverage": 77},
	}
	p := &Provider{src: src, cat: cat}

	m, err := p.Snapshot(context.Background(), "SHB A")
	if err != nil {
		t.Fatal(err)
	}
	if m.InterestCoverage == nil || *m.InterestCoverage != 6.5 {
		t.Errorf("InterestCoverage = %v, want 6.5", m.InterestCoverage)
	}
	if m.PayoutRatio != nil {
		t.Error("unmatched catalogue name must leave payout nil")
	}
}

func TestSnapshot_QuoteFields(t *testing.T) {
	src := &stubSource{
		series: map[string][]KPIPoint{},
		quote:  Quote{Price: fp(101.5), AsOf: "2026-08-28"},
	}
	cat := &stubCatalogue{inst: types.Instrument{ID: 1, Ticker: "EVO"}, ok: true}
	p := &Provider{src: src, cat: cat}

	m, err := p.Snapshot(context.Background(), "EVO")
	if err != nil {
		t.Fatal(err)
	}
	if m.Price == nil || *m.Price != 101.5 {
		t.Errorf("Price = %v, want 101.5", m.Price)
	}
	if m.AsOf != "2026-08-28" {
		t.Errorf("AsOf = %q", m.AsOf)
	}
}

func TestKPIIDByNames_SubstringMatch(t *testing.T) {
	c := &Cache{kpis: []KPIMeta{
		{KPIID: 40, Name: "Räntetäckningsgrad", EngName: "Interest Coverage"},
		{KPIID: 41, Name: "Utdelningsandel", EngName: "Payout Ratio"},
	}}
	if id, ok := c.KPIIDByNames("Ränte"); !ok || id != 40 {
		t.Errorf("expected id 40, got %d %v", id, ok)
	}
	if id, ok := c.KPIIDByNames("payout ratio"); !ok || id != 41 {
		t.Errorf("expected id 41 case-insensitively, got %d %v", id, ok)
	}
	if _, ok := c.KPIIDByNames("does not exist"); ok {
		t.Error("unexpected match")
	}
}
